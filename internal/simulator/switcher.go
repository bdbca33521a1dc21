// Package simulator is an in-memory switcher used for development, demos and
// tests. It can be driven in-process through Dialer or over HTTP through the
// gateway protocol served by Handler.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// ErrOffline is returned by every device call while the simulator is offline.
var ErrOffline = errors.New("simulator offline")

// State is a point-in-time view of the simulated switcher.
type State struct {
	ProductName    string           `json:"productName"`
	Inputs         []switcher.Input `json:"inputs"`
	Program        switcher.InputID `json:"program"`
	Preview        switcher.InputID `json:"preview"`
	Position       float64          `json:"position"`
	Rate           uint32           `json:"rate"`
	MixTransition  bool             `json:"mixTransition"`
	AutoTransition int              `json:"autoTransitions"`
	Offline        bool             `json:"offline"`
}

// Switcher is a mutex-guarded simulated switcher.
type Switcher struct {
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a simulator from a fixture.
func New(logger *slog.Logger, f Fixture) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Switcher{logger: logger}
	s.apply(f)
	return s
}

func (s *Switcher) apply(f Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ProductName = f.Product
	s.state.MixTransition = f.MixTransition
	s.state.Inputs = f.switcherInputs()
	s.state.Program = switcher.InputID(f.Program)
	s.state.Preview = switcher.InputID(f.Preview)
	s.state.Rate = f.Rate
}

// Reload replaces the fixture's inputs and product details, keeping the
// current program/preview selection and transition position.
func (s *Switcher) Reload(f Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ProductName = f.Product
	s.state.MixTransition = f.MixTransition
	s.state.Inputs = f.switcherInputs()
	s.logger.Info("simulator: fixture reloaded", "inputs", len(s.state.Inputs))
}

// Snapshot returns a copy of the current state.
func (s *Switcher) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Inputs = append([]switcher.Input(nil), s.state.Inputs...)
	return st
}

// SetOffline makes every device call fail until cleared.
func (s *Switcher) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Offline = offline
	s.logger.Info("simulator: offline changed", "offline", offline)
}

// Cut sets the program input directly, as an operator at the panel would.
func (s *Switcher) Cut(program switcher.InputID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Program = program
}

func (s *Switcher) hasInput(id switcher.InputID) bool {
	for _, in := range s.state.Inputs {
		if in.ID == id {
			return true
		}
	}
	return false
}

// with runs fn under the lock unless the simulator is offline.
func (s *Switcher) with(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Offline {
		return ErrOffline
	}
	return fn(&s.state)
}

func (s *Switcher) info() (switcher.Info, error) {
	var info switcher.Info
	err := s.with(func(st *State) error {
		info.ProductName = st.ProductName
		info.Features = []string{}
		if st.MixTransition {
			info.Features = append(info.Features, switcher.FeatureMixTransition)
		}
		return nil
	})
	return info, err
}

func (s *Switcher) inputs() ([]switcher.Input, error) {
	var out []switcher.Input
	err := s.with(func(st *State) error {
		out = append([]switcher.Input{}, st.Inputs...)
		return nil
	})
	return out, err
}

func (s *Switcher) mixEffect() (switcher.MixEffectState, error) {
	var me switcher.MixEffectState
	err := s.with(func(st *State) error {
		me = switcher.MixEffectState{Program: st.Program, Preview: st.Preview, Position: st.Position}
		return nil
	})
	return me, err
}

func (s *Switcher) setProgram(id switcher.InputID) error {
	return s.with(func(st *State) error {
		if !s.hasInput(id) {
			return fmt.Errorf("%w: no input %d", errUnknownInput, id)
		}
		st.Program = id
		return nil
	})
}

func (s *Switcher) setPreview(id switcher.InputID) error {
	return s.with(func(st *State) error {
		if !s.hasInput(id) {
			return fmt.Errorf("%w: no input %d", errUnknownInput, id)
		}
		st.Preview = id
		return nil
	})
}

func (s *Switcher) setPosition(pos float64) error {
	return s.with(func(st *State) error {
		st.Position = config.ClampTransitionPosition(pos)
		return nil
	})
}

func (s *Switcher) setRate(frames uint32) error {
	return s.with(func(st *State) error {
		if !st.MixTransition {
			return errNoMix
		}
		st.Rate = frames
		return nil
	})
}

// startAuto completes the transition at once: preview goes to program.
func (s *Switcher) startAuto() error {
	return s.with(func(st *State) error {
		if !st.MixTransition {
			return errNoMix
		}
		st.Program, st.Preview = st.Preview, st.Program
		st.Position = 0
		st.AutoTransition++
		return nil
	})
}

func (s *Switcher) ping() error {
	return s.with(func(*State) error { return nil })
}

var (
	errUnknownInput = errors.New("unknown input")
	errNoMix        = errors.New("mix transition not supported")
)

// Dialer returns an in-process switcher.Dialer for this simulator. The
// address is only logged.
func (s *Switcher) Dialer() switcher.Dialer {
	return switcher.DialerFunc(func(ctx context.Context, address string) (switcher.Device, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := s.info()
		if err != nil {
			return nil, err
		}
		s.logger.Debug("simulator: dialed", "address", address)
		return &device{sim: s, info: info}, nil
	})
}

// device is the in-process Device handed out by Dialer.
type device struct {
	sim  *Switcher
	info switcher.Info
}

func (d *device) ProductName() string { return d.info.ProductName }

func (d *device) Inputs(context.Context) ([]switcher.Input, error) { return d.sim.inputs() }

func (d *device) ProgramInput(context.Context) (switcher.InputID, error) {
	me, err := d.sim.mixEffect()
	return me.Program, err
}

func (d *device) PreviewInput(context.Context) (switcher.InputID, error) {
	me, err := d.sim.mixEffect()
	return me.Preview, err
}

func (d *device) TransitionPosition(context.Context) (float64, error) {
	me, err := d.sim.mixEffect()
	return me.Position, err
}

func (d *device) SetProgramInput(_ context.Context, id switcher.InputID) error {
	return d.sim.setProgram(id)
}

func (d *device) SetPreviewInput(_ context.Context, id switcher.InputID) error {
	return d.sim.setPreview(id)
}

func (d *device) SetTransitionPosition(_ context.Context, pos float64) error {
	return d.sim.setPosition(pos)
}

func (d *device) Probe(context.Context) error { return d.sim.ping() }

func (d *device) Close() error { return nil }

func (d *device) SupportsMixTransition() bool {
	return d.info.HasFeature(switcher.FeatureMixTransition)
}

func (d *device) SetTransitionRate(_ context.Context, frames uint32) error {
	return d.sim.setRate(frames)
}

func (d *device) StartAutoTransition(context.Context) error { return d.sim.startAuto() }
