package switcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
)

var errWire = errors.New("wire down")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDevice records every write so tests can assert what was pushed.
type fakeDevice struct {
	mu sync.Mutex

	product  string
	inputs   []Input
	program  InputID
	preview  InputID
	position float64

	failOn map[string]error
	writes []string
	closed bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		product: "Test Switcher",
		inputs: []Input{
			{ID: 1, Name: "Cam1"},
			{ID: 2, Name: "Cam2"},
			{ID: 3, Name: "Cam3"},
		},
		program: 1,
		preview: 2,
		failOn:  map[string]error{},
	}
}

func (f *fakeDevice) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[op] = err
}

func (f *fakeDevice) set(program, preview InputID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.program, f.preview = program, preview
}

func (f *fakeDevice) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeDevice) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeDevice) check(op string) error {
	return f.failOn[op]
}

func (f *fakeDevice) ProductName() string { return f.product }

func (f *fakeDevice) Inputs(context.Context) ([]Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("inputs"); err != nil {
		return nil, err
	}
	return append([]Input(nil), f.inputs...), nil
}

func (f *fakeDevice) ProgramInput(context.Context) (InputID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.program, f.check("program")
}

func (f *fakeDevice) PreviewInput(context.Context) (InputID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview, f.check("preview")
}

func (f *fakeDevice) TransitionPosition(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, f.check("position")
}

func (f *fakeDevice) SetProgramInput(_ context.Context, id InputID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("set_program"); err != nil {
		return err
	}
	f.program = id
	f.writes = append(f.writes, "program="+itoa(id))
	return nil
}

func (f *fakeDevice) SetPreviewInput(_ context.Context, id InputID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("set_preview"); err != nil {
		return err
	}
	f.preview = id
	f.writes = append(f.writes, "preview="+itoa(id))
	return nil
}

func (f *fakeDevice) SetTransitionPosition(_ context.Context, position float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("set_position"); err != nil {
		return err
	}
	f.position = position
	f.writes = append(f.writes, "position")
	return nil
}

func (f *fakeDevice) Probe(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check("probe")
}

func (f *fakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeMixDevice adds the mix transition capability.
type fakeMixDevice struct {
	*fakeDevice
	supported bool
}

func (f *fakeMixDevice) SupportsMixTransition() bool { return f.supported }

func (f *fakeMixDevice) SetTransitionRate(_ context.Context, frames uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("set_rate"); err != nil {
		return err
	}
	f.writes = append(f.writes, "rate="+itoa(InputID(frames)))
	return nil
}

func (f *fakeMixDevice) StartAutoTransition(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("auto"); err != nil {
		return err
	}
	f.writes = append(f.writes, "auto")
	return nil
}

func itoa(id InputID) string {
	return strconv.FormatInt(int64(id), 10)
}

func staticDialer(dev Device) Dialer {
	return DialerFunc(func(context.Context, string) (Device, error) {
		return dev, nil
	})
}

func failingDialer(err error) Dialer {
	return DialerFunc(func(context.Context, string) (Device, error) {
		return nil, err
	})
}
