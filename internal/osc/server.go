// Package osc exposes the switcher session as an OSC control surface and
// optionally echoes session changes back to an OSC feedback target.
package osc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"sync"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/jmylchreest/switcherd/internal/config"
	apperrors "github.com/jmylchreest/switcherd/internal/errors"
	"github.com/jmylchreest/switcherd/internal/metrics"
)

// OSC addresses understood by the server.
const (
	AddrProgram    = "/switcher/program"
	AddrPreview    = "/switcher/preview"
	AddrTransition = "/switcher/transition"
	AddrAuto       = "/switcher/auto"
	AddrConnect    = "/switcher/connect"
	AddrDisconnect = "/switcher/disconnect"
	// AddrConnected is only sent as feedback.
	AddrConnected = "/switcher/connected"
)

// commandTimeout bounds a single OSC-triggered command.
const commandTimeout = 10 * time.Second

// Controller is the session control surface driven by OSC messages.
type Controller interface {
	Connect(ctx context.Context, address string) error
	Disconnect(ctx context.Context) error
	SetProgramInput(ctx context.Context, name string) error
	SetPreviewInput(ctx context.Context, name string) error
	SetTransitionPosition(ctx context.Context, position float64) error
	PerformAutoTransition(ctx context.Context, frames uint32) error
}

// Server dispatches incoming OSC messages to a Controller.
type Server struct {
	logger     *slog.Logger
	ctrl       Controller
	dispatcher *goosc.StandardDispatcher

	mu     sync.Mutex
	ctx    context.Context
	closed bool
	wg     sync.WaitGroup
}

// NewServer creates a Server with all control addresses registered.
func NewServer(logger *slog.Logger, ctrl Controller) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:     logger,
		ctrl:       ctrl,
		dispatcher: goosc.NewStandardDispatcher(),
	}

	routes := map[string]func(context.Context, *goosc.Message) error{
		AddrProgram: func(ctx context.Context, msg *goosc.Message) error {
			name, err := stringArg(msg, 0)
			if err != nil {
				return err
			}
			return s.ctrl.SetProgramInput(ctx, name)
		},
		AddrPreview: func(ctx context.Context, msg *goosc.Message) error {
			name, err := stringArg(msg, 0)
			if err != nil {
				return err
			}
			return s.ctrl.SetPreviewInput(ctx, name)
		},
		AddrTransition: func(ctx context.Context, msg *goosc.Message) error {
			pos, err := floatArg(msg, 0)
			if err != nil {
				return err
			}
			if pos < 0 || pos > 1 {
				return apperrors.InvalidInputf("transition position %v outside 0..1", pos)
			}
			return s.ctrl.SetTransitionPosition(ctx, pos)
		},
		AddrAuto: func(ctx context.Context, msg *goosc.Message) error {
			frames, err := framesArg(msg)
			if err != nil {
				return err
			}
			return s.ctrl.PerformAutoTransition(ctx, frames)
		},
		AddrConnect: func(ctx context.Context, msg *goosc.Message) error {
			var address string
			if len(msg.Arguments) > 0 {
				a, err := stringArg(msg, 0)
				if err != nil {
					return err
				}
				address = a
			}
			return s.ctrl.Connect(ctx, address)
		},
		AddrDisconnect: func(ctx context.Context, _ *goosc.Message) error {
			return s.ctrl.Disconnect(ctx)
		},
	}
	for addr, fn := range routes {
		if err := s.dispatcher.AddMsgHandler(addr, s.handle(addr, fn)); err != nil {
			return nil, fmt.Errorf("osc: register %s: %w", addr, err)
		}
	}
	return s, nil
}

// ListenAndServe listens on the UDP address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		return fmt.Errorf("osc: listen on %s: %w", address, err)
	}
	return s.Serve(ctx, conn)
}

// Serve reads OSC packets from conn until ctx is cancelled, then closes conn
// and waits for in-flight commands. A Server serves once.
func (s *Server) Serve(parent context.Context, conn net.PacketConn) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return apperrors.InvalidStatef("osc server already stopped")
	}
	s.ctx = ctx
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	s.logger.Info("osc: listening", "address", conn.LocalAddr().String())
	srv := &goosc.Server{Dispatcher: s.dispatcher}
	err := srv.Serve(conn)

	cancel()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Info("osc: stopped")

	if parent.Err() != nil {
		return nil
	}
	return err
}

// Dispatch handles msg synchronously.
func (s *Server) Dispatch(msg *goosc.Message) {
	s.dispatcher.Dispatch(msg)
}

func (s *Server) begin() (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	s.wg.Add(1)
	if s.ctx == nil {
		return context.Background(), true
	}
	return s.ctx, true
}

func (s *Server) handle(addr string, fn func(context.Context, *goosc.Message) error) goosc.HandlerFunc {
	return func(msg *goosc.Message) {
		base, ok := s.begin()
		if !ok {
			return
		}
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(base, commandTimeout)
		defer cancel()

		err := fn(ctx, msg)
		metrics.ObserveOSC(addr, err)
		if err != nil {
			s.logger.Warn("osc: command failed", "address", addr, "arguments", msg.Arguments, "error", err)
			return
		}
		s.logger.Debug("osc: command applied", "address", addr, "arguments", msg.Arguments)
	}
}

func stringArg(msg *goosc.Message, i int) (string, error) {
	if len(msg.Arguments) <= i {
		return "", apperrors.InvalidInputf("%s: missing string argument", msg.Address)
	}
	s, ok := msg.Arguments[i].(string)
	if !ok || s == "" {
		return "", apperrors.InvalidInputf("%s: argument %d must be a non-empty string", msg.Address, i)
	}
	return s, nil
}

func floatArg(msg *goosc.Message, i int) (float64, error) {
	if len(msg.Arguments) <= i {
		return 0, apperrors.InvalidInputf("%s: missing numeric argument", msg.Address)
	}
	var f float64
	switch v := msg.Arguments[i].(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, apperrors.InvalidInputf("%s: argument %d must be numeric, got %T", msg.Address, i, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperrors.InvalidInputf("%s: argument %d is not finite", msg.Address, i)
	}
	return f, nil
}

// framesArg reads the frame count of /switcher/auto; no argument means 0.
func framesArg(msg *goosc.Message) (uint32, error) {
	if len(msg.Arguments) == 0 {
		return 0, nil
	}
	f, err := floatArg(msg, 0)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, apperrors.InvalidInputf("%s: frame count %v is not a non-negative integer", msg.Address, f)
	}
	if f > config.MaxTransitionFrames {
		return 0, apperrors.InvalidInputf("%s: frame count %v exceeds %d", msg.Address, f, config.MaxTransitionFrames)
	}
	return uint32(f), nil
}
