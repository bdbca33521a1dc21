// Package control owns the switcher session on a single goroutine and exposes
// goroutine-safe commands to the daemon's surfaces (HTTP, OSC, websocket).
package control

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/switcherd/internal/config"
	apperrors "github.com/jmylchreest/switcherd/internal/errors"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// ErrStopped is returned by commands submitted after the runner has exited.
var ErrStopped = errors.New("control runner stopped")

// RunnerConfig configures the control loop.
type RunnerConfig struct {
	// TickInterval is how often a connected session is refreshed.
	TickInterval time.Duration
	// ReconnectInterval is the delay before retrying after a link loss or a
	// failed connect. Zero disables reconnects.
	ReconnectInterval time.Duration
	// Address is the switcher to connect to on start and on reconnect.
	Address string
	// AutoConnect connects to Address when the runner starts.
	AutoConnect bool
}

type command struct {
	run     func(ctx context.Context) error
	connect string
	reply   chan error
}

// Runner drives a Session: it ticks it, completes connects, applies
// commands and reconnects after failures. Only the Run goroutine touches the
// session.
type Runner struct {
	logger  *slog.Logger
	session *switcher.Session
	cfg     RunnerConfig

	cmds    chan command
	done    chan struct{}
	started atomic.Bool
	snap    atomic.Pointer[switcher.Snapshot]

	// Owned by the Run goroutine.
	address    string
	waiters    []chan error
	retry      *time.Timer
	retryC     <-chan time.Time
	wantOnline bool
}

// NewRunner creates a runner for session. The session must not be used
// directly once Run has been called.
func NewRunner(logger *slog.Logger, session *switcher.Session, cfg RunnerConfig) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = config.DefaultTickInterval
	}
	r := &Runner{
		logger:  logger,
		session: session,
		cfg:     cfg,
		cmds:    make(chan command),
		done:    make(chan struct{}),
		address: cfg.Address,
	}
	r.storeSnapshot()
	return r
}

// Run executes the control loop until ctx is cancelled. On return any
// in-flight connect has been completed and the session is disconnected.
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return apperrors.InvalidStatef("control runner already started")
	}
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	r.logger.Info("control: runner started",
		"tick_interval", r.cfg.TickInterval,
		"reconnect_interval", r.cfg.ReconnectInterval,
		"address", r.cfg.Address,
		"auto_connect", r.cfg.AutoConnect,
	)

	if r.cfg.AutoConnect && r.address != "" {
		r.beginConnect(ctx, r.address, nil)
		r.storeSnapshot()
	}

	for {
		var pending *switcher.PendingConnect
		var pendingDone <-chan struct{}
		if pending = r.session.Pending(); pending != nil {
			pendingDone = pending.Done()
		}

		select {
		case <-ctx.Done():
			r.shutdown()
			return nil

		case <-pendingDone:
			r.finishConnect(r.session.CompleteConnect(pending))

		case <-ticker.C:
			if r.session.IsConnected() {
				r.afterDeviceCall(r.session.Tick(ctx))
			}

		case <-r.retryC:
			r.retryC = nil
			if r.session.Status() == switcher.StatusDisconnected && r.address != "" {
				r.logger.Info("control: reconnecting", "address", r.address)
				r.beginConnect(ctx, r.address, nil)
			}

		case cmd := <-r.cmds:
			if cmd.connect != "" {
				r.beginConnect(ctx, cmd.connect, cmd.reply)
			} else {
				err := cmd.run(ctx)
				r.storeSnapshot()
				cmd.reply <- err
			}
		}
		r.storeSnapshot()
	}
}

// Done is closed when Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) beginConnect(ctx context.Context, address string, reply chan error) {
	r.stopRetry()
	if _, err := r.session.StartConnect(ctx, address); err != nil {
		r.storeSnapshot()
		if reply != nil {
			reply <- err
		}
		return
	}
	r.address = address
	r.wantOnline = true
	if reply != nil {
		r.waiters = append(r.waiters, reply)
	}
}

func (r *Runner) finishConnect(err error) {
	// Waiters read Snapshot as soon as they are released.
	r.storeSnapshot()
	for _, w := range r.waiters {
		w <- err
	}
	r.waiters = nil
	if err != nil {
		r.scheduleRetry()
	}
}

func (r *Runner) scheduleRetry() {
	if r.cfg.ReconnectInterval <= 0 || !r.wantOnline || r.address == "" {
		return
	}
	r.stopRetry()
	r.logger.Debug("control: reconnect scheduled", "address", r.address, "in", r.cfg.ReconnectInterval)
	r.retry = time.NewTimer(r.cfg.ReconnectInterval)
	r.retryC = r.retry.C
}

func (r *Runner) stopRetry() {
	if r.retry != nil {
		r.retry.Stop()
	}
	r.retry = nil
	r.retryC = nil
}

func (r *Runner) shutdown() {
	r.stopRetry()
	r.wantOnline = false
	if p := r.session.Pending(); p != nil {
		<-p.Done()
		r.finishConnect(r.session.CompleteConnect(p))
	}
	if err := r.session.Disconnect(); err != nil {
		r.logger.Warn("control: disconnect on shutdown failed", "error", err)
	}
	r.storeSnapshot()
	r.logger.Info("control: runner stopped")
}

func (r *Runner) storeSnapshot() {
	snap := r.session.Snapshot()
	r.snap.Store(&snap)
}

// submit hands fn to the Run goroutine and waits for its result.
func (r *Runner) submit(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case r.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrStopped
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.submit(ctx, command{run: fn})
}

// Connect connects to address (the configured address when empty) and waits
// for the handshake to finish.
func (r *Runner) Connect(ctx context.Context, address string) error {
	if address == "" {
		address = r.cfg.Address
	}
	if address == "" {
		return apperrors.InvalidInputf("no switcher address given or configured")
	}
	return r.submit(ctx, command{connect: address})
}

// Disconnect disconnects and cancels any scheduled reconnect.
func (r *Runner) Disconnect(ctx context.Context) error {
	return r.exec(ctx, func(context.Context) error {
		r.stopRetry()
		r.wantOnline = false
		return r.session.Disconnect()
	})
}

// SetProgramInput sets the program input by display name.
func (r *Runner) SetProgramInput(ctx context.Context, name string) error {
	return r.exec(ctx, func(runCtx context.Context) error {
		return r.afterDeviceCall(r.session.SetProgramInput(runCtx, name))
	})
}

// SetPreviewInput sets the preview input by display name.
func (r *Runner) SetPreviewInput(ctx context.Context, name string) error {
	return r.exec(ctx, func(runCtx context.Context) error {
		return r.afterDeviceCall(r.session.SetPreviewInput(runCtx, name))
	})
}

// SetTransitionPosition moves the transition lever.
func (r *Runner) SetTransitionPosition(ctx context.Context, position float64) error {
	return r.exec(ctx, func(runCtx context.Context) error {
		return r.afterDeviceCall(r.session.SetTransitionPosition(runCtx, position))
	})
}

// PerformAutoTransition runs a timed mix transition of frames frames.
func (r *Runner) PerformAutoTransition(ctx context.Context, frames uint32) error {
	return r.exec(ctx, func(runCtx context.Context) error {
		return r.afterDeviceCall(r.session.PerformAutoTransition(runCtx, frames))
	})
}

func (r *Runner) afterDeviceCall(err error) error {
	if apperrors.IsLinkLost(err) {
		r.scheduleRetry()
	}
	return err
}

// Snapshot returns the session view as of the last loop iteration.
func (r *Runner) Snapshot() switcher.Snapshot {
	return *r.snap.Load()
}
