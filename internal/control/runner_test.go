package control

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jmylchreest/switcherd/internal/errors"
	"github.com/jmylchreest/switcherd/internal/simulator"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startRunner runs a runner against a fresh simulator and stops it on cleanup.
func startRunner(t *testing.T, cfg RunnerConfig) (*Runner, *simulator.Switcher) {
	t.Helper()
	sim := simulator.New(testLogger(), simulator.DefaultFixture())
	session := switcher.NewSession(testLogger(), sim.Dialer(), switcher.ControlState{})
	r := NewRunner(testLogger(), session, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("Run() didn't return after cancel")
		}
	})
	return r, sim
}

func TestRunnerConnectAndControl(t *testing.T) {
	r, sim := startRunner(t, RunnerConfig{TickInterval: 10 * time.Millisecond, Address: "sim"})
	ctx := context.Background()

	assert.Equal(t, switcher.StatusDisconnected, r.Snapshot().Status)
	require.NoError(t, r.Connect(ctx, ""))
	snap := r.Snapshot()
	assert.Equal(t, switcher.StatusConnected, snap.Status)
	assert.Equal(t, "Cam1", snap.State.ProgramInputName)

	require.NoError(t, r.SetProgramInput(ctx, "Cam3"))
	require.NoError(t, r.SetPreviewInput(ctx, "Cam4"))
	require.NoError(t, r.SetTransitionPosition(ctx, 0.25))
	st := sim.Snapshot()
	assert.Equal(t, switcher.InputID(3), st.Program)
	assert.Equal(t, switcher.InputID(4), st.Preview)

	require.NoError(t, r.PerformAutoTransition(ctx, 10))
	assert.Eventually(t, func() bool {
		return r.Snapshot().State.ProgramInputName == "Cam4"
	}, 2*time.Second, 10*time.Millisecond)

	// A cut at the panel is picked up by the tick.
	sim.Cut(2)
	assert.Eventually(t, func() bool {
		return r.Snapshot().State.ProgramInputName == "Cam2"
	}, 2*time.Second, 10*time.Millisecond)

	err := r.Connect(ctx, "sim")
	assert.True(t, errors.IsInvalidState(err))

	require.NoError(t, r.Disconnect(ctx))
	assert.Equal(t, switcher.DisconnectRequested, r.Snapshot().LastDisconnect)
}

func TestRunnerAutoConnect(t *testing.T) {
	r, _ := startRunner(t, RunnerConfig{TickInterval: 10 * time.Millisecond, Address: "sim", AutoConnect: true})
	assert.Eventually(t, func() bool {
		return r.Snapshot().Connected()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerReconnectsAfterLinkLoss(t *testing.T) {
	r, sim := startRunner(t, RunnerConfig{
		TickInterval:      10 * time.Millisecond,
		ReconnectInterval: 30 * time.Millisecond,
		Address:           "sim",
	})
	ctx := context.Background()
	require.NoError(t, r.Connect(ctx, ""))
	first := r.Snapshot().ConnectionID

	sim.SetOffline(true)
	assert.Eventually(t, func() bool {
		return r.Snapshot().LastDisconnect == switcher.DisconnectLinkLost
	}, 2*time.Second, 10*time.Millisecond)

	sim.SetOffline(false)
	assert.Eventually(t, func() bool {
		snap := r.Snapshot()
		return snap.Connected() && snap.ConnectionID != first
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerNoReconnectAfterRequestedDisconnect(t *testing.T) {
	r, _ := startRunner(t, RunnerConfig{
		TickInterval:      10 * time.Millisecond,
		ReconnectInterval: 20 * time.Millisecond,
		Address:           "sim",
	})
	ctx := context.Background()
	require.NoError(t, r.Connect(ctx, ""))
	require.NoError(t, r.Disconnect(ctx))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, r.Snapshot().Connected())
}

func TestRunnerConnectFailure(t *testing.T) {
	r, sim := startRunner(t, RunnerConfig{TickInterval: 10 * time.Millisecond})
	sim.SetOffline(true)

	err := r.Connect(context.Background(), "sim")
	assert.True(t, errors.IsConnectionFailed(err))

	err = r.Connect(context.Background(), "")
	assert.True(t, errors.IsInvalidInput(err))

	err = r.PerformAutoTransition(context.Background(), 5)
	assert.True(t, errors.IsNotConnected(err))
}

// blockingDialer never completes until ctx is cancelled.
type blockingDialer struct{}

func (blockingDialer) Dial(ctx context.Context, _ string) (switcher.Device, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunnerShutdownWaitsForPendingConnect(t *testing.T) {
	session := switcher.NewSession(testLogger(), blockingDialer{}, switcher.ControlState{})
	r := NewRunner(testLogger(), session, RunnerConfig{TickInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	connectErr := make(chan error, 1)
	go func() { connectErr <- r.Connect(context.Background(), "10.0.0.9") }()

	assert.Eventually(t, func() bool {
		return r.Snapshot().Status == switcher.StatusConnecting
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	assert.True(t, errors.IsConnectionFailed(<-connectErr))
	assert.Equal(t, switcher.StatusDisconnected, r.Snapshot().Status)

	// Commands after shutdown fail fast.
	assert.ErrorIs(t, r.Disconnect(context.Background()), ErrStopped)
	// Run is single-use.
	assert.True(t, errors.IsInvalidState(r.Run(context.Background())))
}

func TestRunnerSnapshotReflectsCompletedCommand(t *testing.T) {
	r, _ := startRunner(t, RunnerConfig{TickInterval: time.Millisecond, Address: "sim"})
	ctx := context.Background()

	require.NoError(t, r.Connect(ctx, ""))
	require.Equal(t, switcher.StatusConnected, r.Snapshot().Status)

	stale := 0
	for i := 1; i <= 500; i++ {
		v := float64(i) / 1000
		require.NoError(t, r.SetTransitionPosition(ctx, v))
		if r.Snapshot().State.TransitionPosition != v {
			stale++
		}
	}
	assert.Zero(t, stale, "snapshots taken right after a command were stale")

	require.NoError(t, r.SetProgramInput(ctx, "Cam3"))
	assert.Equal(t, "Cam3", r.Snapshot().State.ProgramInputName)

	require.NoError(t, r.Disconnect(ctx))
	assert.Equal(t, switcher.StatusDisconnected, r.Snapshot().Status)
}
