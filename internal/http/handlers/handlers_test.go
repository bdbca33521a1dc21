package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/switcherd/internal/apikey"
	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/internal/control"
	apperrors "github.com/jmylchreest/switcherd/internal/errors"
	"github.com/jmylchreest/switcherd/internal/utils"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// --- Mock session controller ---

type mockController struct {
	snap  switcher.Snapshot
	err   error
	calls []string
}

func (m *mockController) Snapshot() switcher.Snapshot { return m.snap }

func (m *mockController) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *mockController) Connect(_ context.Context, address string) error {
	return m.record("connect " + address)
}

func (m *mockController) Disconnect(context.Context) error {
	return m.record("disconnect")
}

func (m *mockController) SetProgramInput(_ context.Context, name string) error {
	if err := m.record("program " + name); err != nil {
		return err
	}
	m.snap.State.ProgramInputName = name
	return nil
}

func (m *mockController) SetPreviewInput(_ context.Context, name string) error {
	if err := m.record("preview " + name); err != nil {
		return err
	}
	m.snap.State.PreviewInputName = name
	return nil
}

func (m *mockController) SetTransitionPosition(_ context.Context, position float64) error {
	if err := m.record(fmt.Sprintf("position %.2f", position)); err != nil {
		return err
	}
	m.snap.State.TransitionPosition = position
	return nil
}

func (m *mockController) PerformAutoTransition(_ context.Context, frames uint32) error {
	return m.record(fmt.Sprintf("auto %d", frames))
}

var _ SessionController = (*mockController)(nil)
var _ SessionController = (*control.Runner)(nil)

func connectedController() *mockController {
	return &mockController{snap: switcher.Snapshot{
		Status:       switcher.StatusConnected,
		Address:      "10.0.0.5:9910",
		ProductName:  "Test Switcher",
		ConnectionID: "conn-1",
		ConnectedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		State: switcher.ControlState{
			ProgramInputName: "Cam1",
			PreviewInputName: "Cam2",
			ProgramInputID:   1,
			PreviewInputID:   2,
		},
		Inputs: []switcher.Input{{ID: 1, Name: "Cam1"}, {ID: 2, Name: "Cam2"}},
	}}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %T", err)
	return se.GetStatus()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// === Health Handler Tests ===

func TestHealthCheck(t *testing.T) {
	out, err := HealthCheck(context.Background(), &HealthInput{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Body.Status)
}

func TestVersionCheck(t *testing.T) {
	out, err := VersionCheck("1.2.3", "abc123", "2026-01-01")(context.Background(), &VersionInput{})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", out.Body.Version)
	assert.Equal(t, "abc123", out.Body.Commit)
	assert.Equal(t, "2026-01-01", out.Body.BuildDate)
}

// === Session Handler Tests ===

func TestSessionHandler_GetSession(t *testing.T) {
	handler := &SessionHandler{Control: connectedController()}

	out, err := handler.GetSession(context.Background(), &GetSessionInput{})
	require.NoError(t, err)
	assert.Equal(t, "connected", out.Body.Status)
	assert.Equal(t, "Test Switcher", out.Body.ProductName)
	assert.Equal(t, "conn-1", out.Body.ConnectionID)
	require.NotNil(t, out.Body.ConnectedAt)
	assert.Equal(t, "none", out.Body.LastDisconnect)
	assert.Equal(t, "Cam1", out.Body.State.ProgramInput)
	assert.Equal(t, int64(2), out.Body.State.PreviewInputID)
	assert.Len(t, out.Body.Inputs, 2)
}

func TestSessionHandler_GetSession_Disconnected(t *testing.T) {
	handler := &SessionHandler{Control: &mockController{snap: switcher.Snapshot{
		LastDisconnect: switcher.DisconnectLinkLost,
	}}}

	out, err := handler.GetSession(context.Background(), &GetSessionInput{})
	require.NoError(t, err)
	assert.Equal(t, "disconnected", out.Body.Status)
	assert.Equal(t, "link_lost", out.Body.LastDisconnect)
	assert.Nil(t, out.Body.ConnectedAt)
	assert.NotNil(t, out.Body.Inputs)
	assert.Empty(t, out.Body.Inputs)
}

func TestSessionHandler_Connect(t *testing.T) {
	ctrl := connectedController()
	handler := &SessionHandler{Control: ctrl}

	in := &ConnectInput{}
	in.Body.Address = "10.0.0.5"
	out, err := handler.Connect(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "connected", out.Body.Status)
	assert.Equal(t, []string{"connect 10.0.0.5"}, ctrl.calls)
}

func TestSessionHandler_Disconnect(t *testing.T) {
	ctrl := connectedController()
	handler := &SessionHandler{Control: ctrl}

	_, err := handler.Disconnect(context.Background(), &DisconnectInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"disconnect"}, ctrl.calls)
}

func TestSessionHandler_ListInputs(t *testing.T) {
	handler := &SessionHandler{Control: connectedController()}

	out, err := handler.ListInputs(context.Background(), &ListInputsInput{})
	require.NoError(t, err)
	assert.Equal(t, []InputResponse{{ID: 1, Name: "Cam1"}, {ID: 2, Name: "Cam2"}}, out.Body)
}

func TestSessionHandler_SetProgramAndPreview(t *testing.T) {
	ctrl := connectedController()
	handler := &SessionHandler{Control: ctrl}

	in := &SetInputInput{}
	in.Body.Name = "Cam2"
	out, err := handler.SetProgram(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Cam2", out.Body.State.ProgramInput)

	in.Body.Name = "Cam1"
	out, err = handler.SetPreview(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Cam1", out.Body.State.PreviewInput)

	assert.Equal(t, []string{"program Cam2", "preview Cam1"}, ctrl.calls)
}

func TestSessionHandler_SetTransition(t *testing.T) {
	ctrl := connectedController()
	handler := &SessionHandler{Control: ctrl}

	in := &SetTransitionInput{}
	in.Body.Position = 0.5
	out, err := handler.SetTransition(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Body.State.TransitionPosition, 1e-9)
}

func TestSessionHandler_AutoTransition(t *testing.T) {
	ctrl := connectedController()
	handler := &SessionHandler{Control: ctrl}

	in := &AutoTransitionInput{}
	in.Body.Frames = 30
	_, err := handler.AutoTransition(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"auto 30"}, ctrl.calls)
}

func TestSessionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", apperrors.InvalidInputf("bad address"), http.StatusBadRequest},
		{"invalid state", apperrors.InvalidStatef("already connecting"), http.StatusConflict},
		{"not connected", apperrors.NotConnectedf("auto transition"), http.StatusConflict},
		{"unsupported", apperrors.CapabilityUnsupportedf("mix transition"), http.StatusUnprocessableEntity},
		{"connect failed", apperrors.ConnectionFailedf("connect to x"), http.StatusBadGateway},
		{"link lost", apperrors.LinkLostf("probe"), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"stopped", control.ErrStopped, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &SessionHandler{Control: &mockController{err: tt.err}}
			in := &AutoTransitionInput{}
			_, err := handler.AutoTransition(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, tt.want, statusOf(t, err))
		})
	}
}

// === API Key Handler Tests ===

func TestAPIKeyHandler_ListAPIKeys(t *testing.T) {
	cfg := &config.Config{}
	cfg.API.APIKeys = []config.APIKey{
		{Name: "desk", Key: "secret-desk-key"},
		{Name: "old", Key: "secret-old-key", Disabled: true},
	}
	handler := &APIKeyHandler{Manager: apikey.NewManager(cfg, discardLogger())}

	out, err := handler.ListAPIKeys(context.Background(), &ListAPIKeysInput{})
	require.NoError(t, err)
	require.Len(t, out.Body, 2)
	assert.Equal(t, APIKeyResponse{Name: "desk", Prefix: "secr"}, out.Body[0])
	assert.True(t, out.Body[1].Disabled)
}

// === Logging Handler Tests ===

func TestLoggingHandler_Level(t *testing.T) {
	orig := utils.GetLevel()
	t.Cleanup(func() { utils.SetLevel(orig) })

	handler := &LoggingHandler{Logger: discardLogger()}

	in := &SetLevelInput{}
	in.Body.Level = "debug"
	out, err := handler.SetLevel(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "debug", out.Body.Level)

	got, err := handler.GetLevel(context.Background(), &GetLevelInput{})
	require.NoError(t, err)
	assert.Equal(t, "debug", got.Body.Level)

	in.Body.Level = "verbose"
	_, err = handler.SetLevel(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

// === Discovery Handler Tests ===

func TestDiscoveryHandler_Discover(t *testing.T) {
	var gotTimeout time.Duration
	handler := &DiscoveryHandler{
		Logger:  discardLogger(),
		Timeout: 2 * time.Second,
		Browse: func(_ context.Context, timeout time.Duration, _ *slog.Logger) ([]switcher.Discovered, error) {
			gotTimeout = timeout
			return []switcher.Discovered{{Instance: "Studio", Host: "10.0.0.9", Port: 9910, ProductName: "Sim"}}, nil
		},
	}

	out, err := handler.Discover(context.Background(), &DiscoverInput{})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, gotTimeout)
	require.Len(t, out.Body, 1)
	assert.Equal(t, "10.0.0.9:9910", out.Body[0].Address)
	assert.Equal(t, "Sim", out.Body[0].ProductName)

	_, err = handler.Discover(context.Background(), &DiscoverInput{Timeout: 5})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, gotTimeout)
}
