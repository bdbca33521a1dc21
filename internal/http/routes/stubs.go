package routes

import (
	"context"

	"github.com/jmylchreest/switcherd/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses. These are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: func(_ context.Context, _ *handlers.HealthInput) (*handlers.HealthOutput, error) {
			return nil, nil
		},
		VersionCheck: func(_ context.Context, _ *handlers.VersionInput) (*handlers.VersionOutput, error) {
			return nil, nil
		},
		Session:   &stubSessionHandlers{},
		Discovery: &stubDiscoveryHandlers{},
		APIKey:    &stubAPIKeyHandlers{},
		Logging:   &stubLoggingHandlers{},
	}
}

// --- Session stubs ---

type stubSessionHandlers struct{}

func (s *stubSessionHandlers) GetSession(_ context.Context, _ *handlers.GetSessionInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) Connect(_ context.Context, _ *handlers.ConnectInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) Disconnect(_ context.Context, _ *handlers.DisconnectInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) ListInputs(_ context.Context, _ *handlers.ListInputsInput) (*handlers.ListInputsOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) SetProgram(_ context.Context, _ *handlers.SetInputInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) SetPreview(_ context.Context, _ *handlers.SetInputInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) SetTransition(_ context.Context, _ *handlers.SetTransitionInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

func (s *stubSessionHandlers) AutoTransition(_ context.Context, _ *handlers.AutoTransitionInput) (*handlers.SessionOutput, error) {
	return nil, nil
}

// --- Discovery stubs ---

type stubDiscoveryHandlers struct{}

func (s *stubDiscoveryHandlers) Discover(_ context.Context, _ *handlers.DiscoverInput) (*handlers.DiscoverOutput, error) {
	return nil, nil
}

// --- API Key stubs ---

type stubAPIKeyHandlers struct{}

func (s *stubAPIKeyHandlers) ListAPIKeys(_ context.Context, _ *handlers.ListAPIKeysInput) (*handlers.ListAPIKeysOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}
