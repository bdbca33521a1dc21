package handlers

import (
	"context"

	"github.com/jmylchreest/switcherd/internal/apikey"
)

// APIKeyResponse is the API representation of a configured key. The secret
// itself is never returned.
type APIKeyResponse struct {
	Name     string `json:"name" doc:"Display name"`
	Prefix   string `json:"prefix" doc:"First characters of the key"`
	Disabled bool   `json:"disabled" doc:"Whether the key is disabled"`
}

// --- List API Keys ---

// ListAPIKeysInput is the input for listing all API keys.
type ListAPIKeysInput struct{}

// ListAPIKeysOutput is the output for listing all API keys.
type ListAPIKeysOutput struct {
	Body []APIKeyResponse
}

// APIKeyHandler implements API key HTTP handlers.
type APIKeyHandler struct {
	Manager *apikey.Manager
}

// ListAPIKeys returns the configured keys.
func (h *APIKeyHandler) ListAPIKeys(_ context.Context, _ *ListAPIKeysInput) (*ListAPIKeysOutput, error) {
	keys := h.Manager.ListAPIKeys()
	out := &ListAPIKeysOutput{Body: make([]APIKeyResponse, len(keys))}
	for i, k := range keys {
		out.Body[i] = APIKeyResponse{Name: k.Name, Prefix: k.Prefix, Disabled: k.Disabled}
	}
	return out, nil
}

// Ensure APIKeyHandler implements the interface at compile time.
var _ APIKeyHandlers = (*APIKeyHandler)(nil)

// APIKeyHandlers defines the interface for API key operations.
type APIKeyHandlers interface {
	ListAPIKeys(ctx context.Context, input *ListAPIKeysInput) (*ListAPIKeysOutput, error)
}
