// Package apikey validates API keys against the keys configured for the daemon.
package apikey

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/switcherd/internal/config"
)

// KeyInfo is the listable view of a key; the secret is never exposed.
type KeyInfo struct {
	Name     string `json:"name"`
	Prefix   string `json:"prefix"`
	Disabled bool   `json:"disabled"`
}

// Manager validates keys from the loaded configuration. Keys are read-only at
// runtime; edit the config file and restart to change them.
type Manager struct {
	cfg *config.Config
	log *slog.Logger
}

// NewManager creates a Manager over cfg's API keys.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg: cfg,
		log: logger,
	}
	logger.Info("Loaded API keys from config", "count", len(cfg.API.APIKeys))
	return m
}

// Enabled reports whether any key is configured. Without keys the API is open.
func (m *Manager) Enabled() bool {
	return len(m.cfg.API.APIKeys) > 0
}

// ValidateAPIKey checks that key exists and is not disabled.
func (m *Manager) ValidateAPIKey(key string) (config.APIKey, error) {
	apiKey, found := m.cfg.FindAPIKey(key)
	if !found {
		return config.APIKey{}, fmt.Errorf("API key not found")
	}
	if apiKey.Disabled {
		return config.APIKey{}, fmt.Errorf("API key is disabled")
	}
	return apiKey, nil
}

// ListAPIKeys returns every configured key without its secret.
func (m *Manager) ListAPIKeys() []KeyInfo {
	out := make([]KeyInfo, 0, len(m.cfg.API.APIKeys))
	for _, k := range m.cfg.API.APIKeys {
		out = append(out, KeyInfo{Name: k.Name, Prefix: KeyPrefix(k.Key), Disabled: k.Disabled})
	}
	return out
}

// KeyPrefix returns the first 4 characters of a key for safe logging.
func KeyPrefix(key string) string {
	if len(key) >= 4 {
		return key[:4]
	}
	return key
}
