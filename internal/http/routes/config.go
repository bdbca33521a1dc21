// Package routes provides shared route registration for the switcherd HTTP API.
// Both the main server and the OpenAPI generator use the same route definitions,
// keeping the OpenAPI document in sync with the implementation.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/switcherd/internal/http/mw"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("switcherd API", version)
	cfg.Info.Description = "REST API for controlling a live video switcher through the switcherd daemon."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	// Add security scheme for API key auth (both Bearer and X-API-Key header)
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "API key authentication. Include your API key as `Authorization: Bearer <key>` or `X-API-Key: <key>`.",
		},
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Session", Description: "Switcher connection and control state"},
		{Name: "Transition", Description: "Timed transitions"},
		{Name: "Discovery", Description: "Switcher discovery on the local network"},
		{Name: "API Keys", Description: "Configured API keys"},
		{Name: "Logging", Description: "Runtime log level"},
	}

	return cfg
}
