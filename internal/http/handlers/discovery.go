package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// DiscoverFunc browses for switchers; switcher.Discover in production.
type DiscoverFunc func(ctx context.Context, timeout time.Duration, logger *slog.Logger) ([]switcher.Discovered, error)

// DiscoverInput is the input for browsing the network for switchers.
type DiscoverInput struct {
	Timeout int `query:"timeout" minimum:"0" maximum:"30" doc:"Browse time in seconds; the configured timeout when 0"`
}

// DiscoverOutput lists the switchers found.
type DiscoverOutput struct {
	Body []DiscoveredResponse
}

// DiscoveryHandler implements the discovery HTTP handler.
type DiscoveryHandler struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Browse  DiscoverFunc
}

// Discover browses for switchers advertising the gateway service.
func (h *DiscoveryHandler) Discover(ctx context.Context, input *DiscoverInput) (*DiscoverOutput, error) {
	timeout := h.Timeout
	if input.Timeout > 0 {
		timeout = time.Duration(input.Timeout) * time.Second
	}
	browse := h.Browse
	if browse == nil {
		browse = switcher.Discover
	}
	found, err := browse(ctx, timeout, h.Logger)
	if err != nil {
		return nil, toHTTPError(err)
	}
	out := &DiscoverOutput{Body: make([]DiscoveredResponse, len(found))}
	for i, d := range found {
		out.Body[i] = DiscoveredResponse{Instance: d.Instance, Address: d.Address(), ProductName: d.ProductName}
	}
	return out, nil
}

// Ensure DiscoveryHandler implements the interface at compile time.
var _ DiscoveryHandlers = (*DiscoveryHandler)(nil)

// DiscoveryHandlers defines the interface for discovery operations.
type DiscoveryHandlers interface {
	Discover(ctx context.Context, input *DiscoverInput) (*DiscoverOutput, error)
}
