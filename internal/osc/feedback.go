package osc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/jmylchreest/switcherd/internal/events"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// Feedback sends session changes to an OSC target so control surfaces can
// light their buttons.
type Feedback struct {
	logger *slog.Logger
	client *goosc.Client
	unsub  func()
}

// NewFeedback subscribes to bus and forwards session changes to address
// (host:port).
func NewFeedback(logger *slog.Logger, bus *events.Bus, address string) (*Feedback, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("osc: feedback address %q: %w", address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("osc: feedback address %q: invalid port", address)
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &Feedback{
		logger: logger,
		client: goosc.NewClient(host, port),
	}
	f.unsub = bus.Subscribe(f.onEvent)
	logger.Info("osc: feedback enabled", "target", address)
	return f, nil
}

// Close stops forwarding events.
func (f *Feedback) Close() {
	f.unsub()
}

func (f *Feedback) onEvent(e events.Event) {
	msg := feedbackMessage(e)
	if msg == nil {
		return
	}
	if err := f.client.Send(msg); err != nil {
		f.logger.Warn("osc: feedback send failed", "address", msg.Address, "error", err)
	}
}

// feedbackMessage maps a session event to its OSC feedback message, or nil
// for events that have none.
func feedbackMessage(e events.Event) *goosc.Message {
	switch e.Type {
	case events.SessionConnected:
		return goosc.NewMessage(AddrConnected, int32(1))
	case events.SessionDisconnected, events.SessionLinkLost:
		return goosc.NewMessage(AddrConnected, int32(0))
	case events.ProgramChanged, events.PreviewChanged, events.TransitionPositionChanged:
	default:
		return nil
	}

	var pe switcher.PropertyEvent
	if err := json.Unmarshal(e.Data, &pe); err != nil {
		return nil
	}
	switch e.Type {
	case events.ProgramChanged:
		return goosc.NewMessage(AddrProgram, pe.Name)
	case events.PreviewChanged:
		return goosc.NewMessage(AddrPreview, pe.Name)
	default:
		if pe.Position == nil {
			return nil
		}
		return goosc.NewMessage(AddrTransition, float32(*pe.Position))
	}
}
