package handlers

import (
	"context"

	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// SessionController is the goroutine-safe control surface of the session.
// *control.Runner implements it.
type SessionController interface {
	Snapshot() switcher.Snapshot
	Connect(ctx context.Context, address string) error
	Disconnect(ctx context.Context) error
	SetProgramInput(ctx context.Context, name string) error
	SetPreviewInput(ctx context.Context, name string) error
	SetTransitionPosition(ctx context.Context, position float64) error
	PerformAutoTransition(ctx context.Context, frames uint32) error
}

// --- Get Session ---

// GetSessionInput is the input for reading the session.
type GetSessionInput struct{}

// SessionOutput is the output of every session operation: the session as it
// stands after the operation.
type SessionOutput struct {
	Body SessionResponse
}

// --- Connect ---

// ConnectInput is the input for connecting to a switcher.
type ConnectInput struct {
	Body struct {
		Address string `json:"address,omitempty" doc:"Switcher address (host or host:port); the configured address when omitted"`
	}
}

// --- Disconnect ---

// DisconnectInput is the input for disconnecting.
type DisconnectInput struct{}

// --- Inputs ---

// ListInputsInput is the input for listing the input catalog.
type ListInputsInput struct{}

// ListInputsOutput is the input catalog.
type ListInputsOutput struct {
	Body []InputResponse
}

// --- Program / Preview ---

// SetInputInput selects an input by display name.
type SetInputInput struct {
	Body struct {
		Name string `json:"name" doc:"Input display name" minLength:"1"`
	}
}

// --- Transition ---

// SetTransitionInput moves the transition lever.
type SetTransitionInput struct {
	Body struct {
		Position float64 `json:"position" doc:"Transition position" minimum:"0" maximum:"1"`
	}
}

// AutoTransitionInput starts a timed mix transition.
type AutoTransitionInput struct {
	Body struct {
		Frames uint32 `json:"frames" doc:"Transition duration in frames" maximum:"250"`
	}
}

// SessionHandler implements session HTTP handlers.
type SessionHandler struct {
	Control SessionController
}

func (h *SessionHandler) output() *SessionOutput {
	return &SessionOutput{Body: SessionFromSnapshot(h.Control.Snapshot())}
}

// GetSession returns the session snapshot.
func (h *SessionHandler) GetSession(_ context.Context, _ *GetSessionInput) (*SessionOutput, error) {
	return h.output(), nil
}

// Connect connects to a switcher and waits for the handshake.
func (h *SessionHandler) Connect(ctx context.Context, input *ConnectInput) (*SessionOutput, error) {
	if err := h.Control.Connect(ctx, input.Body.Address); err != nil {
		return nil, toHTTPError(err)
	}
	return h.output(), nil
}

// Disconnect disconnects the session.
func (h *SessionHandler) Disconnect(ctx context.Context, _ *DisconnectInput) (*SessionOutput, error) {
	if err := h.Control.Disconnect(ctx); err != nil {
		return nil, toHTTPError(err)
	}
	return h.output(), nil
}

// ListInputs returns the input catalog.
func (h *SessionHandler) ListInputs(_ context.Context, _ *ListInputsInput) (*ListInputsOutput, error) {
	return &ListInputsOutput{Body: InputsFromCatalog(h.Control.Snapshot().Inputs)}, nil
}

// SetProgram selects the program input by name.
func (h *SessionHandler) SetProgram(ctx context.Context, input *SetInputInput) (*SessionOutput, error) {
	if err := h.Control.SetProgramInput(ctx, input.Body.Name); err != nil {
		return nil, toHTTPError(err)
	}
	return h.output(), nil
}

// SetPreview selects the preview input by name.
func (h *SessionHandler) SetPreview(ctx context.Context, input *SetInputInput) (*SessionOutput, error) {
	if err := h.Control.SetPreviewInput(ctx, input.Body.Name); err != nil {
		return nil, toHTTPError(err)
	}
	return h.output(), nil
}

// SetTransition moves the transition lever.
func (h *SessionHandler) SetTransition(ctx context.Context, input *SetTransitionInput) (*SessionOutput, error) {
	if err := h.Control.SetTransitionPosition(ctx, input.Body.Position); err != nil {
		return nil, toHTTPError(err)
	}
	return h.output(), nil
}

// AutoTransition runs a timed mix transition.
func (h *SessionHandler) AutoTransition(ctx context.Context, input *AutoTransitionInput) (*SessionOutput, error) {
	if err := h.Control.PerformAutoTransition(ctx, input.Body.Frames); err != nil {
		return nil, toHTTPError(err)
	}
	return h.output(), nil
}

// Ensure SessionHandler implements the interface at compile time.
var _ SessionHandlers = (*SessionHandler)(nil)

// SessionHandlers defines the interface for session operations.
type SessionHandlers interface {
	GetSession(ctx context.Context, input *GetSessionInput) (*SessionOutput, error)
	Connect(ctx context.Context, input *ConnectInput) (*SessionOutput, error)
	Disconnect(ctx context.Context, input *DisconnectInput) (*SessionOutput, error)
	ListInputs(ctx context.Context, input *ListInputsInput) (*ListInputsOutput, error)
	SetProgram(ctx context.Context, input *SetInputInput) (*SessionOutput, error)
	SetPreview(ctx context.Context, input *SetInputInput) (*SessionOutput, error)
	SetTransition(ctx context.Context, input *SetTransitionInput) (*SessionOutput, error)
	AutoTransition(ctx context.Context, input *AutoTransitionInput) (*SessionOutput, error)
}
