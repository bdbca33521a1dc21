// Package handlers provides typed Huma request/response structs and handler
// implementations for the switcherd HTTP API.
package handlers

import (
	"time"

	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// --- Session types ---

// InputResponse is the API representation of a catalog entry.
type InputResponse struct {
	ID   int64  `json:"id" doc:"Device input identifier"`
	Name string `json:"name" doc:"Display name"`
}

// ControlStateResponse is the API representation of the mirrored control state.
type ControlStateResponse struct {
	ProgramInput       string  `json:"program_input" doc:"Program input display name"`
	PreviewInput       string  `json:"preview_input" doc:"Preview input display name"`
	ProgramInputID     int64   `json:"program_input_id" doc:"Program input id as last reported by the device"`
	PreviewInputID     int64   `json:"preview_input_id" doc:"Preview input id as last reported by the device"`
	TransitionPosition float64 `json:"transition_position" doc:"Transition lever position"`
}

// SessionResponse is the API representation of the switcher session.
type SessionResponse struct {
	Status         string               `json:"status" enum:"disconnected,connecting,connected" doc:"Session lifecycle state"`
	Address        string               `json:"address,omitempty" doc:"Switcher address of the current or last connection"`
	ProductName    string               `json:"product_name,omitempty" doc:"Switcher product name"`
	ConnectionID   string               `json:"connection_id,omitempty" doc:"Identifier of the current connection"`
	ConnectedAt    *time.Time           `json:"connected_at,omitempty" doc:"When the current connection was established"`
	LastDisconnect string               `json:"last_disconnect" enum:"none,requested,link_lost" doc:"Why the session last left connected"`
	State          ControlStateResponse `json:"state"`
	Inputs         []InputResponse      `json:"inputs" doc:"Input catalog; empty unless connected"`
}

// SessionFromSnapshot converts a switcher.Snapshot to a SessionResponse.
func SessionFromSnapshot(s switcher.Snapshot) SessionResponse {
	resp := SessionResponse{
		Status:         s.Status.String(),
		Address:        s.Address,
		ProductName:    s.ProductName,
		ConnectionID:   s.ConnectionID,
		LastDisconnect: s.LastDisconnect.String(),
		State: ControlStateResponse{
			ProgramInput:       s.State.ProgramInputName,
			PreviewInput:       s.State.PreviewInputName,
			ProgramInputID:     int64(s.State.ProgramInputID),
			PreviewInputID:     int64(s.State.PreviewInputID),
			TransitionPosition: s.State.TransitionPosition,
		},
		Inputs: InputsFromCatalog(s.Inputs),
	}
	if s.Connected() && !s.ConnectedAt.IsZero() {
		at := s.ConnectedAt
		resp.ConnectedAt = &at
	}
	return resp
}

// InputsFromCatalog converts catalog entries, never returning nil.
func InputsFromCatalog(inputs []switcher.Input) []InputResponse {
	out := make([]InputResponse, len(inputs))
	for i, in := range inputs {
		out[i] = InputResponse{ID: int64(in.ID), Name: in.Name}
	}
	return out
}

// --- Discovery types ---

// DiscoveredResponse is a switcher found by zeroconf browsing.
type DiscoveredResponse struct {
	Instance    string `json:"instance" doc:"mDNS instance name"`
	Address     string `json:"address" doc:"host:port to connect to"`
	ProductName string `json:"product_name,omitempty" doc:"Product name from the TXT record"`
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}
