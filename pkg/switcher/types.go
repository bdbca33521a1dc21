// Package switcher keeps a control session with a video-production switcher:
// it connects, enumerates the switcher's named inputs and mirrors program,
// preview and transition position in both directions.
package switcher

import (
	"time"
)

// InputID is the device-assigned identifier of a video source. It is stable
// for one connection only.
type InputID int64

// Input is a named video source known to the switcher.
type Input struct {
	ID   InputID `json:"id"`
	Name string  `json:"name"`
}

// Status is the session lifecycle state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// DisconnectReason records why the session last left Connected.
type DisconnectReason int

const (
	// DisconnectNone means the session has not been torn down since it last connected.
	DisconnectNone DisconnectReason = iota
	// DisconnectRequested is a caller-requested teardown.
	DisconnectRequested
	// DisconnectLinkLost is a teardown triggered by a failed device call.
	DisconnectLinkLost
)

func (r DisconnectReason) String() string {
	switch r {
	case DisconnectRequested:
		return "requested"
	case DisconnectLinkLost:
		return "link_lost"
	default:
		return "none"
	}
}

// ControlState is the set of mirrored control properties.
type ControlState struct {
	ProgramInputName   string  `json:"program_input_name"`
	PreviewInputName   string  `json:"preview_input_name"`
	TransitionPosition float64 `json:"transition_position"`
	// ProgramInputID and PreviewInputID are the last values reported by the device.
	ProgramInputID InputID `json:"program_input_id"`
	PreviewInputID InputID `json:"preview_input_id"`
}

// Snapshot is a consistent read-only view of a session.
type Snapshot struct {
	Status         Status
	Address        string
	ProductName    string
	ConnectionID   string
	ConnectedAt    time.Time
	LastDisconnect DisconnectReason
	State          ControlState
	Inputs         []Input
}

// Connected reports whether the snapshot was taken while connected.
func (s Snapshot) Connected() bool {
	return s.Status == StatusConnected
}

// Property names used for logging, metrics and events.
const (
	PropertyProgram            = "program"
	PropertyPreview            = "preview"
	PropertyTransitionPosition = "transition_position"
	PropertyTransitionRate     = "transition_rate"
	PropertyAutoTransition     = "auto_transition"
)
