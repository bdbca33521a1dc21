package switcher

// SessionEvent is the payload of session lifecycle events.
type SessionEvent struct {
	Address      string `json:"address"`
	ProductName  string `json:"product_name,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// PropertyEvent is the payload of control property events.
type PropertyEvent struct {
	Property string   `json:"property"`
	Name     string   `json:"name,omitempty"`
	ID       *InputID `json:"id,omitempty"`
	Position *float64 `json:"position,omitempty"`
}

// TransitionEvent is the payload of auto transition events.
type TransitionEvent struct {
	Frames uint32 `json:"frames"`
}

func (s *Session) sessionEvent() SessionEvent {
	return SessionEvent{
		Address:      s.address,
		ProductName:  s.productName,
		ConnectionID: s.connectionID,
	}
}

func (s *Session) propertyEvent(property string) PropertyEvent {
	ev := PropertyEvent{Property: property}
	switch property {
	case PropertyProgram:
		id := s.state.ProgramInputID
		ev.ID = &id
		ev.Name = s.state.ProgramInputName
	case PropertyPreview:
		id := s.state.PreviewInputID
		ev.ID = &id
		ev.Name = s.state.PreviewInputName
	case PropertyTransitionPosition:
		pos := s.state.TransitionPosition
		ev.Position = &pos
	}
	return ev
}
