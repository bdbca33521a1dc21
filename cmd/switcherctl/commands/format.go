package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/jmylchreest/switcherd/pkg/client"
)

// SessionTableData returns the table data for a session, with bold status
func SessionTableData(s *client.Session) pterm.TableData {
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("Status"), pterm.Bold.Sprint(s.Status)},
		[]string{"Address", orNA(s.Address)},
		[]string{"Product", orNA(s.ProductName)},
		[]string{"Connected", formatConnectedAt(s.ConnectedAt)},
		[]string{"Last Disconnect", s.LastDisconnect},
		[]string{"Program", formatInput(s.State.ProgramInput, s.State.ProgramInputID)},
		[]string{"Preview", formatInput(s.State.PreviewInput, s.State.PreviewInputID)},
		[]string{"Transition", fmt.Sprintf("%.3f", s.State.TransitionPosition)},
		[]string{"Inputs", fmt.Sprintf("%d", len(s.Inputs))},
	}
}

// SessionParseable returns the parseable key=value string for a session
func SessionParseable(s *client.Session) string {
	connectedAt := "0"
	if s.ConnectedAt != nil {
		connectedAt = fmt.Sprintf("%d", s.ConnectedAt.Unix())
	}
	return fmt.Sprintf(
		"status=%q address=%q product=%q connected_at=%s last_disconnect=%q program=%q program_id=%d preview=%q preview_id=%d transition=%g",
		s.Status,
		s.Address,
		s.ProductName,
		connectedAt,
		s.LastDisconnect,
		s.State.ProgramInput,
		s.State.ProgramInputID,
		s.State.PreviewInput,
		s.State.PreviewInputID,
		s.State.TransitionPosition,
	)
}

// InputParseable returns the parseable string for an input
func InputParseable(in client.Input) string {
	return fmt.Sprintf("id=%d name=%q", in.ID, in.Name)
}

func formatInput(name string, id int64) string {
	if name == "" {
		return "N/A"
	}
	if id == 0 {
		return name
	}
	return fmt.Sprintf("%s (%d)", name, id)
}

func formatConnectedAt(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC1123Z)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
