package commands

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/switcherd/pkg/client"
)

// newWatchCommand creates the watch command
func newWatchCommand() *cobra.Command {
	var types []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream session events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return c.Watch(ctx, types, func(ev client.Event) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&types, "types", "t", nil, "Event types to receive (default all)")
	return cmd
}

// formatEvent renders an event as a single line: time, type and payload.
func formatEvent(ev client.Event) string {
	data := strings.TrimSpace(string(ev.Data))
	if data == "" {
		data = "null"
	}
	return fmt.Sprintf("%s %s %s", ev.Timestamp.Local().Format(time.TimeOnly), ev.Type, data)
}
