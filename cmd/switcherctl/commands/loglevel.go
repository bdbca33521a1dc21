package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewLogLevelCommand creates the log-level command, which reads or changes
// the daemon's log level at runtime.
func NewLogLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "log-level [debug|info|warn|error]",
		Short:     "Show or set the daemon's log level",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"debug", "info", "warn", "error"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				level, err := c.GetLogLevel(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get log level: %w", err)
				}
				fmt.Println(level)
				return nil
			}
			level, err := c.SetLogLevel(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to set log level: %w", err)
			}
			pterm.Success.Printf("Daemon log level set to %s\n", level)
			return nil
		},
	}
}
