package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/internal/utils"
	"github.com/jmylchreest/switcherd/pkg/client"
)

// NewRootCommand creates the root command
func NewRootCommand(logger *slog.Logger, cfg config.ClientConfig, version, commit, buildDate string) *cobra.Command {
	var apiURL, apiKey, logLevel string

	cmd := &cobra.Command{
		Use:           "switcherctl",
		Short:         "Control a video switcher through switcherd",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("log-level") {
				if utils.ValidateLogLevel(logLevel) != logLevel {
					return fmt.Errorf("invalid log level %q", logLevel)
				}
				utils.SetLevel(utils.GetLogLevel(logLevel))
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if logger != nil {
				ctx = context.WithValue(ctx, loggerContextKey{}, logger)
			}
			if _, ok := ctx.Value(ClientContextKey).(client.ClientInterface); !ok {
				ctx = context.WithValue(ctx, ClientContextKey, client.NewHTTP(logger, apiURL, apiKey))
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	apiURLDefault := cfg.APIURL
	if apiURLDefault == "" {
		apiURLDefault = config.DefaultClientAPIURL
	}

	// Add global flags
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", apiURLDefault, "switcherd API base URL")
	cmd.PersistentFlags().StringVar(&apiKey, "api-key", cfg.APIKey, "API key for switcherd")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")

	// Add commands
	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newInputsCommand())
	cmd.AddCommand(newConnectCommand())
	cmd.AddCommand(newDisconnectCommand())
	cmd.AddCommand(newProgramCommand())
	cmd.AddCommand(newPreviewCommand())
	cmd.AddCommand(newTransitionCommand())
	cmd.AddCommand(newAutoCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newDiscoverCommand())
	cmd.AddCommand(newSimulateCommand())
	cmd.AddCommand(NewAPIKeyCommand())
	cmd.AddCommand(NewLogLevelCommand())

	return cmd
}

// clientFromCmd returns the client installed by the root command.
func clientFromCmd(cmd *cobra.Command) (client.ClientInterface, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(ClientContextKey).(client.ClientInterface); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("client not found in context")
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Client:\n")
			fmt.Printf("  Version:    %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)

			// Try to query the daemon for its version
			c, err := clientFromCmd(cmd)
			if err != nil {
				return
			}
			v, err := c.GetVersion(cmd.Context())
			if err != nil {
				fmt.Printf("\nDaemon: not reachable\n")
				return
			}
			fmt.Printf("\nDaemon:\n")
			fmt.Printf("  Version:    %s\n", v.Version)
			fmt.Printf("  Commit:     %s\n", v.Commit)
			fmt.Printf("  Build Date: %s\n", v.BuildDate)
		},
	}
}
