package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewAPIKeyCommand creates the api-key command group. Keys are managed in the
// daemon's configuration file; the CLI can only list them.
func NewAPIKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "api-key",
		Short:   "Inspect API keys configured in switcherd",
		Aliases: []string{"api"},
	}
	cmd.AddCommand(newAPIKeyListCommand())
	return cmd
}

func newAPIKeyListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			keys, err := c.ListAPIKeys(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list API keys: %w", err)
			}

			if len(keys) == 0 {
				if !parseable {
					pterm.Info.Println("No API keys configured; the API is open.")
				}
				return nil
			}

			if parseable {
				for _, k := range keys {
					fmt.Printf("name=%q prefix=%q enabled=%t\n", k.Name, k.Prefix, !k.Disabled)
				}
				return nil
			}

			table := pterm.TableData{{"Name", "Key (Prefix)", "Enabled"}}
			for _, k := range keys {
				table = append(table, []string{k.Name, k.Prefix + "...", fmt.Sprintf("%t", !k.Disabled)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format")
	return cmd
}
