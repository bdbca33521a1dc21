package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/pkg/client"
	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// browseLocal runs the mDNS browse in this process instead of the daemon.
// Tests replace it.
var browseLocal = switcher.Discover

// newDiscoverCommand creates the discover command
func newDiscoverCommand() *cobra.Command {
	var parseable, local bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Browse the network for switchers",
		Long: "Browse for switcher gateways over mDNS. By default the daemon browses; " +
			"with --local the browse runs from this machine and needs no daemon.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var found []client.Discovered
			if local {
				results, err := browseLocal(cmd.Context(), timeout, getLoggerFromCmd(cmd))
				if err != nil {
					return fmt.Errorf("failed to discover switchers: %w", err)
				}
				for _, d := range results {
					found = append(found, client.Discovered{
						Instance:    d.Instance,
						Address:     d.Address(),
						ProductName: d.ProductName,
					})
				}
			} else {
				c, err := clientFromCmd(cmd)
				if err != nil {
					return err
				}
				found, err = c.Discover(cmd.Context(), timeout)
				if err != nil {
					return fmt.Errorf("failed to discover switchers: %w", err)
				}
			}

			if len(found) == 0 {
				if !parseable {
					pterm.Info.Println("No switchers found")
				}
				return nil
			}

			if parseable {
				for _, d := range found {
					fmt.Printf("instance=%q address=%q product=%q\n", d.Instance, d.Address, d.ProductName)
				}
				return nil
			}

			table := pterm.TableData{{"Instance", "Address", "Product"}}
			for _, d := range found {
				table = append(table, []string{d.Instance, d.Address, orNA(d.ProductName)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	cmd.Flags().BoolVar(&local, "local", false, "Browse from this machine instead of the daemon")
	cmd.Flags().DurationVar(&timeout, "timeout", config.DefaultDiscoveryTimeout, "How long to browse")
	return cmd
}
