package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/pkg/client"
)

func printSession(s *client.Session, parseable bool) error {
	if parseable {
		fmt.Println(SessionParseable(s))
		return nil
	}
	return pterm.DefaultTable.WithData(SessionTableData(s)).Render()
}

// newStatusCommand creates the status command
func newStatusCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the switcher session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			s, err := c.GetSession(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}
			return printSession(s, parseable)
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newInputsCommand creates the inputs command
func newInputsCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "inputs",
		Short: "List the switcher's inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			inputs, err := c.ListInputs(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list inputs: %w", err)
			}

			if len(inputs) == 0 {
				if parseable {
					return nil
				}
				pterm.Info.Println("No inputs known (is the switcher connected?)")
				return nil
			}

			if parseable {
				for _, in := range inputs {
					fmt.Println(InputParseable(in))
				}
				return nil
			}

			table := pterm.TableData{{"ID", "Name"}}
			for _, in := range inputs {
				table = append(table, []string{strconv.FormatInt(in.ID, 10), in.Name})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newConnectCommand creates the connect command
func newConnectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect [address]",
		Short: "Connect the daemon to a switcher",
		Long:  "Connect the daemon to the switcher at address, or to its configured switcher when no address is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			var address string
			if len(args) > 0 {
				address = args[0]
			}
			s, err := c.Connect(cmd.Context(), address)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			pterm.Success.Printf("Connected to %s (%s)\n", orNA(s.ProductName), s.Address)
			return nil
		},
	}
	return cmd
}

// newDisconnectCommand creates the disconnect command
func newDisconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the daemon from the switcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := c.Disconnect(cmd.Context()); err != nil {
				return fmt.Errorf("failed to disconnect: %w", err)
			}
			pterm.Success.Println("Disconnected")
			return nil
		},
	}
}

// selectInput returns args[0], or prompts with the session's input names.
func selectInput(cmd *cobra.Command, c client.ClientInterface, args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	inputs, err := c.ListInputs(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to list inputs: %w", err)
	}
	if len(inputs) == 0 {
		return "", fmt.Errorf("no inputs known; pass an input name")
	}
	options := make([]string, len(inputs))
	for i, in := range inputs {
		options[i] = in.Name
	}
	selected, err := pterm.DefaultInteractiveSelect.WithOptions(options).Show(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to select input: %w", err)
	}
	return selected, nil
}

// newProgramCommand creates the program command
func newProgramCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "program [input]",
		Short: "Set the program input by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			name, err := selectInput(cmd, c, args, "Select program input")
			if err != nil {
				return err
			}
			if _, err := c.SetProgram(cmd.Context(), name); err != nil {
				return fmt.Errorf("failed to set program input: %w", err)
			}
			pterm.Success.Printf("Program input set to %s\n", name)
			return nil
		},
	}
}

// newPreviewCommand creates the preview command
func newPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [input]",
		Short: "Set the preview input by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			name, err := selectInput(cmd, c, args, "Select preview input")
			if err != nil {
				return err
			}
			if _, err := c.SetPreview(cmd.Context(), name); err != nil {
				return fmt.Errorf("failed to set preview input: %w", err)
			}
			pterm.Success.Printf("Preview input set to %s\n", name)
			return nil
		},
	}
}

// newTransitionCommand creates the transition command
func newTransitionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transition <position>",
		Short: "Move the transition lever (0.0 to 1.0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid transition position: %w", err)
			}
			if position < config.MinTransitionPosition || position > config.MaxTransitionPosition {
				return fmt.Errorf("transition position %v out of range [%v, %v]",
					position, config.MinTransitionPosition, config.MaxTransitionPosition)
			}
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := c.SetTransition(cmd.Context(), position); err != nil {
				return fmt.Errorf("failed to set transition position: %w", err)
			}
			pterm.Success.Printf("Transition position set to %g\n", position)
			return nil
		},
	}
}

// newAutoCommand creates the auto command
func newAutoCommand() *cobra.Command {
	var frames uint32
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Run a timed mix transition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames > config.MaxTransitionFrames {
				return fmt.Errorf("frames must be at most %d", config.MaxTransitionFrames)
			}
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			s, err := c.AutoTransition(cmd.Context(), frames)
			if err != nil {
				return fmt.Errorf("failed to run auto transition: %w", err)
			}
			pterm.Success.Printf("Auto transition started (%d frames), program is %s\n", frames, orNA(s.State.ProgramInput))
			return nil
		},
	}
	cmd.Flags().Uint32VarP(&frames, "frames", "f", 25, "Transition duration in frames")
	return cmd
}
