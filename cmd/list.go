package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/environment"
)

// ListCommand returns the command which lists the agents and
// environments linked into the program
func ListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available agents and environments",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Agents:")
			for _, t := range agent.Registered() {
				fmt.Fprintf(out, "  %v\n", t)
			}

			fmt.Fprintln(out, "Environments:")
			for _, name := range environment.Registered() {
				fmt.Fprintf(out, "  %v\n", name)
			}
		},
	}
}
