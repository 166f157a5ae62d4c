package cli

import (
	"github.com/spf13/cobra"
)

func newStatesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the states the analysis service knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, err := g.analyzer().FetchStates(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if g.jsonOutput() {
				return writeJSON(out, map[string][]string{"states": states})
			}
			for _, s := range states {
				writeLine(out, s)
			}
			return nil
		},
	}
}
