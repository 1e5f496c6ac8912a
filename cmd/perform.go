package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/actions"
	"github.com/pable/footstats/internal/report"
)

var performCmd = &cobra.Command{
	Use:   "perform <action> [json-params]",
	Short: "Run any action by name with JSON parameters",
	Long: `Run an action of the shared vocabulary, exactly as the HTTP API and the chat
assistant do. Parameters are a JSON object, e.g.

  footstats perform top_players '{"metric":"xG","top_n":10}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		raw := ""
		if len(args) == 2 {
			raw = args[1]
		}
		return emit(a.actions.PerformJSON(args[0], []byte(raw)))
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the available actions and their parameters",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		specs := actions.NewDispatcher(actions.New(actions.Static{})).Describe()
		if jsonOut {
			return report.PrintJSON(os.Stdout, specs)
		}
		report.PrintActions(os.Stdout, specs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(performCmd)
	rootCmd.AddCommand(actionsCmd)
}
