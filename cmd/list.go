package cmd

import (
	"github.com/spf13/cobra"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List all teams in the dataset",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return perform("list_teams", nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players <team>",
	Short: "List the players of a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("list_players", map[string]any{"team": args[0]})
	},
}

func init() {
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(playersCmd)
}
