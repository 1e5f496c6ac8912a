package cmd

import (
	"github.com/spf13/cobra"
)

var compareMetrics []string

var playerCmd = &cobra.Command{
	Use:   "player <team> <player>",
	Short: "Show a player's season summary",
	Long: `Show appearances, minutes, average minutes per appearance, summed stats and
per-90 rates for one player of one team.

An appearance is a game in which the player logged more than zero minutes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("player_summary", map[string]any{"team": args[0], "player": args[1]})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <teamA> <playerA> <teamB> <playerB>",
	Short: "Compare two players side by side",
	Long: `Compare two players on a list of metrics. Metric names are stat columns
(Goals, xG, ...) or the aliases "minutes" and "avg minutes".`,
	Args: cobra.ExactArgs(4),
	RunE: func(_ *cobra.Command, args []string) error {
		params := map[string]any{
			"team_a": args[0], "player_a": args[1],
			"team_b": args[2], "player_b": args[3],
		}
		if len(compareMetrics) > 0 {
			params["metrics"] = compareMetrics
		}
		return perform("compare_players", params)
	},
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareMetrics, "metrics", nil, "comma-separated metrics (default Goals,Assists,Minutes,avg_minutes)")

	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(compareCmd)
}
