package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/actions"
)

var (
	topTeam string
	topN    int

	bestMetric string
	bestTeam   string

	avgTeam    string
	avgN       int
	avgMinApps int
	avgTies    bool
)

var topCmd = &cobra.Command{
	Use:   "top <metric>",
	Short: "Rank players by the season total of a stat column",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("top_players", map[string]any{"metric": args[0], "team": topTeam, "top_n": topN})
	},
}

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Show the single best player for a metric",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return perform("best_player_by_metric", map[string]any{"metric": bestMetric, "team": bestTeam})
	},
}

var avgMinCmd = &cobra.Command{
	Use:   "avgmin",
	Short: "Rank players by average minutes per appearance",
	Long: `Rank players by average minutes per appearance among those with at least
--min-apps appearances. With --ties only the top average is shown, together
with every player tied on it.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if avgTies {
			return perform("best_player_by_avg_minutes", map[string]any{"team": avgTeam, "min_apps": avgMinApps})
		}
		return perform("top_players_by_avg_minutes", map[string]any{"team": avgTeam, "top_n": avgN, "min_apps": avgMinApps})
	},
}

func init() {
	topCmd.Flags().StringVar(&topTeam, "team", "", "restrict to one team")
	topCmd.Flags().IntVar(&topN, "n", actions.DefaultTopN, "rows to show (1-50)")

	bestCmd.Flags().StringVar(&bestMetric, "metric", actions.DefaultMetric, "stat column")
	bestCmd.Flags().StringVar(&bestTeam, "team", "", "restrict to one team")

	avgMinCmd.Flags().StringVar(&avgTeam, "team", "", "restrict to one team")
	avgMinCmd.Flags().IntVar(&avgN, "n", actions.DefaultTopN, "rows to show (1-50)")
	avgMinCmd.Flags().IntVar(&avgMinApps, "min-apps", actions.DefaultMinApps, "minimum appearances")
	avgMinCmd.Flags().BoolVar(&avgTies, "ties", false, "show only the leaders, including ties")

	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(bestCmd)
	rootCmd.AddCommand(avgMinCmd)
}
