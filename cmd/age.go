package cmd

import (
	"github.com/spf13/cobra"
)

var ageMode string

var ageCmd = &cobra.Command{
	Use:   "age <team>",
	Short: "Show a team's average age",
	Long: `Show a team's average age.

  xi     mean over games of the mean age of players who got minutes (default)
  squad  mean of each distinct player's first known age`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("team_average_age", map[string]any{"team": args[0], "mode": ageMode})
	},
}

var rankAgeCmd = &cobra.Command{
	Use:   "rank-age",
	Short: "Rank teams by average age, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return perform("rank_teams_by_age", map[string]any{"mode": ageMode})
	},
}

func init() {
	ageCmd.Flags().StringVar(&ageMode, "mode", "xi", "xi or squad")
	rankAgeCmd.Flags().StringVar(&ageMode, "mode", "xi", "xi or squad")

	rootCmd.AddCommand(ageCmd)
	rootCmd.AddCommand(rankAgeCmd)
}
