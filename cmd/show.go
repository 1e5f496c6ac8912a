package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	gameRows     bool
	gameSnapshot bool
	gameSort     string
	gameAsc      bool

	kpiGame string

	seasonSort string
	seasonAsc  bool
)

var gamesCmd = &cobra.Command{
	Use:   "games <team>",
	Short: "List a team's games with their keys",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("team_games", map[string]any{"team": args[0]})
	},
}

var gameCmd = &cobra.Command{
	Use:   "game <team> <game-key>",
	Short: "Show the digest of one game",
	Long: `Show match minutes, team goals and assists, and the average age of the
players who got minutes in one game. Game keys come from 'footstats games'.`,
	Args: cobra.ExactArgs(2),
	RunE: runGame,
}

var kpisCmd = &cobra.Command{
	Use:   "kpis <team>",
	Short: "Show a team's KPI row for the season or one game",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		params := map[string]any{"team": args[0], "aggregate": kpiGame == ""}
		if kpiGame != "" {
			params["game_key"] = kpiGame
		}
		return perform("team_kpis", params)
	},
}

var seasonCmd = &cobra.Command{
	Use:   "season <team>",
	Short: "Show per-player season totals of a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("team_season_table", map[string]any{"team": args[0], "sort_by": seasonSort, "ascending": seasonAsc})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <team>",
	Short: "Show a team's age profile and creation totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return perform("team_profile", map[string]any{"team": args[0]})
	},
}

func runGame(_ *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	params := map[string]any{"team": args[0], "game_key": args[1]}
	if err := emit(a.actions.Perform("team_game_summary", params)); err != nil {
		return err
	}
	if gameSnapshot {
		fmt.Fprintln(os.Stdout)
		if err := emit(a.actions.Perform("game_snapshot", params)); err != nil {
			return err
		}
	}
	if gameRows {
		fmt.Fprintln(os.Stdout)
		params["sort_by"] = gameSort
		params["ascending"] = gameAsc
		return emit(a.actions.Perform("game_rows", params))
	}
	return nil
}

func init() {
	gameCmd.Flags().BoolVar(&gameRows, "rows", false, "also print the game's player rows")
	gameCmd.Flags().BoolVar(&gameSnapshot, "snapshot", false, "also print ages and creation totals")
	gameCmd.Flags().StringVar(&gameSort, "sort", "Minutes", "numeric column to sort rows by")
	gameCmd.Flags().BoolVar(&gameAsc, "asc", false, "sort rows ascending")

	kpisCmd.Flags().StringVar(&kpiGame, "game", "", "game key; omit for the season aggregate")

	seasonCmd.Flags().StringVar(&seasonSort, "sort", "", "numeric column to sort by")
	seasonCmd.Flags().BoolVar(&seasonAsc, "asc", false, "sort ascending")

	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(kpisCmd)
	rootCmd.AddCommand(seasonCmd)
	rootCmd.AddCommand(profileCmd)
}
