package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/actions"
	"github.com/pable/footstats/internal/config"
	"github.com/pable/footstats/internal/dataset"
	"github.com/pable/footstats/internal/report"
)

var (
	dataPath   string
	dbPath     string
	configPath string
	jsonOut    bool

	cfg *config.Config
)

// errReported marks an error whose details were already printed.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "footstats",
	Short: "Football player-per-game statistics tool",
	Long: `Load a CSV of player-per-game football observations and answer questions about
players, teams and games from the command line, an interactive shell, an HTTP
API or a language-model chat.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = ""
	}
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "database.csv", "path to the player-per-game CSV (or $FOOTSTATS_DATA)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", ":memory:", "path to the SQLite mirror used by sql (or $FOOTSTATS_DB)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON results instead of tables")
}

// loadConfig resolves file and env settings, then applies explicit flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("data") {
		c.Data.Path = dataPath
	}
	if flags.Changed("db") {
		c.Data.DB = dbPath
	}
	cfg = c
	setupLogger(os.Stderr)
	return nil
}

func setupLogger(w *os.File) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// app is the data context shared by the data commands.
type app struct {
	src     *dataset.Source
	actions *actions.Dispatcher
}

func openApp() (*app, error) {
	src, err := dataset.Open(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.Data.Path, err)
	}
	return &app{src: src, actions: actions.NewDispatcher(actions.New(src))}, nil
}

// emit prints a dispatcher result. Failures go to stderr in table mode and
// make the command exit non-zero.
func emit(result any) error {
	if jsonOut {
		if err := report.PrintJSON(os.Stdout, result); err != nil {
			return err
		}
		if _, failed := actions.AsFailure(result); failed {
			return errReported
		}
		return nil
	}
	if f, failed := actions.AsFailure(result); failed {
		report.PrintFailure(os.Stderr, f)
		return errReported
	}
	return report.PrintResult(os.Stdout, result)
}

// perform opens the dataset, runs one action and prints the result.
func perform(name string, params map[string]any) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	return emit(a.actions.Perform(name, params))
}
