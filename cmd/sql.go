package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/report"
	"github.com/pable/footstats/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the dataset",
	Long: `Import the dataset into SQLite and run an arbitrary SQL query, printing the
results as a table.

Schema overview:
  observations(_row INTEGER, "Team", "Player", "Minutes", ...)  one column per CSV
    column; numeric columns are REAL, the rest TEXT, undefined cells NULL
  dataset_columns(position, name, sql_name, numeric)
  datasets(id, source, row_count, column_count, imported_at)

Quote column names that are not plain identifiers: SELECT "xG/90" FROM observations`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func init() {
	rootCmd.AddCommand(sqlCmd)
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	a, err := openApp()
	if err != nil {
		return err
	}
	db, err := storage.Open(cfg.Data.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := db.ImportTable(a.src.Table(), a.src.Path()); err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if jsonOut {
		recs := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			rec := make(map[string]string, len(cols))
			for i, c := range cols {
				rec[c] = row[i]
			}
			recs = append(recs, rec)
		}
		return report.PrintJSON(os.Stdout, recs)
	}
	report.PrintSQL(os.Stdout, cols, rows)
	return nil
}
