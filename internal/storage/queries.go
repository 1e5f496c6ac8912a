package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pable/footstats/internal/model"
)

// ObservationsTable is the SQL table holding the imported rows.
const ObservationsTable = "observations"

// RowColumn holds the row ordinal of each observation.
const RowColumn = "_row"

// Import is one recorded dataset import.
type Import struct {
	ID          int64
	Source      string
	RowCount    int
	ColumnCount int
	ImportedAt  string
}

// Column maps a dataset column to its SQL column.
type Column struct {
	Position int
	Name     string
	SQLName  string
	Numeric  bool
}

// ImportTable replaces the observations table with the rows of t and
// records the import. Numeric columns are stored as REAL, the rest as
// TEXT; undefined cells are NULL.
func (db *DB) ImportTable(t *model.Table, source string) error {
	cols := sqlColumns(t)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + ObservationsTable); err != nil {
		return fmt.Errorf("drop observations: %w", err)
	}
	defs := []string{quoteIdent(RowColumn) + " INTEGER PRIMARY KEY"}
	for _, c := range cols {
		typ := "TEXT"
		if c.Numeric {
			typ = "REAL"
		}
		defs = append(defs, quoteIdent(c.SQLName)+" "+typ)
	}
	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", ObservationsTable, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create observations: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM dataset_columns`); err != nil {
		return err
	}
	for _, c := range cols {
		if _, err := tx.Exec(`INSERT INTO dataset_columns(position, name, sql_name, numeric) VALUES (?, ?, ?, ?)`,
			c.Position, c.Name, c.SQLName, boolInt(c.Numeric)); err != nil {
			return fmt.Errorf("insert column %s: %w", c.Name, err)
		}
	}

	names := []string{quoteIdent(RowColumn)}
	for _, c := range cols {
		names = append(names, quoteIdent(c.SQLName))
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s(%s) VALUES (%s)",
		ObservationsTable, strings.Join(names, ", "), placeholders(len(names))))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		vals := make([]any, 0, len(names))
		vals = append(vals, r.Index)
		for _, c := range cols {
			vals = append(vals, cellValue(r.Get(c.Name), c.Numeric))
		}
		if _, err := stmt.Exec(vals...); err != nil {
			return fmt.Errorf("insert row %d: %w", r.Index, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO datasets(source, row_count, column_count, imported_at)
		VALUES (?, ?, ?, ?)`,
		source, t.Len(), len(cols), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return tx.Commit()
}

// Imports returns recorded imports, newest first.
func (db *DB) Imports() ([]Import, error) {
	rows, err := db.conn.Query(`
		SELECT id, source, row_count, column_count, imported_at
		FROM datasets ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var im Import
		if err := rows.Scan(&im.ID, &im.Source, &im.RowCount, &im.ColumnCount, &im.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

// Columns returns the column mapping of the current import.
func (db *DB) Columns() ([]Column, error) {
	rows, err := db.conn.Query(`SELECT position, name, sql_name, numeric FROM dataset_columns ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var c Column
		var numeric int
		if err := rows.Scan(&c.Position, &c.Name, &c.SQLName, &numeric); err != nil {
			return nil, err
		}
		c.Numeric = numeric != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns the column names and every
// row as text. NULL renders as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			rec[i] = formatValue(v)
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}

// sqlColumns assigns SQL names. SQLite identifiers are case-insensitive,
// so names colliding with an earlier column (or the row column) get a
// numeric suffix.
func sqlColumns(t *model.Table) []Column {
	used := map[string]bool{strings.ToLower(RowColumn): true}
	out := make([]Column, 0, len(t.Columns))
	for i, name := range t.Columns {
		sqlName := name
		for n := 2; used[strings.ToLower(sqlName)]; n++ {
			sqlName = fmt.Sprintf("%s_%d", name, n)
		}
		used[strings.ToLower(sqlName)] = true
		out = append(out, Column{Position: i, Name: name, SQLName: sqlName, Numeric: t.IsNumeric(name)})
	}
	return out
}

func cellValue(v model.Value, numeric bool) any {
	if numeric {
		if f, ok := v.Float(); ok {
			return f
		}
		return nil
	}
	if v.Raw == "" {
		return nil
	}
	return v.Raw
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
