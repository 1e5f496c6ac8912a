// Package model holds the table representation shared by the loader, the
// game resolver, the aggregation engine and the action layer.
package model

import (
	"sort"
	"strconv"
)

// Well-known column names after header normalization.
const (
	ColTeam     = "Team"
	ColPlayer   = "Player"
	ColPosition = "Position"
	ColAge      = "Age"
	ColMinutes  = "Minutes"
	ColGoals    = "Goals"
	ColAssists  = "Assists"
)

// Value is one cell. Raw is the trimmed source text ("" when the cell is
// missing). Numeric cells also carry the coerced number; a numeric column
// whose text could not be coerced has HasNum=false, never a zero.
type Value struct {
	Raw    string
	Num    float64
	HasNum bool
}

// Text returns a cell that only carries text.
func Text(s string) Value { return Value{Raw: s} }

// Number returns a numeric cell.
func Number(f float64) Value {
	return Value{Raw: strconv.FormatFloat(f, 'f', -1, 64), Num: f, HasNum: true}
}

// Missing reports whether the cell has neither text nor a number.
func (v Value) Missing() bool { return v.Raw == "" && !v.HasNum }

// Float returns the numeric value and whether it is defined.
func (v Value) Float() (float64, bool) { return v.Num, v.HasNum }

// String is the stringified cell used for game keys and labels.
func (v Value) String() string { return v.Raw }

// Row is one observation: a mapping from column name to cell. Index is the
// row's ordinal position in the loaded table and survives filtering.
type Row struct {
	Index int
	Cells map[string]Value
}

// Get returns the cell for col; absent columns yield a missing Value.
func (r Row) Get(col string) Value { return r.Cells[col] }

// Str returns the stringified cell for col.
func (r Row) Str(col string) string { return r.Cells[col].Raw }

// Num returns the numeric cell for col and whether it is defined.
func (r Row) Num(col string) (float64, bool) {
	v := r.Cells[col]
	return v.Num, v.HasNum
}

// NumOr returns the numeric cell for col, or def when it is undefined.
func (r Row) NumOr(col string, def float64) float64 {
	if v, ok := r.Num(col); ok {
		return v
	}
	return def
}

// Team returns the row's team name.
func (r Row) Team() string { return r.Str(ColTeam) }

// Player returns the row's player name.
func (r Row) Player() string { return r.Str(ColPlayer) }

// Table is an ordered sequence of rows plus the column schema. A Table is
// treated as immutable once loaded; Where and friends return new tables
// that share the schema and row cells but never modify them.
type Table struct {
	Columns []string
	numeric map[string]bool
	Rows    []Row
}

// NewTable builds a table. numeric names the columns holding numbers.
func NewTable(columns []string, numeric []string, rows []Row) *Table {
	n := make(map[string]bool, len(numeric))
	for _, c := range numeric {
		n[c] = true
	}
	return &Table{Columns: columns, numeric: n, Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// Has reports whether col is part of the schema.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// IsNumeric reports whether col is a numeric column of the schema.
func (t *Table) IsNumeric(col string) bool { return t.numeric[col] }

// NumericColumns returns the numeric columns in schema order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if t.numeric[c] {
			out = append(out, c)
		}
	}
	return out
}

// Where returns a table with the rows matching keep, in order.
func (t *Table) Where(keep func(Row) bool) *Table {
	var rows []Row
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return &Table{Columns: t.Columns, numeric: t.numeric, Rows: rows}
}

// WithRows returns a table sharing this schema over the given rows.
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Columns: t.Columns, numeric: t.numeric, Rows: rows}
}

// Team returns the rows of one team. An empty name matches no rows, so
// rows without a team never reach a team-scoped aggregate.
func (t *Table) Team(team string) *Table {
	if team == "" {
		return t.WithRows(nil)
	}
	return t.Where(func(r Row) bool { return r.Team() == team })
}

// Player returns the rows of one (team, player) pair. Empty names match no
// rows.
func (t *Table) Player(team, player string) *Table {
	if team == "" || player == "" {
		return t.WithRows(nil)
	}
	return t.Where(func(r Row) bool { return r.Team() == team && r.Player() == player })
}

// Teams returns the sorted distinct non-empty team names.
func (t *Table) Teams() []string {
	return distinctSorted(t.Rows, ColTeam)
}

// Players returns the sorted distinct non-empty player names of a team.
func (t *Table) Players(team string) []string {
	return distinctSorted(t.Team(team).Rows, ColPlayer)
}

func distinctSorted(rows []Row, col string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		s := r.Str(col)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Float returns a pointer to f, used for optional numbers.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i, used for optional integers.
func Int(i int) *int { return &i }
