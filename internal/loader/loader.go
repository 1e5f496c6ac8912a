// Package loader reads the raw player-per-game CSV into a model.Table:
// header normalization, synonym renaming and numeric coercion of noisy text.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pable/footstats/internal/model"
)

// NumericColumns are coerced with CoerceNumber whenever present.
var NumericColumns = []string{
	"Age", "Minutes", "Goals", "Assists", "Shots", "xG", "xA",
	"Goals/90", "Assists/90", "Shots/90", "xG/90", "xA/90",
	"GCA", "SCA", "GCA/90", "SCA/90",
}

// headerSynonyms are applied on exact, case-sensitive header matches.
var headerSynonyms = map[string]string{
	"Club":   model.ColTeam,
	"Squad":  model.ColTeam,
	"Name":   model.ColPlayer,
	"player": model.ColPlayer,
	"Pos":    model.ColPosition,
}

// missingTokens are cell texts read as missing values.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

var numberToken = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ErrMissingColumn is returned when the source lacks Team or Player.
var ErrMissingColumn = errors.New("missing required column")

// CoerceNumber extracts the first signed decimal token from s:
// "25-159" -> 25, "30 yrs" -> 30, "12.5" -> 12.5. ok is false when s holds
// no numeric token.
func CoerceNumber(s string) (float64, bool) {
	tok := numberToken.FindString(s)
	if tok == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NormalizeHeaders trims header whitespace and applies header synonyms. A
// synonym is skipped when its target name is already taken.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	taken := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		out[i] = h
		taken[h] = true
	}
	for i, h := range out {
		target, ok := headerSynonyms[h]
		if !ok || taken[target] {
			continue
		}
		out[i] = target
		taken[target] = true
	}
	return out
}

// Load reads the CSV at path. Loading the same file twice yields identical
// tables.
func Load(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a CSV stream into a table.
func Parse(r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: empty input")
	}

	columns := NormalizeHeaders(records[0])
	for _, req := range []string{model.ColTeam, model.ColPlayer} {
		if !contains(columns, req) {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, req)
		}
	}

	body := records[1:]
	numeric := numericColumns(columns, body)

	rows := make([]model.Row, 0, len(body))
	for i, rec := range body {
		cells := make(map[string]model.Value, len(columns))
		for j, col := range columns {
			raw := ""
			if j < len(rec) {
				raw = strings.TrimSpace(rec[j])
			}
			if _, missing := missingTokens[raw]; missing {
				raw = ""
			}
			if _, dup := cells[col]; dup {
				continue
			}
			cells[col] = cell(raw, numeric[col])
		}
		rows = append(rows, model.Row{Index: i, Cells: cells})
	}

	var numCols []string
	for _, c := range columns {
		if numeric[c] {
			numCols = append(numCols, c)
		}
	}
	return model.NewTable(columns, numCols, rows), nil
}

func cell(raw string, numeric bool) model.Value {
	v := model.Value{Raw: raw}
	if !numeric || raw == "" {
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) {
		v.Num, v.HasNum = f, true
		return v
	}
	v.Num, v.HasNum = CoerceNumber(raw)
	return v
}

// numericColumns marks the recognized stat columns plus any other column
// whose every non-missing cell is a plain number.
func numericColumns(columns []string, body [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, c := range NumericColumns {
		if contains(columns, c) {
			out[c] = true
		}
	}
	for j, col := range columns {
		if out[col] || col == model.ColTeam || col == model.ColPlayer || col == model.ColPosition {
			continue
		}
		seen := false
		plain := true
		for _, rec := range body {
			if j >= len(rec) {
				continue
			}
			raw := strings.TrimSpace(rec[j])
			if _, missing := missingTokens[raw]; missing {
				continue
			}
			seen = true
			if f, err := strconv.ParseFloat(raw, 64); err != nil || math.IsInf(f, 0) {
				plain = false
				break
			}
		}
		if seen && plain {
			out[col] = true
		}
	}
	return out
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
