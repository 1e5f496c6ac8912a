package aggregator

import (
	"math"
	"sort"

	"github.com/pable/footstats/internal/model"
)

// MatchLength is the nominal length of a game in minutes.
const MatchLength = 90.0

// Per90 returns value scaled to 90 minutes, or nil when minutes <= 0.
func Per90(value, minutes float64) *float64 {
	if minutes <= 0 {
		return nil
	}
	v := value * MatchLength / minutes
	return &v
}

// Ratio returns 100*num/den, or nil when den is 0.
func Ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := 100 * num / den
	return &v
}

// defined counts the rows with a numeric value in col.
func defined(t *model.Table, col string) int {
	n := 0
	for _, r := range t.Rows {
		if _, ok := r.Num(col); ok {
			n++
		}
	}
	return n
}

// sumOf totals col with missing as 0; nil when the column is absent or no
// row carries a value.
func sumOf(t *model.Table, col string) *float64 {
	if !t.IsNumeric(col) {
		return nil
	}
	total, n := 0.0, 0
	for _, r := range t.Rows {
		if v, ok := r.Num(col); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &total
}

// maxOf returns the largest defined value of col, or nil.
func maxOf(t *model.Table, col string) *float64 {
	best, n := math.Inf(-1), 0
	for _, r := range t.Rows {
		if v, ok := r.Num(col); ok {
			best = math.Max(best, v)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &best
}

func mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals)), true
}

func median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// SortRows returns the rows ordered by a numeric column. The sort is stable
// and rows without a value sort last in either direction.
func SortRows(t *model.Table, col string, ascending bool) *model.Table {
	rows := append([]model.Row(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Num(col)
		b, bok := rows[j].Num(col)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		if ascending {
			return a < b
		}
		return a > b
	})
	return t.WithRows(rows)
}
