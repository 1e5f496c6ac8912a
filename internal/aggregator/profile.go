package aggregator

import (
	"sort"

	"github.com/pable/footstats/internal/model"
)

// Profile is the demographic and creation profile of a team across all of
// its games.
type Profile struct {
	AvgAge    *float64 `json:"avg_age"`
	MedianAge *float64 `json:"median_age"`
	AgeN      int      `json:"age_n"`
	GCATotal  *float64 `json:"gca_total"`
	SCATotal  *float64 `json:"sca_total"`
	XGTotal   *float64 `json:"xg_total"`
	XATotal   *float64 `json:"xa_total"`
}

// TeamProfile computes ages over unique players (first known age each) and
// totals creation stats over every row.
func TeamProfile(team *model.Table) Profile {
	var p Profile
	if team.Has(model.ColAge) {
		ages := firstAges(team)
		vals := make([]float64, 0, len(ages))
		for _, player := range sortedKeys(ages) {
			vals = append(vals, ages[player])
		}
		p.AvgAge = optional(mean(vals))
		p.MedianAge = optional(median(vals))
		p.AgeN = len(vals)
	}
	p.GCATotal = columnTotal(team, "GCA")
	p.SCATotal = columnTotal(team, "SCA")
	p.XGTotal = columnTotal(team, "xG")
	p.XATotal = columnTotal(team, "xA")
	return p
}

// columnTotal is the sum of a numeric column with missing as 0, or nil when
// the column is absent.
func columnTotal(t *model.Table, col string) *float64 {
	if !t.IsNumeric(col) {
		return nil
	}
	v := total(t, col)
	return &v
}

// Snapshot describes one game of a team.
type Snapshot struct {
	AvgAge    *float64 `json:"avg_age"`
	MedianAge *float64 `json:"median_age"`
	GCA       *float64 `json:"gca"`
	SCA       *float64 `json:"sca"`
}

// GameSnapshot computes the age of the distinct players who got minutes in
// one game, plus the team's GCA and SCA for that game.
func GameSnapshot(game *model.Table) Snapshot {
	played := game
	if game.Has(model.ColMinutes) {
		played = game.Where(func(r model.Row) bool { return r.NumOr(model.ColMinutes, 0) > 0 })
	}
	var s Snapshot
	if game.Has(model.ColAge) {
		seen := make(map[string]struct{})
		var ages []float64
		for _, r := range played.Rows {
			if _, dup := seen[r.Player()]; dup {
				continue
			}
			seen[r.Player()] = struct{}{}
			if age, ok := r.Num(model.ColAge); ok {
				ages = append(ages, age)
			}
		}
		s.AvgAge = optional(mean(ages))
		s.MedianAge = optional(median(ages))
	}
	s.GCA = columnTotal(game, "GCA")
	s.SCA = columnTotal(game, "SCA")
	return s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
