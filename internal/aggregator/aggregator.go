// Package aggregator computes per-player and per-team statistics over a
// model.Table. Every function is pure: it reads the table and allocates a
// fresh result. Missing cells count as 0 in sums and are dropped from means
// and medians; an aggregate with no contributing values is reported as nil.
package aggregator

import (
	"strings"

	"github.com/pable/footstats/internal/games"
	"github.com/pable/footstats/internal/model"
)

// Mode selects how team ages are aggregated.
type Mode string

const (
	// ModeXI averages, across games, the mean age of players with minutes.
	ModeXI Mode = "xi"
	// ModeSquad averages the age of distinct players, unweighted.
	ModeSquad Mode = "squad"
)

// ParseMode normalizes s; anything other than "squad" yields ModeXI.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeSquad {
		return ModeSquad
	}
	return ModeXI
}

// Appearances counts the distinct games in which the rows show the player
// on the pitch: some row of the game has Minutes > 0. Without a Minutes
// column every distinct game counts.
func Appearances(t *model.Table) int {
	if t.Empty() {
		return 0
	}
	res := games.Resolve(t)
	order, groups := res.Groups()
	if !t.Has(model.ColMinutes) {
		return len(order)
	}
	n := 0
	for _, k := range order {
		for _, i := range groups[k] {
			if t.Rows[i].NumOr(model.ColMinutes, 0) > 0 {
				n++
				break
			}
		}
	}
	return n
}

// TeamTotalGames counts the distinct games of a team's rows whose total
// Minutes is positive. Without a Minutes column every distinct game counts.
func TeamTotalGames(team *model.Table) int {
	if team.Empty() {
		return 0
	}
	res := games.Resolve(team)
	order, groups := res.Groups()
	if !team.Has(model.ColMinutes) {
		return len(order)
	}
	n := 0
	for _, k := range order {
		total := 0.0
		for _, i := range groups[k] {
			total += team.Rows[i].NumOr(model.ColMinutes, 0)
		}
		if total > 0 {
			n++
		}
	}
	return n
}

// TeamAverageAge returns the team's average age under mode, or nil when no
// age can be computed.
func TeamAverageAge(team *model.Table, mode Mode) *float64 {
	if team.Empty() || !team.Has(model.ColAge) {
		return nil
	}
	if mode == ModeSquad {
		return squadAge(team)
	}
	return xiAge(team)
}

// xiAge is the mean over games of the mean age among rows with minutes.
func xiAge(team *model.Table) *float64 {
	if !team.Has(model.ColMinutes) {
		return nil
	}
	res := games.Resolve(team)
	order, groups := res.Groups()
	var perGame []float64
	for _, k := range order {
		var ages []float64
		for _, i := range groups[k] {
			r := team.Rows[i]
			if r.NumOr(model.ColMinutes, 0) <= 0 {
				continue
			}
			if age, ok := r.Num(model.ColAge); ok {
				ages = append(ages, age)
			}
		}
		if m, ok := mean(ages); ok {
			perGame = append(perGame, m)
		}
	}
	if m, ok := mean(perGame); ok {
		return &m
	}
	return nil
}

// squadAge is the mean of each distinct player's first known age.
func squadAge(team *model.Table) *float64 {
	ages := firstAges(team)
	vals := make([]float64, 0, len(ages))
	for _, player := range sortedKeys(ages) {
		vals = append(vals, ages[player])
	}
	if m, ok := mean(vals); ok {
		return &m
	}
	return nil
}

// firstAges maps each player to their first defined Age, in row order.
func firstAges(t *model.Table) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range t.Rows {
		p := r.Player()
		if p == "" {
			continue
		}
		if _, ok := out[p]; ok {
			continue
		}
		if age, ok := r.Num(model.ColAge); ok {
			out[p] = age
		}
	}
	return out
}

// KPI is the headline row of a team view.
type KPI struct {
	Players      int      `json:"players"`
	MinutesLabel string   `json:"minutes_label"`
	Minutes      *float64 `json:"minutes"`
	Goals        *float64 `json:"goals"`
	Assists      *float64 `json:"assists"`
}

// KPIRow summarizes rows either as a season aggregate or as one game.
//
// With aggregate=true rows are grouped by player and summed first, then
// the per-player sums are totalled. With aggregate=false the rows are one
// game: Minutes is the match duration, the maximum any player logged, not
// the sum across players.
func KPIRow(rows *model.Table, aggregate bool) KPI {
	kpi := KPI{Players: distinctPlayers(rows)}
	if aggregate {
		kpi.MinutesLabel = "Minutes"
		season := AggregateTeam(rows)
		kpi.Minutes = seasonTotal(rows, season, model.ColMinutes)
		kpi.Goals = seasonTotal(rows, season, model.ColGoals)
		kpi.Assists = seasonTotal(rows, season, model.ColAssists)
		return kpi
	}
	kpi.MinutesLabel = "Match Minutes"
	if rows.Has(model.ColMinutes) {
		kpi.Minutes = maxOf(rows, model.ColMinutes)
	}
	kpi.Goals = sumOf(rows, model.ColGoals)
	kpi.Assists = sumOf(rows, model.ColAssists)
	return kpi
}

func seasonTotal(rows *model.Table, season []SeasonRow, col string) *float64 {
	if !rows.IsNumeric(col) || defined(rows, col) == 0 {
		return nil
	}
	total := 0.0
	for _, s := range season {
		total += s.Values[col]
	}
	return &total
}

func distinctPlayers(t *model.Table) int {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if p := r.Player(); p != "" {
			seen[p] = struct{}{}
		}
	}
	return len(seen)
}
