package model

import (
	"encoding/json"
	"strings"
)

// SummaryMetrics are the stat columns summed into a PlayerSummary when the
// table carries them.
var SummaryMetrics = []string{"Goals", "Assists", "Shots", "xG", "xA", "GCA", "SCA"}

// PlayerSummary is the season aggregate of one player. Optional fields are
// nil when the underlying data is absent; they are never coerced to zero.
type PlayerSummary struct {
	Team            string
	Player          string
	Position        *string
	Age             *int
	Appearances     int
	TeamTotalGames  int
	MinutesSum      *float64
	AvgMinutes      *float64
	AppearancePct   *float64
	MinutesSharePct *float64
	// Metrics holds sums of the SummaryMetrics present in the table.
	Metrics map[string]float64
	// Per90 holds per-90-minute rates of Metrics, when minutes are positive.
	Per90 map[string]float64
}

// Get looks up a summary field by its result key: "minutes_sum",
// "avg_minutes", "appearances", "team_total_games", "age", or a metric
// column name. Metric names are matched exactly first, then case-insensitively.
func (s PlayerSummary) Get(key string) (float64, bool) {
	switch key {
	case "minutes_sum":
		return deref(s.MinutesSum)
	case "avg_minutes":
		return deref(s.AvgMinutes)
	case "appearances":
		return float64(s.Appearances), true
	case "team_total_games":
		return float64(s.TeamTotalGames), true
	case "appearance_pct":
		return deref(s.AppearancePct)
	case "minutes_share_pct":
		return deref(s.MinutesSharePct)
	case "age":
		if s.Age == nil {
			return 0, false
		}
		return float64(*s.Age), true
	}
	if v, ok := s.Metrics[key]; ok {
		return v, true
	}
	for name, v := range s.Metrics {
		if strings.EqualFold(name, key) {
			return v, true
		}
	}
	return 0, false
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// MarshalJSON flattens Metrics into top-level keys, so a summary reads
// {"team":..., "appearances":1, "Goals":1, ...}.
func (s PlayerSummary) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"team":              s.Team,
		"player":            s.Player,
		"position":          s.Position,
		"age":               s.Age,
		"appearances":       s.Appearances,
		"team_total_games":  s.TeamTotalGames,
		"minutes_sum":       s.MinutesSum,
		"avg_minutes":       s.AvgMinutes,
		"appearance_pct":    s.AppearancePct,
		"minutes_share_pct": s.MinutesSharePct,
	}
	for k, v := range s.Metrics {
		out[k] = v
	}
	if len(s.Per90) > 0 {
		out["per90"] = s.Per90
	}
	return json.Marshal(out)
}

// Game is one distinct game of a team: its derived key and display label.
type Game struct {
	Key   string `json:"game_key"`
	Label string `json:"label"`
}
