package aggregator

import (
	"encoding/json"
	"sort"

	"github.com/pable/footstats/internal/model"
)

// Summarize builds the season summary of one player from the team's rows.
// ok is false when the team has no rows for the player or player is empty.
func Summarize(team *model.Table, player string) (model.PlayerSummary, bool) {
	if player == "" {
		return model.PlayerSummary{}, false
	}
	p := team.Where(func(r model.Row) bool { return r.Player() == player })
	if p.Empty() {
		return model.PlayerSummary{}, false
	}

	s := model.PlayerSummary{
		Player:         player,
		Team:           p.Rows[0].Team(),
		Appearances:    Appearances(p),
		TeamTotalGames: TeamTotalGames(team),
		Metrics:        make(map[string]float64),
		Per90:          make(map[string]float64),
	}
	if pos := firstText(p, model.ColPosition); pos != "" {
		s.Position = &pos
	}
	if age, ok := firstNum(p, model.ColAge); ok {
		s.Age = model.Int(int(age))
	}

	minutes := 0.0
	if p.IsNumeric(model.ColMinutes) {
		minutes = total(p, model.ColMinutes)
		s.MinutesSum = &minutes
		if s.Appearances > 0 {
			s.AvgMinutes = model.Float(minutes / float64(s.Appearances))
		}
		s.MinutesSharePct = Ratio(minutes, float64(s.TeamTotalGames)*MatchLength)
	}
	s.AppearancePct = Ratio(float64(s.Appearances), float64(s.TeamTotalGames))

	for _, m := range model.SummaryMetrics {
		if !p.IsNumeric(m) {
			continue
		}
		v := total(p, m)
		s.Metrics[m] = v
		if rate := Per90(v, minutes); rate != nil {
			s.Per90[m] = *rate
		}
	}
	return s, true
}

// total sums col with missing as 0.
func total(t *model.Table, col string) float64 {
	sum := 0.0
	for _, r := range t.Rows {
		sum += r.NumOr(col, 0)
	}
	return sum
}

func firstText(t *model.Table, col string) string {
	for _, r := range t.Rows {
		if s := r.Str(col); s != "" {
			return s
		}
	}
	return ""
}

func firstNum(t *model.Table, col string) (float64, bool) {
	for _, r := range t.Rows {
		if v, ok := r.Num(col); ok {
			return v, true
		}
	}
	return 0, false
}

// SeasonRow is one player's summed numeric columns across a team's games.
type SeasonRow struct {
	Player   string
	Position string
	Values   map[string]float64
}

// MarshalJSON flattens Values into the row object.
func (s SeasonRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Values)+2)
	for k, v := range s.Values {
		out[k] = v
	}
	out[model.ColPlayer] = s.Player
	if s.Position != "" {
		out[model.ColPosition] = s.Position
	}
	return json.Marshal(out)
}

// AggregateTeam groups rows by (Player, Position) and sums every numeric
// column, missing as 0. Rows without a player are excluded. The result is
// ordered by player, then position.
func AggregateTeam(t *model.Table) []SeasonRow {
	type key struct{ player, position string }
	byKey := make(map[key]*SeasonRow)
	var keys []key
	numeric := t.NumericColumns()
	for _, r := range t.Rows {
		if r.Player() == "" {
			continue
		}
		k := key{player: r.Player(), position: r.Str(model.ColPosition)}
		row, ok := byKey[k]
		if !ok {
			row = &SeasonRow{Player: k.player, Position: k.position, Values: make(map[string]float64, len(numeric))}
			for _, c := range numeric {
				row.Values[c] = 0
			}
			byKey[k] = row
			keys = append(keys, k)
		}
		for _, c := range numeric {
			row.Values[c] += r.NumOr(c, 0)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].player != keys[j].player {
			return keys[i].player < keys[j].player
		}
		return keys[i].position < keys[j].position
	})
	out := make([]SeasonRow, len(keys))
	for i, k := range keys {
		out[i] = *byKey[k]
	}
	return out
}

// SortSeason orders season rows by a column, stable, descending unless
// ascending is set. Rows lacking the column keep their relative order last.
func SortSeason(rows []SeasonRow, col string, ascending bool) []SeasonRow {
	out := append([]SeasonRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].Values[col]
		b, bok := out[j].Values[col]
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
	return out
}
