// Package actions is the closed vocabulary of analytical queries over the
// loaded table, exposed both as typed methods on Queries and as a uniform
// callable-by-name dispatcher (Perform) shared by the CLI, the HTTP adapter
// and the chat router.
package actions

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/pable/footstats/internal/aggregator"
	"github.com/pable/footstats/internal/games"
	"github.com/pable/footstats/internal/model"
)

// Defaults for optional parameters.
const (
	DefaultTopN    = 5
	DefaultMinApps = 3
	MaxTopN        = 50
	DefaultMetric  = "Goals"

	// TieTolerance is how close two average-minutes values must be to tie.
	TieTolerance = 1e-9
)

// DefaultCompareMetrics are compared when the caller names none.
var DefaultCompareMetrics = []string{"Goals", "Assists", "Minutes", "avg_minutes"}

// TableProvider supplies the current immutable table.
type TableProvider interface {
	Table() *model.Table
}

// Static adapts a fixed table to TableProvider.
type Static struct{ T *model.Table }

// Table implements TableProvider.
func (s Static) Table() *model.Table { return s.T }

// Queries answers the analytical questions over a TableProvider.
type Queries struct {
	src TableProvider
}

// New returns Queries reading from src.
func New(src TableProvider) *Queries {
	return &Queries{src: src}
}

func (q *Queries) table() *model.Table { return q.src.Table() }

// ListTeams returns the sorted team names.
func (q *Queries) ListTeams() []string { return q.table().Teams() }

// ListPlayers returns the sorted player names of a team.
func (q *Queries) ListPlayers(team string) []string { return q.table().Players(team) }

// PlayerSummary returns the season summary of one player.
func (q *Queries) PlayerSummary(team, player string) (model.PlayerSummary, error) {
	s, ok := aggregator.Summarize(q.table().Team(team), player)
	if !ok {
		return s, fail(map[string]any{"team": team, "player": player}, "No data for this player/team.")
	}
	return s, nil
}

// CompareRow is one metric of a player comparison. Key is the summary
// field the metric resolved to.
type CompareRow struct {
	Metric string   `json:"metric"`
	Key    string   `json:"key"`
	Left   *float64 `json:"left"`
	Right  *float64 `json:"right"`
}

// Comparison holds both sides of compare_players. A side is either a
// model.PlayerSummary or a *Failure when that player has no rows.
type Comparison struct {
	Left        any          `json:"left"`
	Right       any          `json:"right"`
	LeftPlayer  string       `json:"left_player"`
	RightPlayer string       `json:"right_player"`
	Table       []CompareRow `json:"table"`
}

// ResolveMetric maps user-facing metric names to summary keys, ignoring
// case and surrounding or repeated whitespace.
func ResolveMetric(m string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(m), " "))
	switch norm {
	case "avg minutes", "avg_minutes", "minutes/appearance", "average minutes":
		return "avg_minutes"
	case "minutes", "total minutes", "minutes_sum", "minutes sum":
		return "minutes_sum"
	}
	return strings.TrimSpace(m)
}

// ComparePlayers summarizes two players and lines up the requested metrics.
func (q *Queries) ComparePlayers(teamA, playerA, teamB, playerB string, metrics []string) Comparison {
	if len(metrics) == 0 {
		metrics = DefaultCompareMetrics
	}
	c := Comparison{LeftPlayer: playerA, RightPlayer: playerB}
	left, lerr := q.PlayerSummary(teamA, playerA)
	right, rerr := q.PlayerSummary(teamB, playerB)
	c.Left, c.Right = sideOf(left, lerr), sideOf(right, rerr)

	for _, m := range metrics {
		key := ResolveMetric(m)
		row := CompareRow{Metric: m, Key: key}
		if lerr == nil {
			row.Left = lookup(left, key)
		}
		if rerr == nil {
			row.Right = lookup(right, key)
		}
		c.Table = append(c.Table, row)
	}
	return c
}

func sideOf(s model.PlayerSummary, err error) any {
	if err != nil {
		return err
	}
	return s
}

func lookup(s model.PlayerSummary, key string) *float64 {
	if v, ok := s.Get(key); ok {
		return &v
	}
	return nil
}

// MetricEntry is one ranked (team, player) total of a metric.
type MetricEntry struct {
	Team   string
	Player string
	Metric string
	Value  float64
}

// MarshalJSON renders {"team":..,"player":..,"<metric>": value}.
func (e MetricEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"team": e.Team, "player": e.Player, e.Metric: e.Value})
}

// ClampTopN bounds n to [1, MaxTopN].
func ClampTopN(n int) int {
	return max(1, min(MaxTopN, n))
}

// TopPlayers ranks (team, player) totals of a numeric column, descending.
// Ties keep grouping order (team, then player) and are cut at topN; no tie
// expansion happens here. An unknown or non-numeric metric yields no rows.
func (q *Queries) TopPlayers(metric, team string, topN int) []MetricEntry {
	t := q.table()
	if team != "" {
		t = t.Team(team)
	}
	out := []MetricEntry{}
	if !t.IsNumeric(metric) {
		return out
	}
	for _, g := range groupPlayers(t) {
		out = append(out, MetricEntry{
			Team: g.team, Player: g.player, Metric: metric,
			Value: sumRows(g.rows, metric),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n := ClampTopN(topN); len(out) > n {
		out = out[:n]
	}
	return out
}

// BestMetric is the answer of best_player_by_metric.
type BestMetric struct {
	Metric     string  `json:"metric"`
	Team       string  `json:"team"`
	Player     string  `json:"player"`
	PlayerTeam string  `json:"player_team"`
	Value      float64 `json:"value"`
}

// BestPlayerByMetric returns the single top row of TopPlayers.
func (q *Queries) BestPlayerByMetric(metric, team string) (BestMetric, error) {
	if metric == "" {
		metric = DefaultMetric
	}
	res := q.TopPlayers(metric, team, 1)
	if len(res) == 0 {
		return BestMetric{}, fail(map[string]any{"team": nullable(team), "metric": metric}, "No data for metric '%s'", metric)
	}
	r := res[0]
	return BestMetric{Metric: metric, Team: scope(team), Player: r.Player, PlayerTeam: r.Team, Value: r.Value}, nil
}

// AvgMinutesEntry is one player's average minutes per appearance.
type AvgMinutesEntry struct {
	Team           string  `json:"team"`
	Player         string  `json:"player"`
	AverageMinutes float64 `json:"average_minutes"`
	MinutesSum     float64 `json:"minutes_sum"`
	Appearances    int     `json:"appearances"`
}

// AvgMinutesLeaders is the answer of best_player_by_avg_minutes: the top
// average and every player tied with it.
type AvgMinutesLeaders struct {
	ScopeTeam         string            `json:"scope_team"`
	MinApps           int               `json:"min_apps"`
	TopAverageMinutes *float64          `json:"top_average_minutes"`
	Players           []AvgMinutesEntry `json:"players"`
	Error             string            `json:"error,omitempty"`
}

// avgMinutes returns the qualifying players in grouping order. ok is false
// when the table has no Minutes column.
func (q *Queries) avgMinutes(team string, minApps int) ([]AvgMinutesEntry, bool) {
	t := q.table()
	if !t.Has(model.ColMinutes) {
		return nil, false
	}
	if team != "" {
		t = t.Team(team)
	}
	threshold := max(1, minApps)
	rows := []AvgMinutesEntry{}
	for _, g := range groupPlayers(t) {
		sub := t.WithRows(g.rows)
		apps := aggregator.Appearances(sub)
		if apps < threshold {
			continue
		}
		mins := sumRows(g.rows, model.ColMinutes)
		rows = append(rows, AvgMinutesEntry{
			Team: g.team, Player: g.player,
			AverageMinutes: mins / float64(apps),
			MinutesSum:     mins,
			Appearances:    apps,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AverageMinutes > rows[j].AverageMinutes })
	return rows, true
}

// BestPlayerByAvgMinutes returns the highest average minutes per appearance
// among players with at least minApps appearances, with all tied players.
func (q *Queries) BestPlayerByAvgMinutes(team string, minApps int) AvgMinutesLeaders {
	out := AvgMinutesLeaders{ScopeTeam: scope(team), MinApps: minApps, Players: []AvgMinutesEntry{}}
	rows, ok := q.avgMinutes(team, minApps)
	if !ok {
		out.Error = "Minutes column not found."
		return out
	}
	if len(rows) == 0 {
		return out
	}
	top := rows[0].AverageMinutes
	out.TopAverageMinutes = &top
	for _, r := range rows {
		if math.Abs(r.AverageMinutes-top) <= TieTolerance {
			out.Players = append(out.Players, r)
		}
	}
	return out
}

// TopPlayersByAvgMinutes ranks players by average minutes per appearance.
// Ties keep grouping order.
func (q *Queries) TopPlayersByAvgMinutes(team string, topN, minApps int) []AvgMinutesEntry {
	rows, ok := q.avgMinutes(team, minApps)
	if !ok {
		return []AvgMinutesEntry{}
	}
	if n := ClampTopN(topN); len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TeamAge is the answer of team_average_age.
type TeamAge struct {
	Team       string          `json:"team"`
	Mode       aggregator.Mode `json:"mode"`
	AverageAge *float64        `json:"average_age"`
}

// TeamAverageAge returns a team's average age; an unknown mode means xi.
func (q *Queries) TeamAverageAge(team, mode string) TeamAge {
	m := aggregator.ParseMode(mode)
	return TeamAge{Team: team, Mode: m, AverageAge: aggregator.TeamAverageAge(q.table().Team(team), m)}
}

// RankedAge is one row of rank_teams_by_age.
type RankedAge struct {
	Team       string  `json:"team"`
	AverageAge float64 `json:"average_age"`
}

// RankTeamsByAge orders teams by average age, oldest first. Teams whose age
// is undefined are omitted.
func (q *Queries) RankTeamsByAge(mode string) []RankedAge {
	m := aggregator.ParseMode(mode)
	t := q.table()
	out := []RankedAge{}
	for _, team := range t.Teams() {
		if age := aggregator.TeamAverageAge(t.Team(team), m); age != nil {
			out = append(out, RankedAge{Team: team, AverageAge: *age})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageAge > out[j].AverageAge })
	return out
}

// TeamGames lists a team's distinct games in resolver order.
func (q *Queries) TeamGames(team string) []model.Game {
	t := q.table().Team(team)
	if t.Empty() {
		return []model.Game{}
	}
	return games.Resolve(t).DistinctByKey()
}

// GameSummary is the single-game digest of team_game_summary.
type GameSummary struct {
	Team         string   `json:"team"`
	GameKey      string   `json:"game_key"`
	Label        string   `json:"label"`
	MatchMinutes *int     `json:"match_minutes"`
	TeamGoals    *int     `json:"team_goals"`
	TeamAssists  *int     `json:"team_assists"`
	AvgAgeXI     *float64 `json:"avg_age_xi"`
}

// TeamGameSummary digests one game: match minutes is the maximum Minutes
// of any row, goals and assists are team sums, and the age is the mean of
// rows with minutes.
func (q *Queries) TeamGameSummary(team, gameKey string) (GameSummary, error) {
	ctx := map[string]any{"team": team, "game_key": gameKey}
	t := q.table().Team(team)
	if t.Empty() {
		return GameSummary{}, fail(ctx, "No team data.")
	}
	res := games.Resolve(t)
	g := res.Select(gameKey)
	if g.Empty() {
		return GameSummary{}, fail(ctx, "Game not found.")
	}
	label, _ := res.Label(gameKey)
	out := GameSummary{Team: team, GameKey: gameKey, Label: label}
	if g.Has(model.ColMinutes) {
		best := 0.0
		for _, r := range g.Rows {
			best = math.Max(best, r.NumOr(model.ColMinutes, 0))
		}
		out.MatchMinutes = model.Int(int(best))
	}
	if g.Has(model.ColGoals) {
		out.TeamGoals = model.Int(int(sumRows(g.Rows, model.ColGoals)))
	}
	if g.Has(model.ColAssists) {
		out.TeamAssists = model.Int(int(sumRows(g.Rows, model.ColAssists)))
	}
	if g.Has(model.ColAge) && g.Has(model.ColMinutes) {
		var ages []float64
		for _, r := range g.Rows {
			if r.NumOr(model.ColMinutes, 0) <= 0 {
				continue
			}
			if age, ok := r.Num(model.ColAge); ok {
				ages = append(ages, age)
			}
		}
		if len(ages) > 0 {
			total := 0.0
			for _, a := range ages {
				total += a
			}
			out.AvgAgeXI = model.Float(total / float64(len(ages)))
		}
	}
	return out, nil
}

// TeamKPIs returns the KPI row of a team's season, or of the game gameKey
// names when aggregate is false. The mode is never inferred from gameKey.
func (q *Queries) TeamKPIs(team string, aggregate bool, gameKey string) (aggregator.KPI, error) {
	ctx := map[string]any{"team": team, "game_key": nullable(gameKey)}
	t := q.table().Team(team)
	if t.Empty() {
		return aggregator.KPI{}, fail(ctx, "No team data.")
	}
	if aggregate {
		return aggregator.KPIRow(t, true), nil
	}
	if gameKey == "" {
		return aggregator.KPI{}, fail(map[string]any{"team": team, "aggregate": aggregate}, "game_key is required when aggregate is false")
	}
	g := games.Resolve(t).Select(gameKey)
	if g.Empty() {
		return aggregator.KPI{}, fail(ctx, "Game not found.")
	}
	return aggregator.KPIRow(g, false), nil
}

// GameSnapshot returns the ages of the players who got minutes in one game
// and the game's creation totals.
func (q *Queries) GameSnapshot(team, gameKey string) (aggregator.Snapshot, error) {
	ctx := map[string]any{"team": team, "game_key": gameKey}
	t := q.table().Team(team)
	if t.Empty() {
		return aggregator.Snapshot{}, fail(ctx, "No team data.")
	}
	g := games.Resolve(t).Select(gameKey)
	if g.Empty() {
		return aggregator.Snapshot{}, fail(ctx, "Game not found.")
	}
	return aggregator.GameSnapshot(g), nil
}

// TeamProfile returns the team's demographic and creation profile.
func (q *Queries) TeamProfile(team string) (aggregator.Profile, error) {
	t := q.table().Team(team)
	if t.Empty() {
		return aggregator.Profile{}, fail(map[string]any{"team": team}, "No team data.")
	}
	return aggregator.TeamProfile(t), nil
}

// TeamSeasonTable returns per-player season sums, optionally sorted.
func (q *Queries) TeamSeasonTable(team, sortBy string, ascending bool) ([]aggregator.SeasonRow, error) {
	t := q.table().Team(team)
	if t.Empty() {
		return nil, fail(map[string]any{"team": team}, "No team data.")
	}
	rows := aggregator.AggregateTeam(t)
	if sortBy != "" {
		rows = aggregator.SortSeason(rows, sortBy, ascending)
	}
	return rows, nil
}

// GameRows returns the raw rows of one game as column maps, optionally
// sorted by a numeric column.
func (q *Queries) GameRows(team, gameKey, sortBy string, ascending bool) ([]map[string]any, error) {
	ctx := map[string]any{"team": team, "game_key": gameKey}
	t := q.table().Team(team)
	if t.Empty() {
		return nil, fail(ctx, "No team data.")
	}
	g := games.Resolve(t).Select(gameKey)
	if g.Empty() {
		return nil, fail(ctx, "Game not found.")
	}
	if sortBy != "" && g.IsNumeric(sortBy) {
		g = aggregator.SortRows(g, sortBy, ascending)
	}
	out := make([]map[string]any, 0, g.Len())
	for _, r := range g.Rows {
		m := make(map[string]any, len(g.Columns))
		for _, c := range g.Columns {
			v := r.Get(c)
			switch {
			case v.HasNum:
				m[c] = v.Num
			case v.Missing():
				m[c] = nil
			default:
				m[c] = v.Raw
			}
		}
		out = append(out, m)
	}
	return out, nil
}

type playerGroup struct {
	team, player string
	rows         []model.Row
}

// groupPlayers groups rows by (team, player), ordered by team then player.
// Rows with an empty team or player are excluded.
func groupPlayers(t *model.Table) []playerGroup {
	type key struct{ team, player string }
	idx := make(map[key]int)
	var groups []playerGroup
	for _, r := range t.Rows {
		k := key{r.Team(), r.Player()}
		if k.team == "" || k.player == "" {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, playerGroup{team: k.team, player: k.player})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].team != groups[j].team {
			return groups[i].team < groups[j].team
		}
		return groups[i].player < groups[j].player
	})
	return groups
}

func sumRows(rows []model.Row, col string) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.NumOr(col, 0)
	}
	return total
}
