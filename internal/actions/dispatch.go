package actions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the shape of an action parameter.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindBool   Kind = "bool"
	KindList   Kind = "list"
)

// Param describes one action parameter.
type Param struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
	Doc      string `json:"doc,omitempty"`
}

// Spec describes one action for discovery.
type Spec struct {
	Name   string  `json:"name"`
	Doc    string  `json:"doc"`
	Params []Param `json:"params"`
}

type action struct {
	spec Spec
	run  func(q *Queries, a args) any
}

// args holds parameters after conversion to their declared kinds.
type args map[string]any

func (a args) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a args) num(name string) int {
	n, _ := a[name].(int)
	return n
}

func (a args) flag(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a args) list(name string) []string {
	l, _ := a[name].([]string)
	return l
}

// Dispatcher routes action names to Queries. It is the single entry point
// shared by every caller.
type Dispatcher struct {
	q       *Queries
	actions map[string]action
}

// NewDispatcher registers the action vocabulary over q.
func NewDispatcher(q *Queries) *Dispatcher {
	d := &Dispatcher{q: q, actions: make(map[string]action)}
	for _, a := range registry() {
		d.actions[a.spec.Name] = a
	}
	return d
}

// Actions returns the known action names, sorted.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.actions))
	for n := range d.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns the action specs, sorted by name.
func (d *Dispatcher) Describe() []Spec {
	out := make([]Spec, 0, len(d.actions))
	for _, n := range d.Actions() {
		out = append(out, d.actions[n].spec)
	}
	return out
}

// Perform runs a named action. It never panics: unknown names, bad
// parameters and internal faults come back as *Failure results.
func (d *Dispatcher) Perform(name string, params map[string]any) (out any) {
	a, ok := d.actions[name]
	if !ok {
		return fail(map[string]any{"available_actions": d.Actions()}, "Unknown action '%s'", name)
	}
	defer func() {
		if r := recover(); r != nil {
			out = fail(map[string]any{"action": name, "params": params}, "%v", r)
		}
	}()
	converted, err := convert(a.spec.Params, params)
	if err != nil {
		return fail(map[string]any{"params": params}, "Bad parameters for '%s': %v", name, err)
	}
	return a.run(d.q, converted)
}

// PerformJSON decodes a JSON params object and runs the action.
func (d *Dispatcher) PerformJSON(name string, raw []byte) any {
	params := map[string]any{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return fail(map[string]any{"action": name}, "Bad parameters for '%s': %v", name, err)
		}
	}
	return d.Perform(name, params)
}

func convert(specs []Param, params map[string]any) (args, error) {
	out := make(args, len(specs))
	for _, p := range specs {
		raw, present := params[p.Name]
		if !present || raw == nil {
			if p.Required {
				return nil, fmt.Errorf("missing required parameter %q", p.Name)
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		v, err := coerce(p.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		out[p.Name] = v
	}
	return out, nil
}

func coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64, int, bool:
			return fmt.Sprint(v), nil
		}
	case KindInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, err
			}
			return int(f), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q", v)
			}
			return n, nil
		}
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("invalid boolean %q", v)
			}
			return b, nil
		}
	case KindList:
		switch v := raw.(type) {
		case []string:
			return v, nil
		case string:
			var out []string
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out, nil
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("list element %v is not a string", e)
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, raw)
}

func registry() []action {
	team := Param{Name: "team", Kind: KindString, Required: true, Doc: "team name"}
	optTeam := Param{Name: "team", Kind: KindString, Doc: "restrict to one team"}
	topN := Param{Name: "top_n", Kind: KindInt, Default: DefaultTopN, Doc: "rows to return, clamped to [1,50]"}
	minApps := Param{Name: "min_apps", Kind: KindInt, Default: DefaultMinApps, Doc: "minimum appearances"}
	mode := Param{Name: "mode", Kind: KindString, Default: "xi", Doc: "xi or squad"}
	gameKey := Param{Name: "game_key", Kind: KindString, Required: true, Doc: "game key from team_games"}
	sortBy := Param{Name: "sort_by", Kind: KindString, Doc: "numeric column to sort by"}
	ascending := Param{Name: "ascending", Kind: KindBool, Default: false}

	return []action{
		{
			spec: Spec{Name: "list_teams", Doc: "sorted list of team names"},
			run:  func(q *Queries, _ args) any { return q.ListTeams() },
		},
		{
			spec: Spec{Name: "list_players", Doc: "sorted player names for a team", Params: []Param{team}},
			run:  func(q *Queries, a args) any { return q.ListPlayers(a.str("team")) },
		},
		{
			spec: Spec{Name: "player_summary", Doc: "season summary of one player", Params: []Param{
				team, {Name: "player", Kind: KindString, Required: true},
			}},
			run: func(q *Queries, a args) any {
				return result(q.PlayerSummary(a.str("team"), a.str("player")))
			},
		},
		{
			spec: Spec{Name: "compare_players", Doc: "two player summaries and a row per metric", Params: []Param{
				{Name: "team_a", Kind: KindString, Required: true},
				{Name: "player_a", Kind: KindString, Required: true},
				{Name: "team_b", Kind: KindString, Required: true},
				{Name: "player_b", Kind: KindString, Required: true},
				{Name: "metrics", Kind: KindList, Doc: "default Goals, Assists, Minutes, avg_minutes"},
			}},
			run: func(q *Queries, a args) any {
				return q.ComparePlayers(a.str("team_a"), a.str("player_a"), a.str("team_b"), a.str("player_b"), a.list("metrics"))
			},
		},
		{
			spec: Spec{Name: "top_players", Doc: "top players by the sum of a numeric column", Params: []Param{
				{Name: "metric", Kind: KindString, Required: true}, optTeam, topN,
			}},
			run: func(q *Queries, a args) any { return q.TopPlayers(a.str("metric"), a.str("team"), a.num("top_n")) },
		},
		{
			spec: Spec{Name: "best_player_by_metric", Doc: "single best player for a metric", Params: []Param{
				{Name: "metric", Kind: KindString, Default: DefaultMetric}, optTeam,
			}},
			run: func(q *Queries, a args) any { return result(q.BestPlayerByMetric(a.str("metric"), a.str("team"))) },
		},
		{
			spec: Spec{Name: "best_player_by_avg_minutes", Doc: "top average minutes per appearance with all tied players", Params: []Param{
				optTeam, minApps,
			}},
			run: func(q *Queries, a args) any { return q.BestPlayerByAvgMinutes(a.str("team"), a.num("min_apps")) },
		},
		{
			spec: Spec{Name: "top_players_by_avg_minutes", Doc: "players ranked by average minutes per appearance", Params: []Param{
				optTeam, topN, minApps,
			}},
			run: func(q *Queries, a args) any {
				return q.TopPlayersByAvgMinutes(a.str("team"), a.num("top_n"), a.num("min_apps"))
			},
		},
		{
			spec: Spec{Name: "team_average_age", Doc: "average age of a team", Params: []Param{team, mode}},
			run:  func(q *Queries, a args) any { return q.TeamAverageAge(a.str("team"), a.str("mode")) },
		},
		{
			spec: Spec{Name: "rank_teams_by_age", Doc: "teams by average age, oldest first", Params: []Param{mode}},
			run:  func(q *Queries, a args) any { return q.RankTeamsByAge(a.str("mode")) },
		},
		{
			spec: Spec{Name: "team_games", Doc: "distinct games of a team", Params: []Param{team}},
			run:  func(q *Queries, a args) any { return q.TeamGames(a.str("team")) },
		},
		{
			spec: Spec{Name: "team_game_summary", Doc: "digest of one game", Params: []Param{team, gameKey}},
			run: func(q *Queries, a args) any {
				return result(q.TeamGameSummary(a.str("team"), a.str("game_key")))
			},
		},
		{
			spec: Spec{Name: "team_kpis", Doc: "KPI row for a season or one game", Params: []Param{
				team,
				{Name: "aggregate", Kind: KindBool, Default: true},
				{Name: "game_key", Kind: KindString},
			}},
			run: func(q *Queries, a args) any {
				return result(q.TeamKPIs(a.str("team"), a.flag("aggregate"), a.str("game_key")))
			},
		},
		{
			spec: Spec{Name: "game_snapshot", Doc: "ages and creation totals of one game", Params: []Param{team, gameKey}},
			run: func(q *Queries, a args) any {
				return result(q.GameSnapshot(a.str("team"), a.str("game_key")))
			},
		},
		{
			spec: Spec{Name: "team_profile", Doc: "team ages and creation totals", Params: []Param{team}},
			run:  func(q *Queries, a args) any { return result(q.TeamProfile(a.str("team"))) },
		},
		{
			spec: Spec{Name: "team_season_table", Doc: "per-player season sums", Params: []Param{team, sortBy, ascending}},
			run: func(q *Queries, a args) any {
				return result(q.TeamSeasonTable(a.str("team"), a.str("sort_by"), a.flag("ascending")))
			},
		},
		{
			spec: Spec{Name: "game_rows", Doc: "rows of one game", Params: []Param{team, gameKey, sortBy, ascending}},
			run: func(q *Queries, a args) any {
				return result(q.GameRows(a.str("team"), a.str("game_key"), a.str("sort_by"), a.flag("ascending")))
			},
		},
	}
}

// result folds a (value, error) pair into a single dispatch result.
func result[T any](v T, err error) any {
	if err != nil {
		return err
	}
	return v
}
