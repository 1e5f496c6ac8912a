// Package report renders action results as terminal tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/footstats/internal/actions"
	"github.com/pable/footstats/internal/aggregator"
	"github.com/pable/footstats/internal/loader"
	"github.com/pable/footstats/internal/model"
)

// noData marks an undefined value.
const noData = "—"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func num(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func opt(p *float64) string {
	if p == nil {
		return noData
	}
	return num(*p)
}

func optInt(p *int) string {
	if p == nil {
		return noData
	}
	return strconv.Itoa(*p)
}

// pct renders a value already expressed in percent.
func pct(p *float64) string {
	if p == nil {
		return noData
	}
	return fmt.Sprintf("%.0f%%", *p)
}

// PrintResult renders any dispatcher result, falling back to indented JSON
// for shapes without a table form.
func PrintResult(w io.Writer, v any) error {
	if f, ok := actions.AsFailure(v); ok {
		PrintFailure(w, f)
		return nil
	}
	switch r := v.(type) {
	case []string:
		PrintNames(w, "NAME", r)
	case model.PlayerSummary:
		PrintPlayerSummary(w, r)
	case actions.Comparison:
		PrintComparison(w, r)
	case []actions.MetricEntry:
		PrintMetricEntries(w, r)
	case actions.BestMetric:
		PrintBestMetric(w, r)
	case actions.AvgMinutesLeaders:
		PrintAvgMinutesLeaders(w, r)
	case []actions.AvgMinutesEntry:
		PrintAvgMinutes(w, r)
	case actions.TeamAge:
		PrintTeamAge(w, r)
	case []actions.RankedAge:
		PrintRankedAges(w, r)
	case []model.Game:
		PrintGames(w, r)
	case actions.GameSummary:
		PrintGameSummary(w, r)
	case aggregator.KPI:
		PrintKPI(w, r)
	case aggregator.Profile:
		PrintProfile(w, r)
	case aggregator.Snapshot:
		PrintSnapshot(w, r)
	case []aggregator.SeasonRow:
		PrintSeasonTable(w, r)
	case []map[string]any:
		PrintRecords(w, r)
	default:
		return PrintJSON(w, v)
	}
	return nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintFailure prints a structured failure and its context.
func PrintFailure(w io.Writer, f *actions.Failure) {
	fmt.Fprintf(w, "error: %s\n", f.Reason)
	keys := make([]string, 0, len(f.Context))
	for k := range f.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, f.Context[k])
	}
}

// PrintNames prints a single-column list.
func PrintNames(w io.Writer, header string, names []string) {
	if len(names) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	table := newTable(w)
	table.Header(header)
	for _, n := range names {
		table.Append(n)
	}
	table.Render()
}

// PrintPlayerSummary prints one player's season as a field/value table.
func PrintPlayerSummary(w io.Writer, s model.PlayerSummary) {
	position := noData
	if s.Position != nil {
		position = *s.Position
	}
	fmt.Fprintf(w, "\n%s  |  %s  |  %s  |  Age %s\n\n", s.Player, s.Team, position, optInt(s.Age))

	table := newTable(w)
	table.Header("FIELD", "VALUE", "PER 90")
	table.Append("Appearances", strconv.Itoa(s.Appearances), "")
	table.Append("Team games", strconv.Itoa(s.TeamTotalGames), "")
	table.Append("Minutes", opt(s.MinutesSum), "")
	table.Append("Avg minutes", opt(s.AvgMinutes), "")
	table.Append("Appearance %", pct(s.AppearancePct), "")
	table.Append("Minutes share %", pct(s.MinutesSharePct), "")
	for _, m := range model.SummaryMetrics {
		v, ok := s.Metrics[m]
		if !ok {
			continue
		}
		rate := noData
		if r, ok := s.Per90[m]; ok {
			rate = fmt.Sprintf("%.2f", r)
		}
		table.Append(m, num(v), rate)
	}
	table.Render()
}

// PrintComparison prints the metric rows of a comparison side by side.
func PrintComparison(w io.Writer, c actions.Comparison) {
	for _, side := range []any{c.Left, c.Right} {
		if f, ok := actions.AsFailure(side); ok {
			PrintFailure(w, f)
		}
	}
	table := newTable(w)
	table.Header("METRIC", c.LeftPlayer, c.RightPlayer)
	for _, r := range c.Table {
		table.Append(r.Metric, opt(r.Left), opt(r.Right))
	}
	table.Render()
}

// PrintMetricEntries prints a ranked metric list.
func PrintMetricEntries(w io.Writer, entries []actions.MetricEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header("#", "PLAYER", "TEAM", entries[0].Metric)
	for i, e := range entries {
		table.Append(strconv.Itoa(i+1), e.Player, e.Team, num(e.Value))
	}
	table.Render()
}

// PrintBestMetric prints the single leader of a metric.
func PrintBestMetric(w io.Writer, b actions.BestMetric) {
	fmt.Fprintf(w, "Best %s (%s): %s, %s with %s\n", b.Metric, b.Team, b.Player, b.PlayerTeam, num(b.Value))
}

// PrintAvgMinutesLeaders prints the top average and every tied player.
func PrintAvgMinutesLeaders(w io.Writer, l actions.AvgMinutesLeaders) {
	if l.Error != "" {
		fmt.Fprintf(w, "error: %s\n", l.Error)
		return
	}
	fmt.Fprintf(w, "Top average minutes (%s, min %d apps): %s\n", l.ScopeTeam, l.MinApps, opt(l.TopAverageMinutes))
	if len(l.Players) > 0 {
		PrintAvgMinutes(w, l.Players)
	}
}

// PrintAvgMinutes prints average minutes per appearance.
func PrintAvgMinutes(w io.Writer, rows []actions.AvgMinutesEntry) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header("PLAYER", "TEAM", "AVG MIN", "MINUTES", "APPS")
	for _, r := range rows {
		table.Append(r.Player, r.Team, fmt.Sprintf("%.1f", r.AverageMinutes), num(r.MinutesSum), strconv.Itoa(r.Appearances))
	}
	table.Render()
}

// PrintTeamAge prints one team's average age.
func PrintTeamAge(w io.Writer, a actions.TeamAge) {
	age := noData
	if a.AverageAge != nil {
		age = fmt.Sprintf("%.2f", *a.AverageAge)
	}
	fmt.Fprintf(w, "%s average age (%s): %s\n", a.Team, a.Mode, age)
}

// PrintRankedAges prints teams by age.
func PrintRankedAges(w io.Writer, rows []actions.RankedAge) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header("#", "TEAM", "AVG AGE")
	for i, r := range rows {
		table.Append(strconv.Itoa(i+1), r.Team, fmt.Sprintf("%.2f", r.AverageAge))
	}
	table.Render()
}

// PrintGames prints a team's games with their keys.
func PrintGames(w io.Writer, gs []model.Game) {
	if len(gs) == 0 {
		fmt.Fprintln(w, "(no games)")
		return
	}
	table := newTable(w)
	table.Header("LABEL", "GAME KEY")
	for _, g := range gs {
		table.Append(g.Label, g.Key)
	}
	table.Render()
}

// PrintGameSummary prints the digest of one game.
func PrintGameSummary(w io.Writer, g actions.GameSummary) {
	fmt.Fprintf(w, "\n%s  |  %s\n\n", g.Team, g.Label)
	table := newTable(w)
	table.Header("MATCH MIN", "GOALS", "ASSISTS", "AVG AGE XI")
	age := noData
	if g.AvgAgeXI != nil {
		age = fmt.Sprintf("%.2f", *g.AvgAgeXI)
	}
	table.Append(optInt(g.MatchMinutes), optInt(g.TeamGoals), optInt(g.TeamAssists), age)
	table.Render()
}

// PrintKPI prints a KPI row.
func PrintKPI(w io.Writer, k aggregator.KPI) {
	table := newTable(w)
	table.Header("PLAYERS", k.MinutesLabel, "GOALS", "ASSISTS")
	table.Append(strconv.Itoa(k.Players), opt(k.Minutes), opt(k.Goals), opt(k.Assists))
	table.Render()
}

// PrintProfile prints a team profile.
func PrintProfile(w io.Writer, p aggregator.Profile) {
	table := newTable(w)
	table.Header("AVG AGE", "MEDIAN AGE", "N", "GCA", "SCA", "xG", "xA")
	table.Append(opt(p.AvgAge), opt(p.MedianAge), strconv.Itoa(p.AgeN),
		opt(p.GCATotal), opt(p.SCATotal), opt(p.XGTotal), opt(p.XATotal))
	table.Render()
}

// PrintSnapshot prints one game's snapshot.
func PrintSnapshot(w io.Writer, s aggregator.Snapshot) {
	table := newTable(w)
	table.Header("AVG AGE", "MEDIAN AGE", "GCA", "SCA")
	table.Append(opt(s.AvgAge), opt(s.MedianAge), opt(s.GCA), opt(s.SCA))
	table.Render()
}

// PrintSeasonTable prints per-player season sums.
func PrintSeasonTable(w io.Writer, rows []aggregator.SeasonRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	cols := seasonColumns(rows)
	header := append([]any{"PLAYER", "POS"}, toAny(cols)...)
	table := newTable(w)
	table.Header(header...)
	for _, r := range rows {
		cells := []any{r.Player, r.Position}
		for _, c := range cols {
			cells = append(cells, num(r.Values[c]))
		}
		table.Append(cells...)
	}
	table.Render()
}

// seasonColumns orders value columns: known numeric columns first in their
// canonical order, then the rest alphabetically.
func seasonColumns(rows []aggregator.SeasonRow) []string {
	present := make(map[string]bool)
	for _, r := range rows {
		for c := range r.Values {
			present[c] = true
		}
	}
	var cols []string
	for _, c := range loader.NumericColumns {
		if present[c] {
			cols = append(cols, c)
			delete(present, c)
		}
	}
	rest := make([]string, 0, len(present))
	for c := range present {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// PrintRecords prints raw row maps, identity columns first.
func PrintRecords(w io.Writer, recs []map[string]any) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	cols := recordColumns(recs)
	table := newTable(w)
	table.Header(toAny(cols)...)
	for _, rec := range recs {
		cells := make([]any, len(cols))
		for i, c := range cols {
			switch v := rec[c].(type) {
			case nil:
				cells[i] = noData
			case float64:
				cells[i] = num(v)
			default:
				cells[i] = fmt.Sprint(v)
			}
		}
		table.Append(cells...)
	}
	table.Render()
}

func recordColumns(recs []map[string]any) []string {
	first := []string{model.ColPlayer, model.ColPosition, model.ColTeam}
	seen := make(map[string]bool)
	for _, rec := range recs {
		for c := range rec {
			seen[c] = true
		}
	}
	var cols []string
	for _, c := range first {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// PrintSQL prints raw query output.
func PrintSQL(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header(toAny(cols)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// PrintActions prints the action vocabulary.
func PrintActions(w io.Writer, specs []actions.Spec) {
	table := newTable(w)
	table.Header("ACTION", "PARAMS", "DESCRIPTION")
	for _, s := range specs {
		params := ""
		for i, p := range s.Params {
			if i > 0 {
				params += " "
			}
			if p.Required {
				params += "<" + p.Name + ">"
			} else {
				params += "[" + p.Name + "]"
			}
		}
		table.Append(s.Name, params, s.Doc)
	}
	table.Render()
}
