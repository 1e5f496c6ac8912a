package aggregator

import (
	"math"
	"strings"
	"testing"

	"github.com/pable/footstats/internal/loader"
	"github.com/pable/footstats/internal/model"
)

// parse builds a table from inline CSV text.
func parse(t *testing.T, csv string) *model.Table {
	t.Helper()
	tbl, err := loader.Parse(strings.NewReader(strings.TrimSpace(csv)))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return tbl
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ---- Appearance tests ----

func TestAppearances_ZeroAndMissingMinutes(t *testing.T) {
	tbl := parse(t, `
Team,Player,Date,Opponent,Minutes
Team A,Player X,2024-08-10,Club B,0
Team A,Player X,2024-08-17,Club C,45
Team A,Player X,2024-08-24,Club D,
`)
	if got := Appearances(tbl); got != 1 {
		t.Errorf("Appearances = %d, want 1", got)
	}
	if got := TeamTotalGames(tbl); got != 1 {
		t.Errorf("TeamTotalGames = %d, want 1", got)
	}
}

func TestAppearances_NoMinutesColumn(t *testing.T) {
	tbl := parse(t, `
Team,Player,Date,Opponent,Goals
Team A,Player X,2024-08-10,Club B,1
Team A,Player X,2024-08-17,Club C,0
`)
	if got := Appearances(tbl); got != 2 {
		t.Errorf("Appearances = %d, want 2", got)
	}
}

func TestAppearances_Empty(t *testing.T) {
	tbl := parse(t, "Team,Player,Minutes")
	if got := Appearances(tbl); got != 0 {
		t.Errorf("Appearances = %d, want 0", got)
	}
}

// ---- Summary tests ----

func TestSummarize_SingleGame(t *testing.T) {
	tbl := parse(t, `
Team,Player,Minutes,Goals
Team A,Player X,90,1
`)
	s, ok := Summarize(tbl.Team("Team A"), "Player X")
	if !ok {
		t.Fatal("Summarize returned ok=false")
	}
	if s.Appearances != 1 {
		t.Errorf("Appearances = %d, want 1", s.Appearances)
	}
	if s.MinutesSum == nil || *s.MinutesSum != 90 {
		t.Errorf("MinutesSum = %v, want 90", s.MinutesSum)
	}
	if s.AvgMinutes == nil || *s.AvgMinutes != 90 {
		t.Errorf("AvgMinutes = %v, want 90", s.AvgMinutes)
	}
	if s.Metrics["Goals"] != 1 {
		t.Errorf("Goals = %v, want 1", s.Metrics["Goals"])
	}
	if s.Per90["Goals"] != 1 {
		t.Errorf("Goals/90 = %v, want 1", s.Per90["Goals"])
	}
	if s.AppearancePct == nil || *s.AppearancePct != 100 {
		t.Errorf("AppearancePct = %v, want 100", s.AppearancePct)
	}
}

func TestSummarize_UnknownPlayer(t *testing.T) {
	tbl := parse(t, `
Team,Player,Minutes
Team A,Player X,90
`)
	if _, ok := Summarize(tbl.Team("Team A"), "Nobody"); ok {
		t.Error("Summarize of unknown player returned ok=true")
	}
}

func TestSummarize_NoMinutes(t *testing.T) {
	tbl := parse(t, `
Team,Player,Date,Opponent,Goals
Team A,Player X,2024-08-10,Club B,2
`)
	s, ok := Summarize(tbl.Team("Team A"), "Player X")
	if !ok {
		t.Fatal("Summarize returned ok=false")
	}
	if s.MinutesSum != nil || s.AvgMinutes != nil {
		t.Errorf("minutes should be undefined, got sum=%v avg=%v", s.MinutesSum, s.AvgMinutes)
	}
	if _, ok := s.Per90["Goals"]; ok {
		t.Error("per-90 rate should be absent without minutes")
	}
}

// ---- KPI tests ----

func TestKPIRow_SingleGameMatchMinutes(t *testing.T) {
	var b strings.Builder
	b.WriteString("Team,Player,Date,Opponent,Minutes,Goals\n")
	for i := 0; i < 11; i++ {
		b.WriteString("Team A,P")
		b.WriteString(string(rune('a' + i)))
		b.WriteString(",2024-08-10,Club B,90,0\n")
	}
	tbl := parse(t, b.String())

	kpi := KPIRow(tbl, false)
	if kpi.Players != 11 {
		t.Errorf("Players = %d, want 11", kpi.Players)
	}
	if kpi.MinutesLabel != "Match Minutes" {
		t.Errorf("MinutesLabel = %q", kpi.MinutesLabel)
	}
	if kpi.Minutes == nil || *kpi.Minutes != 90 {
		t.Errorf("Minutes = %v, want 90", kpi.Minutes)
	}

	season := KPIRow(tbl, true)
	if season.Minutes == nil || *season.Minutes != 990 {
		t.Errorf("season Minutes = %v, want 990", season.Minutes)
	}
}

func TestKPIRow_UndefinedColumns(t *testing.T) {
	tbl := parse(t, `
Team,Player,Minutes
Team A,Player X,90
`)
	kpi := KPIRow(tbl, true)
	if kpi.Goals != nil || kpi.Assists != nil {
		t.Errorf("goals/assists should be nil, got %v/%v", kpi.Goals, kpi.Assists)
	}
}

// ---- Age tests ----

const ageCSV = `
Team,Player,Date,Opponent,Minutes,Age
Team A,P1,2024-08-10,Club B,90,20
Team A,P2,2024-08-10,Club B,90,30
Team A,P1,2024-08-17,Club C,90,20
Team A,P3,2024-08-17,Club C,0,40
`

func TestTeamAverageAge_ModesDiverge(t *testing.T) {
	tbl := parse(t, ageCSV)
	xi := TeamAverageAge(tbl, ModeXI)
	squad := TeamAverageAge(tbl, ModeSquad)
	if xi == nil || !approx(*xi, 22.5) {
		t.Errorf("xi age = %v, want 22.5", xi)
	}
	if squad == nil || !approx(*squad, 30) {
		t.Errorf("squad age = %v, want 30", squad)
	}
}

func TestTeamAverageAge_NoAgeColumn(t *testing.T) {
	tbl := parse(t, `
Team,Player,Minutes
Team A,P1,90
`)
	if got := TeamAverageAge(tbl, ModeXI); got != nil {
		t.Errorf("age = %v, want nil", *got)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"squad": ModeSquad, " SQUAD ": ModeSquad, "xi": ModeXI, "bogus": ModeXI, "": ModeXI}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---- Profile and snapshot tests ----

func TestTeamProfile(t *testing.T) {
	tbl := parse(t, `
Team,Player,Date,Opponent,Minutes,Age,GCA,SCA
Team A,P1,2024-08-10,Club B,90,20,1,3
Team A,P2,2024-08-10,Club B,90,30,0,2
Team A,P1,2024-08-17,Club C,90,21,2,
Team A,P3,2024-08-17,Club C,0,40,0,1
`)
	p := TeamProfile(tbl)
	if p.AgeN != 3 {
		t.Errorf("AgeN = %d, want 3", p.AgeN)
	}
	if p.AvgAge == nil || !approx(*p.AvgAge, 30) {
		t.Errorf("AvgAge = %v, want 30", p.AvgAge)
	}
	if p.MedianAge == nil || *p.MedianAge != 30 {
		t.Errorf("MedianAge = %v, want 30", p.MedianAge)
	}
	if p.GCATotal == nil || *p.GCATotal != 3 {
		t.Errorf("GCATotal = %v, want 3", p.GCATotal)
	}
	if p.SCATotal == nil || *p.SCATotal != 6 {
		t.Errorf("SCATotal = %v, want 6", p.SCATotal)
	}
	if p.XGTotal != nil {
		t.Errorf("XGTotal = %v, want nil", *p.XGTotal)
	}
}

func TestGameSnapshot_OnlyPlayersWithMinutes(t *testing.T) {
	tbl := parse(t, ageCSV)
	g := tbl.Where(func(r model.Row) bool { return r.Str("Date") == "2024-08-17" })
	s := GameSnapshot(g)
	if s.AvgAge == nil || *s.AvgAge != 20 {
		t.Errorf("AvgAge = %v, want 20", s.AvgAge)
	}
	if s.GCA != nil {
		t.Errorf("GCA = %v, want nil", *s.GCA)
	}
}

// ---- Numeric helper tests ----

func TestPer90(t *testing.T) {
	if got := Per90(1, 90); got == nil || *got != 1 {
		t.Errorf("Per90(1, 90) = %v, want 1", got)
	}
	if got := Per90(3, 180); got == nil || *got != 1.5 {
		t.Errorf("Per90(3, 180) = %v, want 1.5", got)
	}
	if got := Per90(1, 0); got != nil {
		t.Errorf("Per90(1, 0) = %v, want nil", *got)
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(1, 4); got == nil || *got != 25 {
		t.Errorf("Ratio(1, 4) = %v, want 25", got)
	}
	if got := Ratio(1, 0); got != nil {
		t.Errorf("Ratio(1, 0) = %v, want nil", *got)
	}
}

func TestSortRows_MissingLast(t *testing.T) {
	tbl := parse(t, `
Team,Player,xG
Team A,P0,0.5
Team A,P1,
Team A,P2,1.2
Team A,P3,0.1
`)
	order := func(tb *model.Table) string {
		var out []string
		for _, r := range tb.Rows {
			out = append(out, r.Player())
		}
		return strings.Join(out, ",")
	}
	if got := order(SortRows(tbl, "xG", false)); got != "P2,P0,P3,P1" {
		t.Errorf("descending = %s", got)
	}
	if got := order(SortRows(tbl, "xG", true)); got != "P3,P0,P2,P1" {
		t.Errorf("ascending = %s", got)
	}
	if got := order(tbl); got != "P0,P1,P2,P3" {
		t.Errorf("input reordered: %s", got)
	}
}

// ---- Season table tests ----

func TestAggregateTeam(t *testing.T) {
	tbl := parse(t, `
Team,Player,Position,Minutes,Goals
Team A,P2,FW,90,1
Team A,P1,MF,90,0
Team A,P2,FW,45,
,P9,FW,90,5
`)
	rows := AggregateTeam(tbl.Team("Team A"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Player != "P1" || rows[1].Player != "P2" {
		t.Errorf("order = %s,%s", rows[0].Player, rows[1].Player)
	}
	if rows[1].Values["Minutes"] != 135 || rows[1].Values["Goals"] != 1 {
		t.Errorf("P2 sums = %v", rows[1].Values)
	}

	sorted := SortSeason(rows, "Minutes", false)
	if sorted[0].Player != "P2" {
		t.Errorf("SortSeason top = %s, want P2", sorted[0].Player)
	}
}
