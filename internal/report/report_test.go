package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/footstats/internal/actions"
	"github.com/pable/footstats/internal/aggregator"
	"github.com/pable/footstats/internal/loader"
	"github.com/pable/footstats/internal/model"
)

func TestPrintPlayerSummary(t *testing.T) {
	pos := "FW"
	s := model.PlayerSummary{
		Team: "Team A", Player: "Player X", Position: &pos, Age: model.Int(24),
		Appearances: 1, TeamTotalGames: 2,
		MinutesSum: model.Float(90), AvgMinutes: model.Float(90),
		AppearancePct: model.Float(50),
		Metrics:       map[string]float64{"Goals": 1},
		Per90:         map[string]float64{"Goals": 1},
	}
	var buf bytes.Buffer
	if err := PrintResult(&buf, s); err != nil {
		t.Fatalf("PrintResult: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Player X", "Team A", "Goals", "50%", "1.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Minutes share is undefined and must not render as zero.
	if !strings.Contains(out, noData) {
		t.Errorf("expected %q for undefined minutes share:\n%s", noData, out)
	}
}

func TestPrintPlayerSummary_FromSummarize(t *testing.T) {
	tbl, err := loader.Parse(strings.NewReader("Team,Player,Date,Opponent,Minutes\n" +
		"Team A,Player X,2024-08-10,Club B,90\n" +
		"Team A,Player X,2024-08-17,Club C,45\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, ok := aggregator.Summarize(tbl.Team("Team A"), "Player X")
	if !ok {
		t.Fatal("Summarize returned ok=false")
	}
	var buf bytes.Buffer
	PrintPlayerSummary(&buf, s)
	out := buf.String()
	for _, want := range []string{"100%", "75%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, bad := range []string{"10000%", "7500%"} {
		if strings.Contains(out, bad) {
			t.Errorf("percentage scaled twice (%q):\n%s", bad, out)
		}
	}
}

func TestPct(t *testing.T) {
	if got := pct(model.Float(75)); got != "75%" {
		t.Errorf("pct(75) = %q, want 75%%", got)
	}
	if got := pct(nil); got != noData {
		t.Errorf("pct(nil) = %q", got)
	}
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	f := &actions.Failure{Reason: "Game not found.", Context: map[string]any{"team": "Team A", "game_key": "k"}}
	if err := PrintResult(&buf, f); err != nil {
		t.Fatalf("PrintResult: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "error: Game not found.") {
		t.Errorf("unexpected failure output:\n%s", out)
	}
	if strings.Index(out, "game_key") > strings.Index(out, "team:") {
		t.Errorf("context keys should be sorted:\n%s", out)
	}
}

func TestPrintKPIUndefined(t *testing.T) {
	var buf bytes.Buffer
	PrintKPI(&buf, aggregator.KPI{Players: 11, MinutesLabel: "Match Minutes", Minutes: model.Float(90)})
	out := buf.String()
	if !strings.Contains(out, "90") || !strings.Contains(out, noData) {
		t.Errorf("unexpected KPI output:\n%s", out)
	}
}

func TestPrintResultFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintResult(&buf, map[string]int{"x": 1}); err != nil {
		t.Fatalf("PrintResult: %v", err)
	}
	if !strings.Contains(buf.String(), `"x": 1`) {
		t.Errorf("expected indented JSON, got %s", buf.String())
	}
}

func TestSeasonColumnsOrder(t *testing.T) {
	rows := []aggregator.SeasonRow{
		{Player: "A", Values: map[string]float64{"Zeta": 1, "Goals": 2, "Minutes": 90, "Alpha": 3}},
	}
	got := seasonColumns(rows)
	want := []string{"Minutes", "Goals", "Alpha", "Zeta"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("seasonColumns = %v, want %v", got, want)
	}
}

func TestNum(t *testing.T) {
	cases := map[float64]string{90: "90", 12.5: "12.50", 0: "0", -3: "-3"}
	for in, want := range cases {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintSQLEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintSQL(&buf, []string{"a"}, nil)
	if strings.TrimSpace(buf.String()) != "(no rows)" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
