package loader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"25-159", 25, true},
		{"30 yrs", 30, true},
		{"12.5", 12.5, true},
		{"-3", -3, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := CoerceNumber(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("CoerceNumber(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{"\ufeffSquad", " Name ", "Pos", "Minutes"})
	want := []string{"Team", "Player", "Position", "Minutes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeHeaders = %v, want %v", got, want)
	}
}

func TestNormalizeHeaders_TargetTaken(t *testing.T) {
	got := NormalizeHeaders([]string{"Team", "Club", "Player"})
	want := []string{"Team", "Club", "Player"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeHeaders = %v, want %v", got, want)
	}
}

func TestParse_CoercesStatColumns(t *testing.T) {
	tbl, err := Parse(strings.NewReader("Team,Player,Age,Minutes,Goals\nTeam A,Player X,25-159,90,N/A\nTeam A,Player Y,30 yrs,abc,1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	x, y := tbl.Rows[0], tbl.Rows[1]
	if age, ok := x.Num("Age"); !ok || age != 25 {
		t.Errorf("Player X age = (%v, %v), want 25", age, ok)
	}
	if age, ok := y.Num("Age"); !ok || age != 30 {
		t.Errorf("Player Y age = (%v, %v), want 30", age, ok)
	}
	if !x.Get("Goals").Missing() {
		t.Errorf("N/A goals should be missing, got %+v", x.Get("Goals"))
	}
	if _, ok := y.Num("Minutes"); ok {
		t.Error("non-numeric minutes should be undefined")
	}
	if y.Str("Minutes") != "abc" {
		t.Errorf("raw minutes = %q, want abc", y.Str("Minutes"))
	}
}

func TestParse_InfersPlainNumericColumns(t *testing.T) {
	tbl, err := Parse(strings.NewReader("Team,Player,Rating,Comment\nA,X,7.5,good\nA,Y,,3\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !tbl.IsNumeric("Rating") {
		t.Error("Rating should be numeric")
	}
	if tbl.IsNumeric("Comment") {
		t.Error("Comment should not be numeric")
	}
	if tbl.IsNumeric("Team") || tbl.IsNumeric("Player") {
		t.Error("identity columns should not be numeric")
	}
}

func TestParse_ShortRecordsPadMissing(t *testing.T) {
	tbl, err := Parse(strings.NewReader("Team,Player,Minutes\nA,X\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !tbl.Rows[0].Get("Minutes").Missing() {
		t.Error("short record should leave Minutes missing")
	}
}

func TestParse_MissingTeamColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Player,Minutes\nX,90\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLoad_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	data := "\ufeffClub,Player,Minutes,Goals\nTeam A,Player X,90,1\nTeam B,Player Y,45,0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("loading the same file twice produced different tables")
	}
	if got := first.Teams(); !reflect.DeepEqual(got, []string{"Team A", "Team B"}) {
		t.Errorf("Teams = %v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
