package storage

import (
	"path/filepath"
	"testing"

	"github.com/pable/footstats/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	if db.Path() != MemoryPath {
		t.Fatalf("Path() = %q", db.Path())
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTable() *model.Table {
	cells := func(team, player string, minutes float64, pos string) map[string]model.Value {
		return map[string]model.Value{
			model.ColTeam:     model.Text(team),
			model.ColPlayer:   model.Text(player),
			model.ColMinutes:  model.Number(minutes),
			model.ColPosition: model.Text(pos),
		}
	}
	rows := []model.Row{
		{Index: 0, Cells: cells("Team A", "Player X", 90, "FW")},
		{Index: 1, Cells: cells("Team A", "Player Y", 45, "")},
		{Index: 2, Cells: map[string]model.Value{
			model.ColTeam:    model.Text("Team B"),
			model.ColPlayer:  model.Text("Player Z"),
			model.ColMinutes: {Raw: "n/a"},
		}},
	}
	return model.NewTable(
		[]string{model.ColTeam, model.ColPlayer, model.ColMinutes, model.ColPosition},
		[]string{model.ColMinutes},
		rows,
	)
}

func TestImportAndQuery(t *testing.T) {
	db := openMemDB(t)
	if err := db.ImportTable(sampleTable(), "sample.csv"); err != nil {
		t.Fatalf("ImportTable: %v", err)
	}

	cols, rows, err := db.QueryRaw(`SELECT "Player", "Minutes", "Position" FROM observations ORDER BY _row`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[0] != "Player" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][1] != "90" {
		t.Errorf("Minutes row 0: got %q, want 90", rows[0][1])
	}
	if rows[1][2] != "NULL" {
		t.Errorf("empty Position should be NULL, got %q", rows[1][2])
	}
	if rows[2][1] != "NULL" {
		t.Errorf("uncoercible Minutes should be NULL, got %q", rows[2][1])
	}
}

func TestImportNumericAggregates(t *testing.T) {
	db := openMemDB(t)
	if err := db.ImportTable(sampleTable(), "sample.csv"); err != nil {
		t.Fatalf("ImportTable: %v", err)
	}
	_, rows, err := db.QueryRaw(`SELECT SUM("Minutes") FROM observations WHERE "Team" = 'Team A'`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if rows[0][0] != "135" {
		t.Errorf("SUM(Minutes): got %q, want 135", rows[0][0])
	}
}

func TestReimportReplacesRows(t *testing.T) {
	db := openMemDB(t)
	tbl := sampleTable()
	for i := 0; i < 2; i++ {
		if err := db.ImportTable(tbl, "sample.csv"); err != nil {
			t.Fatalf("ImportTable #%d: %v", i, err)
		}
	}
	_, rows, err := db.QueryRaw(`SELECT COUNT(*) FROM observations`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if rows[0][0] != "3" {
		t.Errorf("expected 3 rows after re-import, got %s", rows[0][0])
	}

	imports, err := db.Imports()
	if err != nil {
		t.Fatalf("Imports: %v", err)
	}
	if len(imports) != 2 {
		t.Fatalf("expected 2 recorded imports, got %d", len(imports))
	}
	if imports[0].RowCount != 3 || imports[0].ColumnCount != 4 || imports[0].Source != "sample.csv" {
		t.Errorf("unexpected import record: %+v", imports[0])
	}
}

func TestColumnNameCollisions(t *testing.T) {
	db := openMemDB(t)
	tbl := model.NewTable(
		[]string{model.ColTeam, model.ColPlayer, "goals", "Goals", "_row"},
		[]string{"goals", "Goals"},
		[]model.Row{{Index: 0, Cells: map[string]model.Value{
			model.ColTeam:   model.Text("T"),
			model.ColPlayer: model.Text("P"),
			"goals":         model.Number(1),
			"Goals":         model.Number(2),
			"_row":          model.Text("x"),
		}}},
	)
	if err := db.ImportTable(tbl, "dup.csv"); err != nil {
		t.Fatalf("ImportTable: %v", err)
	}
	cols, err := db.Columns()
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 5 {
		t.Fatalf("expected 5 columns, got %d", len(cols))
	}
	if cols[3].SQLName != "Goals_2" {
		t.Errorf("colliding column: got %q, want Goals_2", cols[3].SQLName)
	}
	if cols[4].SQLName != "_row_2" {
		t.Errorf("row column collision: got %q, want _row_2", cols[4].SQLName)
	}
	if !cols[2].Numeric || cols[0].Numeric {
		t.Errorf("numeric flags wrong: %+v", cols)
	}

	_, rows, err := db.QueryRaw(`SELECT "Goals_2" FROM observations`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if rows[0][0] != "2" {
		t.Errorf("Goals_2: got %q, want 2", rows[0][0])
	}
}

func TestQueryRawError(t *testing.T) {
	db := openMemDB(t)
	if _, _, err := db.QueryRaw(`SELECT * FROM nope`); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestFileMirrorPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.ImportTable(sampleTable(), "players.csv"); err != nil {
		t.Fatalf("ImportTable: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	imports, err := db.Imports()
	if err != nil {
		t.Fatalf("Imports: %v", err)
	}
	if len(imports) != 1 || imports[0].Source != "players.csv" || imports[0].RowCount != 3 {
		t.Errorf("imports = %+v", imports)
	}
}
