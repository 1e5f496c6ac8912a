package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	writeCSV(t, path, "Team,Player,Minutes\nTeam A,P1,90\n")

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path())
	assert.Equal(t, 1, src.Table().Len())
	assert.False(t, src.LoadedAt().IsZero())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReload_PicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	writeCSV(t, path, "Team,Player,Minutes\nTeam A,P1,90\n")
	src, err := Open(path)
	require.NoError(t, err)

	writeCSV(t, path, "Team,Player,Minutes\nTeam A,P1,90\nTeam B,Q1,45\n")
	require.NoError(t, src.Reload())
	assert.Equal(t, 2, src.Table().Len())
	assert.Equal(t, []string{"Team A", "Team B"}, src.Table().Teams())
}

func TestReload_FailureKeepsPreviousTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	writeCSV(t, path, "Team,Player,Minutes\nTeam A,P1,90\n")
	src, err := Open(path)
	require.NoError(t, err)
	before := src.Table()
	loadedAt := src.LoadedAt()

	writeCSV(t, path, "Player,Minutes\nP1,90\n")
	assert.Error(t, src.Reload())
	assert.Same(t, before, src.Table())
	assert.Equal(t, loadedAt, src.LoadedAt())
}
