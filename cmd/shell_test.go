package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/footstats/internal/actions"
)

func TestSplitArgs(t *testing.T) {
	got, err := splitArgs(`player "Team A" 'Player X'  extra`)
	require.NoError(t, err)
	assert.Equal(t, []string{"player", "Team A", "Player X", "extra"}, got)

	got, err = splitArgs(`top_players metric=xG team="Team A"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"top_players", "metric=xG", "team=Team A"}, got)

	got, err = splitArgs(`games ""`)
	require.NoError(t, err)
	assert.Equal(t, []string{"games", ""}, got)
}

func TestSplitArgs_Errors(t *testing.T) {
	_, err := splitArgs(`player "Team A`)
	assert.Error(t, err)

	_, err = splitArgs("   ")
	assert.Error(t, err)
}

func TestKeyValues(t *testing.T) {
	params, err := keyValues([]string{"metric=xG", "top_n=3", "team=Team A"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"metric": "xG", "top_n": "3", "team": "Team A"}, params)

	_, err = keyValues([]string{"metric"})
	assert.Error(t, err)

	_, err = keyValues([]string{"=xG"})
	assert.Error(t, err)
}

func TestPrintFailure_SortedContext(t *testing.T) {
	f := &actions.Failure{Reason: "Game not found.", Context: map[string]any{
		"team": "Team A", "game_key": "k", "action": "team_game_summary",
	}}
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	for i := 0; i < 10; i++ {
		var buf bytes.Buffer
		printFailure(&buf, f)
		out := buf.String()
		require.True(t, strings.HasPrefix(out, "error: Game not found."), out)
		a, g, tm := strings.Index(out, "action:"), strings.Index(out, "game_key:"), strings.Index(out, "team:")
		assert.True(t, a < g && g < tm, "context not sorted:\n%s", out)
	}
}
