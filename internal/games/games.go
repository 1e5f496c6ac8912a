// Package games infers which rows of a team's subset belong to the same
// game. Keys are built deterministically from whichever identifying columns
// are present; there is no fuzzy matching.
package games

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pable/footstats/internal/model"
)

// Columns binds at most one header per semantic role. Empty means unbound.
type Columns struct {
	Date      string
	Opponent  string
	Round     string
	HomeAway  string
	Venue     string
	MatchID   string
	MatchName string
}

var (
	reDate      = regexp.MustCompile(`(?i)date|match.?day|kick.?off`)
	reOpponent  = regexp.MustCompile(`(?i)opponent|opp|against`)
	reRound     = regexp.MustCompile(`(?i)round|gw|gameweek|matchweek|md`)
	reHomeAway  = regexp.MustCompile(`(?i)home.?away|ha|isHome`)
	reVenue     = regexp.MustCompile(`(?i)venue|home|away`)
	reMatchID   = regexp.MustCompile(`(?i)match.?id|fixture|game.?id`)
	reMatchName = regexp.MustCompile(`(?i)(?:^|_)match$|fixture$`)
	reAway      = regexp.MustCompile(`(?i)away`)
)

// KeySeparator joins the composite key parts.
const KeySeparator = " | "

// DetectColumns binds each role to the first header matching its pattern.
func DetectColumns(headers []string) Columns {
	find := func(re *regexp.Regexp) string {
		for _, h := range headers {
			if re.MatchString(h) {
				return h
			}
		}
		return ""
	}
	return Columns{
		Date:      find(reDate),
		Opponent:  find(reOpponent),
		Round:     find(reRound),
		HomeAway:  find(reHomeAway),
		Venue:     find(reVenue),
		MatchID:   find(reMatchID),
		MatchName: find(reMatchName),
	}
}

// keyParts returns the composite key columns in their fixed order.
func (c Columns) keyParts() []string {
	var parts []string
	for _, col := range []string{c.Date, c.Opponent, c.Round, c.MatchName} {
		if col != "" {
			parts = append(parts, col)
		}
	}
	return parts
}

// Resolution is the output of Resolve. Keys and Labels are parallel to the
// input table's rows; Games lists the distinct (key, label) pairs.
type Resolution struct {
	Table   *model.Table
	Columns Columns
	Keys    []string
	Labels  []string
	Games   []model.Game
}

// Resolve derives a game key and label for every row, and the distinct
// games ordered by parsed date (unparseable or missing dates last, in first
// occurrence order). It is a pure function of the rows.
func Resolve(t *model.Table) Resolution {
	cols := DetectColumns(t.Columns)
	res := Resolution{
		Table:   t,
		Columns: cols,
		Keys:    make([]string, len(t.Rows)),
		Labels:  make([]string, len(t.Rows)),
	}
	parts := cols.keyParts()
	for i, r := range t.Rows {
		res.Keys[i] = gameKey(r, cols, parts)
		res.Labels[i] = gameLabel(r, cols, res.Keys[i])
	}
	res.Games = distinctGames(res, cols)
	return res
}

func gameKey(r model.Row, cols Columns, parts []string) string {
	if cols.MatchID != "" {
		return r.Str(cols.MatchID)
	}
	if len(parts) == 0 {
		return strconv.Itoa(r.Index)
	}
	vals := make([]string, len(parts))
	for i, p := range parts {
		vals[i] = r.Str(p)
	}
	return strings.Join(vals, KeySeparator)
}

func gameLabel(r model.Row, cols Columns, key string) string {
	str := func(col string) string {
		if col == "" {
			return ""
		}
		return r.Str(col)
	}
	date, opp, mname := str(cols.Date), str(cols.Opponent), str(cols.MatchName)
	marker := atOrVs(str(cols.HomeAway), str(cols.Venue))

	switch {
	case date != "" && opp != "":
		return date + " " + marker + " " + opp
	case mname != "":
		return mname
	case opp != "":
		return marker + " " + opp
	}
	return key
}

// atOrVs returns "@" for away games and "vs" otherwise. A home/away flag
// decides when set; the venue text is only consulted without one.
func atOrVs(ha, venue string) string {
	if ha != "" {
		switch strings.ToLower(strings.TrimSpace(ha)) {
		case "a", "away", "false", "0":
			return "@"
		}
		return "vs"
	}
	if venue != "" && reAway.MatchString(venue) {
		return "@"
	}
	return "vs"
}

func distinctGames(res Resolution, cols Columns) []model.Game {
	type entry struct {
		game  model.Game
		when  time.Time
		dated bool
	}
	seen := make(map[model.Game]struct{})
	var entries []entry
	for i, r := range res.Table.Rows {
		g := model.Game{Key: res.Keys[i], Label: res.Labels[i]}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		e := entry{game: g}
		if cols.Date != "" {
			e.when, e.dated = ParseDate(r.Str(cols.Date))
		}
		entries = append(entries, e)
	}
	if cols.Date != "" {
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.dated != b.dated {
				return a.dated
			}
			return a.dated && a.when.Before(b.when)
		})
	}
	out := make([]model.Game, len(entries))
	for i, e := range entries {
		out[i] = e.game
	}
	return out
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
}

// ParseDate parses s with the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Select returns the rows of one game in table order.
func (r Resolution) Select(key string) *model.Table {
	var rows []model.Row
	for i, row := range r.Table.Rows {
		if r.Keys[i] == key {
			rows = append(rows, row)
		}
	}
	return r.Table.WithRows(rows)
}

// Groups returns row positions per game key, keyed in first-occurrence order.
func (r Resolution) Groups() (order []string, groups map[string][]int) {
	groups = make(map[string][]int)
	for i, k := range r.Keys {
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	return order, groups
}

// Label returns the label of the first row carrying key.
func (r Resolution) Label(key string) (string, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Labels[i], true
		}
	}
	return "", false
}

// DistinctByKey returns Games with later duplicates of a key removed.
func (r Resolution) DistinctByKey() []model.Game {
	seen := make(map[string]struct{}, len(r.Games))
	out := make([]model.Game, 0, len(r.Games))
	for _, g := range r.Games {
		if _, ok := seen[g.Key]; ok {
			continue
		}
		seen[g.Key] = struct{}{}
		out = append(out, g)
	}
	return out
}
