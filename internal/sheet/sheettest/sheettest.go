// Package sheettest builds small in-memory snapshots for tests, using the
// same header spellings the real league sheet uses.
package sheettest

import (
	"strconv"
	"time"

	"rsff-cap-mcp/internal/sheet"
)

// Stamp is the fixed time every fixture snapshot is built at.
var Stamp = time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)

// Book accumulates tab rows.
type Book struct {
	tabs map[string][]map[string]string
}

// RowOpt tweaks a roster row.
type RowOpt func(map[string]string)

// DP flags the row as the designated player.
func DP() RowOpt { return func(r map[string]string) { r["DP?"] = "TRUE" } }

// IR flags the row as on injured reserve.
func IR() RowOpt { return func(r map[string]string) { r["On IR?"] = "TRUE" } }

// Off clears the on-roster flag.
func Off() RowOpt { return func(r map[string]string) { r["On Roster Flag"] = "FALSE" } }

// ID sets the platform player id.
func ID(id string) RowOpt { return func(r map[string]string) { r["Player ID"] = id } }

// Pos sets the position.
func Pos(p string) RowOpt { return func(r map[string]string) { r[" Pos"] = p } }

// New starts an empty book.
func New() *Book {
	return &Book{tabs: make(map[string][]map[string]string)}
}

// Row appends a raw record to any tab.
func (b *Book) Row(tab string, rec map[string]string) *Book {
	b.tabs[tab] = append(b.tabs[tab], rec)
	return b
}

// Rule appends a key/value row to the Rules tab.
func (b *Book) Rule(key, value string) *Book {
	return b.Row(sheet.TabRules, map[string]string{"key": key, "value": value})
}

// Roster appends an on-roster, non-IR, non-DP row unless opts say otherwise.
func (b *Book) Roster(team, player string, aav float64, opts ...RowOpt) *Book {
	r := map[string]string{
		"Team":           team,
		" Player Name":   player,
		"AAV":            Money(aav),
		"On Roster Flag": "TRUE",
		"On IR?":         "FALSE",
		"DP?":            "FALSE",
	}
	for _, o := range opts {
		o(r)
	}
	return b.Row(sheet.TabRosters, r)
}

// Salary appends a salary-table row.
func (b *Book) Salary(player string, aav float64, nfl, pos, bye string) *Book {
	return b.Row("Salary2025", map[string]string{
		"player_name":  player,
		"cap_hit_2025": Money(aav),
		"team":         nfl,
		"pos":          pos,
		"bye":          bye,
	})
}

// SalaryWithID appends a salary-table row keyed by a sleeper id.
func (b *Book) SalaryWithID(player, id string, aav float64) *Book {
	return b.Row("Salary2025", map[string]string{
		"player_name":       player,
		"sleeper_player_id": id,
		"cap_hit_2025":      Money(aav),
	})
}

// Owner appends an Owners row.
func (b *Book) Owner(team, handle string) *Book {
	return b.Row("Owners2025", map[string]string{
		"team_name":    team,
		"discord user": handle,
	})
}

// Snapshot freezes the book at Stamp.
func (b *Book) Snapshot() *sheet.Snapshot {
	return sheet.New(b.tabs, Stamp)
}

// Money renders an amount the way the sheet does ("$1,250,000").
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	out := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	res := "$" + string(out) + frac
	if neg {
		res = "-" + res
	}
	return res
}
