package salarycap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"rsff-cap-mcp/internal/rules"
	"rsff-cap-mcp/internal/sheet"
)

// ErrTeamNotFound is returned when a query matches no owner or roster team.
var ErrTeamNotFound = errors.New("team not found")

// ResolveTeam maps a loose query ("alp", "alpha#1") to the team label used in
// the Rosters tab. Owners are searched first, then distinct roster teams.
func ResolveTeam(snap *sheet.Snapshot, query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", fmt.Errorf("%w: empty query", ErrTeamNotFound)
	}
	for _, o := range snap.Owners() {
		for _, n := range o.Names() {
			if strings.Contains(strings.ToLower(n), q) {
				return o.Label(), nil
			}
		}
	}
	for _, t := range rosterTeams(snap) {
		if strings.Contains(strings.ToLower(t), q) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTeamNotFound, query)
}

// ResolveCaller maps a chat user's handles (username, display name, ...) to a
// team label: an exact, case-insensitive match on any Owners name field, else
// a roster team with that exact name.
func ResolveCaller(snap *sheet.Snapshot, handles ...string) (string, error) {
	cands := make([]string, 0, len(handles))
	for _, h := range handles {
		if h = strings.TrimSpace(h); h != "" {
			cands = append(cands, h)
		}
	}
	if len(cands) == 0 {
		return "", fmt.Errorf("%w: no caller handle", ErrTeamNotFound)
	}
	for _, o := range snap.Owners() {
		names := []string{o.Handle, o.OwnerDisplay, o.DisplayName, o.TeamName}
		for _, n := range names {
			if n == "" {
				continue
			}
			for _, c := range cands {
				if strings.EqualFold(n, c) {
					return o.Label(), nil
				}
			}
		}
	}
	for _, t := range rosterTeams(snap) {
		for _, c := range cands {
			if strings.EqualFold(t, c) {
				return t, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no team mapped to %s", ErrTeamNotFound, strings.Join(cands, "/"))
}

// rosterTeams lists distinct team labels from Rosters, sorted.
func rosterTeams(snap *sheet.Snapshot) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range snap.Rosters() {
		if r.Team == "" || seen[r.Team] {
			continue
		}
		seen[r.Team] = true
		out = append(out, r.Team)
	}
	sort.Strings(out)
	return out
}

// Teams lists every franchise label, Owners first then roster-only teams.
func Teams(snap *sheet.Snapshot) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, o := range snap.Owners() {
		l := o.Label()
		if l == "" || seen[strings.ToLower(l)] {
			continue
		}
		seen[strings.ToLower(l)] = true
		out = append(out, l)
	}
	for _, t := range rosterTeams(snap) {
		if !seen[strings.ToLower(t)] {
			seen[strings.ToLower(t)] = true
			out = append(out, t)
		}
	}
	return out
}

// capLimitFor resolves a team's cap: Rules cap_limit, then the team's Owners
// override, then the league default.
func capLimitFor(snap *sheet.Snapshot, rs rules.Rules, team string) float64 {
	if rs.Has(rules.KeyCapLimit) {
		if v := rs.CapLimit(); v > 0 {
			return v
		}
	}
	for _, o := range snap.Owners() {
		if strings.EqualFold(o.Label(), team) && o.CapLimit > 0 {
			return o.CapLimit
		}
	}
	return rules.DefaultCapLimit
}

// teamRows returns the team's rows whose on-roster flag is set, IR included.
func teamRows(snap *sheet.Snapshot, team string) []sheet.RosterRow {
	out := make([]sheet.RosterRow, 0, 16)
	for _, r := range snap.Rosters() {
		if r.OnRoster && strings.EqualFold(r.Team, team) {
			out = append(out, r)
		}
	}
	return out
}

// CapLimit is the cap ceiling that applies to team in snap.
func CapLimit(snap *sheet.Snapshot, team string) float64 {
	return capLimitFor(snap, rules.Resolve(snap.Rows(sheet.TabRules)), team)
}
