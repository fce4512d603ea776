// Package sim answers "what happens to my cap if..." questions against a
// snapshot. Nothing here mutates the snapshot, and a rejected transaction is
// an INVALID result rather than an error.
package sim

import (
	"sort"
	"strings"

	"rsff-cap-mcp/internal/rules"
	"rsff-cap-mcp/internal/sheet"
)

const (
	StatusOK      = "OK"
	StatusInvalid = "INVALID"
)

// Failure codes carried on INVALID results.
const (
	CodeNoMatch         = "NO_MATCH"
	CodeAlreadyRostered = "ALREADY_ROSTERED"
	CodeNotOnRoster     = "NOT_ON_ROSTER"
	CodeEmptyScenario   = "EMPTY_SCENARIO"
)

// CodeRosterMax is advisory: the add is allowed but the roster ends up over
// the limit until someone is dropped.
const CodeRosterMax = "ROSTER_MAX"

// Violation is a rule the transaction would break.
type Violation struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// AddResult is the outcome of adding a player.
type AddResult struct {
	Status          string      `json:"status"`
	Reason          string      `json:"reason,omitempty"`
	Code            string      `json:"code,omitempty"`
	Team            string      `json:"team,omitempty"`
	Player          string      `json:"player,omitempty"`
	Availability    string      `json:"availability,omitempty"`
	SalaryBase      float64     `json:"salary_base"`
	SalaryEffective float64     `json:"salary_effective"`
	DiscountApplied float64     `json:"discount_applied"`
	RosterBefore    int         `json:"roster_before"`
	RosterAfter     int         `json:"roster_after"`
	Violations      []Violation `json:"violations"`
}

// OK reports whether the add went through.
func (r AddResult) OK() bool { return r.Status == StatusOK }

// DropResult is the outcome of releasing a player.
type DropResult struct {
	Status       string      `json:"status"`
	Reason       string      `json:"reason,omitempty"`
	Code         string      `json:"code,omitempty"`
	Team         string      `json:"team,omitempty"`
	Player       string      `json:"player,omitempty"`
	SalaryBase   float64     `json:"salary_base"`
	DeadCap      float64     `json:"dead_cap"`
	RosterBefore int         `json:"roster_before"`
	RosterAfter  int         `json:"roster_after"`
	WasDP        bool        `json:"was_dp"`
	WasIR        bool        `json:"was_ir"`
	Violations   []Violation `json:"violations"`
}

// OK reports whether the drop went through.
func (r DropResult) OK() bool { return r.Status == StatusOK }

// WhatIfResult is a combined add and/or drop.
type WhatIfResult struct {
	Status     string      `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	Code       string      `json:"code,omitempty"`
	Team       string      `json:"team"`
	CapLimit   float64     `json:"cap_limit"`
	UsedDelta  float64     `json:"used_delta"`
	DPBefore   float64     `json:"dp_before"`
	DPAfter    float64     `json:"dp_after"`
	Add        *AddResult  `json:"add_result,omitempty"`
	Drop       *DropResult `json:"drop_result,omitempty"`
	Violations []Violation `json:"violations"`
}

// OK reports whether every leg of the scenario went through.
func (r WhatIfResult) OK() bool { return r.Status == StatusOK }

// ledger is the slice of a snapshot the simulators read.
type ledger struct {
	rules    rules.Rules
	rosters  []sheet.RosterRow
	salaries map[string]float64 // keyed by nameKey
	names    []string           // salary-table spellings
}

func newLedger(snap *sheet.Snapshot) ledger {
	l := ledger{
		rules:    rules.Resolve(snap.Rows(sheet.TabRules)),
		rosters:  snap.Rosters(),
		salaries: make(map[string]float64),
	}
	for _, s := range snap.Salaries() {
		if s.Player != "" {
			l.salaries[nameKey(s.Player)] = s.AAV
			l.names = append(l.names, s.Player)
		}
	}
	return l
}

// nameKey is how player names are compared across tabs.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// team returns team's on-roster rows, IR included, in sheet order.
func (l ledger) team(team string) []sheet.RosterRow {
	out := make([]sheet.RosterRow, 0, 16)
	for _, r := range l.rosters {
		if r.OnRoster && strings.EqualFold(r.Team, team) {
			out = append(out, r)
		}
	}
	return out
}

// owners maps every rostered player's nameKey to the team holding it.
func (l ledger) owners() map[string]string {
	m := make(map[string]string)
	for _, r := range l.rosters {
		if r.OnRoster && r.Player != "" {
			m[nameKey(r.Player)] = r.Team
		}
	}
	return m
}

// market is every rostered or salaried name, sorted and unique ignoring
// case. Roster spellings win over salary-table ones.
func (l ledger) market() []string {
	seen := make(map[string]bool, len(l.rosters)+len(l.salaries))
	out := make([]string, 0, len(l.rosters)+len(l.salaries))
	add := func(n string) {
		if k := nameKey(n); n != "" && !seen[k] {
			seen[k] = true
			out = append(out, n)
		}
	}
	for _, r := range l.rosters {
		if r.OnRoster {
			add(r.Player)
		}
	}
	for _, n := range l.names {
		add(n)
	}
	sort.Strings(out)
	return out
}
