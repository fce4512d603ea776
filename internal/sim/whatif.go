package sim

import (
	"strings"

	"rsff-cap-mcp/internal/salarycap"
	"rsff-cap-mcp/internal/sheet"
)

// SimulateWhatIf composes an add and/or a drop on team and reports the net
// change in cap used, re-selecting the DP over the resulting active roster:
//
//	used_delta = add + dead - base_drop + (base_drop if dropped from IR) - (dp_after - dp_before)
//
// DP figures are salaries scaled by dp_relief_pct, and zero when DP relief
// is disabled.
func SimulateWhatIf(snap *sheet.Snapshot, team, addQuery, dropQuery string) WhatIfResult {
	l := newLedger(snap)
	res := WhatIfResult{
		Status:     StatusOK,
		Team:       team,
		CapLimit:   salarycap.CapLimit(snap, team),
		Violations: []Violation{},
	}

	addQuery = strings.TrimSpace(addQuery)
	dropQuery = strings.TrimSpace(dropQuery)
	if addQuery == "" && dropQuery == "" {
		res.Status = StatusInvalid
		res.Code = CodeEmptyScenario
		res.Reason = "Nothing to simulate: give a player to add, drop, or both."
		return res
	}

	if addQuery != "" {
		a := simulateAdd(l, team, addQuery, false)
		res.Add = &a
		res.Violations = append(res.Violations, a.Violations...)
	}
	if dropQuery != "" {
		d := simulateDrop(l, team, dropQuery)
		res.Drop = &d
		res.Violations = append(res.Violations, d.Violations...)
	}
	switch {
	case res.Add != nil && !res.Add.OK():
		res.Status, res.Code, res.Reason = StatusInvalid, res.Add.Code, res.Add.Reason
		return res
	case res.Drop != nil && !res.Drop.OK():
		res.Status, res.Code, res.Reason = StatusInvalid, res.Drop.Code, res.Drop.Reason
		return res
	}

	rows := l.team(team)
	res.DPBefore = l.dpScale(currentDP(rows))

	var addSalary, baseDrop, dead float64
	var wasIR bool
	dropped := ""
	if res.Drop != nil {
		dropped = res.Drop.Player
		baseDrop = res.Drop.SalaryBase
		dead = res.Drop.DeadCap
		wasIR = res.Drop.WasIR
	}
	if res.Add != nil {
		addSalary = res.Add.SalaryEffective
	}

	after := 0.0
	for _, r := range rows {
		if r.OnIR || (dropped != "" && r.Player == dropped) {
			continue
		}
		if r.AAV > after {
			after = r.AAV
		}
	}
	if addSalary > after {
		after = addSalary
	}
	res.DPAfter = l.dpScale(after)

	delta := addSalary + dead - baseDrop
	if wasIR {
		delta += baseDrop
	}
	delta -= res.DPAfter - res.DPBefore
	res.UsedDelta = delta
	return res
}

// currentDP is the salary of the team's flagged active DP, or the highest
// active salary when nobody is flagged.
func currentDP(rows []sheet.RosterRow) float64 {
	flagged, highest := 0.0, 0.0
	for _, r := range rows {
		if r.OnIR {
			continue
		}
		if r.AAV > highest {
			highest = r.AAV
		}
		if r.DP {
			flagged = r.AAV
		}
	}
	if flagged > 0 {
		return flagged
	}
	return highest
}

func (l ledger) dpScale(salary float64) float64 {
	if !l.rules.DPEnabled() {
		return 0
	}
	return salary * l.rules.DPReliefPct()
}
