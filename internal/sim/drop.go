package sim

import (
	"fmt"

	"rsff-cap-mcp/internal/match"
	"rsff-cap-mcp/internal/sheet"
)

// SimulateDrop prices releasing the player matching query from team. Only
// the team's own on-roster players can match.
func SimulateDrop(snap *sheet.Snapshot, team, query string) DropResult {
	return simulateDrop(newLedger(snap), team, query)
}

func simulateDrop(l ledger, team, query string) DropResult {
	rows := l.team(team)
	byName := make(map[string]sheet.RosterRow, len(rows))
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Player == "" {
			continue
		}
		if _, dup := byName[r.Player]; !dup {
			names = append(names, r.Player)
		}
		byName[r.Player] = r
	}

	picked := match.Pick(names, query)
	if picked == "" {
		return DropResult{
			Status:     StatusInvalid,
			Code:       CodeNotOnRoster,
			Reason:     fmt.Sprintf("%s is not on your current roster.", query),
			Violations: []Violation{},
		}
	}

	row := byName[picked]
	before := len(rows)
	after := before - 1
	if after < 0 {
		after = 0
	}
	return DropResult{
		Status:       StatusOK,
		Team:         team,
		Player:       picked,
		SalaryBase:   row.AAV,
		DeadCap:      row.AAV * l.rules.DeadCapFraction(),
		RosterBefore: before,
		RosterAfter:  after,
		WasDP:        row.DP,
		WasIR:        row.OnIR,
		Violations:   []Violation{},
	}
}
