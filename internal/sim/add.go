package sim

import (
	"fmt"
	"strings"

	"rsff-cap-mcp/internal/match"
	"rsff-cap-mcp/internal/sheet"
)

// SimulateAdd prices claiming the player matching query onto team at full
// salary. Players already on any roster are rejected; a full roster is only
// flagged.
func SimulateAdd(snap *sheet.Snapshot, team, query string) AddResult {
	return simulateAdd(newLedger(snap), team, query, false)
}

// SimulateAddDiscounted is SimulateAdd with the in-season add discount
// applied once current_week reaches add_discount_week.
func SimulateAddDiscounted(snap *sheet.Snapshot, team, query string) AddResult {
	return simulateAdd(newLedger(snap), team, query, true)
}

func simulateAdd(l ledger, team, query string, discounted bool) AddResult {
	owners := l.owners()
	picked := match.Pick(l.market(), query)
	if picked == "" {
		return AddResult{
			Status:     StatusInvalid,
			Code:       CodeNoMatch,
			Reason:     fmt.Sprintf("No player match for '%s'.", query),
			Violations: []Violation{},
		}
	}

	if owner, ok := owners[nameKey(picked)]; ok {
		res := AddResult{
			Status:       StatusInvalid,
			Code:         CodeAlreadyRostered,
			Team:         team,
			Player:       picked,
			Availability: "ROSTERED by " + owner,
			Violations:   []Violation{},
		}
		if strings.EqualFold(owner, team) {
			res.Reason = fmt.Sprintf("%s is already on your roster.", picked)
		} else {
			res.Reason = fmt.Sprintf("%s is already rostered by %s.", picked, owner)
		}
		return res
	}

	before := len(l.team(team))
	limit := l.rules.RosterMax()
	violations := make([]Violation, 0, 1)
	if before >= limit {
		violations = append(violations, Violation{
			Code:   CodeRosterMax,
			Detail: fmt.Sprintf("Roster would be %d/%d. You must drop someone to make this legal.", before+1, limit),
		})
	}

	base := l.salaries[nameKey(picked)]
	discount := 0.0
	if discounted {
		discount = l.rules.AddDiscountFraction()
	}
	return AddResult{
		Status:          StatusOK,
		Team:            team,
		Player:          picked,
		Availability:    "FA",
		SalaryBase:      base,
		SalaryEffective: base * (1 - discount),
		DiscountApplied: discount,
		RosterBefore:    before,
		RosterAfter:     before + 1,
		Violations:      violations,
	}
}
