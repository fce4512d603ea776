package salarycap

import (
	"fmt"
	"strings"

	"rsff-cap-mcp/internal/cell"
	"rsff-cap-mcp/internal/rules"
	"rsff-cap-mcp/internal/sheet"
)

// TeamEntry is one rostered player in a TeamSummary.
type TeamEntry struct {
	Name   string  `json:"name"`
	Pos    string  `json:"pos,omitempty"`
	Salary float64 `json:"salary"`
	DP     bool    `json:"dp"`
	IR     bool    `json:"ir"`
}

// TeamSummary reconciles gross cap, DP and IR relief for one team.
//
// Unlike CapSummary, every DP-flagged active row is relieved (there is no
// single-DP pick and no auto-highest fallback) and salaries come from the
// roster rows themselves. DPFlagged tells callers when the two disagree.
type TeamSummary struct {
	Team           string      `json:"team_name"`
	CapLimit       float64     `json:"cap_limit"`
	GrossCap       float64     `json:"gross_cap"`
	DPRelief       float64     `json:"dp_relief"`
	IRRelief       float64     `json:"ir_relief"`
	CapUsed        float64     `json:"cap_used"`
	CapRemaining   float64     `json:"cap_remaining"`
	DPPlayer       string      `json:"dp_player,omitempty"`
	DPFlagged      int         `json:"dp_flagged_count"`
	PlayersCounted int         `json:"players_counted"`
	Active         []TeamEntry `json:"active"`
	IR             []TeamEntry `json:"ir"`
}

// SummarizeTeam builds the TeamSummary for an exact (case-insensitive) team name.
func SummarizeTeam(snap *sheet.Snapshot, teamName string) (TeamSummary, error) {
	team := ""
	for _, t := range Teams(snap) {
		if strings.EqualFold(t, strings.TrimSpace(teamName)) {
			team = t
			break
		}
	}
	if team == "" {
		return TeamSummary{}, fmt.Errorf("%w: %q", ErrTeamNotFound, teamName)
	}
	rs := rules.Resolve(snap.Rows(sheet.TabRules))

	out := TeamSummary{
		Team:   team,
		Active: make([]TeamEntry, 0, 16),
		IR:     make([]TeamEntry, 0, 4),
	}
	dpSalary := 0.0
	for _, r := range teamRows(snap, team) {
		e := TeamEntry{
			Name:   r.Player,
			Pos:    r.Position,
			Salary: r.AAV,
			DP:     r.DP,
			IR:     r.OnIR,
		}
		out.GrossCap += e.Salary
		if e.IR {
			out.IR = append(out.IR, e)
			out.IRRelief += e.Salary
			continue
		}
		out.Active = append(out.Active, e)
		if e.DP {
			out.DPFlagged++
			dpSalary += e.Salary
			if out.DPPlayer == "" {
				out.DPPlayer = e.Name
			}
		}
	}
	if rs.DPEnabled() {
		out.DPRelief = dpSalary * rs.DPReliefPct()
	} else {
		out.DPPlayer = ""
	}

	used := out.GrossCap - out.DPRelief - out.IRRelief
	if used < 0 {
		used = 0
	}
	limit := capLimitFor(snap, rs, team)

	out.CapLimit = cell.Round2(limit)
	out.GrossCap = cell.Round2(out.GrossCap)
	out.DPRelief = cell.Round2(out.DPRelief)
	out.IRRelief = cell.Round2(out.IRRelief)
	out.CapUsed = cell.Round2(used)
	out.CapRemaining = cell.Round2(limit - used)
	out.PlayersCounted = len(out.Active)
	return out, nil
}
