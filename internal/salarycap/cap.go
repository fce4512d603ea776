package salarycap

import (
	"sort"
	"strings"

	"rsff-cap-mcp/internal/cell"
	"rsff-cap-mcp/internal/rules"
	"rsff-cap-mcp/internal/sheet"
)

// CapSummary is a team's cap position with at most one DP relieved.
type CapSummary struct {
	Team           string  `json:"team_name"`
	CapLimit       float64 `json:"cap_limit"`
	CapUsed        float64 `json:"cap_used"`
	CapRemaining   float64 `json:"cap_remaining"`
	PlayersCounted int     `json:"players_counted"`
	DPRelief       float64 `json:"dp_relief"`
	DPPlayer       string  `json:"dp_player,omitempty"`
}

// CountedPlayer is one salary counted toward the cap.
type CountedPlayer struct {
	Name    string  `json:"name"`
	Pos     string  `json:"pos,omitempty"`
	Salary  float64 `json:"salary"`
	Flagged bool    `json:"dp_flagged"`
	DP      bool    `json:"dp"`
}

// CapDetail is CapSummary plus the largest counted salaries.
type CapDetail struct {
	CapSummary
	Top          []CountedPlayer `json:"top"`
	TotalCounted int             `json:"total_counted"`
}

// salaryIndex prices roster rows from the salary table: platform id first,
// then lowercased name, then the roster row's own AAV.
type salaryIndex struct {
	byID   map[string]float64
	byName map[string]float64
}

func newSalaryIndex(snap *sheet.Snapshot) salaryIndex {
	idx := salaryIndex{byID: make(map[string]float64), byName: make(map[string]float64)}
	for _, s := range snap.Salaries() {
		if s.PlayerID != "" {
			idx.byID[s.PlayerID] = s.AAV
		}
		if s.Player != "" {
			idx.byName[strings.ToLower(s.Player)] = s.AAV
		}
	}
	return idx
}

func (idx salaryIndex) price(r sheet.RosterRow) float64 {
	if r.PlayerID != "" {
		if v, ok := idx.byID[r.PlayerID]; ok {
			return v
		}
	}
	if v, ok := idx.byName[strings.ToLower(r.Player)]; ok {
		return v
	}
	return r.AAV
}

// counted returns the team's active (rostered, non-IR) players in sheet order.
func counted(snap *sheet.Snapshot, team string) []CountedPlayer {
	idx := newSalaryIndex(snap)
	out := make([]CountedPlayer, 0, 16)
	for _, r := range snap.Rosters() {
		if !strings.EqualFold(r.Team, team) || !r.Active() {
			continue
		}
		name := r.Player
		if name == "" {
			name = "Unknown"
		}
		out = append(out, CountedPlayer{
			Name:    name,
			Pos:     r.Position,
			Salary:  idx.price(r),
			Flagged: r.DP,
		})
	}
	return out
}

// pickDP chooses the single DP among counted players: the highest-paid
// flagged player, else (when auto-highest is on) the highest-paid player.
// Only positive salaries are eligible; ties go to the earlier row.
// Returns -1 when nobody qualifies or DP is disabled.
func pickDP(players []CountedPlayer, rs rules.Rules) int {
	if !rs.DPEnabled() {
		return -1
	}
	best := -1
	for i, p := range players {
		if p.Flagged && p.Salary > 0 && (best < 0 || p.Salary > players[best].Salary) {
			best = i
		}
	}
	if best >= 0 || !rs.DPAutoHighest() {
		return best
	}
	for i, p := range players {
		if p.Salary > 0 && (best < 0 || p.Salary > players[best].Salary) {
			best = i
		}
	}
	return best
}

func summarize(snap *sheet.Snapshot, rs rules.Rules, team string) (CapSummary, []CountedPlayer) {
	players := counted(snap, team)
	used := 0.0
	for _, p := range players {
		used += p.Salary
	}

	out := CapSummary{
		Team:           team,
		PlayersCounted: len(players),
	}
	if i := pickDP(players, rs); i >= 0 {
		players[i].DP = true
		out.DPPlayer = players[i].Name
		out.DPRelief = players[i].Salary * rs.DPReliefPct()
		used -= out.DPRelief
	}
	limit := capLimitFor(snap, rs, team)
	out.CapLimit = cell.Round2(limit)
	out.CapUsed = cell.Round2(used)
	out.CapRemaining = cell.Round2(limit - used)
	out.DPRelief = cell.Round2(out.DPRelief)
	return out, players
}

// Summary computes cap used/remaining for the team matching teamQuery.
func Summary(snap *sheet.Snapshot, teamQuery string) (CapSummary, error) {
	team, err := ResolveTeam(snap, teamQuery)
	if err != nil {
		return CapSummary{}, err
	}
	return SummaryFor(snap, team), nil
}

// SummaryFor computes the cap summary for an already resolved team label.
func SummaryFor(snap *sheet.Snapshot, team string) CapSummary {
	out, _ := summarize(snap, rules.Resolve(snap.Rows(sheet.TabRules)), team)
	return out
}

// Detail is Summary plus the topN highest counted salaries (all when
// topN <= 0), with the same DP choice as Summary.
func Detail(snap *sheet.Snapshot, teamQuery string, topN int) (CapDetail, error) {
	team, err := ResolveTeam(snap, teamQuery)
	if err != nil {
		return CapDetail{}, err
	}
	return DetailFor(snap, team, topN), nil
}

// DetailFor is Detail for an already resolved team label.
func DetailFor(snap *sheet.Snapshot, team string, topN int) CapDetail {
	sum, players := summarize(snap, rules.Resolve(snap.Rows(sheet.TabRules)), team)

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Salary > players[j].Salary
	})
	top := players
	if topN > 0 && topN < len(players) {
		top = players[:topN]
	}
	return CapDetail{
		CapSummary:   sum,
		Top:          top,
		TotalCounted: len(players),
	}
}

// Leaders ranks every franchise by cap remaining, most space first, and
// returns the top n (all when n <= 0).
func Leaders(snap *sheet.Snapshot, n int) []CapSummary {
	rs := rules.Resolve(snap.Rows(sheet.TabRules))
	out := make([]CapSummary, 0)
	for _, team := range Teams(snap) {
		sum, _ := summarize(snap, rs, team)
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CapRemaining != out[j].CapRemaining {
			return out[i].CapRemaining > out[j].CapRemaining
		}
		return out[i].Team < out[j].Team
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
