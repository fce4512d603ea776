// Package render turns results into the short markdown replies the league
// chat expects.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rsff-cap-mcp/internal/lookup"
	"rsff-cap-mcp/internal/rules"
	"rsff-cap-mcp/internal/salarycap"
	"rsff-cap-mcp/internal/sheet"
	"rsff-cap-mcp/internal/sim"
	"rsff-cap-mcp/internal/syncer"
)

var printer = message.NewPrinter(language.English)

// Money formats whole dollars with thousands separators: "$1,250,000".
func Money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.0f", math.Abs(v))
	}
	return printer.Sprintf("$%.0f", v)
}

// Footer is the snapshot stamp appended to every reply.
func Footer(snap *sheet.Snapshot) string {
	if snap == nil {
		return "_No snapshot loaded_"
	}
	return "_Snapshot " + stamp(snap) + "_"
}

func stamp(snap *sheet.Snapshot) string {
	if snap == nil {
		return "none"
	}
	return snap.ShortHash() + " @ " + snap.Timestamp
}

func Cap(s salarycap.CapSummary, snap *sheet.Snapshot) string {
	lines := []string{
		fmt.Sprintf("**%s**", s.Team),
		fmt.Sprintf("Cap Used: `%s` / `%s`", Money(s.CapUsed), Money(s.CapLimit)),
	}
	if s.DPRelief > 0 {
		who := ""
		if s.DPPlayer != "" {
			who = fmt.Sprintf(" (%s)", s.DPPlayer)
		}
		lines = append(lines, fmt.Sprintf("DP Relief: `-%s`%s", Money(s.DPRelief), who))
	}
	lines = append(lines,
		fmt.Sprintf("Remaining: `%s`", Money(s.CapRemaining)),
		fmt.Sprintf("Players Counted: %d", s.PlayersCounted),
		Footer(snap),
	)
	return strings.Join(lines, "\n")
}

func CapDetail(d salarycap.CapDetail, snap *sheet.Snapshot) string {
	lines := []string{
		fmt.Sprintf("**%s — Cap Detail**", d.Team),
		fmt.Sprintf("Used `%s` / `%s` | Remaining `%s`", Money(d.CapUsed), Money(d.CapLimit), Money(d.CapRemaining)),
	}
	if d.DPRelief > 0 {
		lines = append(lines, fmt.Sprintf("DP Relief: `-%s` (%s)", Money(d.DPRelief), d.DPPlayer))
	}
	for _, p := range d.Top {
		tag := ""
		if p.DP {
			tag = " · DP"
		}
		pos := ""
		if p.Pos != "" {
			pos = " " + p.Pos
		}
		lines = append(lines, fmt.Sprintf("• %s%s — `%s`%s", p.Name, pos, Money(p.Salary), tag))
	}
	lines = append(lines, fmt.Sprintf("_Players counted: %d · Snapshot %s_", d.TotalCounted, stamp(snap)))
	return strings.Join(lines, "\n")
}

func Team(t salarycap.TeamSummary, snap *sheet.Snapshot) string {
	lines := []string{
		fmt.Sprintf("**%s — Team Summary**", t.Team),
		fmt.Sprintf("Gross `%s` − DP `%s` − IR `%s` = Used `%s` / `%s`",
			Money(t.GrossCap), Money(t.DPRelief), Money(t.IRRelief), Money(t.CapUsed), Money(t.CapLimit)),
		fmt.Sprintf("Remaining: `%s`", Money(t.CapRemaining)),
	}
	if t.DPFlagged > 1 {
		lines = append(lines, fmt.Sprintf("⚠️ %d players are flagged DP; all are relieved here.", t.DPFlagged))
	}
	for _, e := range t.Active {
		tag := ""
		if e.DP {
			tag = " · DP"
		}
		lines = append(lines, fmt.Sprintf("• %s %s — `%s`%s", e.Name, e.Pos, Money(e.Salary), tag))
	}
	for _, e := range t.IR {
		lines = append(lines, fmt.Sprintf("• %s %s — `%s` · IR", e.Name, e.Pos, Money(e.Salary)))
	}
	lines = append(lines, Footer(snap))
	return strings.Join(lines, "\n")
}

func Leaders(rows []salarycap.CapSummary, snap *sheet.Snapshot) string {
	if len(rows) == 0 {
		return "No teams found."
	}
	lines := []string{
		fmt.Sprintf("**Cap Space Leaders (Top %d)**", len(rows)),
		Footer(snap),
	}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("• **%s** → Remaining `%s` (Used `%s` / `%s`)",
			r.Team, Money(r.CapRemaining), Money(r.CapUsed), Money(r.CapLimit)))
	}
	return strings.Join(lines, "\n")
}

func rosterMax(snap *sheet.Snapshot) int {
	return rules.Resolve(snap.Rows(sheet.TabRules)).RosterMax()
}

func violations(vs []sim.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, fmt.Sprintf("⚠️ %s: %s", v.Code, v.Detail))
	}
	return out
}

func Add(r sim.AddResult, snap *sheet.Snapshot) string {
	if !r.OK() {
		return "❌ " + r.Reason
	}
	disc := ""
	if r.DiscountApplied > 0 {
		disc = fmt.Sprintf(" (discounted %d%%)", int(r.DiscountApplied*100))
	}
	lines := []string{
		fmt.Sprintf("**Add %s** to **%s**", r.Player, r.Team),
		fmt.Sprintf("Salary: `%s`%s (base `%s`)", Money(r.SalaryEffective), disc, Money(r.SalaryBase)),
		fmt.Sprintf("Roster: %d → %d (max %d)", r.RosterBefore, r.RosterAfter, rosterMax(snap)),
	}
	lines = append(lines, violations(r.Violations)...)
	lines = append(lines, Footer(snap))
	return strings.Join(lines, "\n")
}

func Drop(r sim.DropResult, snap *sheet.Snapshot) string {
	if !r.OK() {
		return "❌ " + r.Reason
	}
	lines := []string{
		fmt.Sprintf("**Drop %s** for **%s**", r.Player, r.Team),
		fmt.Sprintf("Dead Cap: `%s`", Money(r.DeadCap)),
		fmt.Sprintf("Roster: %d → %d (max %d)", r.RosterBefore, r.RosterAfter, rosterMax(snap)),
	}
	if r.WasDP {
		lines = append(lines, "Was your DP: relief moves to your next highest salary.")
	}
	if r.WasIR {
		lines = append(lines, "Was on IR: only the dead cap lands on your cap.")
	}
	lines = append(lines, violations(r.Violations)...)
	lines = append(lines, Footer(snap))
	return strings.Join(lines, "\n")
}

func WhatIf(r sim.WhatIfResult, snap *sheet.Snapshot) string {
	if !r.OK() {
		lines := append([]string{"❌ " + r.Reason}, violations(r.Violations)...)
		return strings.Join(lines, "\n")
	}
	parts := make([]string, 0, 2)
	if r.Add != nil {
		parts = append(parts, "add **"+r.Add.Player+"**")
	}
	if r.Drop != nil {
		parts = append(parts, "drop **"+r.Drop.Player+"**")
	}
	sign := "+"
	if r.UsedDelta < 0 {
		sign = ""
	}
	lines := []string{
		fmt.Sprintf("**What if %s** for **%s**", strings.Join(parts, " and "), r.Team),
		fmt.Sprintf("Cap used change: `%s%s` (limit `%s`)", sign, Money(r.UsedDelta), Money(r.CapLimit)),
		fmt.Sprintf("DP relief: `%s` → `%s`", Money(r.DPBefore), Money(r.DPAfter)),
	}
	if r.Drop != nil && r.Drop.DeadCap > 0 {
		lines = append(lines, fmt.Sprintf("Dead Cap: `%s`", Money(r.Drop.DeadCap)))
	}
	lines = append(lines, violations(r.Violations)...)
	lines = append(lines, Footer(snap))
	return strings.Join(lines, "\n")
}

func Player(p lookup.PlayerInfo, snap *sheet.Snapshot) string {
	head := fmt.Sprintf("**%s**", p.Name)
	meta := make([]string, 0, 3)
	for _, s := range []string{p.Pos, p.NFLTeam} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if p.Bye != "" {
		meta = append(meta, "bye "+p.Bye)
	}
	if len(meta) > 0 {
		head += " " + strings.Join(meta, " · ")
	}
	status := "Free agent"
	if p.Status == lookup.StatusRostered {
		status = "Rostered by **" + p.RosteredBy + "**"
		if p.OnIR {
			status += " · IR"
		}
		if p.DP {
			status += " · DP"
		}
	}
	lines := []string{
		head,
		fmt.Sprintf("AAV: `%s`", Money(p.AAV)),
		status,
	}
	if p.MatchScore < 100 {
		lines = append(lines, fmt.Sprintf("_closest match, score %d_", p.MatchScore))
	}
	lines = append(lines, Footer(snap))
	return strings.Join(lines, "\n")
}

func counts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func Status(snap *sheet.Snapshot, version string) string {
	if snap == nil {
		return fmt.Sprintf("RSFF %s | no snapshot loaded", version)
	}
	return strings.Join([]string{
		fmt.Sprintf("RSFF %s | Snapshot `%s` @ %s", version, snap.ShortHash(), snap.Timestamp),
		"Rows → " + counts(snap.RowCounts()),
	}, "\n")
}

func Sync(d syncer.Diff, snap *sheet.Snapshot) string {
	return strings.Join([]string{
		"🔄 Synced.",
		"Snapshot " + stamp(snap),
		"Rows: " + strings.Join(d.Lines(), ", "),
	}, "\n")
}
