package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsff-cap-mcp/internal/lookup"
	"rsff-cap-mcp/internal/salarycap"
	"rsff-cap-mcp/internal/sheet/sheettest"
	"rsff-cap-mcp/internal/sim"
	"rsff-cap-mcp/internal/syncer"
)

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0",
		999:        "$999",
		1250000:    "$1,250,000",
		96000000:   "$96,000,000",
		-2500000.4: "-$2,500,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Money(in))
	}
}

func TestCap(t *testing.T) {
	snap := sheettest.New().Roster("Alpha", "X", 40_000_000, sheettest.DP()).Snapshot()
	out := Cap(salarycap.CapSummary{
		Team: "Alpha", CapLimit: 96_000_000, CapUsed: 30_000_000, CapRemaining: 66_000_000,
		PlayersCounted: 2, DPRelief: 40_000_000, DPPlayer: "X",
	}, snap)

	assert.Equal(t, strings.Join([]string{
		"**Alpha**",
		"Cap Used: `$30,000,000` / `$96,000,000`",
		"DP Relief: `-$40,000,000` (X)",
		"Remaining: `$66,000,000`",
		"Players Counted: 2",
		"_Snapshot " + snap.ShortHash() + " @ 2025-09-14 12:00:00_",
	}, "\n"), out)
}

func TestCap_NoRelief(t *testing.T) {
	out := Cap(salarycap.CapSummary{Team: "Alpha"}, nil)
	assert.NotContains(t, out, "DP Relief")
	assert.Contains(t, out, "_No snapshot loaded_")
}

func TestCapDetail(t *testing.T) {
	snap := sheettest.New().Snapshot()
	out := CapDetail(salarycap.CapDetail{
		CapSummary: salarycap.CapSummary{Team: "Alpha", DPRelief: 5, DPPlayer: "A"},
		Top: []salarycap.CountedPlayer{
			{Name: "A", Pos: "QB", Salary: 5, DP: true},
			{Name: "B", Salary: 3},
		},
		TotalCounted: 4,
	}, snap)
	assert.Contains(t, out, "**Alpha — Cap Detail**")
	assert.Contains(t, out, "• A QB — `$5` · DP")
	assert.Contains(t, out, "• B — `$3`\n")
	assert.Contains(t, out, "_Players counted: 4 · Snapshot")
}

func TestAddAndDrop(t *testing.T) {
	snap := sheettest.New().Rule("roster_max", "15").Snapshot()

	add := Add(sim.AddResult{
		Status: sim.StatusOK, Team: "Alpha", Player: "Puka Nacua",
		SalaryBase: 2_000_000, SalaryEffective: 1_000_000, DiscountApplied: 0.5,
		RosterBefore: 15, RosterAfter: 16,
		Violations: []sim.Violation{{Code: sim.CodeRosterMax, Detail: "Roster would be 16/15."}},
	}, snap)
	assert.Contains(t, add, "**Add Puka Nacua** to **Alpha**")
	assert.Contains(t, add, "Salary: `$1,000,000` (discounted 50%) (base `$2,000,000`)")
	assert.Contains(t, add, "Roster: 15 → 16 (max 15)")
	assert.Contains(t, add, "⚠️ ROSTER_MAX: Roster would be 16/15.")

	assert.Equal(t, "❌ X is already on your roster.", Add(sim.AddResult{Status: sim.StatusInvalid, Reason: "X is already on your roster."}, snap))

	drop := Drop(sim.DropResult{Status: sim.StatusOK, Team: "Alpha", Player: "Y", DeadCap: 6_000_000, RosterBefore: 2, RosterAfter: 1, WasDP: true}, snap)
	assert.Contains(t, drop, "Dead Cap: `$6,000,000`")
	assert.Contains(t, drop, "Roster: 2 → 1 (max 15)")
	assert.Contains(t, drop, "Was your DP")
}

func TestWhatIf(t *testing.T) {
	snap := sheettest.New().Snapshot()
	out := WhatIf(sim.WhatIfResult{
		Status: sim.StatusOK, Team: "Alpha", CapLimit: 96_000_000,
		UsedDelta: -30, DPBefore: 40, DPAfter: 30,
		Drop: &sim.DropResult{Player: "X"},
	}, snap)
	assert.Contains(t, out, "**What if drop **X**** for **Alpha**")
	assert.Contains(t, out, "Cap used change: `-$30`")
	assert.Contains(t, out, "DP relief: `$40` → `$30`")

	bad := WhatIf(sim.WhatIfResult{Status: sim.StatusInvalid, Reason: "nope", Violations: []sim.Violation{{Code: "ROSTER_MAX", Detail: "full"}}}, snap)
	assert.Equal(t, "❌ nope\n⚠️ ROSTER_MAX: full", bad)
}

func TestLeaders(t *testing.T) {
	assert.Equal(t, "No teams found.", Leaders(nil, nil))
	out := Leaders([]salarycap.CapSummary{{Team: "Beta", CapRemaining: 90, CapUsed: 10, CapLimit: 100}}, sheettest.New().Snapshot())
	assert.Contains(t, out, "**Cap Space Leaders (Top 1)**")
	assert.Contains(t, out, "• **Beta** → Remaining `$90` (Used `$10` / `$100`)")
}

func TestPlayer(t *testing.T) {
	out := Player(lookup.PlayerInfo{
		Name: "Josh Allen", Pos: "QB", NFLTeam: "BUF", Bye: "7", AAV: 40_000_000,
		Status: lookup.StatusRostered, RosteredBy: "Alpha", DP: true, MatchScore: 100,
	}, nil)
	assert.Contains(t, out, "**Josh Allen** QB · BUF · bye 7")
	assert.Contains(t, out, "Rostered by **Alpha** · DP")
	assert.NotContains(t, out, "closest match")

	fa := Player(lookup.PlayerInfo{Name: "Puka Nacua", Status: lookup.StatusFA, MatchScore: 80}, nil)
	assert.Contains(t, fa, "Free agent")
	assert.Contains(t, fa, "_closest match, score 80_")
}

func TestStatusAndSync(t *testing.T) {
	snap := sheettest.New().Roster("Alpha", "X", 1).Rule("cap_limit", "1").Snapshot()
	st := Status(snap, "1.2.0")
	require.Contains(t, st, "RSFF 1.2.0 | Snapshot `"+snap.ShortHash()+"`")
	assert.Contains(t, st, "Rows → Rosters:1, Rules:1")
	assert.Equal(t, "RSFF 1.2.0 | no snapshot loaded", Status(nil, "1.2.0"))

	out := Sync(syncer.Diff{Before: map[string]int{"Rosters": 0}, After: map[string]int{"Rosters": 1}}, snap)
	assert.Contains(t, out, "Rows: Rosters: 0→1 ▲")
}
