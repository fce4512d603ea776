package salarycap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsff-cap-mcp/internal/sheet/sheettest"
)

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

func TestSummary_EndToEndScenario(t *testing.T) {
	snap := sheettest.New().
		Rule("cap_limit", "100").
		Rule("dp_relief_pct", "1.0").
		Rule("dead_cap_pct", "0.2").
		Roster("Alpha", "X", 40, sheettest.DP()).
		Roster("Alpha", "Y", 30).
		Snapshot()

	got, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, CapSummary{
		Team:           "Alpha",
		CapLimit:       100,
		CapUsed:        30,
		CapRemaining:   70,
		PlayersCounted: 2,
		DPRelief:       40,
		DPPlayer:       "X",
	}, got)
}

func TestSummary_FlaggedDPBeatsHigherSalary(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_relief_pct", "0.5").
		Roster("Alpha", "A", 50).
		Roster("Alpha", "B", 30, sheettest.DP()).
		Roster("Alpha", "C", 20).
		Snapshot()

	got, err := Summary(snap, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "B", got.DPPlayer)
	assert.Equal(t, 15.0, got.DPRelief)
	assert.Equal(t, 85.0, got.CapUsed)
}

func TestSummary_AutoHighestFallback(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "A", 50).
		Roster("Alpha", "B", 30).
		Roster("Alpha", "Hurt", 90, sheettest.IR()).
		Snapshot()

	got, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "A", got.DPPlayer, "IR players are never DP")
	assert.Equal(t, 50.0, got.DPRelief)
	assert.Equal(t, 30.0, got.CapUsed)
	assert.Equal(t, 2, got.PlayersCounted)
}

func TestSummary_AutoHighestDisabled(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_auto_highest_if_unset", "FALSE").
		Roster("Alpha", "A", 50).
		Snapshot()

	got, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	assert.Empty(t, got.DPPlayer)
	assert.Equal(t, 0.0, got.DPRelief)
	assert.Equal(t, 50.0, got.CapUsed)
}

func TestSummary_DPDisabled(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_enabled", "false").
		Roster("Alpha", "A", 50, sheettest.DP()).
		Snapshot()

	got, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.DPRelief)
	assert.Equal(t, 50.0, got.CapUsed)
}

func TestSummary_ExcludesOffRosterRows(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_enabled", "false").
		Roster("Alpha", "A", 10).
		Roster("Alpha", "Gone", 99, sheettest.Off()).
		Roster("Alpha", "GoneIR", 77, sheettest.Off(), sheettest.IR()).
		Snapshot()

	got, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.CapUsed)
	assert.Equal(t, 1, got.PlayersCounted)

	team, err := SummarizeTeam(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 10.0, team.GrossCap)
	assert.Empty(t, team.IR)
	assert.Len(t, team.Active, 1)
}

func TestSummary_SalaryIndexPrecedence(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_enabled", "false").
		SalaryWithID("Josh Allen", "4984", 45).
		Salary("Bijan Robinson", 25, "ATL", "RB", "5").
		Roster("Alpha", "J. Allen", 1, sheettest.ID("4984")).
		Roster("Alpha", "bijan robinson", 2).
		Roster("Alpha", "Unknown Rookie", 3).
		Snapshot()

	got, err := Detail(snap, "Alpha", 0)
	require.NoError(t, err)
	require.Len(t, got.Top, 3)
	assert.Equal(t, 45.0, got.Top[0].Salary, "id match wins")
	assert.Equal(t, 25.0, got.Top[1].Salary, "name match is case-insensitive")
	assert.Equal(t, 3.0, got.Top[2].Salary, "falls back to the roster AAV")
	assert.Equal(t, 73.0, got.CapUsed)
}

func TestSummary_ResolvesViaOwnersAndRosters(t *testing.T) {
	snap := sheettest.New().
		Owner("Gridiron Gang", "coach#7").
		Roster("Gridiron Gang", "A", 10).
		Roster("Bench Mob", "B", 20).
		Snapshot()

	byHandle, err := Summary(snap, "COACH")
	require.NoError(t, err)
	assert.Equal(t, "Gridiron Gang", byHandle.Team)

	byRoster, err := Summary(snap, "mob")
	require.NoError(t, err)
	assert.Equal(t, "Bench Mob", byRoster.Team)
	assert.Equal(t, 20.0, byRoster.DPRelief)
}

func TestSummary_TeamNotFound(t *testing.T) {
	snap := sheettest.New().Roster("Alpha", "A", 10).Snapshot()

	_, err := Summary(snap, "zeta")
	assert.True(t, errors.Is(err, ErrTeamNotFound))

	_, err = Summary(snap, "  ")
	assert.True(t, errors.Is(err, ErrTeamNotFound))

	_, err = Detail(snap, "zeta", 3)
	assert.True(t, errors.Is(err, ErrTeamNotFound))
}

func TestSummary_RoundsToCents(t *testing.T) {
	snap := sheettest.New().
		Rule("cap_limit", "100").
		Rule("dp_relief_pct", "0.333").
		Roster("Alpha", "A", 10, sheettest.DP()).
		Snapshot()

	got, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 3.33, got.DPRelief)
	assert.Equal(t, 6.67, got.CapUsed)
	assert.Equal(t, 93.33, got.CapRemaining)
}

// ---------------------------------------------------------------------------
// Detail
// ---------------------------------------------------------------------------

func TestDetail_SortedTopNWithSameDP(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "Low", 5).
		Roster("Alpha", "Mid", 20, sheettest.DP()).
		Roster("Alpha", "High", 50).
		Roster("Alpha", "Zero", 0, sheettest.DP()).
		Snapshot()

	sum, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	det, err := Detail(snap, "Alpha", 2)
	require.NoError(t, err)

	assert.Equal(t, sum, det.CapSummary)
	assert.Equal(t, 4, det.TotalCounted)
	require.Len(t, det.Top, 2)
	assert.Equal(t, "High", det.Top[0].Name)
	assert.False(t, det.Top[0].DP)
	assert.Equal(t, "Mid", det.Top[1].Name)
	assert.True(t, det.Top[1].DP)
	assert.Equal(t, "Mid", det.DPPlayer)
}

func TestDetail_TiesKeepSheetOrder(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "First", 30).
		Roster("Alpha", "Second", 30).
		Snapshot()

	det, err := Detail(snap, "Alpha", 8)
	require.NoError(t, err)
	assert.Equal(t, "First", det.DPPlayer)
	assert.Equal(t, "First", det.Top[0].Name)
	assert.True(t, det.Top[0].DP)
}

// ---------------------------------------------------------------------------
// SummarizeTeam
// ---------------------------------------------------------------------------

func TestSummarizeTeam_Reconciles(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "A", 40, sheettest.DP(), sheettest.Pos("QB")).
		Roster("Alpha", "B", 30).
		Roster("Alpha", "Hurt", 25, sheettest.IR()).
		Roster("Beta", "Other", 99).
		Snapshot()

	got, err := SummarizeTeam(snap, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Team)
	assert.Equal(t, 96_000_000.0, got.CapLimit)
	assert.Equal(t, 95.0, got.GrossCap)
	assert.Equal(t, 40.0, got.DPRelief)
	assert.Equal(t, 25.0, got.IRRelief)
	assert.Equal(t, 30.0, got.CapUsed)
	assert.Equal(t, 96_000_000.0-30, got.CapRemaining)
	assert.Equal(t, "A", got.DPPlayer)
	assert.Equal(t, 1, got.DPFlagged)
	assert.Equal(t, 2, got.PlayersCounted)
	require.Len(t, got.IR, 1)
	assert.Equal(t, TeamEntry{Name: "Hurt", Salary: 25, IR: true}, got.IR[0])
	assert.Equal(t, "QB", got.Active[0].Pos)
}

func TestSummarizeTeam_SumsEveryFlaggedDPAndClamps(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "A", 40, sheettest.DP()).
		Roster("Alpha", "B", 30, sheettest.DP()).
		Snapshot()

	got, err := SummarizeTeam(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 70.0, got.DPRelief)
	assert.Equal(t, 2, got.DPFlagged)
	assert.Equal(t, 0.0, got.CapUsed)
}

func TestSummarizeTeam_ClampsNegativeUsed(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_relief_pct", "1.5").
		Roster("Alpha", "A", 40, sheettest.DP()).
		Snapshot()

	got, err := SummarizeTeam(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.CapUsed)
}

func TestSummarizeTeam_CapLimitResolution(t *testing.T) {
	withOwnerCap := sheettest.New().
		Row("Owners2025", map[string]string{"team_name": "Alpha", "cap_limit": "$120,000,000"}).
		Roster("Alpha", "A", 1)

	got, err := SummarizeTeam(withOwnerCap.Snapshot(), "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 120_000_000.0, got.CapLimit, "owner override applies when Rules has no cap")

	got, err = SummarizeTeam(withOwnerCap.Rule("cap_limit", "100000000").Snapshot(), "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 100_000_000.0, got.CapLimit, "Rules cap wins")
}

func TestSummarizeTeam_ExactMatchOnly(t *testing.T) {
	snap := sheettest.New().Roster("Alpha", "A", 1).Snapshot()
	_, err := SummarizeTeam(snap, "Alp")
	assert.True(t, errors.Is(err, ErrTeamNotFound))
}

func TestSummaryAndTeamSummaryAgreeOnSingleDP(t *testing.T) {
	snap := sheettest.New().
		Rule("dp_relief_pct", "1.0").
		Roster("Alpha", "A", 40).
		Roster("Alpha", "B", 60, sheettest.DP()).
		Roster("Alpha", "C", 10, sheettest.IR()).
		Snapshot()

	sum, err := Summary(snap, "Alpha")
	require.NoError(t, err)
	team, err := SummarizeTeam(snap, "Alpha")
	require.NoError(t, err)

	assert.Equal(t, sum.DPRelief, team.DPRelief)
	assert.Equal(t, sum.DPPlayer, team.DPPlayer)
	assert.Equal(t, sum.CapUsed, team.CapUsed)
	assert.Equal(t, sum.PlayersCounted, team.PlayersCounted)
}

func TestIdempotent(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "A", 40, sheettest.DP()).
		Roster("Alpha", "B", 30).
		Snapshot()

	a1, _ := Summary(snap, "Alpha")
	a2, _ := Summary(snap, "Alpha")
	assert.Equal(t, a1, a2)

	t1, _ := SummarizeTeam(snap, "Alpha")
	t2, _ := SummarizeTeam(snap, "Alpha")
	assert.Equal(t, t1, t2)

	d1, _ := Detail(snap, "Alpha", 1)
	d2, _ := Detail(snap, "Alpha", 1)
	assert.Equal(t, d1, d2)
	assert.Equal(t, "A", snap.Rosters()[0].Player, "snapshot rows are untouched")
}

// ---------------------------------------------------------------------------
// ResolveCaller / Leaders
// ---------------------------------------------------------------------------

func TestResolveCaller(t *testing.T) {
	snap := sheettest.New().
		Owner("Gridiron Gang", "coach#7").
		Roster("Gridiron Gang", "A", 10).
		Roster("Bench Mob", "B", 20).
		Snapshot()

	tests := []struct {
		name    string
		handles []string
		want    string
		wantErr bool
	}{
		{"Handle", []string{"Coach#7"}, "Gridiron Gang", false},
		{"TeamName", []string{"nobody", "gridiron gang"}, "Gridiron Gang", false},
		{"RosterTeam", []string{"Bench Mob"}, "Bench Mob", false},
		{"SubstringIsNotEnough", []string{"coach"}, "", true},
		{"Empty", []string{"", " "}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveCaller(snap, tc.handles...)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrTeamNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLeaders(t *testing.T) {
	snap := sheettest.New().
		Rule("cap_limit", "100").
		Rule("dp_enabled", "false").
		Owner("Alpha", "a").
		Owner("Beta", "b").
		Roster("Alpha", "A", 60).
		Roster("Beta", "B", 10).
		Roster("Gamma", "G", 10).
		Snapshot()

	got := Leaders(snap, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Beta", got[0].Team)
	assert.Equal(t, 90.0, got[0].CapRemaining)
	assert.Equal(t, "Gamma", got[1].Team, "ties break by name")

	assert.Len(t, Leaders(snap, 0), 3)
}

func TestResolveTeam(t *testing.T) {
	snap := sheettest.New().
		Owner("Gridiron Gang", "coach#7").
		Roster("Bench Mob", "A", 1).
		Snapshot()

	got, err := ResolveTeam(snap, "GANG")
	require.NoError(t, err)
	assert.Equal(t, "Gridiron Gang", got)

	got, err = ResolveTeam(snap, "coach")
	require.NoError(t, err)
	assert.Equal(t, "Gridiron Gang", got)

	_, err = ResolveTeam(snap, "  ")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestCapLimit(t *testing.T) {
	snap := sheettest.New().
		Row("Owners2025", map[string]string{"team_name": "Alpha", "cap_limit": "$110,000,000"}).
		Snapshot()
	assert.Equal(t, 110_000_000.0, CapLimit(snap, "alpha"))
	assert.Equal(t, 96_000_000.0, CapLimit(snap, "Beta"))
}

func TestCapLimit_OverrideByDisplayLabel(t *testing.T) {
	snap := sheettest.New().
		Row("Owners2025", map[string]string{"display_name": "Gamma Rays", "cap_limit": "$100,000,000"}).
		Roster("Gamma Rays", "X", 10_000_000).
		Snapshot()
	assert.Equal(t, 100_000_000.0, CapLimit(snap, "Gamma Rays"))

	sum := SummaryFor(snap, "Gamma Rays")
	assert.Equal(t, 100_000_000.0, sum.CapLimit)
}

func TestSummarizeTeam_DPOnIRRelievedOnce(t *testing.T) {
	snap := sheettest.New().
		Roster("Alpha", "X", 40, sheettest.DP(), sheettest.IR()).
		Roster("Alpha", "Y", 10).
		Snapshot()

	got, err := SummarizeTeam(snap, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.GrossCap)
	assert.Equal(t, 40.0, got.IRRelief)
	assert.Equal(t, 0.0, got.DPRelief)
	assert.Equal(t, 0, got.DPFlagged)
	assert.Equal(t, 10.0, got.CapUsed)
}
