package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rsff-cap-mcp/internal/cell"
)

func TestResolve_Defaults(t *testing.T) {
	r := Resolve(nil)

	assert.Equal(t, 96_000_000.0, r.CapLimit())
	assert.True(t, r.DPEnabled())
	assert.Equal(t, 1.0, r.DPReliefPct())
	assert.True(t, r.DPAutoHighest())
	assert.Equal(t, 0.0, r.DeadCapFraction())
	assert.Equal(t, 14, r.RosterMax())
	assert.Equal(t, 0, r.AddDiscountWeek())
	assert.Equal(t, 1, r.CurrentWeek())
	assert.Equal(t, 0.0, r.AddDiscountFraction())
	assert.False(t, r.Has(KeyCapLimit))
}

func TestResolve_KeyValueRows(t *testing.T) {
	r := Resolve([]cell.Row{
		{"key": "cap_limit", "value": "100"},
		{"key": "dp_enabled", "value": "false"},
		{"key": "dp_relief_pct", "value": "0.5"},
		{"rule": "Roster_Max", "val": "16"},
		{"key": "note", "value": "hello"},
		{"key": "", "value": ""},
	})

	assert.Equal(t, 100, r.Values["cap_limit"])
	assert.Equal(t, false, r.Values["dp_enabled"])
	assert.Equal(t, 0.5, r.Values["dp_relief_pct"])
	assert.Equal(t, "hello", r.Values["note"])

	assert.Equal(t, 100.0, r.CapLimit())
	assert.False(t, r.DPEnabled())
	assert.Equal(t, 0.5, r.DPReliefPct())
	assert.Equal(t, 16, r.RosterMax())
	assert.True(t, r.Has(KeyCapLimit))
}

func TestResolve_SingleFieldRow(t *testing.T) {
	r := Resolve([]cell.Row{
		{"dead_cap_pct": "0.2", "other": ""},
		{"current_week": "5", "add_discount_week": "3"}, // two populated fields, no key column: skipped
	})
	assert.Equal(t, 0.2, r.DeadCapFraction())
	assert.Equal(t, 1, r.CurrentWeek())
}

func TestResolve_CurrencyStringCap(t *testing.T) {
	r := Resolve([]cell.Row{{"key": "cap_limit", "value": "$96,500,000"}})
	assert.Equal(t, "$96,500,000", r.Values["cap_limit"])
	assert.Equal(t, 96_500_000.0, r.CapLimit())
}

func TestDeadCapFraction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"Fraction", "0.1", 0.1},
		{"WholePercent", "10", 0.1},
		{"One", "1", 1},
		{"Negative", "-0.5", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Resolve([]cell.Row{{"key": "dead_cap_pct", "value": tc.in}})
			assert.InDelta(t, tc.want, r.DeadCapFraction(), 1e-9)
		})
	}
}

func TestAddDiscountFraction(t *testing.T) {
	before := Resolve([]cell.Row{{"key": "add_discount_week", "value": "8"}, {"key": "current_week", "value": "7"}})
	assert.Equal(t, 0.0, before.AddDiscountFraction())

	on := Resolve([]cell.Row{{"key": "add_discount_week", "value": "8"}, {"key": "current_week", "value": "8"}})
	assert.Equal(t, 0.5, on.AddDiscountFraction())
}
