package rules

import (
	"strconv"
	"strings"

	"rsff-cap-mcp/internal/cell"
)

// Recognized keys.
const (
	KeyCapLimit        = "cap_limit"
	KeyDPEnabled       = "dp_enabled"
	KeyDPReliefPct     = "dp_relief_pct"
	KeyDPAutoHighest   = "dp_auto_highest_if_unset"
	KeyDeadCapPct      = "dead_cap_pct"
	KeyRosterMax       = "roster_max"
	KeyAddDiscountWeek = "add_discount_week"
	KeyCurrentWeek     = "current_week"
)

// Defaults applied when a key is absent from the Rules tab.
const (
	DefaultCapLimit  = 96_000_000.0
	DefaultRosterMax = 14

	// AddDiscount is the salary discount applied to adds once the
	// discount week has been reached.
	AddDiscount = 0.5
)

var (
	keyColumns   = []string{"key", "rule", "name"}
	valueColumns = []string{"value", "val", "amount"}
)

// Rules is the typed view of the Rules tab. Values holds whatever was parsed
// (bool, float64, int or string); the accessors apply defaults.
type Rules struct {
	Values map[string]any `json:"values"`
}

// Resolve parses Rules rows. Each row is either a key/value pair or a row
// with exactly one populated cell, whose header is the key.
func Resolve(rows []cell.Row) Rules {
	out := Rules{Values: make(map[string]any)}
	for _, r := range rows {
		k := r.First(keyColumns...)
		v := r.First(valueColumns...)
		if k == "" {
			pop := r.Populated()
			if len(pop) != 1 {
				continue
			}
			k, v = pop[0], strings.TrimSpace(r[pop[0]])
		}
		out.Values[cell.NormalizeKey(k)] = parseValue(v)
	}
	return out
}

func parseValue(v string) any {
	switch strings.ToUpper(v) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if strings.Contains(v, ".") {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return v
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}

// Has reports whether key was set explicitly.
func (r Rules) Has(key string) bool {
	_, ok := r.Values[key]
	return ok
}

// Number reads key as a number, or def when absent. Strings such as
// "$96,000,000" are coerced; booleans read as 1/0.
func (r Rules) Number(key string, def float64) float64 {
	v, ok := r.Values[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return cell.ToNumber(t)
	}
	return def
}

// Bool reads key as a boolean, or def when absent.
func (r Rules) Bool(key string, def bool) bool {
	v, ok := r.Values[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return cell.ToBool(t)
	}
	return def
}

func (r Rules) CapLimit() float64 { return r.Number(KeyCapLimit, DefaultCapLimit) }

func (r Rules) DPEnabled() bool { return r.Bool(KeyDPEnabled, true) }

func (r Rules) DPReliefPct() float64 { return r.Number(KeyDPReliefPct, 1.0) }

func (r Rules) DPAutoHighest() bool { return r.Bool(KeyDPAutoHighest, true) }

func (r Rules) RosterMax() int { return int(r.Number(KeyRosterMax, DefaultRosterMax)) }

func (r Rules) CurrentWeek() int { return int(r.Number(KeyCurrentWeek, 1)) }

// AddDiscountWeek is the first week adds are discounted; 0 means never.
func (r Rules) AddDiscountWeek() int { return int(r.Number(KeyAddDiscountWeek, 0)) }

// DeadCapFraction is dead_cap_pct as a fraction of salary. The sheet stores
// a fraction (0.1); anything above 1 is read as whole percent (10 -> 0.1).
func (r Rules) DeadCapFraction() float64 {
	p := r.Number(KeyDeadCapPct, 0)
	if p > 1 {
		p /= 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// AddDiscountFraction is the discount owed on an add this week.
func (r Rules) AddDiscountFraction() float64 {
	w := r.AddDiscountWeek()
	if w <= 0 || r.CurrentWeek() < w {
		return 0
	}
	return AddDiscount
}
