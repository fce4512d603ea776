package cell

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var truthy = map[string]bool{"TRUE": true, "T": true, "YES": true, "Y": true, "1": true}

// ToNumber coerces a spreadsheet cell ("$5,489,636", "12.5", "") to a float.
// It never fails: anything unparsable becomes 0.
func ToNumber(v string) float64 {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	// Salvage what we can, e.g. "$1.2M est" -> "1.2".
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// ToBool reports whether v is one of TRUE/T/YES/Y/1 (any case).
func ToBool(v string) bool {
	return truthy[strings.ToUpper(strings.TrimSpace(v))]
}

// NormalizeKey lowercases a header, collapses inner whitespace and trims it,
// so " Player  Name" and "player name" land on the same key.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Row is one spreadsheet record keyed by normalized header.
type Row map[string]string

// NormalizeRow re-keys a raw header->value record with NormalizeKey.
// Later duplicates of the same normalized header do not overwrite a
// non-empty earlier value.
func NormalizeRow(raw map[string]string) Row {
	out := make(Row, len(raw))
	for k, v := range raw {
		nk := NormalizeKey(k)
		if prev, ok := out[nk]; ok && strings.TrimSpace(prev) != "" {
			continue
		}
		out[nk] = v
	}
	return out
}

// First returns the first alias whose trimmed value is non-empty.
func (r Row) First(aliases ...string) string {
	for _, k := range aliases {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of the aliases exists as a column, empty or not.
func (r Row) Has(aliases ...string) bool {
	for _, k := range aliases {
		if _, ok := r[k]; ok {
			return true
		}
	}
	return false
}

// Populated returns the keys with non-empty values, in no particular order.
func (r Row) Populated() []string {
	out := make([]string, 0, len(r))
	for k, v := range r {
		if strings.TrimSpace(v) != "" {
			out = append(out, k)
		}
	}
	return out
}

// Round2 rounds a money figure to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
