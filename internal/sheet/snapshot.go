package sheet

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"

	"rsff-cap-mcp/internal/cell"
)

// Canonical tab names. Season-suffixed variants ("Salary2025", "Owners2025")
// resolve to the same tab.
const (
	TabRosters = "Rosters"
	TabSalary  = "Salary"
	TabOwners  = "Owners"
	TabRules   = "Rules"
)

// TimestampLayout is the local, human-facing snapshot time format.
const TimestampLayout = "2006-01-02 15:04:05"

// Snapshot is an immutable point-in-time copy of every synced tab.
// Build one with New or Decode; never modify the maps afterwards.
type Snapshot struct {
	Tabs           map[string][]cell.Row `json:"tabs"`
	Hash           string                `json:"hash"`
	Timestamp      string                `json:"timestamp"`
	GeneratedAtUTC string                `json:"generated_at_utc"`

	rosters  []RosterRow
	salaries []SalaryRow
	owners   []OwnerRow
}

// New normalizes raw tab rows into a snapshot stamped with now.
func New(tabs map[string][]map[string]string, now time.Time) *Snapshot {
	norm := make(map[string][]cell.Row, len(tabs))
	for name, rows := range tabs {
		out := make([]cell.Row, 0, len(rows))
		for _, r := range rows {
			out = append(out, cell.NormalizeRow(r))
		}
		norm[name] = out
	}
	s := &Snapshot{
		Tabs:           norm,
		Timestamp:      now.Format(TimestampLayout),
		GeneratedAtUTC: now.UTC().Format(time.RFC3339),
	}
	s.Hash = fingerprint(norm)
	s.index()
	return s
}

// Decode restores a snapshot previously serialized with json.Marshal.
// The stored hash and timestamps are kept as-is.
func Decode(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Tabs == nil {
		s.Tabs = map[string][]cell.Row{}
	}
	for name, rows := range s.Tabs {
		for i, r := range rows {
			rows[i] = cell.NormalizeRow(r)
		}
		s.Tabs[name] = rows
	}
	if s.Hash == "" {
		s.Hash = fingerprint(s.Tabs)
	}
	s.index()
	return &s, nil
}

// Encode serializes the snapshot for Decode.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Snapshot) index() {
	rosters := s.Rows(TabRosters)
	s.rosters = make([]RosterRow, 0, len(rosters))
	for _, r := range rosters {
		s.rosters = append(s.rosters, parseRoster(r))
	}
	salaries := s.Rows(TabSalary)
	s.salaries = make([]SalaryRow, 0, len(salaries))
	for _, r := range salaries {
		s.salaries = append(s.salaries, parseSalary(r))
	}
	owners := s.Rows(TabOwners)
	s.owners = make([]OwnerRow, 0, len(owners))
	for _, r := range owners {
		s.owners = append(s.owners, parseOwner(r))
	}
}

// Rows returns the raw rows of a tab. Lookup is case-insensitive and, when
// there is no exact match, accepts a season-suffixed name ("Salary2025").
// A missing tab yields nil.
func (s *Snapshot) Rows(tab string) []cell.Row {
	if s == nil {
		return nil
	}
	if rows, ok := s.Tabs[tab]; ok {
		return rows
	}
	names := s.TabNames()
	for _, n := range names {
		if strings.EqualFold(n, tab) {
			return s.Tabs[n]
		}
	}
	for _, n := range names {
		if len(n) > len(tab) && strings.EqualFold(n[:len(tab)], tab) {
			return s.Tabs[n]
		}
	}
	return nil
}

// Rosters returns the typed Rosters tab. Callers must not modify it.
func (s *Snapshot) Rosters() []RosterRow {
	if s == nil {
		return nil
	}
	return s.rosters
}

// Salaries returns the typed salary table. Callers must not modify it.
func (s *Snapshot) Salaries() []SalaryRow {
	if s == nil {
		return nil
	}
	return s.salaries
}

// Owners returns the typed Owners tab. Callers must not modify it.
func (s *Snapshot) Owners() []OwnerRow {
	if s == nil {
		return nil
	}
	return s.owners
}

// TabNames returns tab names sorted alphabetically.
func (s *Snapshot) TabNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tabs))
	for n := range s.Tabs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RowCounts maps tab name to its row count.
func (s *Snapshot) RowCounts() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	for n, rows := range s.Tabs {
		out[n] = len(rows)
	}
	return out
}

// ShortHash is the first 8 characters of the fingerprint, for display.
func (s *Snapshot) ShortHash() string {
	if s == nil {
		return ""
	}
	if len(s.Hash) > 8 {
		return s.Hash[:8]
	}
	return s.Hash
}

func fingerprint(tabs map[string][]cell.Row) string {
	d := xxhash.New()
	names := make([]string, 0, len(tabs))
	for n := range tabs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		_, _ = d.WriteString(n)
		_, _ = d.WriteString("\x1e")
		for _, r := range tabs[n] {
			keys := make([]string, 0, len(r))
			for k := range r {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = d.WriteString(k)
				_, _ = d.WriteString("\x1f")
				_, _ = d.WriteString(r[k])
				_, _ = d.WriteString("\x1f")
			}
			_, _ = d.WriteString("\x1d")
		}
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
