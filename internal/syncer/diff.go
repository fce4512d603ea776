package syncer

import (
	"fmt"
	"sort"
	"strings"
)

// Diff compares per-tab row counts across a refresh.
type Diff struct {
	SyncID     string         `json:"sync_id"`
	Source     string         `json:"source"`
	BeforeHash string         `json:"before_hash,omitempty"`
	AfterHash  string         `json:"after_hash"`
	Before     map[string]int `json:"before"`
	After      map[string]int `json:"after"`
}

// Changed reports whether the content hash moved.
func (d Diff) Changed() bool {
	return d.BeforeHash != d.AfterHash
}

// Lines renders one "Tab: before→after" line per tab, sorted, with a
// ▲/▼/= marker.
func (d Diff) Lines() []string {
	seen := make(map[string]bool)
	tabs := make([]string, 0, len(d.After)+len(d.Before))
	for _, m := range []map[string]int{d.After, d.Before} {
		for t := range m {
			if !seen[t] {
				seen[t] = true
				tabs = append(tabs, t)
			}
		}
	}
	sort.Strings(tabs)

	out := make([]string, 0, len(tabs))
	for _, t := range tabs {
		b, a := d.Before[t], d.After[t]
		mark := "="
		switch {
		case a > b:
			mark = "▲"
		case a < b:
			mark = "▼"
		}
		out = append(out, fmt.Sprintf("%s: %d→%d %s", t, b, a, mark))
	}
	return out
}

func (d Diff) String() string {
	return strings.Join(d.Lines(), "\n")
}
