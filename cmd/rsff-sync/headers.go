package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rsff-cap-mcp/internal/sheet"
)

// Inventory lists, per tab, every header seen and the kinds of values under
// it. Useful when the league renames a column and a cap number goes to 0.
type Inventory struct {
	GeneratedAtUTC string     `json:"generated_at_utc"`
	Snapshot       string     `json:"snapshot"`
	Tabs           []TabHeads `json:"tabs"`
}

type TabHeads struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []Column `json:"columns"`
}

type Column struct {
	Header string   `json:"header"`
	Filled int      `json:"filled"`
	Kinds  []string `json:"kinds"`
}

type kindSet map[string]struct{}

func headersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "headers",
		Short: "Inventory the headers and value kinds of every synced tab",
		Args:  cobra.NoArgs,
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			inv := buildInventory(snap, time.Now())
			return emit(cmd.OutOrStdout(), opts.asJSON, inv, func() string { return inv.String() })
		}),
	}
}

func buildInventory(snap *sheet.Snapshot, now time.Time) Inventory {
	inv := Inventory{
		GeneratedAtUTC: now.UTC().Format(time.RFC3339),
		Snapshot:       snap.ShortHash(),
		Tabs:           make([]TabHeads, 0, len(snap.Tabs)),
	}
	for _, name := range snap.TabNames() {
		rows := snap.Tabs[name]
		kinds := make(map[string]kindSet)
		filled := make(map[string]int)
		for _, r := range rows {
			for h, v := range r {
				set, ok := kinds[h]
				if !ok {
					set = make(kindSet)
					kinds[h] = set
				}
				k := valueKind(v)
				set[k] = struct{}{}
				if k != "empty" {
					filled[h]++
				}
			}
		}
		heads := make([]string, 0, len(kinds))
		for h := range kinds {
			heads = append(heads, h)
		}
		sort.Strings(heads)
		th := TabHeads{Name: name, Rows: len(rows), Columns: make([]Column, 0, len(heads))}
		for _, h := range heads {
			ks := make([]string, 0, len(kinds[h]))
			for k := range kinds[h] {
				ks = append(ks, k)
			}
			sort.Strings(ks)
			th.Columns = append(th.Columns, Column{Header: h, Filled: filled[h], Kinds: ks})
		}
		inv.Tabs = append(inv.Tabs, th)
	}
	return inv
}

func valueKind(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return "empty"
	}
	switch strings.ToUpper(s) {
	case "TRUE", "FALSE", "YES", "NO", "T", "F", "Y", "N":
		return "bool"
	}
	if strings.HasPrefix(s, "$") || strings.HasPrefix(s, "-$") {
		return "money"
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return "number"
	}
	return "text"
}

func (inv Inventory) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Snapshot `%s`\n", inv.Snapshot)
	for _, t := range inv.Tabs {
		fmt.Fprintf(&b, "%s (%d rows)\n", t.Name, t.Rows)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  %-24q %4d  %s\n", c.Header, c.Filled, strings.Join(c.Kinds, "/"))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
