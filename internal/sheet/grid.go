package sheet

import "strings"

// FromGrid turns a header row followed by value rows into header->value
// records. Short rows are padded with empty cells and fully blank rows are
// dropped. An empty grid yields nil.
func FromGrid(values [][]string) []map[string]string {
	if len(values) == 0 {
		return nil
	}
	header := values[0]
	out := make([]map[string]string, 0, len(values)-1)
	for _, r := range values[1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			v := ""
			if i < len(r) {
				v = r[i]
			}
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			rec[h] = v
		}
		if blank {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// TabFromRange extracts the tab name from an A1 range such as
// "'Salary 2025'!A1:F1000".
func TabFromRange(rng string) string {
	name := rng
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		name = rng[:i]
	}
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		name = strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}
