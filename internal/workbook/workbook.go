// Package workbook reads league tabs from an .xlsx export of the sheet, for
// offline use and for replaying a past state of the league.
package workbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"rsff-cap-mcp/internal/sheet"
)

// Provider pulls tabs from the workbook at Path. Only the tab part of each
// range is used; whole sheets are read. No ranges means every sheet.
type Provider struct {
	Path   string
	Ranges []string
}

func (p *Provider) Name() string { return "xlsx" }

func (p *Provider) Pull(ctx context.Context) (map[string][]map[string]string, error) {
	f, err := excelize.OpenFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	present := make(map[string]string)
	for _, name := range f.GetSheetList() {
		present[strings.ToLower(name)] = name
	}

	wanted := make([]string, 0, len(p.Ranges))
	for _, r := range p.Ranges {
		wanted = append(wanted, sheet.TabFromRange(r))
	}
	if len(wanted) == 0 {
		wanted = f.GetSheetList()
	}

	tabs := make(map[string][]map[string]string, len(wanted))
	for _, tab := range wanted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, ok := present[strings.ToLower(tab)]
		if !ok {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		tabs[name] = sheet.FromGrid(rows)
	}
	return tabs, nil
}
