package fetch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"rsff-cap-mcp/internal/sheet"
)

// SheetsProvider pulls the configured ranges of one spreadsheet.
type SheetsProvider struct {
	Client  *Client
	SheetID string
	Ranges  []string
}

func (p *SheetsProvider) Name() string { return "sheets" }

// Pull returns header->value rows per tab. Ranges that come back empty
// are left out.
func (p *SheetsProvider) Pull(ctx context.Context) (map[string][]map[string]string, error) {
	resp, err := p.Client.BatchGet(ctx, p.SheetID, p.Ranges)
	if err != nil {
		return nil, fmt.Errorf("sheets batchGet: %w", err)
	}
	tabs := make(map[string][]map[string]string, len(resp.ValueRanges))
	for _, vr := range resp.ValueRanges {
		if len(vr.Values) == 0 {
			continue
		}
		tab := sheet.TabFromRange(vr.Range)
		tabs[tab] = sheet.FromGrid(vr.Strings())
		p.Client.Log.WithFields(logrus.Fields{"tab": tab, "rows": len(tabs[tab])}).Debug("pulled range")
	}
	return tabs, nil
}
