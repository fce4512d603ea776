package syncer

import (
	"sync/atomic"

	"rsff-cap-mcp/internal/sheet"
)

// Holder owns the current snapshot. Readers take one Current() per request
// and compute against it; Swap replaces it wholesale.
type Holder struct {
	p atomic.Pointer[sheet.Snapshot]
}

// Current returns the latest snapshot, or nil before the first load.
func (h *Holder) Current() *sheet.Snapshot {
	return h.p.Load()
}

// Swap installs snap and returns the one it replaced.
func (h *Holder) Swap(snap *sheet.Snapshot) *sheet.Snapshot {
	return h.p.Swap(snap)
}
