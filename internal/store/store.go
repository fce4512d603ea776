package store

import (
	"context"
	"errors"

	"rsff-cap-mcp/internal/sheet"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no cached snapshot")

// SnapshotStore keeps the last good snapshot so a restart can serve
// answers before the first live pull succeeds.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *sheet.Snapshot) error
	LoadSnapshot(ctx context.Context) (*sheet.Snapshot, error)
}
