// Package syncer keeps a fresh snapshot of the league sheet in memory:
// pulling from a Provider, publishing through a Holder, and persisting the
// last good copy so restarts survive a sheet outage.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rsff-cap-mcp/internal/metrics"
	"rsff-cap-mcp/internal/sheet"
	"rsff-cap-mcp/internal/store"
)

// ErrNoSnapshot is returned by Start when neither the live source nor the
// cache produced a snapshot.
var ErrNoSnapshot = errors.New("no snapshot available")

// Provider pulls raw header->value rows per tab.
type Provider interface {
	Name() string
	Pull(ctx context.Context) (map[string][]map[string]string, error)
}

type Syncer struct {
	Provider Provider
	Holder   *Holder
	Store    store.SnapshotStore // optional
	Metrics  *metrics.Metrics    // optional
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func New(p Provider, h *Holder, st store.SnapshotStore, m *metrics.Metrics, log logrus.FieldLogger) *Syncer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Syncer{Provider: p, Holder: h, Store: st, Metrics: m, Log: log, Now: time.Now}
}

// Refresh pulls once and installs the result. On failure the current
// snapshot is left untouched.
func (s *Syncer) Refresh(ctx context.Context) (Diff, error) {
	id := uuid.NewString()
	log := s.Log.WithFields(logrus.Fields{"sync_id": id, "source": s.Provider.Name()})
	start := s.Now()

	tabs, err := s.Provider.Pull(ctx)
	took := s.Now().Sub(start)
	s.Metrics.ObserveSync(s.Provider.Name(), took, err)
	if err != nil {
		log.WithError(err).Warn("sync failed; keeping previous snapshot")
		return Diff{SyncID: id, Source: s.Provider.Name()}, fmt.Errorf("pull %s: %w", s.Provider.Name(), err)
	}

	now := s.Now()
	snap := sheet.New(tabs, now)
	prev := s.Holder.Swap(snap)
	s.Metrics.ObserveSnapshot(snap.RowCounts(), now)

	d := Diff{
		SyncID:    id,
		Source:    s.Provider.Name(),
		AfterHash: snap.Hash,
		Before:    prev.RowCounts(),
		After:     snap.RowCounts(),
	}
	if prev != nil {
		d.BeforeHash = prev.Hash
	}
	log.WithFields(logrus.Fields{
		"hash":    snap.ShortHash(),
		"changed": d.Changed(),
		"took_ms": took.Milliseconds(),
	}).Info("snapshot refreshed")

	if s.Store != nil {
		if err := s.Store.SaveSnapshot(ctx, snap); err != nil {
			log.WithError(err).Warn("could not cache snapshot")
		}
	}
	return d, nil
}

// Start does the first pull, falling back to the cached snapshot when the
// live source is down.
func (s *Syncer) Start(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	if err == nil {
		return nil
	}
	if s.Store == nil {
		return fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	cached, cerr := s.Store.LoadSnapshot(ctx)
	if cerr != nil {
		return fmt.Errorf("%w: live: %v; cache: %v", ErrNoSnapshot, err, cerr)
	}
	s.Holder.Swap(cached)
	generated, perr := time.Parse(time.RFC3339, cached.GeneratedAtUTC)
	if perr != nil {
		generated = s.Now()
	}
	s.Metrics.ObserveSnapshot(cached.RowCounts(), generated)
	s.Log.WithFields(logrus.Fields{"hash": cached.ShortHash(), "timestamp": cached.Timestamp}).
		Warn("serving cached snapshot until the next successful sync")
	return nil
}

// Run refreshes every interval until ctx is done. Failures are logged and
// retried on the next tick.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = s.Refresh(ctx)
		}
	}
}
