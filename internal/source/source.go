// Package source builds the snapshot provider and cache store a config
// asks for. Both binaries wire their sync through here.
package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"rsff-cap-mcp/internal/config"
	"rsff-cap-mcp/internal/fetch"
	"rsff-cap-mcp/internal/metrics"
	"rsff-cap-mcp/internal/store"
	"rsff-cap-mcp/internal/syncer"
	"rsff-cap-mcp/internal/workbook"
)

// Provider returns the live source for cfg, or nil when only the cache is
// configured.
func Provider(ctx context.Context, cfg config.Config, m *metrics.Metrics, log logrus.FieldLogger) (syncer.Provider, error) {
	switch cfg.Source() {
	case "xlsx":
		return &workbook.Provider{Path: cfg.Sheet.XLSXPath, Ranges: cfg.Sheet.Ranges}, nil
	case "sheets":
		hc, key, err := fetch.HTTPClient(ctx, fetch.Credentials{
			JSONBase64: cfg.Sheet.CredentialsB64,
			File:       cfg.Sheet.CredentialsFile,
			APIKey:     cfg.Sheet.APIKey,
		}, cfg.Sheet.Timeout)
		if err != nil {
			return nil, err
		}
		raw := store.NewJSONStore(filepath.Join(cfg.Sync.CacheDir, "raw"))
		c := fetch.NewClient(hc, raw, m.Breaker)
		c.APIKey = key
		c.Log = log
		return &fetch.SheetsProvider{Client: c, SheetID: cfg.Sheet.ID, Ranges: cfg.Sheet.Ranges}, nil
	default:
		return nil, nil
	}
}

// Store returns Redis when an address is configured, else the file cache.
func Store(ctx context.Context, cfg config.Config) (store.SnapshotStore, error) {
	if cfg.Sync.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, cfg.Sync.RedisAddr, cfg.Sync.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("snapshot cache: %w", err)
		}
		return rs, nil
	}
	return store.NewJSONStore(cfg.Sync.CacheDir), nil
}
