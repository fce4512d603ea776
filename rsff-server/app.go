package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"rsff-cap-mcp/internal/config"
	"rsff-cap-mcp/internal/metrics"
	"rsff-cap-mcp/internal/salarycap"
	"rsff-cap-mcp/internal/sheet"
	"rsff-cap-mcp/internal/syncer"
)

var (
	errNoSnapshot = errors.New("no snapshot loaded yet; try again after the next sync")
	errCooldown   = errors.New("slow down: too many requests, try again in a few seconds")
)

// app is the state shared by every tool handler.
type app struct {
	cfg      config.Config
	holder   *syncer.Holder
	syncer   *syncer.Syncer // nil when serving the cache only
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	cooldown *cooldown
	version  string
}

func newApp(cfg config.Config, h *syncer.Holder, s *syncer.Syncer, m *metrics.Metrics, log logrus.FieldLogger, version string) *app {
	return &app{
		cfg:      cfg,
		holder:   h,
		syncer:   s,
		metrics:  m,
		log:      log,
		cooldown: newCooldown(cfg.Chat.CooldownBurst, cfg.Chat.CooldownWindow),
		version:  version,
	}
}

func (a *app) snapshot() (*sheet.Snapshot, error) {
	snap := a.holder.Current()
	if snap == nil {
		return nil, errNoSnapshot
	}
	return snap, nil
}

// allow applies the per-caller cooldown. Calls without a caller share one
// anonymous bucket per team.
func (a *app) allow(caller, team string) error {
	key := caller
	if key == "" {
		key = "team:" + team
	}
	if a.cooldown.Allow(key) {
		return nil
	}
	a.metrics.Cooldown()
	return errCooldown
}

// resolveTeam returns the exact team label for an explicit team query, or
// for the caller's handles when no team is given.
func (a *app) resolveTeam(snap *sheet.Snapshot, team, caller string) (string, error) {
	if team = strings.TrimSpace(team); team != "" {
		return salarycap.ResolveTeam(snap, team)
	}
	if caller = strings.TrimSpace(caller); caller == "" {
		return "", fmt.Errorf("%w: pass team or caller", salarycap.ErrTeamNotFound)
	}
	label, err := salarycap.ResolveCaller(snap, caller)
	if err != nil {
		return "", fmt.Errorf("I couldn't map %s to a team. Add your handle to the Owners tab (discord user), or pass team: %w", caller, err)
	}
	return label, nil
}
