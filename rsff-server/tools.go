package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"rsff-cap-mcp/internal/lookup"
	"rsff-cap-mcp/internal/metrics"
	"rsff-cap-mcp/internal/render"
	"rsff-cap-mcp/internal/salarycap"
	"rsff-cap-mcp/internal/sheet"
	"rsff-cap-mcp/internal/sim"
)

type TeamArgs struct {
	Team   string `json:"team,omitempty" jsonschema:"Team name or part of it (default: the caller's team)"`
	Caller string `json:"caller,omitempty" jsonschema:"Chat handle of the person asking"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type CapDetailArgs struct {
	Team   string `json:"team,omitempty" jsonschema:"Team name or part of it (default: the caller's team)"`
	Caller string `json:"caller,omitempty" jsonschema:"Chat handle of the person asking"`
	TopN   int    `json:"top_n,omitempty" jsonschema:"How many salaries to list (default 8)"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type LeadersArgs struct {
	N      int    `json:"n,omitempty" jsonschema:"How many teams (default 5)"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type AddArgs struct {
	Team          string `json:"team,omitempty" jsonschema:"Team name (default: the caller's team)"`
	Caller        string `json:"caller,omitempty" jsonschema:"Chat handle of the person asking"`
	Player        string `json:"player" jsonschema:"Player to add (required)"`
	ApplyDiscount bool   `json:"apply_discount,omitempty" jsonschema:"Apply the in-season add discount when active"`
	Format        string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type DropArgs struct {
	Team   string `json:"team,omitempty" jsonschema:"Team name (default: the caller's team)"`
	Caller string `json:"caller,omitempty" jsonschema:"Chat handle of the person asking"`
	Player string `json:"player" jsonschema:"Player to drop (required)"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type WhatIfArgs struct {
	Team   string `json:"team,omitempty" jsonschema:"Team name (default: the caller's team)"`
	Caller string `json:"caller,omitempty" jsonschema:"Chat handle of the person asking"`
	Add    string `json:"add,omitempty" jsonschema:"Player to add"`
	Drop   string `json:"drop,omitempty" jsonschema:"Player to drop"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type PlayerLookupArgs struct {
	Name   string `json:"name" jsonschema:"Player name, full or partial (required)"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type StatusArgs struct {
	Format string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type SyncArgs struct {
	AdminKey string `json:"admin_key" jsonschema:"Admin key (required)"`
	Format   string `json:"format,omitempty" jsonschema:"json (default) or text"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// newServer builds the MCP server with every tool registered.
func newServer(a *app) (*mcp.Server, []toolInfo) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "rsff-cap-mcp",
			Version: a.version,
		},
		nil,
	)

	registry := make([]toolInfo, 0, 16)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "cap_summary",
		Description: "Cap used/remaining for a team with the DP relieved",
	}, a.capSummary)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "cap_detail",
		Description: "Cap summary plus the team's largest counted salaries",
	}, a.capDetail)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "team_summary",
		Description: "Full team ledger: active and IR players, gross cap, DP and IR relief",
	}, a.teamSummary)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "cap_leaders",
		Description: "Teams with the most cap space remaining",
	}, a.capLeaders)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "simulate_add",
		Description: "What adding a player would cost (no changes are made)",
	}, a.simulateAdd)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "simulate_drop",
		Description: "Dead cap and roster effect of dropping a player (no changes are made)",
	}, a.simulateDrop)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "simulate_whatif",
		Description: "Net cap change of an add and/or drop, re-selecting the DP",
	}, a.simulateWhatIf)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "player_lookup",
		Description: "Find a player: position, NFL team, bye, salary and who rosters him",
	}, a.playerLookup)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "snapshot_status",
		Description: "Hash, time and row counts of the loaded sheet snapshot",
	}, a.snapshotStatus)

	addTool(server, &registry, a.metrics, &mcp.Tool{
		Name:        "sync",
		Description: "Admin: pull the sheet now and report row changes",
	}, a.sync)

	return server, registry
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, m *metrics.Metrics, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args T) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		res, out, err := handler(ctx, req, args)
		m.ObserveTool(tool.Name, time.Since(start), err != nil || (res != nil && res.IsError))
		return res, out, err
	})
}

func (a *app) capSummary(ctx context.Context, req *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
	snap, err := a.snapshot()
	if err != nil {
		return toolError(err), nil, nil
	}
	team, err := a.resolveTeam(snap, args.Team, args.Caller)
	if err != nil {
		return toolError(err), nil, nil
	}
	if err := a.allow(args.Caller, team); err != nil {
		return toolError(err), nil, nil
	}
	res := salarycap.SummaryFor(snap, team)
	return toolOutput(args.Format, res, func() string { return render.Cap(res, snap) }), nil, nil
}

func (a *app) capDetail(ctx context.Context, req *mcp.CallToolRequest, args CapDetailArgs) (*mcp.CallToolResult, any, error) {
	snap, err := a.snapshot()
	if err != nil {
		return toolError(err), nil, nil
	}
	team, err := a.resolveTeam(snap, args.Team, args.Caller)
	if err != nil {
		return toolError(err), nil, nil
	}
	if err := a.allow(args.Caller, team); err != nil {
		return toolError(err), nil, nil
	}
	n := args.TopN
	if n <= 0 {
		n = a.cfg.Chat.DetailTopN
	}
	res := salarycap.DetailFor(snap, team, n)
	return toolOutput(args.Format, res, func() string { return render.CapDetail(res, snap) }), nil, nil
}

func (a *app) teamSummary(ctx context.Context, req *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
	snap, err := a.snapshot()
	if err != nil {
		return toolError(err), nil, nil
	}
	team, err := a.resolveTeam(snap, args.Team, args.Caller)
	if err != nil {
		return toolError(err), nil, nil
	}
	if err := a.allow(args.Caller, team); err != nil {
		return toolError(err), nil, nil
	}
	res, err := salarycap.SummarizeTeam(snap, team)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolOutput(args.Format, res, func() string { return render.Team(res, snap) }), nil, nil
}

func (a *app) capLeaders(ctx context.Context, req *mcp.CallToolRequest, args LeadersArgs) (*mcp.CallToolResult, any, error) {
	snap, err := a.snapshot()
	if err != nil {
		return toolError(err), nil, nil
	}
	n := args.N
	if n <= 0 {
		n = a.cfg.Chat.LeadersN
	}
	res := salarycap.Leaders(snap, n)
	return toolOutput(args.Format, map[string]any{"leaders": res, "snapshot": snap.ShortHash()},
		func() string { return render.Leaders(res, snap) }), nil, nil
}

// simTeam is the shared prologue of the simulators.
func (a *app) simTeam(team, caller string) (*sheet.Snapshot, string, error) {
	snap, err := a.snapshot()
	if err != nil {
		return nil, "", err
	}
	label, err := a.resolveTeam(snap, team, caller)
	if err != nil {
		return nil, "", err
	}
	if err := a.allow(caller, label); err != nil {
		return nil, "", err
	}
	return snap, label, nil
}

func (a *app) simulateAdd(ctx context.Context, req *mcp.CallToolRequest, args AddArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Player) == "" {
		return toolError(fmt.Errorf("player is required")), nil, nil
	}
	snap, team, err := a.simTeam(args.Team, args.Caller)
	if err != nil {
		return toolError(err), nil, nil
	}
	var res sim.AddResult
	if args.ApplyDiscount {
		res = sim.SimulateAddDiscounted(snap, team, args.Player)
	} else {
		res = sim.SimulateAdd(snap, team, args.Player)
	}
	return toolOutput(args.Format, res, func() string { return render.Add(res, snap) }), nil, nil
}

func (a *app) simulateDrop(ctx context.Context, req *mcp.CallToolRequest, args DropArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Player) == "" {
		return toolError(fmt.Errorf("player is required")), nil, nil
	}
	snap, team, err := a.simTeam(args.Team, args.Caller)
	if err != nil {
		return toolError(err), nil, nil
	}
	res := sim.SimulateDrop(snap, team, args.Player)
	return toolOutput(args.Format, res, func() string { return render.Drop(res, snap) }), nil, nil
}

func (a *app) simulateWhatIf(ctx context.Context, req *mcp.CallToolRequest, args WhatIfArgs) (*mcp.CallToolResult, any, error) {
	snap, team, err := a.simTeam(args.Team, args.Caller)
	if err != nil {
		return toolError(err), nil, nil
	}
	res := sim.SimulateWhatIf(snap, team, args.Add, args.Drop)
	return toolOutput(args.Format, res, func() string { return render.WhatIf(res, snap) }), nil, nil
}

func (a *app) playerLookup(ctx context.Context, req *mcp.CallToolRequest, args PlayerLookupArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Name) == "" {
		return toolError(fmt.Errorf("name is required")), nil, nil
	}
	snap, err := a.snapshot()
	if err != nil {
		return toolError(err), nil, nil
	}
	res, err := lookup.Player(snap, args.Name)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolOutput(args.Format, res, func() string { return render.Player(res, snap) }), nil, nil
}

type statusResult struct {
	Version        string         `json:"version"`
	Hash           string         `json:"hash"`
	Timestamp      string         `json:"timestamp"`
	GeneratedAtUTC string         `json:"generated_at_utc"`
	Rows           map[string]int `json:"rows"`
	LiveSource     bool           `json:"live_source"`
}

func (a *app) snapshotStatus(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	snap := a.holder.Current()
	out := statusResult{Version: a.version, Rows: snap.RowCounts(), LiveSource: a.syncer != nil}
	if snap != nil {
		out.Hash = snap.Hash
		out.Timestamp = snap.Timestamp
		out.GeneratedAtUTC = snap.GeneratedAtUTC
	}
	return toolOutput(args.Format, out, func() string { return render.Status(snap, a.version) }), nil, nil
}

func (a *app) sync(ctx context.Context, req *mcp.CallToolRequest, args SyncArgs) (*mcp.CallToolResult, any, error) {
	admin := a.cfg.Server.AdminKey
	if admin == "" {
		return toolError(errors.New("sync is disabled: no admin key configured")), nil, nil
	}
	if subtle.ConstantTimeCompare([]byte(args.AdminKey), []byte(admin)) != 1 {
		return toolError(errors.New("sync is admin-only")), nil, nil
	}
	if a.syncer == nil {
		return toolError(errors.New("no live source configured")), nil, nil
	}
	d, err := a.syncer.Refresh(ctx)
	if err != nil {
		return toolError(err), nil, nil
	}
	snap := a.holder.Current()
	return toolOutput(args.Format, d, func() string { return render.Sync(d, snap) }), nil, nil
}

// toolOutput renders v as indented JSON, or as chat text when format is
// "text".
func toolOutput(format string, v any, text func() string) *mcp.CallToolResult {
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return toolJSONBytes([]byte(text()))
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return toolJSONBytes(b)
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
