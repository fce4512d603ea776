package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rsff-cap-mcp/internal/config"
	"rsff-cap-mcp/internal/lookup"
	"rsff-cap-mcp/internal/metrics"
	"rsff-cap-mcp/internal/render"
	"rsff-cap-mcp/internal/salarycap"
	"rsff-cap-mcp/internal/sheet"
	"rsff-cap-mcp/internal/sim"
	"rsff-cap-mcp/internal/source"
	"rsff-cap-mcp/internal/store"
	"rsff-cap-mcp/internal/syncer"
)

const version = "0.3.0"

type options struct {
	configPath string
	asJSON     bool
	live       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "rsff-sync",
		Short:        "Pull the RSFF league sheet and query the cap ledger from a terminal",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	pf.BoolVar(&opts.asJSON, "json", false, "print JSON instead of chat text")
	pf.BoolVar(&opts.live, "live", false, "pull from the live source instead of reading the cache")

	root.AddCommand(
		pullCmd(opts),
		statusCmd(opts),
		capCmd(opts),
		teamCmd(opts),
		addCmd(opts),
		dropCmd(opts),
		whatifCmd(opts),
		lookupCmd(opts),
		headersCmd(opts),
	)
	return root
}

// env is what every subcommand needs: config, logger and the snapshot cache.
type env struct {
	cfg   config.Config
	log   *logrus.Logger
	store store.SnapshotStore
}

func setup(ctx context.Context, opts *options) (*env, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := cfg.Log.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(os.Stderr)
	st, err := source.Store(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {}
	if rs, ok := st.(*store.RedisStore); ok {
		closer = func() { _ = rs.Close() }
	}
	return &env{cfg: cfg, log: log, store: st}, closer, nil
}

// pull refreshes from the configured live source and caches the result.
func (e *env) pull(ctx context.Context) (*sheet.Snapshot, syncer.Diff, error) {
	p, err := source.Provider(ctx, e.cfg, metrics.New(), e.log)
	if err != nil {
		return nil, syncer.Diff{}, err
	}
	if p == nil {
		return nil, syncer.Diff{}, errors.New("no live source configured: set RSFF_SHEET_ID or RSFF_XLSX_PATH")
	}
	h := &syncer.Holder{}
	if prev, err := e.store.LoadSnapshot(ctx); err == nil {
		h.Swap(prev)
	}
	d, err := syncer.New(p, h, e.store, nil, e.log).Refresh(ctx)
	if err != nil {
		return nil, d, err
	}
	return h.Current(), d, nil
}

// snapshot reads the cache, or pulls when live is set.
func (e *env) snapshot(ctx context.Context, live bool) (*sheet.Snapshot, error) {
	if live {
		snap, _, err := e.pull(ctx)
		return snap, err
	}
	snap, err := e.store.LoadSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, errors.New("no cached snapshot; run `rsff-sync pull` first")
	}
	return snap, err
}

func emit(w io.Writer, asJSON bool, v any, text func() string) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, text())
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// withSnapshot wraps a subcommand body with setup and snapshot loading.
func withSnapshot(opts *options, run func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, closer, err := setup(cmd.Context(), opts)
		if err != nil {
			return err
		}
		defer closer()
		snap, err := e.snapshot(cmd.Context(), opts.live)
		if err != nil {
			return err
		}
		return run(cmd, args, snap)
	}
}

func pullCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull the sheet now and cache the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closer, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closer()
			snap, d, err := e.pull(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.asJSON, d, func() string { return render.Sync(d, snap) })
		},
	}
}

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cached snapshot's hash, time and row counts",
		Args:  cobra.NoArgs,
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			v := map[string]any{"hash": snap.Hash, "timestamp": snap.Timestamp, "rows": snap.RowCounts()}
			return emit(cmd.OutOrStdout(), opts.asJSON, v, func() string { return render.Status(snap, version) })
		}),
	}
}

func capCmd(opts *options) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "cap [team]",
		Short: "Cap summary for a team, or the leaderboard when no team is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				rows := salarycap.Leaders(snap, top)
				return emit(out, opts.asJSON, rows, func() string { return render.Leaders(rows, snap) })
			}
			if top > 0 {
				d, err := salarycap.Detail(snap, args[0], top)
				if err != nil {
					return err
				}
				return emit(out, opts.asJSON, d, func() string { return render.CapDetail(d, snap) })
			}
			s, err := salarycap.Summary(snap, args[0])
			if err != nil {
				return err
			}
			return emit(out, opts.asJSON, s, func() string { return render.Cap(s, snap) })
		}),
	}
	cmd.Flags().IntVar(&top, "top", 0, "list the N largest salaries (or N leaders)")
	return cmd
}

func teamCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "team <team>",
		Short: "Full team ledger with DP and IR relief",
		Args:  cobra.ExactArgs(1),
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			team, err := salarycap.ResolveTeam(snap, args[0])
			if err != nil {
				return err
			}
			t, err := salarycap.SummarizeTeam(snap, team)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.asJSON, t, func() string { return render.Team(t, snap) })
		}),
	}
}

func addCmd(opts *options) *cobra.Command {
	var discount bool
	cmd := &cobra.Command{
		Use:   "add <team> <player>",
		Short: "Simulate adding a player",
		Args:  cobra.ExactArgs(2),
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			team, err := salarycap.ResolveTeam(snap, args[0])
			if err != nil {
				return err
			}
			r := sim.SimulateAdd(snap, team, args[1])
			if discount {
				r = sim.SimulateAddDiscounted(snap, team, args[1])
			}
			return emit(cmd.OutOrStdout(), opts.asJSON, r, func() string { return render.Add(r, snap) })
		}),
	}
	cmd.Flags().BoolVar(&discount, "discount", false, "apply the in-season add discount when active")
	return cmd
}

func dropCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <team> <player>",
		Short: "Simulate dropping a player",
		Args:  cobra.ExactArgs(2),
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			team, err := salarycap.ResolveTeam(snap, args[0])
			if err != nil {
				return err
			}
			r := sim.SimulateDrop(snap, team, args[1])
			return emit(cmd.OutOrStdout(), opts.asJSON, r, func() string { return render.Drop(r, snap) })
		}),
	}
}

func whatifCmd(opts *options) *cobra.Command {
	var add, drop string
	cmd := &cobra.Command{
		Use:   "whatif <team>",
		Short: "Simulate an add and/or drop together",
		Args:  cobra.ExactArgs(1),
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			team, err := salarycap.ResolveTeam(snap, args[0])
			if err != nil {
				return err
			}
			r := sim.SimulateWhatIf(snap, team, add, drop)
			return emit(cmd.OutOrStdout(), opts.asJSON, r, func() string { return render.WhatIf(r, snap) })
		}),
	}
	cmd.Flags().StringVar(&add, "add", "", "player to add")
	cmd.Flags().StringVar(&drop, "drop", "", "player to drop")
	return cmd
}

func lookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name>",
		Short: "Find a player and who rosters him",
		Args:  cobra.ExactArgs(1),
		RunE: withSnapshot(opts, func(cmd *cobra.Command, args []string, snap *sheet.Snapshot) error {
			p, err := lookup.Player(snap, args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.asJSON, p, func() string { return render.Player(p, snap) })
		}),
	}
}
