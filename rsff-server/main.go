package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rsff-cap-mcp/internal/config"
	"rsff-cap-mcp/internal/metrics"
	"rsff-cap-mcp/internal/source"
	"rsff-cap-mcp/internal/store"
	"rsff-cap-mcp/internal/syncer"
)

var version = "0.3.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath  string
		addr        string
		mcpPath     string
		authHeader  string
		requireAuth bool
		stdio       bool
		logLevel    string
	)
	cmd := &cobra.Command{
		Use:           "rsff-server",
		Short:         "MCP server for the RSFF salary cap sheet",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("path") {
				cfg.Server.Path = mcpPath
			}
			if flags.Changed("auth-header") {
				cfg.Server.AuthHeader = authHeader
			}
			if flags.Changed("require-auth") {
				cfg.Server.RequireAuth = requireAuth
			}
			if flags.Changed("stdio") {
				cfg.Server.Stdio = stdio
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "path to a YAML config file")
	f.StringVar(&addr, "addr", ":8080", "HTTP listen address")
	f.StringVar(&mcpPath, "path", "/mcp", "HTTP path for MCP endpoint")
	f.StringVar(&authHeader, "auth-header", "X-API-Key", "HTTP header to read API key from")
	f.BoolVar(&requireAuth, "require-auth", true, "require API key auth via RSFF_MCP_API_KEY")
	f.BoolVar(&stdio, "stdio", false, "serve MCP over stdin/stdout instead of HTTP")
	f.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	log, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	if cfg.Server.Stdio {
		// stdout carries the protocol.
		log.SetOutput(os.Stderr)
	}
	m := metrics.New()

	st, err := source.Store(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := st.(*store.RedisStore); ok {
		defer c.Close()
	}

	holder := &syncer.Holder{}
	p, err := source.Provider(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	var s *syncer.Syncer
	if p != nil {
		s = syncer.New(p, holder, st, m, log)
		if err := s.Start(ctx); err != nil {
			log.WithError(err).Warn("starting without a snapshot")
		}
		go s.Run(ctx, cfg.Sync.Interval)
	} else {
		snap, err := st.LoadSnapshot(ctx)
		if err != nil {
			log.WithError(err).Warn("no live source and no cached snapshot")
		} else {
			holder.Swap(snap)
			log.WithField("hash", snap.ShortHash()).Info("serving cached snapshot (no live source configured)")
		}
	}

	a := newApp(cfg, holder, s, m, log, version)
	server, registry := newServer(a)

	if cfg.Server.Stdio {
		log.Info("MCP stdio server ready")
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	if cfg.Server.RequireAuth && cfg.Server.APIKey == "" {
		return errors.New("RSFF_MCP_API_KEY is required when require_auth is true")
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: newRouter(server, registry, m, log, routerOptions{
			Path:       cfg.Server.Path,
			AuthHeader: cfg.Server.AuthHeader,
			APIKey:     cfg.Server.APIKey,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.WithFields(logrus.Fields{"addr": cfg.Server.Addr, "path": cfg.Server.Path}).Info("MCP HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
