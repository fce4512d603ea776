// Package config loads rsff.yaml, applies RSFF_* environment overrides and
// validates the result. Flags are layered on top by each binary.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultRanges are the A1 ranges read from the league workbook.
var DefaultRanges = []string{
	"Salary2025!A1:F1000",
	"Rosters!A1:K1000",
	"Owners2025!A1:F1000",
	"Rules!A1:B995",
}

// Config mirrors rsff.yaml. Every section is listed so strict decoding
// rejects typos.
type Config struct {
	Sheet  SheetConfig  `yaml:"sheet"`
	Sync   SyncConfig   `yaml:"sync"`
	Server ServerConfig `yaml:"server"`
	Chat   ChatConfig   `yaml:"chat"`
	Log    LogConfig    `yaml:"log"`
}

type SheetConfig struct {
	ID              string        `yaml:"id"`
	Ranges          []string      `yaml:"ranges"`
	XLSXPath        string        `yaml:"xlsx_path"`
	CredentialsFile string        `yaml:"credentials_file"`
	CredentialsB64  string        `yaml:"-"`
	APIKey          string        `yaml:"-"`
	Timeout         time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	Interval  time.Duration `yaml:"interval"`
	CacheDir  string        `yaml:"cache_dir"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisKey  string        `yaml:"redis_key"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Path        string `yaml:"path"`
	AuthHeader  string `yaml:"auth_header"`
	RequireAuth bool   `yaml:"require_auth"`
	Stdio       bool   `yaml:"stdio"`
	APIKey      string `yaml:"-"`
	AdminKey    string `yaml:"-"`
}

type ChatConfig struct {
	CooldownBurst  int           `yaml:"cooldown_burst"`
	CooldownWindow time.Duration `yaml:"cooldown_window"`
	DetailTopN     int           `yaml:"detail_top_n"`
	LeadersN       int           `yaml:"leaders_n"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sheet: SheetConfig{
			Ranges:  append([]string(nil), DefaultRanges...),
			Timeout: 20 * time.Second,
		},
		Sync: SyncConfig{
			Interval: 30 * time.Minute,
			CacheDir: "data/cache",
			RedisKey: "rsff:snapshot",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			Path:        "/mcp",
			AuthHeader:  "X-API-Key",
			RequireAuth: true,
		},
		Chat: ChatConfig{
			CooldownBurst:  2,
			CooldownWindow: 10 * time.Second,
			DetailTopN:     8,
			LeadersN:       5,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (if non-empty) over the defaults, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Sheet.ID, "RSFF_SHEET_ID")
	set(&c.Sheet.XLSXPath, "RSFF_XLSX_PATH")
	set(&c.Sheet.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	set(&c.Sheet.CredentialsB64, "GCP_SA_JSON_BASE64")
	set(&c.Sheet.APIKey, "RSFF_SHEETS_API_KEY")
	set(&c.Sync.RedisAddr, "RSFF_REDIS_ADDR")
	set(&c.Server.APIKey, "RSFF_MCP_API_KEY")
	set(&c.Server.AdminKey, "RSFF_ADMIN_KEY")
	if v := strings.TrimSpace(getenv("RSFF_RANGES")); v != "" {
		c.Sheet.Ranges = splitList(v)
	}
}

// Validate reports settings no binary can run with.
func (c Config) Validate() error {
	var errs []error
	if len(c.Sheet.Ranges) == 0 {
		errs = append(errs, errors.New("sheet.ranges is empty"))
	}
	if c.Sync.Interval < 0 {
		errs = append(errs, errors.New("sync.interval must not be negative"))
	}
	if c.Chat.CooldownBurst < 0 || c.Chat.CooldownWindow < 0 {
		errs = append(errs, errors.New("chat cooldown must not be negative"))
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = append(errs, fmt.Errorf("server.path %q must start with /", c.Server.Path))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Source names where snapshots come from: "xlsx" when a workbook path is
// set, "sheets" when a sheet id is, else "cache" only.
func (c Config) Source() string {
	switch {
	case c.Sheet.XLSXPath != "":
		return "xlsx"
	case c.Sheet.ID != "":
		return "sheets"
	default:
		return "cache"
	}
}

// NewLogger builds a logrus logger for the log section.
func (l LogConfig) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(level)
	if l.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

func splitList(s string) []string {
	out := make([]string, 0, 4)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
