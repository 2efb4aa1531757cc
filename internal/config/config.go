// Package config defines the top-level configuration for propbot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PROPBOT_* environment variables.
type Config struct {
	Kalshi   KalshiConfig   `toml:"kalshi"`
	Books    BooksConfig    `toml:"books"`
	Scan     ScanConfig     `toml:"scan"`
	Trade    TradeConfig    `toml:"trade"`
	Manual   ManualConfig   `toml:"manual"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Notify   NotifyConfig   `toml:"notify"`
	DataDir  string         `toml:"data_dir"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// KalshiConfig holds Kalshi exchange API credentials and market selection.
type KalshiConfig struct {
	ApiKeyID       string   `toml:"api_key_id"`
	PrivateKeyPEM  string   `toml:"private_key_pem"`
	PrivateKeyPath string   `toml:"private_key_path"`
	KeyPassphrase  string   `toml:"key_passphrase"`
	BaseURL        string   `toml:"base_url"`
	Series         []string `toml:"series"`
}

// BooksConfig selects which sportsbooks to fetch lines from.
type BooksConfig struct {
	DraftKings BookConfig     `toml:"draftkings"`
	Pinnacle   PinnacleConfig `toml:"pinnacle"`
	Underdog   BookConfig     `toml:"underdog"`
}

// BookConfig holds per-book fetch settings. An empty BaseURL uses the
// client's default endpoint.
type BookConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// PinnacleConfig is BookConfig plus the guest API key Pinnacle requires.
type PinnacleConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

// pinnacleGuestKey is the published guest key the Pinnacle web app ships.
const pinnacleGuestKey = "CmX2KcMrXuFmNg6YFbmTxE0y9CIrOi0R"

// ScanConfig holds edge-detection parameters.
type ScanConfig struct {
	// MinEdgeCents is the minimum edge, in cents, for an edge to qualify.
	MinEdgeCents float64 `toml:"min_edge_cents"`
	// Sources lists the books whose lines feed the fair-value average.
	Sources []string `toml:"sources"`
}

// TradeConfig holds order sizing and per-run guardrails for trade mode.
type TradeConfig struct {
	Count         int    `toml:"count"`
	OrderType     string `toml:"order_type"`
	MaxContracts  int    `toml:"max_contracts"`
	MaxSpendCents int    `toml:"max_spend_cents"`
	AutoConfirm   bool   `toml:"auto_confirm"`
	DryRun        bool   `toml:"dry_run"`
}

// ManualConfig describes the single order manual mode places. CLI flags
// override these fields.
type ManualConfig struct {
	Ticker     string `toml:"ticker"`
	Action     string `toml:"action"`
	Side       string `toml:"side"`
	Count      int    `toml:"count"`
	PriceCents int    `toml:"price_cents"`
	OrderType  string `toml:"order_type"`
}

// LedgerConfig selects and locates the trade ledger backend.
type LedgerConfig struct {
	// Backend is "csv" or "postgres".
	Backend string `toml:"backend"`
	// Path is the CSV ledger file; empty means <data_dir>/trades_log.csv.
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters for the ledger.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the snapshot cache and
// run lock. Redis is optional; when disabled the cache misses and the lock
// grants locally.
type RedisConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	TLSEnabled  bool     `toml:"tls_enabled"`
	SnapshotTTL duration `toml:"snapshot_ttl"`
}

// S3Config holds S3-compatible object storage parameters for run archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
			Series: []string{
				"KXNBAPTS", "KXNBAREB", "KXNBAAST",
				"KXNBA3PT", "KXNBASTL", "KXNBABLK",
			},
		},
		Books: BooksConfig{
			DraftKings: BookConfig{Enabled: true},
			Pinnacle:   PinnacleConfig{Enabled: true, ApiKey: pinnacleGuestKey},
			Underdog:   BookConfig{Enabled: false},
		},
		Scan: ScanConfig{
			MinEdgeCents: 5,
			Sources:      []string{"draftkings", "pinnacle"},
		},
		Trade: TradeConfig{
			Count:         5,
			OrderType:     "limit",
			MaxContracts:  20,
			MaxSpendCents: 5000,
		},
		Manual: ManualConfig{
			Action:    "buy",
			OrderType: "limit",
		},
		Ledger: LedgerConfig{
			Backend: "csv",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:     false,
			Addr:        "localhost:6379",
			SnapshotTTL: duration{15 * time.Minute},
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "propbot-data",
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"trade_executed", "edge_found", "run_failed"},
		},
		DataDir:  "data",
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"fetch":  true,
	"scan":   true,
	"trade":  true,
	"manual": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validSources enumerates the accepted values for Scan.Sources.
var validSources = map[string]bool{
	"draftkings": true,
	"pinnacle":   true,
	"underdog":   true,
}

// validOrderTypes enumerates the accepted order type strings.
var validOrderTypes = map[string]bool{
	"limit":  true,
	"market": true,
}

// sourceEnabled reports whether the book behind a scan source is enabled.
func (c *Config) sourceEnabled(source string) bool {
	switch source {
	case "draftkings":
		return c.Books.DraftKings.Enabled
	case "pinnacle":
		return c.Books.Pinnacle.Enabled
	case "underdog":
		return c.Books.Underdog.Enabled
	}
	return false
}

// needsKalshiAuth reports whether mode talks to the Kalshi API.
func needsKalshiAuth(mode string) bool {
	return mode == "fetch" || mode == "trade" || mode == "manual"
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: fetch, scan, trade, manual)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if c.DataDir == "" {
		errs = append(errs, "data_dir must not be empty")
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if len(c.Kalshi.Series) == 0 {
		errs = append(errs, "kalshi: series must list at least one series ticker")
	}
	if needsKalshiAuth(mode) {
		if c.Kalshi.ApiKeyID == "" {
			errs = append(errs, "kalshi: api_key_id is required for mode "+mode)
		}
		if c.Kalshi.PrivateKeyPEM == "" && c.Kalshi.PrivateKeyPath == "" {
			errs = append(errs, "kalshi: either private_key_pem or private_key_path must be set for mode "+mode)
		}
	}

	// Books
	if c.Books.Pinnacle.Enabled && c.Books.Pinnacle.ApiKey == "" {
		errs = append(errs, "books: pinnacle.api_key must not be empty when pinnacle is enabled")
	}

	// Scan
	if c.Scan.MinEdgeCents <= 0 {
		errs = append(errs, "scan: min_edge_cents must be > 0")
	}
	if len(c.Scan.Sources) == 0 {
		errs = append(errs, "scan: sources must list at least one book")
	}
	for _, s := range c.Scan.Sources {
		if !validSources[s] {
			errs = append(errs, fmt.Sprintf("scan: unknown source %q (valid: draftkings, pinnacle, underdog)", s))
			continue
		}
		if !c.sourceEnabled(s) {
			errs = append(errs, fmt.Sprintf("scan: source %q is listed but books.%s is disabled", s, s))
		}
	}

	// Trade
	if c.Trade.Count < 1 {
		errs = append(errs, "trade: count must be >= 1")
	}
	if !validOrderTypes[c.Trade.OrderType] {
		errs = append(errs, fmt.Sprintf("trade: order_type must be limit or market, got %q", c.Trade.OrderType))
	}
	if c.Trade.MaxContracts < 1 {
		errs = append(errs, "trade: max_contracts must be >= 1")
	}
	if c.Trade.MaxSpendCents <= 0 {
		errs = append(errs, "trade: max_spend_cents must be > 0")
	}

	// Manual — only checked when running manual mode.
	if mode == "manual" {
		if c.Manual.Ticker == "" {
			errs = append(errs, "manual: ticker must not be empty")
		}
		if c.Manual.Action != "buy" && c.Manual.Action != "sell" {
			errs = append(errs, fmt.Sprintf("manual: action must be buy or sell, got %q", c.Manual.Action))
		}
		if c.Manual.Side != "yes" && c.Manual.Side != "no" {
			errs = append(errs, fmt.Sprintf("manual: side must be yes or no, got %q", c.Manual.Side))
		}
		if c.Manual.Count < 1 {
			errs = append(errs, "manual: count must be >= 1")
		}
		if c.Manual.PriceCents < 1 || c.Manual.PriceCents > 99 {
			errs = append(errs, fmt.Sprintf("manual: price_cents must be 1-99, got %d", c.Manual.PriceCents))
		}
		if !validOrderTypes[c.Manual.OrderType] {
			errs = append(errs, fmt.Sprintf("manual: order_type must be limit or market, got %q", c.Manual.OrderType))
		}
	}

	// Ledger
	switch c.Ledger.Backend {
	case "csv":
	case "postgres":
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("ledger: backend must be csv or postgres, got %q", c.Ledger.Backend))
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.SnapshotTTL.Duration <= 0 {
			errs = append(errs, "redis: snapshot_ttl must be > 0 when enabled")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
