package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the final Config: built-in defaults, then the TOML file at
// path when path is non-empty, then PROPBOT_* environment variable
// overrides. A missing .env file is ignored. The returned Config has NOT
// been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PROPBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.ApiKeyID, "PROPBOT_KALSHI_API_KEY_ID")
	setStr(&cfg.Kalshi.PrivateKeyPEM, "PROPBOT_KALSHI_PRIVATE_KEY_PEM")
	setStr(&cfg.Kalshi.PrivateKeyPath, "PROPBOT_KALSHI_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.KeyPassphrase, "PROPBOT_KALSHI_KEY_PASSPHRASE")
	setStr(&cfg.Kalshi.BaseURL, "PROPBOT_KALSHI_BASE_URL")
	setStringSlice(&cfg.Kalshi.Series, "PROPBOT_KALSHI_SERIES")

	// ── Books ──
	setBool(&cfg.Books.DraftKings.Enabled, "PROPBOT_BOOKS_DRAFTKINGS_ENABLED")
	setStr(&cfg.Books.DraftKings.BaseURL, "PROPBOT_BOOKS_DRAFTKINGS_BASE_URL")
	setBool(&cfg.Books.Pinnacle.Enabled, "PROPBOT_BOOKS_PINNACLE_ENABLED")
	setStr(&cfg.Books.Pinnacle.BaseURL, "PROPBOT_BOOKS_PINNACLE_BASE_URL")
	setStr(&cfg.Books.Pinnacle.ApiKey, "PROPBOT_BOOKS_PINNACLE_API_KEY")
	setBool(&cfg.Books.Underdog.Enabled, "PROPBOT_BOOKS_UNDERDOG_ENABLED")
	setStr(&cfg.Books.Underdog.BaseURL, "PROPBOT_BOOKS_UNDERDOG_BASE_URL")

	// ── Scan ──
	setFloat64(&cfg.Scan.MinEdgeCents, "PROPBOT_SCAN_MIN_EDGE_CENTS")
	setStringSlice(&cfg.Scan.Sources, "PROPBOT_SCAN_SOURCES")

	// ── Trade ──
	setInt(&cfg.Trade.Count, "PROPBOT_TRADE_COUNT")
	setStr(&cfg.Trade.OrderType, "PROPBOT_TRADE_ORDER_TYPE")
	setInt(&cfg.Trade.MaxContracts, "PROPBOT_TRADE_MAX_CONTRACTS")
	setInt(&cfg.Trade.MaxSpendCents, "PROPBOT_TRADE_MAX_SPEND_CENTS")
	setBool(&cfg.Trade.AutoConfirm, "PROPBOT_TRADE_AUTO_CONFIRM")
	setBool(&cfg.Trade.DryRun, "PROPBOT_TRADE_DRY_RUN")

	// ── Manual ──
	setStr(&cfg.Manual.Ticker, "PROPBOT_MANUAL_TICKER")
	setStr(&cfg.Manual.Action, "PROPBOT_MANUAL_ACTION")
	setStr(&cfg.Manual.Side, "PROPBOT_MANUAL_SIDE")
	setInt(&cfg.Manual.Count, "PROPBOT_MANUAL_COUNT")
	setInt(&cfg.Manual.PriceCents, "PROPBOT_MANUAL_PRICE_CENTS")
	setStr(&cfg.Manual.OrderType, "PROPBOT_MANUAL_ORDER_TYPE")

	// ── Ledger ──
	setStr(&cfg.Ledger.Backend, "PROPBOT_LEDGER_BACKEND")
	setStr(&cfg.Ledger.Path, "PROPBOT_LEDGER_PATH")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "PROPBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PROPBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PROPBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PROPBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PROPBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PROPBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PROPBOT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PROPBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PROPBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PROPBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PROPBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PROPBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PROPBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PROPBOT_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "PROPBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.SnapshotTTL, "PROPBOT_REDIS_SNAPSHOT_TTL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PROPBOT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PROPBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PROPBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "PROPBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PROPBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PROPBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PROPBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PROPBOT_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PROPBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PROPBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PROPBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PROPBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.DataDir, "PROPBOT_DATA_DIR")
	setStr(&cfg.Mode, "PROPBOT_MODE")
	setStr(&cfg.LogLevel, "PROPBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
