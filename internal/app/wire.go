package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	s3blob "github.com/calebwren/propbot/internal/blob/s3"
	"github.com/calebwren/propbot/internal/cache/redis"
	"github.com/calebwren/propbot/internal/config"
	"github.com/calebwren/propbot/internal/crypto"
	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/engine"
	"github.com/calebwren/propbot/internal/notify"
	"github.com/calebwren/propbot/internal/platform/draftkings"
	"github.com/calebwren/propbot/internal/platform/kalshi"
	"github.com/calebwren/propbot/internal/platform/pinnacle"
	"github.com/calebwren/propbot/internal/platform/underdog"
	"github.com/calebwren/propbot/internal/snapshot"
	"github.com/calebwren/propbot/internal/store/csvledger"
	"github.com/calebwren/propbot/internal/store/postgres"
)

// Dependencies bundles every collaborator the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
// Optional members (Cache, Lock, Archiver) are nil when their backing
// service is disabled; book clients are nil outside fetch mode or when the
// book is disabled.
type Dependencies struct {
	// Platform clients
	Kalshi     *kalshi.Client
	DraftKings *draftkings.Client
	Pinnacle   *pinnacle.Client
	Underdog   *underdog.Client

	// Pipeline
	Engine    *engine.Engine
	Snapshots *snapshot.Store

	// Persistence
	Ledger domain.LedgerStore

	// Optional services
	Cache    domain.SnapshotCache
	Lock     domain.LockManager
	Archiver domain.RunArchiver

	// Notifications
	Notifier *notify.Notifier
}

// needsKalshi returns true for modes that talk to the exchange API.
func needsKalshi(mode string) bool {
	switch mode {
	case "fetch", "trade", "manual":
		return true
	default:
		return false
	}
}

// needsBooks returns true for modes that pull fresh sportsbook lines.
func needsBooks(mode string) bool {
	return mode == "fetch"
}

// needsLedger returns true for modes that may place orders.
func needsLedger(mode string) bool {
	return mode == "trade" || mode == "manual"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	mode := strings.ToLower(cfg.Mode)
	deps := &Dependencies{
		Engine:    engine.New(logger),
		Snapshots: snapshot.New(cfg.DataDir),
	}

	// --- Kalshi (only for modes that hit the exchange) ---
	if needsKalshi(mode) {
		keyPEM, err := crypto.LoadKeyPEM(crypto.KeyConfig{
			PrivateKeyPEM:  cfg.Kalshi.PrivateKeyPEM,
			PrivateKeyPath: cfg.Kalshi.PrivateKeyPath,
			Passphrase:     cfg.Kalshi.KeyPassphrase,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
		client := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKeyID)
		if err := client.SetRSAPrivateKey(keyPEM); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
		deps.Kalshi = client
	}

	// --- Sportsbook clients (fetch mode only) ---
	if needsBooks(mode) {
		if cfg.Books.DraftKings.Enabled {
			deps.DraftKings = draftkings.NewClient(cfg.Books.DraftKings.BaseURL, logger)
		}
		if cfg.Books.Pinnacle.Enabled {
			deps.Pinnacle = pinnacle.NewClient(cfg.Books.Pinnacle.BaseURL, cfg.Books.Pinnacle.ApiKey, logger)
		}
		if cfg.Books.Underdog.Enabled {
			deps.Underdog = underdog.NewClient(cfg.Books.Underdog.BaseURL, logger)
		}
	}

	// --- Trade ledger (only for modes that may place orders) ---
	if needsLedger(mode) {
		switch cfg.Ledger.Backend {
		case "postgres":
			pgClient, err := postgres.New(ctx, postgres.ClientConfig{
				DSN:      cfg.Postgres.DSN,
				Host:     cfg.Postgres.Host,
				Port:     cfg.Postgres.Port,
				Database: cfg.Postgres.Database,
				User:     cfg.Postgres.User,
				Password: cfg.Postgres.Password,
				SSLMode:  cfg.Postgres.SSLMode,
				MaxConns: cfg.Postgres.PoolMaxConns,
				MinConns: cfg.Postgres.PoolMinConns,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres: %w", err)
			}
			closers = append(closers, pgClient.Close)

			if cfg.Postgres.RunMigrations {
				if err := pgClient.RunMigrations(ctx); err != nil {
					cleanup()
					return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
				}
			}
			deps.Ledger = postgres.NewLedgerStore(pgClient)
		default:
			path := cfg.Ledger.Path
			if path == "" {
				path = filepath.Join(cfg.DataDir, "trades_log.csv")
			}
			deps.Ledger = csvledger.New(path, logger)
		}
	}

	// --- Redis (optional snapshot cache + run lock) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Cache = redis.NewSnapshotCache(redisClient)
		deps.Lock = redis.NewLockManager(redisClient)
	}

	// --- S3 run archival (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
