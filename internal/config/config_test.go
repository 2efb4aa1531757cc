package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}

	if cfg.Mode != "scan" {
		t.Errorf("Mode = %q, want scan", cfg.Mode)
	}
	if cfg.Scan.MinEdgeCents != 5 {
		t.Errorf("Scan.MinEdgeCents = %v, want 5", cfg.Scan.MinEdgeCents)
	}
	if cfg.Trade.MaxContracts != 20 || cfg.Trade.MaxSpendCents != 5000 {
		t.Errorf("Trade guardrails = %d/%d, want 20/5000",
			cfg.Trade.MaxContracts, cfg.Trade.MaxSpendCents)
	}
	if len(cfg.Kalshi.Series) != 6 {
		t.Errorf("Kalshi.Series has %d entries, want 6", len(cfg.Kalshi.Series))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeTOML(t, `
mode = "trade"
data_dir = "/var/lib/propbot"

[kalshi]
api_key_id = "key-id-1"
private_key_path = "/keys/kalshi.pem"

[scan]
min_edge_cents = 7.5
sources = ["draftkings"]

[trade]
count = 3
max_spend_cents = 2500

[redis]
enabled = true
snapshot_ttl = "5m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mode != "trade" || cfg.DataDir != "/var/lib/propbot" {
		t.Errorf("top-level = %q/%q", cfg.Mode, cfg.DataDir)
	}
	if cfg.Kalshi.ApiKeyID != "key-id-1" || cfg.Kalshi.PrivateKeyPath != "/keys/kalshi.pem" {
		t.Errorf("kalshi overrides not applied: %+v", cfg.Kalshi)
	}
	if cfg.Scan.MinEdgeCents != 7.5 {
		t.Errorf("Scan.MinEdgeCents = %v, want 7.5", cfg.Scan.MinEdgeCents)
	}
	if !reflect.DeepEqual(cfg.Scan.Sources, []string{"draftkings"}) {
		t.Errorf("Scan.Sources = %v", cfg.Scan.Sources)
	}
	if cfg.Trade.Count != 3 || cfg.Trade.MaxSpendCents != 2500 {
		t.Errorf("trade overrides not applied: %+v", cfg.Trade)
	}
	if cfg.Redis.SnapshotTTL.Duration != 5*time.Minute {
		t.Errorf("Redis.SnapshotTTL = %v, want 5m", cfg.Redis.SnapshotTTL.Duration)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Trade.MaxContracts != 20 {
		t.Errorf("Trade.MaxContracts = %d, want default 20", cfg.Trade.MaxContracts)
	}
	if cfg.Kalshi.BaseURL != "https://api.elections.kalshi.com/trade-api/v2" {
		t.Errorf("Kalshi.BaseURL = %q, want default", cfg.Kalshi.BaseURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTOML(t, `
[scan]
min_edge_cents = 7.5
`)

	t.Setenv("PROPBOT_SCAN_MIN_EDGE_CENTS", "9.5")
	t.Setenv("PROPBOT_MODE", "fetch")
	t.Setenv("PROPBOT_KALSHI_SERIES", "KXNBAPTS, KXNBAREB ,")
	t.Setenv("PROPBOT_TRADE_DRY_RUN", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scan.MinEdgeCents != 9.5 {
		t.Errorf("Scan.MinEdgeCents = %v, want env override 9.5", cfg.Scan.MinEdgeCents)
	}
	if cfg.Mode != "fetch" {
		t.Errorf("Mode = %q, want fetch", cfg.Mode)
	}
	if !reflect.DeepEqual(cfg.Kalshi.Series, []string{"KXNBAPTS", "KXNBAREB"}) {
		t.Errorf("Kalshi.Series = %v", cfg.Kalshi.Series)
	}
	if !cfg.Trade.DryRun {
		t.Error("Trade.DryRun not set from env")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Trade.MaxContracts = 0
	cfg.Ledger.Backend = "sqlite"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want combined error")
	}
	for _, want := range []string{"unknown mode", "unknown log_level", "max_contracts", "backend must be csv or postgres"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q:\n%v", want, err)
		}
	}
}

func TestValidateTradeNeedsKalshiCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want missing-credential errors")
	}
	if !strings.Contains(err.Error(), "api_key_id") {
		t.Errorf("Validate() error missing api_key_id check:\n%v", err)
	}
	if !strings.Contains(err.Error(), "private_key") {
		t.Errorf("Validate() error missing private key check:\n%v", err)
	}

	cfg.Kalshi.ApiKeyID = "key"
	cfg.Kalshi.PrivateKeyPath = "/keys/kalshi.pem"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with credentials = %v", err)
	}
}

func TestValidateManualOrder(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "manual"
	cfg.Kalshi.ApiKeyID = "key"
	cfg.Kalshi.PrivateKeyPath = "/keys/kalshi.pem"
	cfg.Manual.Ticker = "KXNBAPTS-25NOV28-LDONCIC-B29"
	cfg.Manual.Side = "maybe"
	cfg.Manual.Count = 5
	cfg.Manual.PriceCents = 150

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want manual order errors")
	}
	if !strings.Contains(err.Error(), "side must be yes or no") {
		t.Errorf("Validate() error missing side check:\n%v", err)
	}
	if !strings.Contains(err.Error(), "price_cents must be 1-99") {
		t.Errorf("Validate() error missing price check:\n%v", err)
	}

	cfg.Manual.Side = "no"
	cfg.Manual.PriceCents = 42
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with valid manual order = %v", err)
	}
}

func TestValidateScanSourceNeedsEnabledBook(t *testing.T) {
	cfg := Defaults()
	cfg.Scan.Sources = []string{"underdog"}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "books.underdog is disabled") {
		t.Errorf("Validate() = %v, want disabled-book error", err)
	}

	cfg.Books.Underdog.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with underdog enabled = %v", err)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Kalshi.ApiKeyID = "key-id"
	cfg.Kalshi.KeyPassphrase = "hunter2"
	cfg.Postgres.Password = "pgpass"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)

	for name, got := range map[string]string{
		"kalshi api_key_id":     red.Kalshi.ApiKeyID,
		"kalshi key_passphrase": red.Kalshi.KeyPassphrase,
		"pinnacle api_key":      red.Books.Pinnacle.ApiKey,
		"postgres password":     red.Postgres.Password,
		"telegram token":        red.Notify.TelegramToken,
	} {
		if got != "***" {
			t.Errorf("%s = %q, want ***", name, got)
		}
	}
	if red.Kalshi.BaseURL != cfg.Kalshi.BaseURL {
		t.Error("non-secret field was altered")
	}

	// The original must be untouched, including through shared slices.
	if cfg.Kalshi.ApiKeyID != "key-id" {
		t.Error("RedactedConfig mutated the original")
	}
	red.Scan.Sources[0] = "tampered"
	if cfg.Scan.Sources[0] != "draftkings" {
		t.Error("redacted copy shares Sources slice with the original")
	}
}
