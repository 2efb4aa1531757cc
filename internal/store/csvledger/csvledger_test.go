package csvledger

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calebwren/propbot/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trades_log.csv")
	return New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func entry(ticker string, side domain.Side) domain.LedgerEntry {
	return domain.LedgerEntry{
		Timestamp:  time.Date(2025, 11, 28, 19, 30, 0, 0, time.UTC),
		Ticker:     ticker,
		Action:     domain.ActionBuy,
		Side:       side,
		Count:      5,
		OrderType:  domain.OrderLimit,
		PriceCents: 45,
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := testStore(t)
	keys, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load err = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d keys, want 0", len(keys))
	}
}

func TestAppendThenLoad(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, entry("KXNBAPTS-25NOV28-LD30", domain.SideYes)); err != nil {
		t.Fatalf("Append err = %v", err)
	}
	if err := s.Append(ctx, entry("KXNBAPTS-25NOV28-LD30", domain.SideNo)); err != nil {
		t.Fatalf("Append err = %v", err)
	}
	if err := s.Append(ctx, entry("KXNBAREB-25NOV28-NJ12", domain.SideYes)); err != nil {
		t.Fatalf("Append err = %v", err)
	}

	keys, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load err = %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("got %d keys, want 3", len(keys))
	}
	for _, want := range []domain.TradeKey{
		{Ticker: "KXNBAPTS-25NOV28-LD30", Side: domain.SideYes},
		{Ticker: "KXNBAPTS-25NOV28-LD30", Side: domain.SideNo},
		{Ticker: "KXNBAREB-25NOV28-NJ12", Side: domain.SideYes},
	} {
		if _, ok := keys[want]; !ok {
			t.Errorf("missing key %+v", want)
		}
	}
}

func TestHeaderWrittenOnce(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, entry("T1", domain.SideYes)); err != nil {
			t.Fatalf("Append err = %v", err)
		}
	}

	f, err := os.Open(s.path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d rows, want header + 3 entries", len(records))
	}
	if records[0][0] != "timestamp" || records[0][6] != "price" {
		t.Errorf("header row = %v", records[0])
	}
	if records[1][1] != "T1" || records[1][3] != "yes" || records[1][4] != "5" || records[1][6] != "45" {
		t.Errorf("entry row = %v", records[1])
	}
	if records[1][0] != "2025-11-28T19:30:00Z" {
		t.Errorf("timestamp = %q, want RFC3339 UTC", records[1][0])
	}
}

func TestLoadSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades_log.csv")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	s1 := New(path, logger)
	if err := s1.Append(ctx, entry("T1", domain.SideYes)); err != nil {
		t.Fatalf("Append err = %v", err)
	}

	s2 := New(path, logger)
	keys, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("Load err = %v", err)
	}
	if _, ok := keys[domain.TradeKey{Ticker: "T1", Side: domain.SideYes}]; !ok {
		t.Errorf("entry not visible to a fresh store on the same file")
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades_log.csv")
	if err := os.WriteFile(path, []byte("timestamp,ticker\n\"unterminated\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("Load err = nil, want parse failure")
	}
}
