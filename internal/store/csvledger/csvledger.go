// Package csvledger implements the trade ledger as a single append-only CSV
// file. It is the default backend: no external services, trivially inspectable,
// and editable by hand when a position must be forgotten.
package csvledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/calebwren/propbot/internal/domain"
)

var header = []string{"timestamp", "ticker", "action", "side", "count", "order_type", "price"}

// Store is a file-backed domain.LedgerStore. Appends hold a process-local
// mutex and use O_APPEND writes; concurrent processes are not supported.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

var _ domain.LedgerStore = (*Store)(nil)

// New creates a Store writing to path. The file is created lazily on first
// append.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "csvledger")),
	}
}

// Load reads every recorded (ticker, side) pair. A missing file is an empty
// ledger, not an error; an unreadable or corrupt file is fatal because
// trading without the dedup set is unsafe.
func (s *Store) Load(ctx context.Context) (map[domain.TradeKey]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return map[domain.TradeKey]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvledger: open %s: %w", s.path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvledger: parse %s: %w", s.path, err)
	}

	keys := make(map[domain.TradeKey]struct{}, len(records))
	for _, rec := range records {
		if len(rec) < 4 || rec[0] == header[0] {
			continue
		}
		keys[domain.TradeKey{Ticker: rec[1], Side: domain.Side(rec[3])}] = struct{}{}
	}
	s.logger.Debug("ledger loaded", slog.Int("entries", len(keys)))
	return keys, nil
}

// Append writes one entry, creating the file with a header row on first use.
func (s *Store) Append(ctx context.Context, entry domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeHeader := false
	if info, err := os.Stat(s.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		writeHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("csvledger: open %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			f.Close()
			return fmt.Errorf("csvledger: write header: %w", err)
		}
	}
	rec := []string{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.Ticker,
		string(entry.Action),
		string(entry.Side),
		strconv.Itoa(entry.Count),
		string(entry.OrderType),
		strconv.Itoa(entry.PriceCents),
	}
	if err := w.Write(rec); err != nil {
		f.Close()
		return fmt.Errorf("csvledger: write entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("csvledger: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvledger: close: %w", err)
	}
	return nil
}
