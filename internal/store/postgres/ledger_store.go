package postgres

import (
	"context"
	"fmt"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerStore implements domain.LedgerStore on a trade_ledger table. The
// unique (ticker, side) index plus ON CONFLICT DO NOTHING makes Append
// idempotent across concurrent runs.
type LedgerStore struct {
	pool *pgxpool.Pool
}

var _ domain.LedgerStore = (*LedgerStore)(nil)

// NewLedgerStore creates a LedgerStore using the client's pool.
func NewLedgerStore(client *Client) *LedgerStore {
	return &LedgerStore{pool: client.Pool()}
}

// Load returns every recorded (ticker, side) pair.
func (s *LedgerStore) Load(ctx context.Context) (map[domain.TradeKey]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT ticker, side FROM trade_ledger`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load ledger: %w", err)
	}
	defer rows.Close()

	keys := make(map[domain.TradeKey]struct{})
	for rows.Next() {
		var ticker, side string
		if err := rows.Scan(&ticker, &side); err != nil {
			return nil, fmt.Errorf("postgres: scan ledger row: %w", err)
		}
		keys[domain.TradeKey{Ticker: ticker, Side: domain.Side(side)}] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate ledger: %w", err)
	}
	return keys, nil
}

// Append records one entry. A concurrent insert of the same (ticker, side)
// wins silently; the ledger stays monotonic either way.
func (s *LedgerStore) Append(ctx context.Context, entry domain.LedgerEntry) error {
	const q = `
		INSERT INTO trade_ledger (traded_at, ticker, action, side, count, order_type, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, side) DO NOTHING`
	_, err := s.pool.Exec(ctx, q,
		entry.Timestamp,
		entry.Ticker,
		string(entry.Action),
		string(entry.Side),
		entry.Count,
		string(entry.OrderType),
		entry.PriceCents,
	)
	if err != nil {
		return fmt.Errorf("postgres: append ledger entry: %w", err)
	}
	return nil
}
