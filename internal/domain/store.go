package domain

import "context"

// LedgerStore persists the trade ledger that backs duplicate suppression.
// Load returns the set of (ticker, side) pairs ever recorded; Append records
// one accepted order.
type LedgerStore interface {
	Load(ctx context.Context) (map[TradeKey]struct{}, error)
	Append(ctx context.Context, entry LedgerEntry) error
}
