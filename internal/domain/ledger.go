package domain

import "time"

// TradeKey is the dedup identity for the ledger: one position per contract
// side, ever.
type TradeKey struct {
	Ticker string
	Side   Side
}

// LedgerEntry is one recorded order in the trade ledger.
type LedgerEntry struct {
	Timestamp  time.Time
	Ticker     string
	Action     OrderAction
	Side       Side
	Count      int
	OrderType  OrderType
	PriceCents int
}

// Key returns the dedup key for the entry.
func (e LedgerEntry) Key() TradeKey {
	return TradeKey{Ticker: e.Ticker, Side: e.Side}
}

// CostCents is the cash the entry committed at its recorded price.
func (e LedgerEntry) CostCents() int {
	return e.Count * e.PriceCents
}

// Guardrails bound what a single run may buy. MaxContracts clamps each order;
// MaxSpendCents caps the sum of order costs across the run. An order that
// would push the total past the cap is skipped whole, and no later candidate
// is taken in its place.
type Guardrails struct {
	MaxContracts  int
	MaxSpendCents int
}
