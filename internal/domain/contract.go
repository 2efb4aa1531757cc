// Package domain defines the core types shared across the prop bot: market
// contracts, sportsbook lines, implied probabilities, edges, the trade ledger,
// and the interfaces its collaborators implement.
package domain

// StatCategory identifies the player statistic a prop market settles on.
type StatCategory string

const (
	StatPoints            StatCategory = "points"
	StatRebounds          StatCategory = "rebounds"
	StatAssists           StatCategory = "assists"
	StatThreePointersMade StatCategory = "three_pointers_made"
	StatSteals            StatCategory = "steals"
	StatBlocks            StatCategory = "blocks"
)

// BinaryContract is one prediction-market player-prop contract as fetched
// from the exchange. The player, stat, and threshold identity is carried in
// Title and SeriesTicker; the matcher resolves it to an EntityKey. Prices are
// integer cents in [1, 99]; a zero price means that side has no quote.
// yes_ask + no_bid == 100 is not assumed (markets may be wide).
type BinaryContract struct {
	Ticker       string
	SeriesTicker string
	Title        string
	YesBid       int
	YesAsk       int
	NoBid        int
	NoAsk        int
}
