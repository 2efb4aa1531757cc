package domain

// EntityKey identifies a prop across venues: a normalized player name, a stat
// category, and the integer contract threshold ("25+ points" has Threshold 25
// and matches a sportsbook line at 24.5).
type EntityKey struct {
	Player    string
	Stat      StatCategory
	Threshold int
}

// ImpliedProbability is one sportsbook's vig-free probability that the over
// side of a prop hits.
type ImpliedProbability struct {
	Key         EntityKey
	Source      Source
	Probability float64
}

// MatchedPair joins a market contract with the sportsbook probabilities that
// resolved to the same entity key.
type MatchedPair struct {
	Contract BinaryContract
	Key      EntityKey
	Probs    []ImpliedProbability
}

// Side is the contract side an order takes.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Edge is a priced discrepancy between the fair probability consensus and one
// side of a contract. EdgeCents is fair value minus ask, in cents; positive
// means the ask is cheap.
type Edge struct {
	Key        EntityKey
	Ticker     string
	Side       Side
	PriceCents int
	FairProb   float64
	EdgeCents  float64
	Sources    []Source
}
