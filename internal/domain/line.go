package domain

// Source identifies a sportsbook feeding lines into a run.
type Source string

const (
	SourceDraftKings Source = "draftkings"
	SourcePinnacle   Source = "pinnacle"
	SourceUnderdog   Source = "underdog"
)

// SportsbookLine is a single over/under quote on a player stat. Books price
// two ways: decimal odds per side (OverDecimal/UnderDecimal) or fantasy-style
// payout multipliers (OverMultiplier/UnderMultiplier). Unset fields are zero;
// a line may be one-sided.
type SportsbookLine struct {
	Source          Source
	Player          string
	Stat            StatCategory
	Line            float64
	OverDecimal     float64
	UnderDecimal    float64
	OverMultiplier  float64
	UnderMultiplier float64
}

// HasDecimal reports whether the line carries at least one decimal-odds side.
func (l SportsbookLine) HasDecimal() bool {
	return l.OverDecimal > 0 || l.UnderDecimal > 0
}

// HasMultiplier reports whether the line carries at least one payout multiplier.
func (l SportsbookLine) HasMultiplier() bool {
	return l.OverMultiplier > 0 || l.UnderMultiplier > 0
}
