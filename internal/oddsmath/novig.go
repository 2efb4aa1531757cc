package oddsmath

import (
	"fmt"
	"math"

	"github.com/calebwren/propbot/internal/domain"
)

// OverFromDecimals removes the vig from a two-sided decimal-odds quote and
// returns the fair probability of the over. Decimal odds at or below 1.0
// imply a certain outcome and are rejected as malformed.
func OverFromDecimals(over, under float64) (float64, error) {
	if !validDecimal(over) {
		return 0, fmt.Errorf("oddsmath: over odds %v: %w", over, domain.ErrMalformedOdds)
	}
	if !validDecimal(under) {
		return 0, fmt.Errorf("oddsmath: under odds %v: %w", under, domain.ErrMalformedOdds)
	}
	pOver := 1 / over
	pUnder := 1 / under
	return pOver / (pOver + pUnder), nil
}

// FromMultiplier converts a payout multiplier to the implied probability of
// the side it pays on: p = 1/(1+m), strictly decreasing in m.
func FromMultiplier(m float64) (float64, error) {
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return 0, fmt.Errorf("oddsmath: payout multiplier %v: %w", m, domain.ErrMalformedOdds)
	}
	return 1 / (1 + m), nil
}

// OverFromMultipliers returns the fair probability of the over from
// fantasy-style payout multipliers. With both sides quoted the two implied
// probabilities are vig-removed like a decimal book; with one side quoted the
// single implied probability is used directly (complemented for an
// under-only quote).
func OverFromMultipliers(over, under float64) (float64, error) {
	switch {
	case over > 0 && under > 0:
		pOver, err := FromMultiplier(over)
		if err != nil {
			return 0, err
		}
		pUnder, err := FromMultiplier(under)
		if err != nil {
			return 0, err
		}
		return pOver / (pOver + pUnder), nil
	case over > 0:
		return FromMultiplier(over)
	case under > 0:
		p, err := FromMultiplier(under)
		if err != nil {
			return 0, err
		}
		return 1 - p, nil
	default:
		return 0, fmt.Errorf("oddsmath: no multiplier quoted: %w", domain.ErrMalformedOdds)
	}
}

// ImpliedOver normalizes one sportsbook line to the fair probability of the
// over, choosing the conversion its source's representation calls for.
// Decimal quotes must be two-sided; a one-sided decimal line has no vig-free
// answer and is malformed.
func ImpliedOver(line domain.SportsbookLine) (float64, error) {
	if line.HasDecimal() {
		return OverFromDecimals(line.OverDecimal, line.UnderDecimal)
	}
	if line.HasMultiplier() {
		return OverFromMultipliers(line.OverMultiplier, line.UnderMultiplier)
	}
	return 0, fmt.Errorf("oddsmath: line has no quote: %w", domain.ErrMalformedOdds)
}

func validDecimal(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 1.0
}
