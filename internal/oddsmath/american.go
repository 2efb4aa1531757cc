// Package oddsmath converts raw sportsbook quotes into vig-free implied
// probabilities and scores contract prices against them. Everything here is
// pure: failures are data-quality errors wrapping domain.ErrMalformedOdds,
// never transient.
package oddsmath

import (
	"fmt"
	"math"

	"github.com/calebwren/propbot/internal/domain"
)

// AmericanToDecimal converts American odds to decimal odds.
// +150 becomes 2.50, -120 becomes 1.8333. American odds with magnitude
// below 100 do not exist on any book and are rejected as malformed.
func AmericanToDecimal(american float64) (float64, error) {
	if math.IsNaN(american) || math.IsInf(american, 0) || math.Abs(american) < 100 {
		return 0, fmt.Errorf("oddsmath: american odds %v: %w", american, domain.ErrMalformedOdds)
	}
	if american > 0 {
		return 1 + american/100, nil
	}
	return 1 + 100/-american, nil
}
