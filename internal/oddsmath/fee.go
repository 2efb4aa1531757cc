package oddsmath

import "math"

// Kalshi fee schedule coefficients.
const (
	TakerFeeCoeff = 0.07
	MakerFeeCoeff = 0.0175
)

// FeeCents estimates the Kalshi trading fee in cents for count contracts at
// priceCents: ceil(coeff * count * P * (1-P)) with P the price as a
// probability.
func FeeCents(priceCents, count int, coeff float64) int {
	p := float64(priceCents) / 100
	return int(math.Ceil(coeff * float64(count) * p * (1 - p)))
}

// TakerFeeCents estimates the fee for an order that crosses the book.
func TakerFeeCents(priceCents, count int) int {
	return FeeCents(priceCents, count, TakerFeeCoeff)
}

// MakerFeeCents estimates the fee for a resting order.
func MakerFeeCents(priceCents, count int) int {
	return FeeCents(priceCents, count, MakerFeeCoeff)
}
