package oddsmath

// YesEdge is the value of the yes side in cents: fair probability priced in
// cents minus the yes ask. Positive means the ask is below fair value.
func YesEdge(fair float64, yesAskCents int) float64 {
	return fair*100 - float64(yesAskCents)
}

// NoEdge is the value of the no side in cents, scored against the complement
// of the fair probability.
func NoEdge(fair float64, noAskCents int) float64 {
	return (1-fair)*100 - float64(noAskCents)
}

// Mean averages the contributing sources' probabilities. A single source
// passes through unchanged; the caller guards against an empty slice.
func Mean(probs []float64) float64 {
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	return sum / float64(len(probs))
}
