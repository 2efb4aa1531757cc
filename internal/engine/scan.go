package engine

import (
	"sort"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/oddsmath"
)

// Score computes the candidate edges for one matched pair. The yes and no
// sides are scored independently against the same fair probability, and both
// may clear the minimum; a side with no ask inside [1, 99] cents is not
// scored at all.
func Score(pair domain.MatchedPair, minEdge float64) []domain.Edge {
	ps := make([]float64, len(pair.Probs))
	sources := make([]domain.Source, len(pair.Probs))
	for i, p := range pair.Probs {
		ps[i] = p.Probability
		sources[i] = p.Source
	}
	fair := oddsmath.Mean(ps)

	var edges []domain.Edge
	if ask := pair.Contract.YesAsk; tradable(ask) {
		if ec := oddsmath.YesEdge(fair, ask); ec >= minEdge {
			edges = append(edges, domain.Edge{
				Key:        pair.Key,
				Ticker:     pair.Contract.Ticker,
				Side:       domain.SideYes,
				PriceCents: ask,
				FairProb:   fair,
				EdgeCents:  ec,
				Sources:    sources,
			})
		}
	}
	if ask := pair.Contract.NoAsk; tradable(ask) {
		if ec := oddsmath.NoEdge(fair, ask); ec >= minEdge {
			edges = append(edges, domain.Edge{
				Key:        pair.Key,
				Ticker:     pair.Contract.Ticker,
				Side:       domain.SideNo,
				PriceCents: ask,
				FairProb:   fair,
				EdgeCents:  ec,
				Sources:    sources,
			})
		}
	}
	return edges
}

// Scan runs the full pipeline on a static snapshot: filter lines to the
// requested sources, match, score, and order candidates by descending edge so
// the largest opportunities reach the spend budget first. A nil or empty
// source list means all sources.
func (e *Engine) Scan(contracts []domain.BinaryContract, lines []domain.SportsbookLine, minEdge float64, sources []domain.Source) []domain.Edge {
	if len(sources) > 0 {
		keep := make(map[domain.Source]bool, len(sources))
		for _, s := range sources {
			keep[s] = true
		}
		filtered := lines[:0:0]
		for _, l := range lines {
			if keep[l.Source] {
				filtered = append(filtered, l)
			}
		}
		lines = filtered
	}

	var edges []domain.Edge
	for _, pair := range e.Match(contracts, lines) {
		edges = append(edges, Score(pair, minEdge)...)
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].EdgeCents > edges[j].EdgeCents
	})
	return edges
}

func tradable(askCents int) bool {
	return askCents >= 1 && askCents <= 99
}
