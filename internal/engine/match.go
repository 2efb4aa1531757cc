// Package engine joins exchange player-prop contracts to sportsbook lines and
// scores both contract sides against the vig-free consensus probability. The
// pipeline is pure over an in-memory snapshot: no I/O, no retries, every drop
// is either silent (no sportsbook equivalent) or logged (malformed quote).
package engine

import (
	"log/slog"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/oddsmath"
)

// Engine runs the match-and-score pipeline over one fetched snapshot.
type Engine struct {
	logger *slog.Logger
}

// New creates an engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With(slog.String("component", "engine"))}
}

// Match normalizes every usable line into an implied probability and joins
// contracts to them by entity key. A contract matches 1..N sources
// independently; contracts with no matching line and lines with no contract
// drop silently. At most one probability per source contributes to a key.
func (e *Engine) Match(contracts []domain.BinaryContract, lines []domain.SportsbookLine) []domain.MatchedPair {
	probs := make(map[domain.EntityKey][]domain.ImpliedProbability)
	for _, line := range lines {
		key, ok := LineKey(line)
		if !ok {
			continue
		}
		p, err := oddsmath.ImpliedOver(line)
		if err != nil {
			e.logger.Warn("dropping malformed quote",
				slog.String("source", string(line.Source)),
				slog.String("player", line.Player),
				slog.String("error", err.Error()),
			)
			continue
		}
		if hasSource(probs[key], line.Source) {
			continue
		}
		probs[key] = append(probs[key], domain.ImpliedProbability{Key: key, Source: line.Source, Probability: p})
	}

	var pairs []domain.MatchedPair
	for _, c := range contracts {
		key, ok := ContractKey(c)
		if !ok {
			continue
		}
		ps := probs[key]
		if len(ps) == 0 {
			continue
		}
		pairs = append(pairs, domain.MatchedPair{Contract: c, Key: key, Probs: ps})
	}
	return pairs
}

func hasSource(probs []domain.ImpliedProbability, src domain.Source) bool {
	for _, p := range probs {
		if p.Source == src {
			return true
		}
	}
	return false
}
