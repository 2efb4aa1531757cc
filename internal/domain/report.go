package domain

import "time"

// Outcome classifies what the executor did with one edge candidate.
type Outcome string

const (
	OutcomeWouldTrade       Outcome = "would_trade"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeSkippedGuardrail Outcome = "skipped_guardrail"
	OutcomeSkippedDeclined  Outcome = "skipped_declined"
	OutcomeOrderFailed      Outcome = "order_failed"
)

// Execution records the decision taken for a single edge.
type Execution struct {
	Edge      Edge
	Outcome   Outcome
	Count     int
	CostCents int
	FeeCents  int
	OrderID   string
	Reason    string
}

// RunReport summarizes one full run for logs, archives, and notifications.
type RunReport struct {
	RunID      string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Contracts  int
	Lines      map[Source]int
	Edges      []Edge
	Executions []Execution
}

// OutcomeCounts tallies executions by outcome.
func (r RunReport) OutcomeCounts() map[Outcome]int {
	counts := make(map[Outcome]int, 4)
	for _, ex := range r.Executions {
		counts[ex.Outcome]++
	}
	return counts
}

// SpentCents sums the cost of executions that committed cash.
func (r RunReport) SpentCents() int {
	total := 0
	for _, ex := range r.Executions {
		if ex.Outcome == OutcomeWouldTrade {
			total += ex.CostCents
		}
	}
	return total
}

// FeeCents sums the estimated exchange fees of executions that committed cash.
func (r RunReport) FeeCents() int {
	total := 0
	for _, ex := range r.Executions {
		if ex.Outcome == OutcomeWouldTrade {
			total += ex.FeeCents
		}
	}
	return total
}
