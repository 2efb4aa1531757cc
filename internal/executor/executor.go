// Package executor walks a scanned edge list in order and turns the survivors
// into exchange orders, enforcing the dedup ledger and the per-run guardrails
// between every candidate and the wire.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/oddsmath"
)

// ConfirmFunc asks for approval before an order is submitted. Returning false
// skips the order. A nil ConfirmFunc approves everything.
type ConfirmFunc func(edge domain.Edge, req domain.OrderRequest) bool

// Options bound one Execute call.
type Options struct {
	Guardrails  domain.Guardrails
	Count       int              // requested contracts per order, clamped to Guardrails.MaxContracts
	OrderType   domain.OrderType // limit orders carry the edge's ask as the price
	DryRun      bool             // evaluate the full pipeline but never submit or append
	AutoConfirm bool             // bypass the confirm prompt
}

// Executor applies dedup, guardrails, and confirmation to edge candidates and
// places the surviving orders.
type Executor struct {
	ledger  domain.LedgerStore
	orders  domain.OrderPlacer
	confirm ConfirmFunc
	logger  *slog.Logger
}

// New creates an Executor backed by the given ledger and order placer.
func New(ledger domain.LedgerStore, orders domain.OrderPlacer, logger *slog.Logger) *Executor {
	return &Executor{
		ledger: ledger,
		orders: orders,
		logger: logger.With(slog.String("component", "executor")),
	}
}

// SetConfirm installs an interactive approval hook. Must be called before
// Execute.
func (e *Executor) SetConfirm(fn ConfirmFunc) {
	e.confirm = fn
}

// Execute processes edges in the order given; the caller sorts them so the
// largest edges reach the spend budget first. Every edge yields exactly one
// Execution. The only fatal error is a ledger that cannot be loaded: trading
// without the dedup set risks double-buying every open position.
func (e *Executor) Execute(ctx context.Context, edges []domain.Edge, opts Options) ([]domain.Execution, error) {
	traded, err := e.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("executor: load ledger: %w", err)
	}
	e.logger.Info("executing edges",
		slog.Int("candidates", len(edges)),
		slog.Int("ledger_entries", len(traded)),
		slog.Bool("dry_run", opts.DryRun),
	)

	executions := make([]domain.Execution, 0, len(edges))
	spent := 0
	tripped := false
	for _, edge := range edges {
		ex := e.process(ctx, edge, opts, traded, &spent, &tripped)
		executions = append(executions, ex)
	}
	return executions, nil
}

// process runs one edge through the decision pipeline and reports the outcome.
func (e *Executor) process(ctx context.Context, edge domain.Edge, opts Options, traded map[domain.TradeKey]struct{}, spent *int, tripped *bool) domain.Execution {
	log := e.logger.With(
		slog.String("ticker", edge.Ticker),
		slog.String("side", string(edge.Side)),
		slog.Int("ask_cents", edge.PriceCents),
		slog.Float64("edge_cents", edge.EdgeCents),
	)

	// 1. Duplicate suppression, before any guardrail accounting.
	key := domain.TradeKey{Ticker: edge.Ticker, Side: edge.Side}
	if _, ok := traded[key]; ok {
		log.Info("skipping: already traded")
		return domain.Execution{Edge: edge, Outcome: domain.OutcomeSkippedDuplicate}
	}

	// 2. Once the spend cap trips, every later candidate is skipped too.
	if *tripped {
		log.Info("skipping: spend cap reached earlier in run")
		return domain.Execution{Edge: edge, Outcome: domain.OutcomeSkippedGuardrail, Reason: "spend cap reached"}
	}

	// 3. Clamp the contract count, never reject for size.
	count := opts.Count
	if max := opts.Guardrails.MaxContracts; max > 0 && count > max {
		log.Info("clamping order size", slog.Int("requested", count), slog.Int("max", max))
		count = max
	}

	// 4. Spend cap: an order that would cross the cap is skipped whole.
	cost := count * edge.PriceCents
	if cap := opts.Guardrails.MaxSpendCents; cap > 0 && *spent+cost > cap {
		*tripped = true
		log.Info("skipping: order would exceed spend cap",
			slog.Int("cost_cents", cost),
			slog.Int("spent_cents", *spent),
			slog.Int("cap_cents", cap),
		)
		return domain.Execution{Edge: edge, Outcome: domain.OutcomeSkippedGuardrail, Reason: "would exceed spend cap"}
	}

	req := domain.OrderRequest{
		Ticker:     edge.Ticker,
		Side:       edge.Side,
		Action:     domain.ActionBuy,
		Count:      count,
		PriceCents: edge.PriceCents,
		Type:       opts.OrderType,
	}

	// 5. Interactive approval, unless the run is hands-off.
	if e.confirm != nil && !opts.AutoConfirm && !opts.DryRun {
		if !e.confirm(edge, req) {
			log.Info("skipping: declined at prompt")
			return domain.Execution{Edge: edge, Outcome: domain.OutcomeSkippedDeclined, Reason: "declined at prompt"}
		}
	}

	fee := oddsmath.TakerFeeCents(edge.PriceCents, count)

	// 6. Dry run stops here: full accounting, no wire, no ledger write.
	if opts.DryRun {
		*spent += cost
		traded[key] = struct{}{}
		log.Info("would trade",
			slog.Int("count", count),
			slog.Int("cost_cents", cost),
			slog.Int("fee_cents", fee),
		)
		return domain.Execution{Edge: edge, Outcome: domain.OutcomeWouldTrade, Count: count, CostCents: cost, FeeCents: fee}
	}

	// 7. Submit.
	result, err := e.orders.PlaceOrder(ctx, req)
	if err != nil {
		log.Error("order placement failed", slog.String("error", err.Error()))
		return domain.Execution{Edge: edge, Outcome: domain.OutcomeOrderFailed, Reason: err.Error()}
	}
	if !result.Accepted {
		reason := result.Reason
		if reason == "" {
			reason = result.Status
		}
		log.Warn("order rejected",
			slog.String("order_id", result.OrderID),
			slog.String("status", result.Status),
			slog.String("reason", reason),
		)
		return domain.Execution{Edge: edge, Outcome: domain.OutcomeOrderFailed, Reason: reason}
	}

	// 8. Record in the ledger only after the exchange accepted the order.
	*spent += cost
	traded[key] = struct{}{}
	entry := domain.LedgerEntry{
		Timestamp:  time.Now().UTC(),
		Ticker:     edge.Ticker,
		Action:     domain.ActionBuy,
		Side:       edge.Side,
		Count:      count,
		OrderType:  opts.OrderType,
		PriceCents: edge.PriceCents,
	}
	if err := e.ledger.Append(ctx, entry); err != nil {
		// The order is live; losing the ledger write means a future run may
		// buy this side again. Loud error, outcome stays would_trade.
		log.Error("ledger append failed after accepted order", slog.String("error", err.Error()))
	}
	log.Info("order placed",
		slog.String("order_id", result.OrderID),
		slog.Int("count", count),
		slog.Int("cost_cents", cost),
		slog.Int("fee_cents", fee),
	)
	return domain.Execution{
		Edge:      edge,
		Outcome:   domain.OutcomeWouldTrade,
		Count:     count,
		CostCents: cost,
		FeeCents:  fee,
		OrderID:   result.OrderID,
	}
}
