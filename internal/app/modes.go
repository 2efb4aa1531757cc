package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/executor"
	"github.com/calebwren/propbot/internal/notify"
	"github.com/calebwren/propbot/internal/oddsmath"
	"github.com/calebwren/propbot/internal/snapshot"
)

// tradeLockTTL bounds how long a crashed trade run can hold the run lock.
const tradeLockTTL = 10 * time.Minute

// FetchMode pulls open markets for the configured series plus lines from each
// enabled sportsbook, then persists the snapshots for later scans. A failing
// book costs one source; a failing exchange fetch aborts the run.
func (a *App) FetchMode(ctx context.Context, deps *Dependencies) error {
	start := time.Now()
	a.logger.InfoContext(ctx, "fetching market data",
		slog.Any("series", a.cfg.Kalshi.Series),
	)

	type bookFetch struct {
		source domain.Source
		lines  func(context.Context) ([]domain.SportsbookLine, error)
	}
	var books []bookFetch
	if deps.DraftKings != nil {
		books = append(books, bookFetch{domain.SourceDraftKings, deps.DraftKings.Lines})
	}
	if deps.Pinnacle != nil {
		books = append(books, bookFetch{domain.SourcePinnacle, deps.Pinnacle.Lines})
	}
	if deps.Underdog != nil {
		books = append(books, bookFetch{domain.SourceUnderdog, deps.Underdog.Lines})
	}

	// Each goroutine writes only its own slot; the group joins before reads.
	var contracts []domain.BinaryContract
	results := make([][]domain.SportsbookLine, len(books))
	fetched := make([]bool, len(books))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cs, err := deps.Kalshi.Contracts(gctx, a.cfg.Kalshi.Series)
		if err != nil {
			return fmt.Errorf("app: fetch contracts: %w", err)
		}
		contracts = cs
		return nil
	})
	for i, b := range books {
		i, b := i, b
		g.Go(func() error {
			ls, err := b.lines(gctx)
			if err != nil {
				a.logger.WarnContext(gctx, "sportsbook fetch failed, skipping source",
					slog.String("source", string(b.source)),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = ls
			fetched[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := deps.Snapshots.WriteContracts(contracts); err != nil {
		return fmt.Errorf("app: write contract snapshot: %w", err)
	}

	var allLines []domain.SportsbookLine
	for i, b := range books {
		if !fetched[i] {
			continue
		}
		if err := deps.Snapshots.WriteLines(b.source, results[i]); err != nil {
			return fmt.Errorf("app: write %s snapshot: %w", b.source, err)
		}
		allLines = append(allLines, results[i]...)
		a.logger.InfoContext(ctx, "lines fetched",
			slog.String("source", string(b.source)),
			slog.Int("lines", len(results[i])),
		)
	}
	if len(allLines) > 0 {
		if err := deps.Snapshots.WriteCombined(contracts, allLines); err != nil {
			return fmt.Errorf("app: write combined snapshot: %w", err)
		}
	}

	if deps.Cache != nil {
		ttl := a.cfg.Redis.SnapshotTTL.Duration
		if err := deps.Cache.SetContracts(ctx, contracts, ttl); err != nil {
			a.logger.WarnContext(ctx, "contract cache write failed",
				slog.String("error", err.Error()),
			)
		}
		for i, b := range books {
			if !fetched[i] {
				continue
			}
			if err := deps.Cache.SetLines(ctx, b.source, results[i], ttl); err != nil {
				a.logger.WarnContext(ctx, "line cache write failed",
					slog.String("source", string(b.source)),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	a.logger.InfoContext(ctx, "fetch complete",
		slog.Int("contracts", len(contracts)),
		slog.Int("lines", len(allLines)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// ScanMode loads the latest snapshot, ranks edges, and reports them without
// touching the ledger or the exchange.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	report, err := a.runScan(ctx, deps)
	if err != nil {
		return err
	}
	report.FinishedAt = time.Now().UTC()

	printEdges(os.Stdout, report.Edges)

	if err := deps.Snapshots.WriteEdges(report.Edges); err != nil {
		return fmt.Errorf("app: write edges: %w", err)
	}
	a.notifyEdges(ctx, deps, report)
	a.archiveRun(ctx, deps, report)
	return nil
}

// TradeMode scans and then walks the ranked edges through the executor:
// dedup, guardrails, confirmation, order placement, ledger append.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	if deps.Lock != nil {
		unlock, err := deps.Lock.Acquire(ctx, "trade", tradeLockTTL)
		if err != nil {
			return fmt.Errorf("app: acquire trade lock: %w", err)
		}
		defer unlock()
	}

	report, err := a.runScan(ctx, deps)
	if err != nil {
		return err
	}

	printEdges(os.Stdout, report.Edges)
	if err := deps.Snapshots.WriteEdges(report.Edges); err != nil {
		a.logger.WarnContext(ctx, "write edges failed",
			slog.String("error", err.Error()),
		)
	}

	ex := executor.New(deps.Ledger, deps.Kalshi, a.base)
	if !a.cfg.Trade.AutoConfirm && !a.cfg.Trade.DryRun {
		ex.SetConfirm(a.confirmEdge)
	}
	execs, err := ex.Execute(ctx, report.Edges, executor.Options{
		Guardrails: domain.Guardrails{
			MaxContracts:  a.cfg.Trade.MaxContracts,
			MaxSpendCents: a.cfg.Trade.MaxSpendCents,
		},
		Count:       a.cfg.Trade.Count,
		OrderType:   domain.OrderType(a.cfg.Trade.OrderType),
		DryRun:      a.cfg.Trade.DryRun,
		AutoConfirm: a.cfg.Trade.AutoConfirm,
	})
	if err != nil {
		return err
	}
	report.Executions = execs
	report.FinishedAt = time.Now().UTC()

	counts := report.OutcomeCounts()
	a.logger.InfoContext(ctx, "trade run complete",
		slog.Int("traded", counts[domain.OutcomeWouldTrade]),
		slog.Int("skipped_duplicate", counts[domain.OutcomeSkippedDuplicate]),
		slog.Int("skipped_guardrail", counts[domain.OutcomeSkippedGuardrail]),
		slog.Int("declined", counts[domain.OutcomeSkippedDeclined]),
		slog.Int("failed", counts[domain.OutcomeOrderFailed]),
		slog.Int("spent_cents", report.SpentCents()),
		slog.Int("est_fees_cents", report.FeeCents()),
		slog.Bool("dry_run", a.cfg.Trade.DryRun),
	)

	a.notifyTrades(ctx, deps, report)
	a.archiveRun(ctx, deps, report)
	return nil
}

// ManualMode places the single order described by the manual config section.
// Unlike trade mode, guardrail violations reject the order outright rather
// than clamping it: a hand-entered size is operator intent, not a candidate
// list to trim.
func (a *App) ManualMode(ctx context.Context, deps *Dependencies) error {
	m := a.cfg.Manual
	req := domain.OrderRequest{
		Ticker:     m.Ticker,
		Side:       domain.Side(m.Side),
		Action:     domain.OrderAction(m.Action),
		Count:      m.Count,
		PriceCents: m.PriceCents,
		Type:       domain.OrderType(m.OrderType),
	}

	if max := a.cfg.Trade.MaxContracts; req.Count > max {
		return fmt.Errorf("app: manual order rejected: count %d exceeds max_contracts %d", req.Count, max)
	}
	// Selling yes at P risks the 100-P side of the contract.
	cost := req.Count * req.PriceCents
	if req.Action == domain.ActionSell {
		cost = req.Count * (100 - req.PriceCents)
	}
	if capCents := a.cfg.Trade.MaxSpendCents; cost > capCents {
		return fmt.Errorf("app: manual order rejected: cost %d cents exceeds max_spend_cents %d", cost, capCents)
	}
	fee := oddsmath.TakerFeeCents(req.PriceCents, req.Count)

	a.logger.InfoContext(ctx, "manual order",
		slog.String("ticker", req.Ticker),
		slog.String("action", string(req.Action)),
		slog.String("side", string(req.Side)),
		slog.Int("count", req.Count),
		slog.Int("price_cents", req.PriceCents),
		slog.Int("cost_cents", cost),
		slog.Int("fee_cents", fee),
		slog.Bool("dry_run", a.cfg.Trade.DryRun),
	)
	fmt.Printf("%s %s: %d x %s at %d cents (cost %d cents, est fee %d cents)\n",
		req.Action, req.Ticker, req.Count, req.Side, req.PriceCents, cost, fee)

	if a.cfg.Trade.DryRun {
		fmt.Println("dry run: order not placed")
		return nil
	}
	if !a.cfg.Trade.AutoConfirm && !promptYesNo("Proceed? [y/N]: ") {
		fmt.Println("cancelled")
		return nil
	}

	res, err := deps.Kalshi.PlaceOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("app: place manual order: %w", err)
	}
	if !res.Accepted {
		return fmt.Errorf("app: manual order not accepted: %s", res.Reason)
	}

	entry := domain.LedgerEntry{
		Timestamp:  time.Now().UTC(),
		Ticker:     req.Ticker,
		Action:     req.Action,
		Side:       req.Side,
		Count:      req.Count,
		OrderType:  req.Type,
		PriceCents: req.PriceCents,
	}
	if err := deps.Ledger.Append(ctx, entry); err != nil {
		// The order is live; a ledger failure must be loud but cannot undo it.
		a.logger.ErrorContext(ctx, "ledger append failed after accepted order",
			slog.String("ticker", req.Ticker),
			slog.String("error", err.Error()),
		)
	}
	fmt.Printf("order accepted: %s\n", res.OrderID)

	msg := fmt.Sprintf("%s %s x%d at %d cents (order %s)",
		req.Ticker, req.Side, req.Count, req.PriceCents, res.OrderID)
	if err := deps.Notifier.Notify(ctx, notify.EventTradeExecuted, "Manual trade executed", msg); err != nil {
		a.logger.WarnContext(ctx, "notify failed", slog.String("error", err.Error()))
	}
	return nil
}

// marketSnapshot is the in-memory data one scan operates on.
type marketSnapshot struct {
	contracts []domain.BinaryContract
	lines     []domain.SportsbookLine
	counts    map[domain.Source]int
}

// scanSources converts the configured source names into domain values.
func (a *App) scanSources() []domain.Source {
	out := make([]domain.Source, 0, len(a.cfg.Scan.Sources))
	for _, s := range a.cfg.Scan.Sources {
		out = append(out, domain.Source(s))
	}
	return out
}

// loadSnapshot returns the contracts and the selected sources' lines,
// preferring a fresh cache when Redis is enabled. Missing or empty required
// data is fatal: scanning half a snapshot produces edges that look real.
func (a *App) loadSnapshot(ctx context.Context, deps *Dependencies) (marketSnapshot, error) {
	snap := marketSnapshot{counts: make(map[domain.Source]int)}

	if deps.Cache != nil {
		cs, err := deps.Cache.GetContracts(ctx)
		switch {
		case err == nil:
			a.logger.DebugContext(ctx, "contracts loaded from cache",
				slog.Int("contracts", len(cs)),
			)
			snap.contracts = cs
		case !errors.Is(err, domain.ErrNoSnapshot):
			a.logger.WarnContext(ctx, "contract cache read failed, falling back to csv",
				slog.String("error", err.Error()),
			)
		}
	}
	if snap.contracts == nil {
		cs, err := deps.Snapshots.ReadContracts()
		if err != nil {
			return snap, fmt.Errorf("app: load contracts: %w", err)
		}
		snap.contracts = cs
	}
	if len(snap.contracts) == 0 {
		return snap, fmt.Errorf("app: load contracts: %w", domain.ErrNoSnapshot)
	}

	for _, source := range a.scanSources() {
		var ls []domain.SportsbookLine
		if deps.Cache != nil {
			cached, err := deps.Cache.GetLines(ctx, source)
			switch {
			case err == nil:
				ls = cached
			case !errors.Is(err, domain.ErrNoSnapshot):
				a.logger.WarnContext(ctx, "line cache read failed, falling back to csv",
					slog.String("source", string(source)),
					slog.String("error", err.Error()),
				)
			}
		}
		if ls == nil {
			read, err := deps.Snapshots.ReadLines(source)
			if err != nil {
				return snap, fmt.Errorf("app: load %s lines: %w", source, err)
			}
			ls = read
		}
		if len(ls) == 0 {
			return snap, fmt.Errorf("app: load %s lines: %w", source, domain.ErrNoSnapshot)
		}
		snap.counts[source] = len(ls)
		snap.lines = append(snap.lines, ls...)
	}
	return snap, nil
}

// runScan loads the snapshot and ranks edges, filling everything in the
// report except executions.
func (a *App) runScan(ctx context.Context, deps *Dependencies) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		Mode:      strings.ToLower(a.cfg.Mode),
		StartedAt: time.Now().UTC(),
	}

	snap, err := a.loadSnapshot(ctx, deps)
	if err != nil {
		return report, err
	}

	edges := deps.Engine.Scan(snap.contracts, snap.lines, a.cfg.Scan.MinEdgeCents, a.scanSources())
	report.Contracts = len(snap.contracts)
	report.Lines = snap.counts
	report.Edges = edges

	a.logger.InfoContext(ctx, "scan complete",
		slog.String("run_id", report.RunID),
		slog.Int("contracts", len(snap.contracts)),
		slog.Int("lines", len(snap.lines)),
		slog.Int("edges", len(edges)),
		slog.Float64("min_edge_cents", a.cfg.Scan.MinEdgeCents),
	)
	return report, nil
}

// notifyEdges sends one edge_found summary when a scan surfaced anything.
func (a *App) notifyEdges(ctx context.Context, deps *Dependencies, report domain.RunReport) {
	if len(report.Edges) == 0 {
		return
	}
	top := report.Edges[0]
	msg := fmt.Sprintf("%d edges at or above %.1f cents\nbest: %s %d+ %s, %s ask %d, fair %.1f%%, edge %+.1f",
		len(report.Edges), a.cfg.Scan.MinEdgeCents,
		top.Key.Player, top.Key.Threshold, top.Key.Stat,
		top.Side, top.PriceCents, top.FairProb*100, top.EdgeCents)
	if err := deps.Notifier.Notify(ctx, notify.EventEdgeFound, "Edges found", msg); err != nil {
		a.logger.WarnContext(ctx, "notify failed", slog.String("error", err.Error()))
	}
}

// notifyTrades sends one trade_executed message per accepted order.
func (a *App) notifyTrades(ctx context.Context, deps *Dependencies, report domain.RunReport) {
	for _, ex := range report.Executions {
		if ex.Outcome != domain.OutcomeWouldTrade || ex.OrderID == "" {
			continue
		}
		msg := fmt.Sprintf("%s %s x%d at %d cents (edge %+.1f, cost %d cents)",
			ex.Edge.Ticker, ex.Edge.Side, ex.Count, ex.Edge.PriceCents,
			ex.Edge.EdgeCents, ex.CostCents)
		if err := deps.Notifier.Notify(ctx, notify.EventTradeExecuted, "Trade executed", msg); err != nil {
			a.logger.WarnContext(ctx, "notify failed", slog.String("error", err.Error()))
		}
	}
}

// archiveRun uploads the run report and the snapshot files it consumed.
// Archival is best effort; failures are logged, never fatal.
func (a *App) archiveRun(ctx context.Context, deps *Dependencies, report domain.RunReport) {
	if deps.Archiver == nil {
		return
	}
	if _, err := deps.Archiver.ArchiveReport(ctx, report); err != nil {
		a.logger.WarnContext(ctx, "report archival failed", slog.String("error", err.Error()))
	}

	names := []string{snapshot.ContractsFile}
	for _, source := range a.scanSources() {
		names = append(names, snapshot.LinesFile(source))
	}
	names = append(names, snapshot.EdgesFile)
	for _, name := range names {
		data, err := os.ReadFile(deps.Snapshots.Path(name))
		if err != nil {
			continue
		}
		if _, err := deps.Archiver.ArchiveSnapshot(ctx, report, name, data); err != nil {
			a.logger.WarnContext(ctx, "snapshot archival failed",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// confirmEdge prompts on stdin before each order. Anything but y/yes skips.
func (a *App) confirmEdge(edge domain.Edge, req domain.OrderRequest) bool {
	fmt.Printf("\n%s %d+ %s: buy %d x %s at %d cents (edge %+.1f, cost %d cents)\n",
		edge.Key.Player, edge.Key.Threshold, edge.Key.Stat,
		req.Count, req.Side, req.PriceCents, edge.EdgeCents, req.CostCents())
	return promptYesNo("Proceed? [y/N]: ")
}

// promptYesNo reads one stdin line; only y/yes approves.
func promptYesNo(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printEdges renders the ranked edge table for the operator.
func printEdges(w io.Writer, edges []domain.Edge) {
	if len(edges) == 0 {
		fmt.Fprintln(w, "no edges found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tPLAYER\tSTAT\tLINE\tSIDE\tASK\tFAIR\tEDGE\tSOURCES")
	for _, e := range edges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d+\t%s\t%d\t%.1f%%\t%+.1f\t%s\n",
			e.Ticker, e.Key.Player, e.Key.Stat, e.Key.Threshold, e.Side,
			e.PriceCents, e.FairProb*100, e.EdgeCents, joinSources(e.Sources))
	}
	tw.Flush()
}

func joinSources(sources []domain.Source) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s)
	}
	return strings.Join(parts, "+")
}
