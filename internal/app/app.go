// Package app provides the top-level application lifecycle for propbot. It
// wires together the dependencies each mode needs (platform clients, ledger,
// cache, blob storage, notifications) and runs the selected mode to
// completion: one fetch, scan, trade, or manual pass, then exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calebwren/propbot/internal/config"
	"github.com/calebwren/propbot/internal/notify"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	base    *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		base:   logger,
	}
}

// Run is the main entry point. It wires all dependencies, runs the configured
// mode to completion, and returns its result. On return the caller should
// invoke Close to release resources.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting run",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.base)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	if err := a.runMode(ctx, deps); err != nil {
		a.notifyFailure(err, deps)
		return err
	}
	return nil
}

func (a *App) runMode(ctx context.Context, deps *Dependencies) error {
	switch strings.ToLower(a.cfg.Mode) {
	case "fetch":
		return a.FetchMode(ctx, deps)
	case "scan":
		return a.ScanMode(ctx, deps)
	case "trade":
		return a.TradeMode(ctx, deps)
	case "manual":
		return a.ManualMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// notifyFailure reports a failed run over the configured channels. Cancellation
// is an operator action, not a failure, so it is not reported.
func (a *App) notifyFailure(runErr error, deps *Dependencies) {
	if errors.Is(runErr, context.Canceled) {
		return
	}
	nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg := fmt.Sprintf("mode %s: %v", a.cfg.Mode, runErr)
	if err := deps.Notifier.Notify(nctx, notify.EventRunFailed, "Run failed", msg); err != nil {
		a.logger.Warn("failed to send run failure notification", slog.String("error", err.Error()))
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
