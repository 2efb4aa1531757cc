// Command propbot is the prop-trading entry point. It loads configuration,
// validates it, wires dependencies, sets up signal handling, and runs the
// configured mode to completion.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/calebwren/propbot/internal/app"
	"github.com/calebwren/propbot/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional; defaults plus env apply without one)")
	mode := flag.String("mode", "", "run mode: fetch, scan, trade, manual (overrides config)")
	dryRun := flag.Bool("dry-run", false, "evaluate without placing orders")
	yes := flag.Bool("yes", false, "skip confirmation prompts")
	ticker := flag.String("ticker", "", "manual mode: market ticker")
	action := flag.String("action", "", "manual mode: buy or sell")
	side := flag.String("side", "", "manual mode: yes or no")
	count := flag.Int("count", 0, "manual mode: number of contracts")
	price := flag.Int("price", 0, "manual mode: limit price in cents (1-99)")
	orderType := flag.String("type", "", "manual mode: limit or market")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// CLI flags win over file and environment, but only when actually set.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "dry-run":
			cfg.Trade.DryRun = *dryRun
		case "yes":
			cfg.Trade.AutoConfirm = *yes
		case "ticker":
			cfg.Manual.Ticker = *ticker
		case "action":
			cfg.Manual.Action = *action
		case "side":
			cfg.Manual.Side = *side
		case "count":
			cfg.Manual.Count = *count
		case "price":
			cfg.Manual.PriceCents = *price
		case "type":
			cfg.Manual.OrderType = *orderType
		}
	})

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("propbot starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	// Create the application.
	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application.
	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if errors.Is(err, context.Canceled) {
			logger.Info("shut down gracefully")
		} else {
			logger.Error("run failed",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("propbot stopped")
}
