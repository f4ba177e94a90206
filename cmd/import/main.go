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
	"time"

	"pair-performance-lab/internal/composition"
	"pair-performance-lab/internal/config"
	"pair-performance-lab/internal/loader"
	"pair-performance-lab/internal/observability"
	"pair-performance-lab/internal/storage/backend"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	pairsPath := flag.String("pairs", "", "Trade pair CSV to import")
	holdingsPath := flag.String("holdings", "", "Holding CSV to import")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if *pairsPath == "" && *holdingsPath == "" {
		slog.Error("nothing to import, set -pairs and/or -holdings")
		os.Exit(2)
	}
	if cfg.Storage.Backend == config.BackendMemory {
		slog.Warn("memory backend selected, imported rows are discarded on exit")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *pairsPath, *holdingsPath); err != nil {
		slog.Error("import failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, pairsPath, holdingsPath string) error {
	m := observability.NewMetrics(cfg.Metrics.Namespace)
	if cfg.Metrics.Addr != "" {
		srv := observability.NewServer(cfg.Metrics.Addr, m, slog.Default())
		srv.Start()
		defer srv.Stop(5 * time.Second)
	}

	stores, err := backend.Open(ctx, cfg.Storage, slog.Default())
	if err != nil {
		return err
	}
	defer stores.Close()

	if pairsPath != "" {
		pairs, err := loader.ReadTradePairsFile(pairsPath)
		if err != nil {
			return err
		}
		start := time.Now()
		err = stores.Pairs.InsertBulk(ctx, pairs)
		m.RecordDBQuery("trade_pairs", "insert_bulk", time.Since(start).Seconds(), err)
		if err != nil {
			return fmt.Errorf("import %s: %w", pairsPath, err)
		}
		m.RecordImport("trade_pairs", len(pairs))
		slog.Info("imported trade pairs", "path", pairsPath, "count", len(pairs))
	}

	if holdingsPath != "" {
		holdings, err := loader.ReadHoldingsFile(holdingsPath)
		if err != nil {
			return err
		}
		merged := composition.MergeHoldings(holdings)
		if n := len(holdings) - len(merged); n > 0 {
			slog.Warn("merged repeated holdings to max weight", "path", holdingsPath, "merged", n)
		}
		start := time.Now()
		err = stores.Holdings.InsertBulk(ctx, merged)
		m.RecordDBQuery("holdings", "insert_bulk", time.Since(start).Seconds(), err)
		if err != nil {
			return fmt.Errorf("import %s: %w", holdingsPath, err)
		}
		m.RecordImport("portfolio_holdings", len(merged))
		slog.Info("imported holdings", "path", holdingsPath, "count", len(merged))
	}

	if ctx.Err() != nil {
		return errors.Join(errors.New("import interrupted"), ctx.Err())
	}
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
