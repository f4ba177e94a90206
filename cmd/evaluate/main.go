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
	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/loader"
	"pair-performance-lab/internal/observability"
	"pair-performance-lab/internal/reporting"
	"pair-performance-lab/internal/storage"
	"pair-performance-lab/internal/storage/backend"
	"pair-performance-lab/internal/storage/memory"
	"pair-performance-lab/internal/verification"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	workflow := flag.String("workflow", domain.WorkflowDates, "Workflow: holds, dates or pairs")
	pairsPath := flag.String("pairs", "", "Trade pair CSV; when set, pairs are read from the file instead of the store")
	holdingsPath := flag.String("holdings", "", "Holding CSV; when set, holdings are read from the file instead of the store")
	datesPath := flag.String("dates", "", "Eligible date CSV (required for the dates workflow)")
	outputDir := flag.String("output-dir", "", "Override output directory")
	key := flag.String("key", "", "Override comparison key (id or column name)")
	verify := flag.Bool("verify", false, "Reload the stored summary rows and check them against the computed ones")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *key != "" {
		cfg.Output.ComparisonKey = *key
	}

	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		workflow:     *workflow,
		pairsPath:    *pairsPath,
		holdingsPath: *holdingsPath,
		datesPath:    *datesPath,
		verify:       *verify,
	}
	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("evaluate failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	workflow     string
	pairsPath    string
	holdingsPath string
	datesPath    string
	verify       bool
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	compareKey, err := domain.ParseGroupKey(cfg.Output.ComparisonKey)
	if err != nil {
		return err
	}

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

	pairs, err := pairSource(ctx, stores.Pairs, opts.pairsPath)
	if err != nil {
		return err
	}
	holdings, err := holdingSource(ctx, stores.Holdings, opts.holdingsPath)
	if err != nil {
		return err
	}

	exporter := reporting.NewWorkbookExporter().WithLogger(slog.Default())
	runner := composition.NewRunner(pairs, cfg.Output.Dir).
		WithHoldingStore(holdings).
		WithSummaryStore(stores.Summaries).
		WithExporter(exporter).
		WithMetrics(m).
		WithLogger(slog.Default()).
		WithComparisonKey(compareKey)

	var result *composition.Run
	switch opts.workflow {
	case domain.WorkflowHolds:
		result, err = runner.RunHolds(ctx)
	case domain.WorkflowDates:
		if opts.datesPath == "" {
			return errors.New("dates workflow requires -dates")
		}
		dates, derr := loader.ReadEligibleDatesFile(opts.datesPath)
		if derr != nil {
			return derr
		}
		result, err = runner.RunDates(ctx, dates)
	case domain.WorkflowPairs:
		result, err = runner.RunPairs(ctx)
	default:
		return fmt.Errorf("unknown workflow %q", opts.workflow)
	}
	if err != nil {
		return err
	}

	slog.Info("run complete", "run_id", result.ID, "output_dir", cfg.Output.Dir)

	if opts.verify {
		report, err := verification.NewVerifier(stores.Summaries).VerifyRun(ctx, result.ID, result.Records)
		if err != nil {
			return err
		}
		for _, r := range report.Results {
			slog.Warn("summary row diverged", "key", r.Key, "missing", r.Missing, "unexpected", r.Unexpected, "fields", len(r.Divergences))
		}
		if !report.OK() {
			return fmt.Errorf("run %s: %d of %d stored rows diverged", result.ID, report.DivergedCount, report.TotalRecords)
		}
		slog.Info("stored rows verified", "run_id", result.ID, "rows", report.MatchedCount)
	}
	return printRun(result, compareKey)
}

// pairSource returns the configured store, or a memory store seeded from path.
func pairSource(ctx context.Context, store storage.TradePairStore, path string) (storage.TradePairStore, error) {
	if path == "" {
		return store, nil
	}
	pairs, err := loader.ReadTradePairsFile(path)
	if err != nil {
		return nil, err
	}
	mem := memory.NewTradePairStore()
	if err := mem.InsertBulk(ctx, pairs); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	slog.Info("loaded trade pairs", "path", path, "count", len(pairs))
	return mem, nil
}

// holdingSource returns the configured store, or a memory store seeded from path.
func holdingSource(ctx context.Context, store storage.HoldingStore, path string) (storage.HoldingStore, error) {
	if path == "" {
		return store, nil
	}
	holdings, err := loader.ReadHoldingsFile(path)
	if err != nil {
		return nil, err
	}
	merged := composition.MergeHoldings(holdings)
	mem := memory.NewHoldingStore()
	if err := mem.InsertBulk(ctx, merged); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	slog.Info("loaded holdings", "path", path, "count", len(holdings), "merged", len(merged))
	return mem, nil
}

func printRun(result *composition.Run, key domain.GroupKey) error {
	out := os.Stdout
	if result.Comparison == nil {
		fmt.Fprintln(out, "整体")
		if err := reporting.RenderSummary(out, result.Evaluator.Overall()); err != nil {
			return err
		}
		rows, err := result.Evaluator.Aggregate(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n按%s\n", key.Column())
		return reporting.RenderTable(out, key, rows)
	}

	c := result.Comparison
	sections := []struct {
		title   string
		overall domain.Summary
		rows    []domain.SummaryRow
	}{
		{"过滤前", c.BaselineOverall, c.Baseline},
		{"过滤后", c.FilteredOverall, c.Filtered},
	}
	for _, s := range sections {
		fmt.Fprintf(out, "%s 整体\n", s.title)
		if err := reporting.RenderSummary(out, s.overall); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s 按%s\n", s.title, c.Key.Column())
		if err := reporting.RenderTable(out, c.Key, s.rows); err != nil {
			return err
		}
		fmt.Fprintln(out)
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
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
