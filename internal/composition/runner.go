package composition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/metrics"
	"pair-performance-lab/internal/observability"
	"pair-performance-lab/internal/reporting"
	"pair-performance-lab/internal/storage"
)

// ErrNoHoldingStore is returned by RunHolds when no holding store is configured.
var ErrNoHoldingStore = errors.New("holding store not configured")

// Run is the outcome of one store-backed workflow run.
type Run struct {
	ID       string
	Workflow string

	// Result is nil for the plain pairs workflow.
	Result *Result

	// Evaluator covers every stored pair in the pairs workflow and the
	// filtered side otherwise.
	Evaluator  *metrics.Evaluator
	Comparison *domain.Comparison
	Records    []*domain.SummaryRecord
}

// Runner loads pairs from a store, runs a workflow, exports the reports and
// then persists the aggregation rows.
type Runner struct {
	pairs      storage.TradePairStore
	holdings   storage.HoldingStore   // optional, required by RunHolds
	summaries  storage.SummaryStore   // optional
	exporter   reporting.Exporter     // optional
	metrics    *observability.Metrics // optional
	logger     *slog.Logger
	outputDir  string
	compareKey domain.GroupKey
	exportKeys []domain.GroupKey
	clock      func() time.Time
	newRunID   func() string
}

// NewRunner creates a Runner reading pairs from pairs and exporting into outputDir.
func NewRunner(pairs storage.TradePairStore, outputDir string) *Runner {
	return &Runner{
		pairs:      pairs,
		logger:     slog.Default(),
		outputDir:  outputDir,
		compareKey: DefaultComparisonKey,
		exportKeys: domain.ExportKeys,
		clock:      func() time.Time { return time.Now().UTC() },
		newRunID:   uuid.NewString,
	}
}

// WithHoldingStore sets the holding source of RunHolds.
func (r *Runner) WithHoldingStore(s storage.HoldingStore) *Runner {
	r.holdings = s
	return r
}

// WithSummaryStore persists every aggregation row of a run.
func (r *Runner) WithSummaryStore(s storage.SummaryStore) *Runner {
	r.summaries = s
	return r
}

// WithExporter sets the report exporter.
func (r *Runner) WithExporter(e reporting.Exporter) *Runner {
	r.exporter = e
	return r
}

// WithMetrics records run and store metrics.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// WithLogger sets the logger.
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	if l != nil {
		r.logger = l
	}
	return r
}

// WithComparisonKey sets the grouping of the printed comparison.
func (r *Runner) WithComparisonKey(k domain.GroupKey) *Runner {
	r.compareKey = k
	return r
}

// WithExportKeys sets the keys written to workbooks and the summary store.
func (r *Runner) WithExportKeys(keys []domain.GroupKey) *Runner {
	r.exportKeys = keys
	return r
}

// WithClock sets a custom clock function for deterministic output.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// WithRunID fixes the run identifier generator.
func (r *Runner) WithRunID(newID func() string) *Runner {
	r.newRunID = newID
	return r
}

// RunPairs evaluates every stored pair without filtering.
func (r *Runner) RunPairs(ctx context.Context) (run *Run, err error) {
	start := r.clock()
	defer func() { r.recordRun(domain.WorkflowPairs, start, err) }()

	pairs, err := r.loadPairs(ctx)
	if err != nil {
		return nil, err
	}
	eval, err := metrics.NewEvaluator(pairs)
	if err != nil {
		return nil, err
	}

	run = &Run{ID: r.newRunID(), Workflow: domain.WorkflowPairs, Evaluator: eval}
	sheets, records, err := r.aggregate(run, domain.SideBaseline, eval)
	if err != nil {
		return nil, err
	}
	run.Records = records

	r.logSummary(run, domain.SideBaseline, eval.Overall())
	r.recordPairs(run.Workflow, domain.SideBaseline, eval.Len())

	bundle := reporting.Bundle{
		Dir:       r.outputDir,
		Workbooks: []reporting.Workbook{{Name: reporting.BaselineWorkbook, Sheets: sheets}},
	}
	if err := r.export(ctx, bundle); err != nil {
		return nil, err
	}
	if err := r.persist(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// RunHolds filters stored pairs by stored holdings.
func (r *Runner) RunHolds(ctx context.Context) (run *Run, err error) {
	start := r.clock()
	defer func() { r.recordRun(domain.WorkflowHolds, start, err) }()

	if r.holdings == nil {
		return nil, ErrNoHoldingStore
	}
	pairs, err := r.loadPairs(ctx)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	holdings, err := r.holdings.GetAll(ctx)
	r.recordQuery("holdings", "get_all", t0, err)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	res, err := CombineHoldsAndPairs(holdings, pairs)
	if err != nil {
		return nil, err
	}
	return r.finish(ctx, res)
}

// RunDates filters stored pairs by an eligible date set.
func (r *Runner) RunDates(ctx context.Context, dates domain.EligibleDates) (run *Run, err error) {
	start := r.clock()
	defer func() { r.recordRun(domain.WorkflowDates, start, err) }()

	pairs, err := r.loadPairs(ctx)
	if err != nil {
		return nil, err
	}
	res, err := CombineDatesAndPairs(dates, pairs)
	if err != nil {
		return nil, err
	}
	return r.finish(ctx, res)
}

// finish aggregates both sides, exports the reports and persists the rows.
func (r *Runner) finish(ctx context.Context, res *Result) (*Run, error) {
	cmp, err := res.Comparison(r.compareKey)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:         r.newRunID(),
		Workflow:   res.Workflow,
		Result:     res,
		Evaluator:  res.Filtered,
		Comparison: cmp,
	}

	baselineSheets, baselineRecords, err := r.aggregate(run, domain.SideBaseline, res.Baseline)
	if err != nil {
		return nil, err
	}
	filteredSheets, filteredRecords, err := r.aggregate(run, domain.SideFiltered, res.Filtered)
	if err != nil {
		return nil, err
	}
	run.Records = append(baselineRecords, filteredRecords...)

	r.logSummary(run, domain.SideBaseline, cmp.BaselineOverall)
	r.logSummary(run, domain.SideFiltered, cmp.FilteredOverall)
	r.recordPairs(run.Workflow, domain.SideBaseline, res.Baseline.Len())
	r.recordPairs(run.Workflow, domain.SideFiltered, res.Filtered.Len())

	bundle := reporting.Bundle{
		Dir: r.outputDir,
		Workbooks: []reporting.Workbook{
			{Name: reporting.BaselineWorkbook, Sheets: baselineSheets},
			{Name: reporting.FilteredWorkbook, Sheets: filteredSheets},
		},
		Snapshot: &reporting.Snapshot{
			Name:       reporting.SnapshotFile,
			Pairs:      res.FilteredPairs,
			WithWeight: res.Workflow == domain.WorkflowHolds,
		},
		Comparison: cmp,
	}
	if err := r.export(ctx, bundle); err != nil {
		return nil, err
	}
	// Rows are stored only for runs whose reports were written.
	if err := r.persist(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// aggregate builds the workbook sheets and summary records of one side.
func (r *Runner) aggregate(run *Run, side string, eval *metrics.Evaluator) ([]reporting.Sheet, []*domain.SummaryRecord, error) {
	now := r.clock()
	records := []*domain.SummaryRecord{{
		RunID:     run.ID,
		Workflow:  run.Workflow,
		Side:      side,
		GroupKey:  domain.GroupKeyOverall,
		Summary:   eval.Overall(),
		CreatedAt: now,
	}}

	sheets := make([]reporting.Sheet, 0, len(r.exportKeys))
	for _, key := range r.exportKeys {
		rows, err := eval.Aggregate(key)
		if err != nil {
			return nil, nil, err
		}
		sheets = append(sheets, reporting.Sheet{Key: key, Rows: rows})
		for _, row := range rows {
			records = append(records, &domain.SummaryRecord{
				RunID:     run.ID,
				Workflow:  run.Workflow,
				Side:      side,
				GroupKey:  key.ID(),
				Value:     row.Value,
				Summary:   row.Summary,
				CreatedAt: now,
			})
		}
	}
	return sheets, records, nil
}

func (r *Runner) loadPairs(ctx context.Context) ([]domain.TradePair, error) {
	t0 := time.Now()
	pairs, err := r.pairs.GetAll(ctx)
	r.recordQuery("trade_pairs", "get_all", t0, err)
	if err != nil {
		return nil, fmt.Errorf("load trade pairs: %w", err)
	}
	return pairs, nil
}

func (r *Runner) persist(ctx context.Context, run *Run) error {
	if r.summaries == nil {
		return nil
	}
	t0 := time.Now()
	err := r.summaries.InsertBulk(ctx, run.Records)
	r.recordQuery("summaries", "insert_bulk", t0, err)
	if err != nil {
		return fmt.Errorf("store summaries of run %s: %w", run.ID, err)
	}
	if r.metrics != nil {
		r.metrics.SummaryRowsStored.Add(float64(len(run.Records)))
	}
	return nil
}

func (r *Runner) export(ctx context.Context, b reporting.Bundle) error {
	if r.exporter == nil {
		return nil
	}
	err := r.exporter.Export(ctx, b)
	if r.metrics != nil {
		r.metrics.RecordExport(err)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func (r *Runner) logSummary(run *Run, side string, s domain.Summary) {
	r.logger.Info("workflow summary",
		"run_id", run.ID,
		"workflow", run.Workflow,
		"side", side,
		"trades", s.TradeCount,
		"symbols", s.SymbolCount,
		"win_rate", s.WinRate,
		"avg_pnl_ratio", s.AvgPnLRatio,
		"score", s.Score,
		"edge", s.Edge,
	)
}

func (r *Runner) recordRun(workflow string, start time.Time, err error) {
	if err != nil {
		r.logger.Error("workflow failed", "workflow", workflow, "err", err)
	}
	if r.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	end := r.clock()
	r.metrics.RecordWorkflowRun(workflow, status, end.Sub(start).Seconds())
	if err == nil {
		r.metrics.LastSuccessfulRun.Set(float64(end.Unix()))
	}
}

func (r *Runner) recordPairs(workflow, side string, n int) {
	if r.metrics != nil {
		r.metrics.RecordPairsEvaluated(workflow, side, n)
	}
}

func (r *Runner) recordQuery(store, op string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordDBQuery(store, op, time.Since(start).Seconds(), err)
	}
}
