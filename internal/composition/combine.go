// Package composition filters trade pairs by portfolio holdings or by an
// eligible date set and evaluates the survivors against a same-window baseline.
package composition

import (
	"errors"
	"time"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/metrics"
)

// DefaultComparisonKey is the grouping used for the printed comparison.
const DefaultComparisonKey = domain.GroupKeyCloseYear

// Window is the inclusive open-time span of the filtered set.
// The zero Window is empty and selects nothing.
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the window selects nothing.
func (w Window) Empty() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t lies within [Start, End].
func (w Window) Contains(t time.Time) bool {
	if w.Empty() {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// Result is the outcome of one composition workflow.
type Result struct {
	Workflow      string
	Baseline      *metrics.Evaluator
	Filtered      *metrics.Evaluator
	FilteredPairs []domain.FilteredPair
	Window        Window
}

// Comparison aggregates both sides by key.
func (r *Result) Comparison(key domain.GroupKey) (*domain.Comparison, error) {
	baseline, err := r.Baseline.Aggregate(key)
	if err != nil {
		return nil, err
	}
	filtered, err := r.Filtered.Aggregate(key)
	if err != nil {
		return nil, err
	}

	cmp := &domain.Comparison{
		Workflow:        r.Workflow,
		Key:             key,
		BaselineOverall: r.Baseline.Overall(),
		FilteredOverall: r.Filtered.Overall(),
		Baseline:        baseline,
		Filtered:        filtered,
	}
	if !r.Window.Empty() {
		start, end := r.Window.Start, r.Window.End
		cmp.WindowStart, cmp.WindowEnd = &start, &end
	}
	return cmp, nil
}

// holdingKey joins a holding to the pairs opened on its date.
type holdingKey struct {
	date domain.Date
	code string
}

// CombineHoldsAndPairs keeps the pairs whose (open date, symbol) is held with a
// weight strictly greater than zero. Repeated holdings of a key resolve to the
// largest weight.
func CombineHoldsAndPairs(holdings []domain.PortfolioHolding, pairs []domain.TradePair) (*Result, error) {
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}

	weights := make(map[holdingKey]float64, len(holdings))
	for i := range holdings {
		h := &holdings[i]
		if err := h.Validate(); err != nil {
			return nil, withRow(err, i)
		}
		k := holdingKey{date: domain.DateOf(h.CompositionDate), code: h.SecurityCode}
		if w, ok := weights[k]; !ok || h.Weight > w {
			weights[k] = h.Weight
		}
	}

	var filtered []domain.FilteredPair
	for i := range pairs {
		p := &pairs[i]
		date := p.OpenDate()
		w, ok := weights[holdingKey{date: date, code: p.Symbol}]
		if !ok || w <= 0 {
			continue
		}
		weight := w
		filtered = append(filtered, domain.FilteredPair{TradePair: *p, OpenDate: date, Weight: &weight})
	}

	return combine(domain.WorkflowHolds, pairs, filtered)
}

// CombineDatesAndPairs keeps the pairs opened on an eligible date.
func CombineDatesAndPairs(dates domain.EligibleDates, pairs []domain.TradePair) (*Result, error) {
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}

	var filtered []domain.FilteredPair
	for i := range pairs {
		date := pairs[i].OpenDate()
		if !dates.Contains(date) {
			continue
		}
		filtered = append(filtered, domain.FilteredPair{TradePair: pairs[i], OpenDate: date})
	}

	return combine(domain.WorkflowDates, pairs, filtered)
}

// MergeHoldings collapses repeated (date, code) holdings to the largest weight,
// keeping first-seen order.
func MergeHoldings(holdings []domain.PortfolioHolding) []domain.PortfolioHolding {
	index := make(map[holdingKey]int, len(holdings))
	out := make([]domain.PortfolioHolding, 0, len(holdings))
	for _, h := range holdings {
		k := holdingKey{date: domain.DateOf(h.CompositionDate), code: h.SecurityCode}
		if i, ok := index[k]; ok {
			if h.Weight > out[i].Weight {
				out[i].Weight = h.Weight
			}
			continue
		}
		index[k] = len(out)
		out = append(out, h)
	}
	return out
}

// combine windows the original pairs by the filtered set's open-time span and
// builds both evaluators.
func combine(workflow string, pairs []domain.TradePair, filtered []domain.FilteredPair) (*Result, error) {
	var window Window
	for i := range filtered {
		t := filtered[i].OpenTime
		if i == 0 || t.Before(window.Start) {
			window.Start = t
		}
		if i == 0 || t.After(window.End) {
			window.End = t
		}
	}

	var baselinePairs []domain.TradePair
	for i := range pairs {
		if window.Contains(pairs[i].OpenTime) {
			baselinePairs = append(baselinePairs, pairs[i])
		}
	}

	filteredPairs := make([]domain.TradePair, len(filtered))
	for i := range filtered {
		filteredPairs[i] = filtered[i].TradePair
	}

	baseline, err := metrics.NewEvaluator(baselinePairs)
	if err != nil {
		return nil, err
	}
	survivors, err := metrics.NewEvaluator(filteredPairs)
	if err != nil {
		return nil, err
	}

	return &Result{
		Workflow:      workflow,
		Baseline:      baseline,
		Filtered:      survivors,
		FilteredPairs: filtered,
		Window:        window,
	}, nil
}

func validatePairs(pairs []domain.TradePair) error {
	for i := range pairs {
		if err := pairs[i].Validate(); err != nil {
			return withRow(err, i)
		}
	}
	return nil
}

func withRow(err error, row int) error {
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		schemaErr.Row = row
	}
	return err
}
