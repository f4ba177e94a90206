// Package verification checks that the summary rows a store returns for a run
// match the rows that were computed for it.
package verification

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/storage"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and computed values.
type FieldDivergence struct {
	Field    string // summary column label
	Expected any    // computed value
	Actual   any    // stored value
}

// RecordResult is the outcome of verifying one summary row.
type RecordResult struct {
	Key         string // side|group_key|value
	Missing     bool   // computed but not stored
	Unexpected  bool   // stored but not computed
	Divergences []FieldDivergence
}

// Match reports whether the row was stored exactly as computed.
func (r RecordResult) Match() bool {
	return !r.Missing && !r.Unexpected && len(r.Divergences) == 0
}

// Report contains results for one run.
type Report struct {
	RunID         string
	TotalRecords  int // union of computed and stored keys
	MatchedCount  int
	DivergedCount int
	Results       []RecordResult // mismatches only, ordered by key
}

// OK reports whether every row matched.
func (r *Report) OK() bool {
	return r.DivergedCount == 0
}

// Verifier reloads a run's rows from a SummaryStore.
type Verifier struct {
	store storage.SummaryStore
}

// NewVerifier creates a Verifier reading from store.
func NewVerifier(store storage.SummaryStore) *Verifier {
	return &Verifier{store: store}
}

// VerifyRun compares the stored rows of runID with computed.
func (v *Verifier) VerifyRun(ctx context.Context, runID string, computed []*domain.SummaryRecord) (*Report, error) {
	stored, err := v.store.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return CompareRuns(runID, computed, stored), nil
}

// CompareRuns matches computed and stored rows by key and compares their summaries.
func CompareRuns(runID string, computed, stored []*domain.SummaryRecord) *Report {
	want := indexRecords(computed)
	got := indexRecords(stored)

	keys := make([]string, 0, len(want)+len(got))
	for k := range want {
		keys = append(keys, k)
	}
	for k := range got {
		if _, ok := want[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	report := &Report{RunID: runID, TotalRecords: len(keys)}
	for _, k := range keys {
		w, inWant := want[k]
		g, inGot := got[k]

		res := RecordResult{Key: k, Missing: !inGot, Unexpected: !inWant}
		if inWant && inGot {
			res.Divergences = CompareSummaries(w.Summary, g.Summary)
		}
		if res.Match() {
			report.MatchedCount++
			continue
		}
		report.DivergedCount++
		report.Results = append(report.Results, res)
	}
	return report
}

// CompareSummaries compares every summary column. Floats use FloatTolerance,
// times compare at millisecond precision.
func CompareSummaries(computed, stored domain.Summary) []FieldDivergence {
	var divergences []FieldDivergence

	want, got := computed.Values(), stored.Values()
	for i, col := range domain.SummaryColumns {
		if !cellEquals(want[i], got[i]) {
			divergences = append(divergences, FieldDivergence{
				Field:    col,
				Expected: want[i],
				Actual:   got[i],
			})
		}
	}
	return divergences
}

func cellEquals(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && floatEquals(x, y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Truncate(time.Millisecond).Equal(y.Truncate(time.Millisecond))
	default:
		return a == b
	}
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

func indexRecords(records []*domain.SummaryRecord) map[string]*domain.SummaryRecord {
	m := make(map[string]*domain.SummaryRecord, len(records))
	for _, r := range records {
		m[r.Side+"|"+r.GroupKey+"|"+r.Value] = r
	}
	return m
}
