package metrics

import (
	"errors"
	"sort"

	"pair-performance-lab/internal/domain"
)

// Evaluator aggregates the statistics of one trade pair collection.
// It owns a private copy of the pairs; it is safe for concurrent reads.
type Evaluator struct {
	pairs  []domain.TradePair
	opens  []domain.CalendarLabels
	closes []domain.CalendarLabels
}

// NewEvaluator validates and copies pairs and derives their calendar labels.
// The first invalid pair fails the whole call with a *domain.SchemaError.
func NewEvaluator(pairs []domain.TradePair) (*Evaluator, error) {
	e := &Evaluator{
		pairs:  make([]domain.TradePair, len(pairs)),
		opens:  make([]domain.CalendarLabels, len(pairs)),
		closes: make([]domain.CalendarLabels, len(pairs)),
	}
	for i := range pairs {
		if err := pairs[i].Validate(); err != nil {
			var schemaErr *domain.SchemaError
			if errors.As(err, &schemaErr) {
				schemaErr.Row = i
			}
			return nil, err
		}
		e.pairs[i] = pairs[i]
		e.opens[i] = domain.LabelsOf(pairs[i].OpenTime)
		e.closes[i] = domain.LabelsOf(pairs[i].CloseTime)
	}
	return e, nil
}

// Len returns the number of pairs.
func (e *Evaluator) Len() int {
	return len(e.pairs)
}

// Pairs returns a copy of the evaluated pairs.
func (e *Evaluator) Pairs() []domain.TradePair {
	out := make([]domain.TradePair, len(e.pairs))
	copy(out, e.pairs)
	return out
}

// Overall summarizes the whole collection.
func (e *Evaluator) Overall() domain.Summary {
	return Summarize(e.pairs)
}

// Aggregate summarizes each group of pairs sharing the same key value.
// Rows are sorted by group value; a key outside the enum is rejected before grouping.
func (e *Evaluator) Aggregate(key domain.GroupKey) ([]domain.SummaryRow, error) {
	if !key.Valid() {
		return nil, &domain.InvalidKeyError{Key: key.String()}
	}

	groups := make(map[string][]domain.TradePair)
	for i := range e.pairs {
		v := key.Value(&e.pairs[i], e.opens[i], e.closes[i])
		groups[v] = append(groups[v], e.pairs[i])
	}

	values := make([]string, 0, len(groups))
	for v := range groups {
		values = append(values, v)
	}
	sort.Strings(values)

	rows := make([]domain.SummaryRow, 0, len(values))
	for _, v := range values {
		group := groups[v]
		if len(group) == 0 {
			continue
		}
		rows = append(rows, domain.SummaryRow{
			Key:     key,
			Value:   v,
			Summary: Summarize(group),
		})
	}
	return rows, nil
}

// AggregateBy parses name as a key identifier or column name and aggregates.
func (e *Evaluator) AggregateBy(name string) ([]domain.SummaryRow, error) {
	key, err := domain.ParseGroupKey(name)
	if err != nil {
		return nil, err
	}
	return e.Aggregate(key)
}

// AggregateAll aggregates by each key in keys, in order.
func (e *Evaluator) AggregateAll(keys []domain.GroupKey) (map[domain.GroupKey][]domain.SummaryRow, error) {
	out := make(map[domain.GroupKey][]domain.SummaryRow, len(keys))
	for _, k := range keys {
		rows, err := e.Aggregate(k)
		if err != nil {
			return nil, err
		}
		out[k] = rows
	}
	return out, nil
}
