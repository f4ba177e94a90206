package metrics

import (
	"sort"

	"pair-performance-lab/internal/domain"
)

// BreakEvenPoint returns the fraction of trades, taken worst first, needed before
// the cumulative return stops being negative.
//
// Ratios are sorted ascending and summed cumulatively; the result is
// (number of negative prefix sums + 1) / n. A sequence whose total is negative
// never recovers and yields 1. Empty input yields 0. ratios is not modified.
func BreakEvenPoint(ratios []float64) float64 {
	n := len(ratios)
	if n == 0 {
		return 0
	}
	if sum(ratios) < 0 {
		return 1
	}

	sorted := make([]float64, n)
	copy(sorted, ratios)
	sort.Float64s(sorted)

	negative := 0
	cumulative := 0.0
	for _, r := range sorted {
		cumulative += r
		if cumulative < 0 {
			negative++
		}
	}
	return float64(negative+1) / float64(n)
}

// openDayBreakEvenPoint averages BreakEvenPoint over pairs grouped by open date.
// Groups are visited in date order so the float sum is deterministic.
func openDayBreakEvenPoint(pairs []domain.TradePair) float64 {
	byDay := make(map[domain.Date][]float64)
	for i := range pairs {
		d := pairs[i].OpenDate()
		byDay[d] = append(byDay[d], pairs[i].PnLRatio)
	}
	if len(byDay) == 0 {
		return 0
	}

	days := make([]domain.Date, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	total := 0.0
	for _, d := range days {
		total += BreakEvenPoint(byDay[d])
	}
	return total / float64(len(days))
}
