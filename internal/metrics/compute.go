package metrics

import (
	"math"

	"pair-performance-lab/internal/domain"
)

const (
	// Epsilon keeps the gain/loss ratios finite when a partition has no losses.
	Epsilon = 1e-8

	// MaxGainLossRatio caps both gain/loss ratios.
	MaxGainLossRatio = 5.0
)

// Summarize computes the statistics of a trade pair collection.
// Pairs are read in input order and never modified; an empty collection yields
// the zero Summary. Callers that accept external data validate it first
// (see NewEvaluator).
func Summarize(pairs []domain.TradePair) domain.Summary {
	n := len(pairs)
	if n == 0 {
		return domain.Summary{}
	}

	ratios := make([]float64, n)
	days := make([]float64, n)
	bars := make([]float64, n)
	symbols := make(map[string]struct{})
	start := pairs[0].OpenTime
	end := pairs[0].CloseTime

	for i := range pairs {
		p := &pairs[i]
		ratios[i] = p.PnLRatio
		days[i] = p.DaysHeld
		bars[i] = float64(p.BarsHeld)
		symbols[p.Symbol] = struct{}{}
		if p.OpenTime.Before(start) {
			start = p.OpenTime
		}
		if p.CloseTime.After(end) {
			end = p.CloseTime
		}
	}

	// Split into gains (> 0) and losses (<= 0)
	var gainSum, lossSum float64
	gains, losses := 0, 0
	for _, r := range ratios {
		if r > 0 {
			gainSum += r
			gains++
		} else {
			lossSum += r
			losses++
		}
	}

	winRate := round(computeWinRate(gains, n), 4)
	perTrade := gainLossRatio(safeMean(gainSum, gains), safeMean(lossSum, losses))
	cumulative := gainLossRatio(gainSum, lossSum)

	mean := computeMean(ratios)

	s := domain.Summary{
		StartTime:   &start,
		EndTime:     &end,
		SymbolCount: len(symbols),
		TradeCount:  n,

		AvgDaysHeld: round(computeMean(days), 2),
		AvgBarsHeld: round(computeMean(bars), 2),

		AvgPnLRatio: round(mean, 4),
		PnLRatioStd: round(computeStddev(ratios, mean), 4),
		MaxPnLRatio: round(maxOf(ratios), 4),
		MinPnLRatio: round(minOf(ratios), 4),

		WinRate:                 winRate,
		PerTradeGainLossRatio:   perTrade,
		CumulativeGainLossRatio: cumulative,
		Score:                   round(cumulative*winRate, 4),
		Edge:                    round(perTrade*winRate-(1-winRate), 4),

		BreakEvenPoint:        round(BreakEvenPoint(ratios), 4),
		OpenDayBreakEvenPoint: round(openDayBreakEvenPoint(pairs), 4),
	}

	s.ReturnPerCalendarDay = round(safeDiv(s.AvgPnLRatio, s.AvgDaysHeld), 2)
	s.ReturnPerBar = round(safeDiv(s.AvgPnLRatio, s.AvgBarsHeld), 2)
	return s
}

// gainLossRatio is gain / (|loss| + Epsilon), rounded to 2 places and capped.
func gainLossRatio(gain, loss float64) float64 {
	return math.Min(round(gain/(math.Abs(loss)+Epsilon), 2), MaxGainLossRatio)
}

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func safeMean(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// safeDiv returns 0 for a zero denominator.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// round rounds half to even at the given number of decimal places.
func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
