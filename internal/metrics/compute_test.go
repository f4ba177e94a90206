package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pair-performance-lab/internal/domain"
)

// makePair builds a valid long pair opened at open and held for one day.
func makePair(symbol string, open time.Time, ratio float64) domain.TradePair {
	return domain.TradePair{
		Symbol:          symbol,
		Direction:       domain.DirectionLong,
		MaxPosition:     1,
		OpenTime:        open,
		CumulativeOpen:  decimal.NewFromFloat(100),
		CloseTime:       open.Add(24 * time.Hour),
		CumulativeClose: decimal.NewFromFloat(100 * (1 + ratio)),
		TurnoverCount:   2,
		BarsHeld:        16,
		DaysHeld:        1,
		EventSequence:   "开多@低吸 > 平多@持有资金",
		PnLAmount:       decimal.NewFromFloat(100 * ratio),
		PnLRatio:        ratio,
	}
}

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarize_TwoTrades(t *testing.T) {
	pairs := []domain.TradePair{
		makePair("000001.SH", ts("2020-01-02 09:45:00"), 0.02),
		makePair("000001.SH", ts("2020-01-03 10:00:00"), -0.01),
	}

	s := Summarize(pairs)

	if s.TradeCount != 2 {
		t.Errorf("expected TradeCount 2, got %d", s.TradeCount)
	}
	if s.WinRate != 0.5 {
		t.Errorf("expected WinRate 0.5, got %f", s.WinRate)
	}
	if s.SymbolCount != 1 {
		t.Errorf("expected SymbolCount 1, got %d", s.SymbolCount)
	}
	// 0.02 / (0.01 + 1e-8) = 1.999998 -> 2.0
	if s.PerTradeGainLossRatio != 2 {
		t.Errorf("expected PerTradeGainLossRatio 2, got %f", s.PerTradeGainLossRatio)
	}
	if s.CumulativeGainLossRatio != 2 {
		t.Errorf("expected CumulativeGainLossRatio 2, got %f", s.CumulativeGainLossRatio)
	}
	if !approx(s.Score, 1.0) {
		t.Errorf("expected Score 1.0, got %f", s.Score)
	}
	// 2 * 0.5 - 0.5 = 0.5
	if !approx(s.Edge, 0.5) {
		t.Errorf("expected Edge 0.5, got %f", s.Edge)
	}
	if s.AvgPnLRatio != 0.005 {
		t.Errorf("expected AvgPnLRatio 0.005, got %f", s.AvgPnLRatio)
	}
	if s.MaxPnLRatio != 0.02 || s.MinPnLRatio != -0.01 {
		t.Errorf("unexpected extrema %f/%f", s.MaxPnLRatio, s.MinPnLRatio)
	}
	// std of {0.02, -0.01} = 0.0212132 -> 0.0212
	if s.PnLRatioStd != 0.0212 {
		t.Errorf("expected PnLRatioStd 0.0212, got %f", s.PnLRatioStd)
	}
	if !s.StartTime.Equal(ts("2020-01-02 09:45:00")) {
		t.Errorf("unexpected StartTime %v", s.StartTime)
	}
	if !s.EndTime.Equal(ts("2020-01-04 10:00:00")) {
		t.Errorf("unexpected EndTime %v", s.EndTime)
	}
	// sorted {-0.01, 0.02}: cumulative {-0.01, 0.01} -> (1+1)/2
	if s.BreakEvenPoint != 1 {
		t.Errorf("expected BreakEvenPoint 1, got %f", s.BreakEvenPoint)
	}
	// one trade per day: day 1 -> 1/1, day 2 sum < 0 -> 1
	if s.OpenDayBreakEvenPoint != 1 {
		t.Errorf("expected OpenDayBreakEvenPoint 1, got %f", s.OpenDayBreakEvenPoint)
	}
	if s.AvgDaysHeld != 1 || s.AvgBarsHeld != 16 {
		t.Errorf("unexpected holding averages %f/%f", s.AvgDaysHeld, s.AvgBarsHeld)
	}
	// 0.005 / 1 = 0.005 -> 0.01 at 2 places
	if s.ReturnPerCalendarDay != 0.01 {
		t.Errorf("expected ReturnPerCalendarDay 0.01, got %f", s.ReturnPerCalendarDay)
	}
	if s.ReturnPerBar != 0 {
		t.Errorf("expected ReturnPerBar 0, got %f", s.ReturnPerBar)
	}
}

func TestSummarize_Empty(t *testing.T) {
	for _, pairs := range [][]domain.TradePair{nil, {}} {
		s := Summarize(pairs)

		if !s.Empty() {
			t.Error("expected empty summary")
		}
		if s.TradeCount != 0 || s.SymbolCount != 0 {
			t.Errorf("expected zero counts, got %d/%d", s.TradeCount, s.SymbolCount)
		}
		if s.StartTime != nil || s.EndTime != nil {
			t.Error("expected nil time bounds")
		}
		if s.WinRate != 0 || s.Score != 0 || s.Edge != 0 {
			t.Errorf("expected zero ratios, got win=%f score=%f edge=%f", s.WinRate, s.Score, s.Edge)
		}
	}
}

func TestSummarize_IdenticalPositiveRatios(t *testing.T) {
	base := ts("2021-03-01 10:00:00")
	pairs := make([]domain.TradePair, 4)
	for i := range pairs {
		pairs[i] = makePair("600000.SH", base.Add(time.Duration(i)*time.Hour), 0.03)
	}

	s := Summarize(pairs)

	if s.PnLRatioStd != 0 {
		t.Errorf("expected PnLRatioStd 0, got %f", s.PnLRatioStd)
	}
	if s.WinRate != 1 {
		t.Errorf("expected WinRate 1, got %f", s.WinRate)
	}
	if s.PerTradeGainLossRatio != MaxGainLossRatio {
		t.Errorf("expected PerTradeGainLossRatio clamped to 5, got %f", s.PerTradeGainLossRatio)
	}
	if s.CumulativeGainLossRatio != MaxGainLossRatio {
		t.Errorf("expected CumulativeGainLossRatio clamped to 5, got %f", s.CumulativeGainLossRatio)
	}
	if s.Score != 5 {
		t.Errorf("expected Score 5, got %f", s.Score)
	}
	if s.Edge != 5 {
		t.Errorf("expected Edge 5, got %f", s.Edge)
	}
	// no negative prefix: 1/4
	if s.BreakEvenPoint != 0.25 {
		t.Errorf("expected BreakEvenPoint 0.25, got %f", s.BreakEvenPoint)
	}
}

func TestSummarize_AllLosses(t *testing.T) {
	base := ts("2021-03-01 10:00:00")
	pairs := []domain.TradePair{
		makePair("A", base, -0.02),
		makePair("B", base, 0),
		makePair("C", base, -0.05),
	}

	s := Summarize(pairs)

	if s.WinRate != 0 {
		t.Errorf("expected WinRate 0, got %f", s.WinRate)
	}
	if s.PerTradeGainLossRatio != 0 || s.CumulativeGainLossRatio != 0 {
		t.Errorf("expected zero gain/loss ratios, got %f/%f", s.PerTradeGainLossRatio, s.CumulativeGainLossRatio)
	}
	if s.Score != 0 {
		t.Errorf("expected Score 0, got %f", s.Score)
	}
	if s.Edge != -1 {
		t.Errorf("expected Edge -1, got %f", s.Edge)
	}
	if math.IsNaN(s.Score) || math.IsNaN(s.Edge) {
		t.Error("NaN leaked into score/edge")
	}
	if s.SymbolCount != 3 {
		t.Errorf("expected SymbolCount 3, got %d", s.SymbolCount)
	}
	if s.BreakEvenPoint != 1 {
		t.Errorf("expected BreakEvenPoint 1, got %f", s.BreakEvenPoint)
	}
}

func TestSummarize_ClampHoldsForExtremeRatios(t *testing.T) {
	base := ts("2022-06-01 10:00:00")
	pairs := []domain.TradePair{
		makePair("A", base, 1e6),
		makePair("B", base, -1e-9),
		makePair("C", base, 1e300),
	}

	s := Summarize(pairs)

	if s.PerTradeGainLossRatio > MaxGainLossRatio || s.CumulativeGainLossRatio > MaxGainLossRatio {
		t.Errorf("clamp violated: %f/%f", s.PerTradeGainLossRatio, s.CumulativeGainLossRatio)
	}
	if math.IsInf(s.Score, 0) || math.IsNaN(s.Score) {
		t.Errorf("expected finite Score, got %f", s.Score)
	}
}

func TestSummarize_ScoreIsProductOfRoundedOperands(t *testing.T) {
	base := ts("2020-05-06 09:30:00")
	ratios := []float64{0.031, -0.012, 0.007, -0.004, 0.015, -0.021, 0.002}
	pairs := make([]domain.TradePair, len(ratios))
	for i, r := range ratios {
		pairs[i] = makePair("X", base.Add(time.Duration(i)*24*time.Hour), r)
	}

	s := Summarize(pairs)

	if s.WinRate < 0 || s.WinRate > 1 {
		t.Errorf("WinRate out of range: %f", s.WinRate)
	}
	if s.Score != round(s.CumulativeGainLossRatio*s.WinRate, 4) {
		t.Errorf("Score %f != %f * %f", s.Score, s.CumulativeGainLossRatio, s.WinRate)
	}
	if s.Edge != round(s.PerTradeGainLossRatio*s.WinRate-(1-s.WinRate), 4) {
		t.Errorf("Edge %f inconsistent with ratio %f and win rate %f", s.Edge, s.PerTradeGainLossRatio, s.WinRate)
	}
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	base := ts("2020-05-06 09:30:00")
	pairs := []domain.TradePair{
		makePair("B", base.Add(time.Hour), 0.05),
		makePair("A", base, -0.02),
	}
	before := make([]domain.TradePair, len(pairs))
	copy(before, pairs)

	_ = Summarize(pairs)

	for i := range pairs {
		if pairs[i].Symbol != before[i].Symbol || pairs[i].PnLRatio != before[i].PnLRatio {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestSummarize_SingleTradeStddevIsZero(t *testing.T) {
	s := Summarize([]domain.TradePair{makePair("A", ts("2020-01-02 10:00:00"), 0.01)})

	if s.PnLRatioStd != 0 {
		t.Errorf("expected PnLRatioStd 0, got %f", s.PnLRatioStd)
	}
}

func TestSummarize_ZeroHoldingDenominators(t *testing.T) {
	p := makePair("A", ts("2020-01-02 10:00:00"), 0.01)
	p.CloseTime = p.OpenTime
	p.DaysHeld = 0
	p.BarsHeld = 0

	s := Summarize([]domain.TradePair{p})

	if s.ReturnPerCalendarDay != 0 || s.ReturnPerBar != 0 {
		t.Errorf("expected zero per-day/per-bar returns, got %f/%f", s.ReturnPerCalendarDay, s.ReturnPerBar)
	}
}

func TestComputeStddev_SampleFormula(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := computeMean(values)

	// sample variance = 32 / 7
	expected := math.Sqrt(32.0 / 7.0)
	if got := computeStddev(values, mean); !approx(got, expected) {
		t.Errorf("expected %f, got %f", expected, got)
	}
}

func TestRound_HalfToEven(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{1.005, 2, 1.0}, // 1.005 is 1.00499... in binary
		{0.125, 2, 0.12},
		{-0.125, 2, -0.12},
		{0.375, 2, 0.38},
		{0.03125, 4, 0.0312},
		{0.12344, 4, 0.1234},
		{2.5, 0, 2},
		{3.5, 0, 4},
	}

	for _, tt := range tests {
		if got := round(tt.in, tt.places); !approx(got, tt.want) {
			t.Errorf("round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}

func TestSummarize_WinRateTieRoundsToEven(t *testing.T) {
	start := ts("2020-01-02 09:45:00")
	pairs := make([]domain.TradePair, 32)
	for i := range pairs {
		ratio := -0.01
		if i == 0 {
			ratio = 0.05
		}
		pairs[i] = makePair("000001.SH", start.Add(time.Duration(i)*24*time.Hour), ratio)
	}

	s := Summarize(pairs)

	// 1/32 = 0.03125 exactly
	if s.WinRate != 0.0312 {
		t.Errorf("expected WinRate 0.0312, got %v", s.WinRate)
	}
}
