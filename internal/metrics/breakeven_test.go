package metrics

import (
	"testing"
	"time"

	"pair-performance-lab/internal/domain"
)

func TestBreakEvenPoint(t *testing.T) {
	tests := []struct {
		name   string
		ratios []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single gain", []float64{0.01}, 1},
		{"all gains", []float64{0.01, 0.02, 0.03, 0.04}, 0.25},
		{"net loss", []float64{0.01, -0.05}, 1},
		// sorted: -0.02 -0.01 0.01 0.025 0.03 -> cum: -0.02 -0.03 -0.02 0.005 0.035
		{"recovers after three", []float64{0.03, -0.01, 0.025, -0.02, 0.01}, 0.8},
		// sorted: -0.01 0.05 0.06 -> cum: -0.01 0.04 0.10
		{"one loss", []float64{0.05, -0.01, 0.06}, 2.0 / 3.0},
		{"zero sum", []float64{0.01, -0.01}, 1},
		{"zeros only", []float64{0, 0, 0}, 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BreakEvenPoint(tt.ratios); !approx(got, tt.want) {
				t.Errorf("BreakEvenPoint(%v) = %v, want %v", tt.ratios, got, tt.want)
			}
		})
	}
}

func TestBreakEvenPoint_OrderIndependent(t *testing.T) {
	a := []float64{0.04, -0.03, 0.01, -0.01, 0.02}
	b := []float64{-0.01, 0.02, -0.03, 0.04, 0.01}

	if BreakEvenPoint(a) != BreakEvenPoint(b) {
		t.Errorf("expected same result for permutations, got %v and %v", BreakEvenPoint(a), BreakEvenPoint(b))
	}
}

func TestBreakEvenPoint_DoesNotSortInput(t *testing.T) {
	ratios := []float64{0.03, -0.01, 0.02}
	_ = BreakEvenPoint(ratios)

	if ratios[0] != 0.03 || ratios[1] != -0.01 || ratios[2] != 0.02 {
		t.Errorf("input reordered: %v", ratios)
	}
}

func TestOpenDayBreakEvenPoint_AveragesPerDay(t *testing.T) {
	day1 := ts("2020-01-02 09:45:00")
	day2 := ts("2020-01-03 10:15:00")
	pairs := []domain.TradePair{
		// day 1: sorted -0.01 0.03 -> cum -0.01 0.02 -> 2/2 = 1
		makePair("A", day1, 0.03),
		makePair("B", day1.Add(time.Hour), -0.01),
		// day 2: all gains -> 1/2
		makePair("A", day2, 0.01),
		makePair("C", day2.Add(2*time.Hour), 0.02),
	}

	if got := openDayBreakEvenPoint(pairs); !approx(got, 0.75) {
		t.Errorf("expected 0.75, got %v", got)
	}
}

func TestOpenDayBreakEvenPoint_Empty(t *testing.T) {
	if got := openDayBreakEvenPoint(nil); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
