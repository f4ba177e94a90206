package idhash

import (
	"testing"
	"time"

	"pair-performance-lab/internal/domain"
)

func TestComputePairID(t *testing.T) {
	open := time.Date(2020, 2, 6, 9, 45, 0, 0, time.UTC)
	tests := []struct {
		name string
		pair domain.TradePair
	}{
		{"long", domain.TradePair{Symbol: "000001.SH", Direction: domain.DirectionLong, OpenTime: open}},
		{"short", domain.TradePair{Symbol: "000001.SH", Direction: domain.DirectionShort, OpenTime: open}},
	}

	seen := make(map[string]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePairID(&tt.pair)

			if len(got) != 64 {
				t.Errorf("ComputePairID() length = %d, want 64", len(got))
			}
			if got2 := ComputePairID(&tt.pair); got != got2 {
				t.Errorf("ComputePairID() not deterministic: %s != %s", got, got2)
			}
			if other, dup := seen[got]; dup {
				t.Errorf("ComputePairID() collision between %s and %s", other, tt.name)
			}
			seen[got] = tt.name
		})
	}
}

func TestComputePairID_IgnoresNonKeyFields(t *testing.T) {
	open := time.Date(2020, 2, 6, 9, 45, 0, 0, time.UTC)
	a := domain.TradePair{Symbol: "A", Direction: domain.DirectionLong, OpenTime: open, PnLRatio: 0.1, TurnoverCount: 2}
	b := a
	b.TurnoverCount = 4
	b.BarsHeld = 16

	if ComputePairID(&a) != ComputePairID(&b) {
		t.Error("expected same id when only non-key fields differ")
	}
}

func TestComputePairID_SameOpenBarDistinctPairs(t *testing.T) {
	open := time.Date(2020, 2, 6, 9, 45, 0, 0, time.UTC)
	base := domain.TradePair{
		Symbol:        "000001.SH",
		Direction:     domain.DirectionLong,
		OpenTime:      open,
		CloseTime:     open.Add(time.Hour),
		EventSequence: "开多@低吸 > 平多@持有资金",
		PnLRatio:      0.01,
	}

	tests := []struct {
		name   string
		mutate func(p *domain.TradePair)
	}{
		{"close time", func(p *domain.TradePair) { p.CloseTime = open.Add(2 * time.Hour) }},
		{"event sequence", func(p *domain.TradePair) { p.EventSequence = "开多@突破 > 平多@止损" }},
		{"pnl ratio", func(p *domain.TradePair) { p.PnLRatio = -0.02 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.mutate(&other)
			if ComputePairID(&base) == ComputePairID(&other) {
				t.Errorf("expected different ids when %s differs", tt.name)
			}
		})
	}
}

func TestComputeHoldingID_IgnoresTimeOfDay(t *testing.T) {
	a := domain.PortfolioHolding{CompositionDate: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), SecurityCode: "000001.SZ"}
	b := a
	b.CompositionDate = b.CompositionDate.Add(15 * time.Hour)

	if ComputeHoldingID(&a) != ComputeHoldingID(&b) {
		t.Error("expected same id within one composition date")
	}
}
