package storage

import (
	"context"
	"time"

	"pair-performance-lab/internal/domain"
)

// TradePairStore provides access to trade_pairs storage.
// Pairs are keyed by idhash.ComputePairID (symbol, direction, open and close
// time, event sequence, pnl ratio).
type TradePairStore interface {
	// InsertBulk adds multiple pairs atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, pairs []domain.TradePair) error

	// GetAll retrieves all pairs, ordered by open_time ASC, symbol ASC.
	GetAll(ctx context.Context) ([]domain.TradePair, error)

	// GetByOpenTimeRange retrieves pairs opened within [start, end] (inclusive).
	GetByOpenTimeRange(ctx context.Context, start, end time.Time) ([]domain.TradePair, error)

	// GetBySymbol retrieves all pairs of one symbol, ordered by open_time ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]domain.TradePair, error)
}

// HoldingStore provides access to portfolio_holdings storage.
// Holdings are keyed by (composition_date, security_code).
type HoldingStore interface {
	// InsertBulk adds multiple holdings atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, holdings []domain.PortfolioHolding) error

	// GetAll retrieves all holdings, ordered by composition_date ASC, security_code ASC.
	GetAll(ctx context.Context) ([]domain.PortfolioHolding, error)

	// GetByDateRange retrieves holdings with composition_date within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.PortfolioHolding, error)
}

// SummaryStore provides access to pair_summaries storage.
// Records are keyed by (run_id, side, group_key, value); a run is written once.
type SummaryStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on any
	// duplicate key or when a run already has stored records.
	InsertBulk(ctx context.Context, records []*domain.SummaryRecord) error

	// GetByRun retrieves all records of a run, ordered by side, group_key, value.
	GetByRun(ctx context.Context, runID string) ([]*domain.SummaryRecord, error)
}
