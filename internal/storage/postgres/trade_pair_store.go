package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/idhash"
	"pair-performance-lab/internal/storage"
)

// TradePairStore implements storage.TradePairStore using PostgreSQL.
type TradePairStore struct {
	pool *Pool
}

// NewTradePairStore creates a new TradePairStore.
func NewTradePairStore(pool *Pool) *TradePairStore {
	return &TradePairStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradePairStore = (*TradePairStore)(nil)

const tradePairColumns = `
	symbol, direction, max_position,
	open_time, cumulative_open, close_time, cumulative_close,
	turnover_count, bars_held, days_held, event_sequence,
	pnl_amount, trade_pnl, pnl_ratio
`

// InsertBulk adds multiple pairs atomically in one batch. Fails entire batch on any duplicate.
func (s *TradePairStore) InsertBulk(ctx context.Context, pairs []domain.TradePair) error {
	if len(pairs) == 0 {
		return nil
	}
	for i := range pairs {
		if err := pairs[i].Validate(); err != nil {
			return storage.ErrInvalidInput
		}
	}

	query := `
		INSERT INTO trade_pairs (pair_id, ` + tradePairColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range pairs {
			p := &pairs[i]
			batch.Queue(query,
				idhash.ComputePairID(p),
				p.Symbol, string(p.Direction), p.MaxPosition,
				p.OpenTime.UTC(), p.CumulativeOpen, p.CloseTime.UTC(), p.CumulativeClose,
				p.TurnoverCount, p.BarsHeld, p.DaysHeld, p.EventSequence,
				p.PnLAmount, p.TradePnL, p.PnLRatio,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range pairs {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return writeError("insert trade pair", err)
			}
		}
		return br.Close()
	})
}

// GetAll retrieves all pairs, ordered by open_time ASC, symbol ASC.
func (s *TradePairStore) GetAll(ctx context.Context) ([]domain.TradePair, error) {
	query := `
		SELECT ` + tradePairColumns + `
		FROM trade_pairs
		ORDER BY open_time ASC, symbol ASC, direction ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all trade pairs: %w", err)
	}
	defer rows.Close()

	return scanTradePairs(rows)
}

// GetByOpenTimeRange retrieves pairs opened within [start, end] (inclusive).
func (s *TradePairStore) GetByOpenTimeRange(ctx context.Context, start, end time.Time) ([]domain.TradePair, error) {
	query := `
		SELECT ` + tradePairColumns + `
		FROM trade_pairs
		WHERE open_time >= $1 AND open_time <= $2
		ORDER BY open_time ASC, symbol ASC, direction ASC
	`

	rows, err := s.pool.Query(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("get trade pairs by open time range: %w", err)
	}
	defer rows.Close()

	return scanTradePairs(rows)
}

// GetBySymbol retrieves all pairs of one symbol, ordered by open_time ASC.
func (s *TradePairStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.TradePair, error) {
	query := `
		SELECT ` + tradePairColumns + `
		FROM trade_pairs
		WHERE symbol = $1
		ORDER BY open_time ASC, direction ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get trade pairs by symbol: %w", err)
	}
	defer rows.Close()

	return scanTradePairs(rows)
}

func scanTradePairs(rows pgx.Rows) ([]domain.TradePair, error) {
	var pairs []domain.TradePair
	for rows.Next() {
		var (
			p         domain.TradePair
			direction string
		)
		err := rows.Scan(
			&p.Symbol, &direction, &p.MaxPosition,
			&p.OpenTime, &p.CumulativeOpen, &p.CloseTime, &p.CumulativeClose,
			&p.TurnoverCount, &p.BarsHeld, &p.DaysHeld, &p.EventSequence,
			&p.PnLAmount, &p.TradePnL, &p.PnLRatio,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade pair row: %w", err)
		}
		p.Direction = domain.Direction(direction)
		p.OpenTime = p.OpenTime.UTC()
		p.CloseTime = p.CloseTime.UTC()
		pairs = append(pairs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade pair rows: %w", err)
	}

	return pairs, nil
}
