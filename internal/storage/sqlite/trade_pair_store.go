package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/idhash"
	"pair-performance-lab/internal/storage"
)

// TradePairStore implements storage.TradePairStore using SQLite.
// Times are stored as UTC unix milliseconds, decimals as their exact string form.
type TradePairStore struct {
	db *DB
}

// NewTradePairStore creates a new TradePairStore.
func NewTradePairStore(db *DB) *TradePairStore {
	return &TradePairStore{db: db}
}

var _ storage.TradePairStore = (*TradePairStore)(nil)

const tradePairColumns = `
	symbol, direction, max_position,
	open_time, cumulative_open, close_time, cumulative_close,
	turnover_count, bars_held, days_held, event_sequence,
	pnl_amount, trade_pnl, pnl_ratio
`

// InsertBulk adds multiple pairs atomically. Fails entire batch on any duplicate.
func (s *TradePairStore) InsertBulk(ctx context.Context, pairs []domain.TradePair) error {
	if len(pairs) == 0 {
		return nil
	}
	for i := range pairs {
		if err := pairs[i].Validate(); err != nil {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_pairs (pair_id, `+tradePairColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range pairs {
		p := &pairs[i]
		_, err := stmt.ExecContext(ctx,
			idhash.ComputePairID(p),
			p.Symbol, string(p.Direction), p.MaxPosition,
			p.OpenTime.UnixMilli(), p.CumulativeOpen.String(),
			p.CloseTime.UnixMilli(), p.CumulativeClose.String(),
			p.TurnoverCount, p.BarsHeld, p.DaysHeld, p.EventSequence,
			p.PnLAmount.String(), p.TradePnL, p.PnLRatio,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade pair in bulk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all pairs, ordered by open_time ASC, symbol ASC.
func (s *TradePairStore) GetAll(ctx context.Context) ([]domain.TradePair, error) {
	return s.query(ctx, `
		SELECT `+tradePairColumns+` FROM trade_pairs
		ORDER BY open_time ASC, symbol ASC, direction ASC
	`)
}

// GetByOpenTimeRange retrieves pairs opened within [start, end] (inclusive).
func (s *TradePairStore) GetByOpenTimeRange(ctx context.Context, start, end time.Time) ([]domain.TradePair, error) {
	return s.query(ctx, `
		SELECT `+tradePairColumns+` FROM trade_pairs
		WHERE open_time >= ? AND open_time <= ?
		ORDER BY open_time ASC, symbol ASC, direction ASC
	`, start.UnixMilli(), end.UnixMilli())
}

// GetBySymbol retrieves all pairs of one symbol, ordered by open_time ASC.
func (s *TradePairStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.TradePair, error) {
	return s.query(ctx, `
		SELECT `+tradePairColumns+` FROM trade_pairs
		WHERE symbol = ?
		ORDER BY open_time ASC, direction ASC
	`, symbol)
}

func (s *TradePairStore) query(ctx context.Context, query string, args ...any) ([]domain.TradePair, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade pairs: %w", err)
	}
	defer rows.Close()

	return scanTradePairs(rows)
}

func scanTradePairs(rows *sql.Rows) ([]domain.TradePair, error) {
	var pairs []domain.TradePair
	for rows.Next() {
		var (
			p                      domain.TradePair
			direction              string
			openMs, closeMs        int64
			cumOpen, cumClose, pnl string
		)
		err := rows.Scan(
			&p.Symbol, &direction, &p.MaxPosition,
			&openMs, &cumOpen, &closeMs, &cumClose,
			&p.TurnoverCount, &p.BarsHeld, &p.DaysHeld, &p.EventSequence,
			&pnl, &p.TradePnL, &p.PnLRatio,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade pair row: %w", err)
		}
		p.Direction = domain.Direction(direction)
		p.OpenTime = time.UnixMilli(openMs).UTC()
		p.CloseTime = time.UnixMilli(closeMs).UTC()
		if p.CumulativeOpen, err = decimal.NewFromString(cumOpen); err != nil {
			return nil, fmt.Errorf("parse cumulative_open: %w", err)
		}
		if p.CumulativeClose, err = decimal.NewFromString(cumClose); err != nil {
			return nil, fmt.Errorf("parse cumulative_close: %w", err)
		}
		if p.PnLAmount, err = decimal.NewFromString(pnl); err != nil {
			return nil, fmt.Errorf("parse pnl_amount: %w", err)
		}
		pairs = append(pairs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade pair rows: %w", err)
	}
	return pairs, nil
}
