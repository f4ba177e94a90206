package clickhouse

import (
	"context"
	"fmt"
	"time"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using ClickHouse.
type SummaryStore struct {
	conn *Conn
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(conn *Conn) *SummaryStore {
	return &SummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

const summaryColumns = `
	run_id, workflow, side, group_key, group_value,
	start_time, end_time, symbol_count, trade_count,
	avg_days_held, avg_bars_held, avg_pnl_ratio, pnl_ratio_std,
	max_pnl_ratio, min_pnl_ratio, win_rate,
	per_trade_gain_loss_ratio, cumulative_gain_loss_ratio, score, edge,
	break_even_point, open_day_break_even_point,
	return_per_calendar_day, return_per_bar, created_at
`

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SummaryStore) InsertBulk(ctx context.Context, records []*domain.SummaryRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(records))
	runs := make(map[string]struct{})
	for _, r := range records {
		if r == nil || r.RunID == "" || r.Side == "" || r.GroupKey == "" {
			return storage.ErrInvalidInput
		}
		key := r.RunID + "|" + r.Side + "|" + r.GroupKey + "|" + r.Value
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
		runs[r.RunID] = struct{}{}
	}

	// Runs are written once; any existing row of a run means a replay
	for runID := range runs {
		exists, err := s.runExists(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO pair_summaries (`+summaryColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		err = batch.Append(
			r.RunID, r.Workflow, r.Side, r.GroupKey, r.Value,
			r.StartTime, r.EndTime, uint32(r.SymbolCount), uint32(r.TradeCount),
			r.AvgDaysHeld, r.AvgBarsHeld, r.AvgPnLRatio, r.PnLRatioStd,
			r.MaxPnLRatio, r.MinPnLRatio, r.WinRate,
			r.PerTradeGainLossRatio, r.CumulativeGainLossRatio, r.Score, r.Edge,
			r.BreakEvenPoint, r.OpenDayBreakEvenPoint,
			r.ReturnPerCalendarDay, r.ReturnPerBar, createdAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all records of a run, ordered by side, group_key, value.
func (s *SummaryStore) GetByRun(ctx context.Context, runID string) ([]*domain.SummaryRecord, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM pair_summaries FINAL
		WHERE run_id = ?
		ORDER BY side ASC, group_key ASC, group_value ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanSummaryRecords(rows)
}

// runExists checks if any record of runID exists.
func (s *SummaryStore) runExists(ctx context.Context, runID string) (bool, error) {
	query := `SELECT count(*) FROM pair_summaries FINAL WHERE run_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanSummaryRecords(rows chRows) ([]*domain.SummaryRecord, error) {
	var records []*domain.SummaryRecord

	for rows.Next() {
		var (
			r                       domain.SummaryRecord
			symbolCount, tradeCount uint32
		)
		err := rows.Scan(
			&r.RunID, &r.Workflow, &r.Side, &r.GroupKey, &r.Value,
			&r.StartTime, &r.EndTime, &symbolCount, &tradeCount,
			&r.AvgDaysHeld, &r.AvgBarsHeld, &r.AvgPnLRatio, &r.PnLRatioStd,
			&r.MaxPnLRatio, &r.MinPnLRatio, &r.WinRate,
			&r.PerTradeGainLossRatio, &r.CumulativeGainLossRatio, &r.Score, &r.Edge,
			&r.BreakEvenPoint, &r.OpenDayBreakEvenPoint,
			&r.ReturnPerCalendarDay, &r.ReturnPerBar, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		r.SymbolCount = int(symbolCount)
		r.TradeCount = int(tradeCount)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}

	return records, nil
}
