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

// HoldingStore implements storage.HoldingStore using PostgreSQL.
type HoldingStore struct {
	pool *Pool
}

// NewHoldingStore creates a new HoldingStore.
func NewHoldingStore(pool *Pool) *HoldingStore {
	return &HoldingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HoldingStore = (*HoldingStore)(nil)

// InsertBulk adds multiple holdings atomically. Fails entire batch on any duplicate.
// Uses CopyFrom; a unique violation aborts the whole copy.
func (s *HoldingStore) InsertBulk(ctx context.Context, holdings []domain.PortfolioHolding) error {
	if len(holdings) == 0 {
		return nil
	}

	rows := make([][]any, len(holdings))
	for i := range holdings {
		h := &holdings[i]
		if err := h.Validate(); err != nil {
			return storage.ErrInvalidInput
		}
		rows[i] = []any{idhash.ComputeHoldingID(h), h.CompositionDate.UTC(), h.SecurityCode, h.Weight}
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"portfolio_holdings"},
		[]string{"holding_id", "composition_date", "security_code", "weight"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return writeError("copy portfolio holdings", err)
	}
	return nil
}

// GetAll retrieves all holdings, ordered by composition_date ASC, security_code ASC.
func (s *HoldingStore) GetAll(ctx context.Context) ([]domain.PortfolioHolding, error) {
	query := `
		SELECT composition_date, security_code, weight
		FROM portfolio_holdings
		ORDER BY composition_date ASC, security_code ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all portfolio holdings: %w", err)
	}
	defer rows.Close()

	return scanHoldings(rows)
}

// GetByDateRange retrieves holdings with composition_date within [start, end] (inclusive).
func (s *HoldingStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.PortfolioHolding, error) {
	query := `
		SELECT composition_date, security_code, weight
		FROM portfolio_holdings
		WHERE composition_date >= $1 AND composition_date <= $2
		ORDER BY composition_date ASC, security_code ASC
	`

	rows, err := s.pool.Query(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("get portfolio holdings by date range: %w", err)
	}
	defer rows.Close()

	return scanHoldings(rows)
}

func scanHoldings(rows pgx.Rows) ([]domain.PortfolioHolding, error) {
	var holdings []domain.PortfolioHolding
	for rows.Next() {
		var h domain.PortfolioHolding
		if err := rows.Scan(&h.CompositionDate, &h.SecurityCode, &h.Weight); err != nil {
			return nil, fmt.Errorf("scan portfolio holding row: %w", err)
		}
		h.CompositionDate = h.CompositionDate.UTC()
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio holding rows: %w", err)
	}

	return holdings, nil
}
