package sqlite

import (
	"context"
	"fmt"
	"time"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/idhash"
	"pair-performance-lab/internal/storage"
)

// HoldingStore implements storage.HoldingStore using SQLite.
// Composition dates are stored as YYYY-MM-DD text, which sorts chronologically.
type HoldingStore struct {
	db *DB
}

// NewHoldingStore creates a new HoldingStore.
func NewHoldingStore(db *DB) *HoldingStore {
	return &HoldingStore{db: db}
}

var _ storage.HoldingStore = (*HoldingStore)(nil)

// InsertBulk adds multiple holdings atomically. Fails entire batch on any duplicate.
func (s *HoldingStore) InsertBulk(ctx context.Context, holdings []domain.PortfolioHolding) error {
	if len(holdings) == 0 {
		return nil
	}
	for i := range holdings {
		if err := holdings[i].Validate(); err != nil {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO portfolio_holdings (holding_id, composition_date, security_code, weight)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range holdings {
		h := &holdings[i]
		_, err := stmt.ExecContext(ctx,
			idhash.ComputeHoldingID(h), string(domain.DateOf(h.CompositionDate)), h.SecurityCode, h.Weight,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert portfolio holding in bulk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all holdings, ordered by composition_date ASC, security_code ASC.
func (s *HoldingStore) GetAll(ctx context.Context) ([]domain.PortfolioHolding, error) {
	return s.query(ctx, `
		SELECT composition_date, security_code, weight FROM portfolio_holdings
		ORDER BY composition_date ASC, security_code ASC
	`)
}

// GetByDateRange retrieves holdings with composition_date within [start, end] (inclusive).
func (s *HoldingStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]domain.PortfolioHolding, error) {
	return s.query(ctx, `
		SELECT composition_date, security_code, weight FROM portfolio_holdings
		WHERE composition_date >= ? AND composition_date <= ?
		ORDER BY composition_date ASC, security_code ASC
	`, string(domain.DateOf(start)), string(domain.DateOf(end)))
}

func (s *HoldingStore) query(ctx context.Context, query string, args ...any) ([]domain.PortfolioHolding, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query portfolio holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.PortfolioHolding
	for rows.Next() {
		var (
			h    domain.PortfolioHolding
			date string
		)
		if err := rows.Scan(&date, &h.SecurityCode, &h.Weight); err != nil {
			return nil, fmt.Errorf("scan portfolio holding row: %w", err)
		}
		t, err := domain.Date(date).Time()
		if err != nil {
			return nil, fmt.Errorf("parse composition_date: %w", err)
		}
		h.CompositionDate = t
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio holding rows: %w", err)
	}
	return holdings, nil
}
