package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/idhash"
	"pair-performance-lab/internal/storage"
)

// HoldingStore is an in-memory implementation of storage.HoldingStore.
type HoldingStore struct {
	mu   sync.RWMutex
	data map[string]domain.PortfolioHolding // keyed by holding_id
}

// NewHoldingStore creates a new in-memory holding store.
func NewHoldingStore() *HoldingStore {
	return &HoldingStore{
		data: make(map[string]domain.PortfolioHolding),
	}
}

// InsertBulk adds multiple holdings atomically. Fails entire batch on any duplicate.
func (s *HoldingStore) InsertBulk(_ context.Context, holdings []domain.PortfolioHolding) error {
	if len(holdings) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(holdings))
	batchKeys := make(map[string]struct{}, len(holdings))
	for i := range holdings {
		if err := holdings[i].Validate(); err != nil {
			return storage.ErrInvalidInput
		}
		id := idhash.ComputeHoldingID(&holdings[i])
		if _, exists := s.data[id]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[id]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[id] = struct{}{}
		ids[i] = id
	}

	for i, id := range ids {
		s.data[id] = holdings[i]
	}
	return nil
}

// GetAll retrieves all holdings, ordered by composition_date ASC, security_code ASC.
func (s *HoldingStore) GetAll(_ context.Context) ([]domain.PortfolioHolding, error) {
	return s.filter(func(domain.PortfolioHolding) bool { return true }), nil
}

// GetByDateRange retrieves holdings with composition_date within [start, end] (inclusive).
func (s *HoldingStore) GetByDateRange(_ context.Context, start, end time.Time) ([]domain.PortfolioHolding, error) {
	return s.filter(func(h domain.PortfolioHolding) bool {
		return !h.CompositionDate.Before(start) && !h.CompositionDate.After(end)
	}), nil
}

func (s *HoldingStore) filter(keep func(domain.PortfolioHolding) bool) []domain.PortfolioHolding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PortfolioHolding
	for _, h := range s.data {
		if keep(h) {
			result = append(result, h)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CompositionDate.Equal(result[j].CompositionDate) {
			return result[i].CompositionDate.Before(result[j].CompositionDate)
		}
		return result[i].SecurityCode < result[j].SecurityCode
	})
	return result
}

var _ storage.HoldingStore = (*HoldingStore)(nil)
