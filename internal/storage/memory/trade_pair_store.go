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

// TradePairStore is an in-memory implementation of storage.TradePairStore.
type TradePairStore struct {
	mu   sync.RWMutex
	data map[string]domain.TradePair // keyed by pair_id
}

// NewTradePairStore creates a new in-memory trade pair store.
func NewTradePairStore() *TradePairStore {
	return &TradePairStore{
		data: make(map[string]domain.TradePair),
	}
}

// InsertBulk adds multiple pairs atomically. Fails entire batch on any duplicate.
func (s *TradePairStore) InsertBulk(_ context.Context, pairs []domain.TradePair) error {
	if len(pairs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate and check for duplicates (existing + intra-batch)
	ids := make([]string, len(pairs))
	batchKeys := make(map[string]struct{}, len(pairs))
	for i := range pairs {
		if err := pairs[i].Validate(); err != nil {
			return storage.ErrInvalidInput
		}
		id := idhash.ComputePairID(&pairs[i])
		if _, exists := s.data[id]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[id]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[id] = struct{}{}
		ids[i] = id
	}

	// Second pass: insert all
	for i, id := range ids {
		s.data[id] = pairs[i]
	}
	return nil
}

// GetAll retrieves all pairs, ordered by open_time ASC, symbol ASC.
func (s *TradePairStore) GetAll(_ context.Context) ([]domain.TradePair, error) {
	return s.filter(func(domain.TradePair) bool { return true }), nil
}

// GetByOpenTimeRange retrieves pairs opened within [start, end] (inclusive).
func (s *TradePairStore) GetByOpenTimeRange(_ context.Context, start, end time.Time) ([]domain.TradePair, error) {
	return s.filter(func(p domain.TradePair) bool {
		return !p.OpenTime.Before(start) && !p.OpenTime.After(end)
	}), nil
}

// GetBySymbol retrieves all pairs of one symbol, ordered by open_time ASC.
func (s *TradePairStore) GetBySymbol(_ context.Context, symbol string) ([]domain.TradePair, error) {
	return s.filter(func(p domain.TradePair) bool { return p.Symbol == symbol }), nil
}

func (s *TradePairStore) filter(keep func(domain.TradePair) bool) []domain.TradePair {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.TradePair
	for _, p := range s.data {
		if keep(p) {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].OpenTime.Equal(result[j].OpenTime) {
			return result[i].OpenTime.Before(result[j].OpenTime)
		}
		if result[i].Symbol != result[j].Symbol {
			return result[i].Symbol < result[j].Symbol
		}
		return result[i].Direction < result[j].Direction
	})
	return result
}

var _ storage.TradePairStore = (*TradePairStore)(nil)
