package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SummaryRecord // keyed by composite key
	runs map[string]struct{}              // run ids with stored records
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		data: make(map[string]*domain.SummaryRecord),
		runs: make(map[string]struct{}),
	}
}

// summaryKey generates a unique key for a record.
func summaryKey(r *domain.SummaryRecord) string {
	return fmt.Sprintf("%s|%s|%s|%s", r.RunID, r.Side, r.GroupKey, r.Value)
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SummaryStore) InsertBulk(_ context.Context, records []*domain.SummaryRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RunID == "" || r.Side == "" || r.GroupKey == "" {
			return storage.ErrInvalidInput
		}
		if _, stored := s.runs[r.RunID]; stored {
			return storage.ErrDuplicateKey
		}
		key := summaryKey(r)
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		recCopy := *r
		s.data[summaryKey(r)] = &recCopy
		s.runs[r.RunID] = struct{}{}
	}
	return nil
}

// GetByRun retrieves all records of a run, ordered by side, group_key, value.
func (s *SummaryStore) GetByRun(_ context.Context, runID string) ([]*domain.SummaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SummaryRecord
	for _, r := range s.data {
		if r.RunID == runID {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Side != result[j].Side {
			return result[i].Side < result[j].Side
		}
		if result[i].GroupKey != result[j].GroupKey {
			return result[i].GroupKey < result[j].GroupKey
		}
		return result[i].Value < result[j].Value
	})
	return result, nil
}

var _ storage.SummaryStore = (*SummaryStore)(nil)
