package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/storage"
	"pair-performance-lab/internal/storage/clickhouse"
)

func createTestRecord(runID, side, key, value string) *domain.SummaryRecord {
	start := time.Date(2020, 1, 2, 9, 30, 0, 0, time.UTC)
	end := time.Date(2020, 1, 10, 15, 0, 0, 0, time.UTC)
	return &domain.SummaryRecord{
		RunID:    runID,
		Workflow: domain.WorkflowDates,
		Side:     side,
		GroupKey: key,
		Value:    value,
		Summary: domain.Summary{
			StartTime:               &start,
			EndTime:                 &end,
			SymbolCount:             2,
			TradeCount:              4,
			AvgPnLRatio:             0.0125,
			WinRate:                 0.75,
			PerTradeGainLossRatio:   2.5,
			CumulativeGainLossRatio: 5,
			Score:                   3.75,
			BreakEvenPoint:          0.5,
		},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSummaryStore_InsertBulkAndGetByRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := clickhouse.NewSummaryStore(conn)

	records := []*domain.SummaryRecord{
		createTestRecord("run-1", domain.SideFiltered, "symbol", "000001.SZ"),
		createTestRecord("run-1", domain.SideBaseline, domain.GroupKeyOverall, ""),
	}
	empty := createTestRecord("run-1", domain.SideBaseline, "symbol", "000009.SZ")
	empty.Summary = domain.Summary{}
	records = append(records, empty)

	require.NoError(t, store.InsertBulk(ctx, records))

	got, err := store.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.SideBaseline, got[0].Side)
	assert.Equal(t, domain.GroupKeyOverall, got[0].GroupKey)
	assert.Equal(t, 4, got[0].TradeCount)
	assert.InDelta(t, 0.75, got[0].WinRate, 1e-12)
	require.NotNil(t, got[0].StartTime)
	assert.True(t, records[1].StartTime.Equal(*got[0].StartTime))

	assert.Equal(t, "000009.SZ", got[1].Value)
	assert.Nil(t, got[1].StartTime, "empty summary keeps null times")
	assert.Zero(t, got[1].TradeCount)

	assert.Equal(t, domain.SideFiltered, got[2].Side)
}

func TestSummaryStore_DuplicateRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := clickhouse.NewSummaryStore(conn)

	rec := createTestRecord("run-1", domain.SideBaseline, domain.GroupKeyOverall, "")
	require.NoError(t, store.InsertBulk(ctx, []*domain.SummaryRecord{rec}))

	other := createTestRecord("run-1", domain.SideFiltered, domain.GroupKeyOverall, "")
	assert.ErrorIs(t, store.InsertBulk(ctx, []*domain.SummaryRecord{other}), storage.ErrDuplicateKey)
}

func TestSummaryStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := clickhouse.NewSummaryStore(conn)

	rec := createTestRecord("run-2", domain.SideBaseline, "symbol", "000001.SZ")
	err := store.InsertBulk(ctx, []*domain.SummaryRecord{rec, rec})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}
