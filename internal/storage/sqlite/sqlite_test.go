package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pair-performance-lab/internal/domain"
	"pair-performance-lab/internal/storage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "pairs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testPair(symbol string, open time.Time, ratio float64) domain.TradePair {
	return domain.TradePair{
		Symbol:          symbol,
		Direction:       domain.DirectionShort,
		MaxPosition:     1,
		OpenTime:        open,
		CumulativeOpen:  decimal.RequireFromString("2765.350098"),
		CloseTime:       open.Add(23 * time.Hour),
		CumulativeClose: decimal.RequireFromString("2721.335938"),
		TurnoverCount:   2,
		BarsHeld:        12,
		DaysHeld:        0.958333,
		EventSequence:   "开空 > 平空",
		PnLAmount:       decimal.RequireFromString("-44.014160"),
		PnLRatio:        ratio,
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewTradePairStore(db).InsertBulk(ctx, []domain.TradePair{
		testPair("000001.SH", time.Date(2020, 4, 1, 10, 45, 0, 0, time.UTC), -0.0159),
	}))
	require.NoError(t, db.Close())

	// Schema is reapplied idempotently and data survives
	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewTradePairStore(db).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTradePairStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTradePairStore(openTestDB(t))

	open := time.Date(2020, 4, 1, 10, 45, 0, 0, time.UTC)
	want := testPair("000001.SH", open, -0.0159)
	require.NoError(t, store.InsertBulk(ctx, []domain.TradePair{want}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, want.Symbol, p.Symbol)
	assert.Equal(t, domain.DirectionShort, p.Direction)
	assert.True(t, open.Equal(p.OpenTime))
	assert.True(t, want.CloseTime.Equal(p.CloseTime))
	assert.True(t, want.CumulativeOpen.Equal(p.CumulativeOpen))
	assert.True(t, want.PnLAmount.Equal(p.PnLAmount))
	assert.Equal(t, want.EventSequence, p.EventSequence)
	assert.Equal(t, -0.0159, p.PnLRatio)
}

func TestTradePairStore_DuplicateRollsBackBatch(t *testing.T) {
	ctx := context.Background()
	store := NewTradePairStore(openTestDB(t))

	open := time.Date(2020, 4, 1, 10, 45, 0, 0, time.UTC)
	batch := []domain.TradePair{
		testPair("000001.SH", open, 0.01),
		testPair("000002.SH", open, 0.02),
		testPair("000001.SH", open, 0.01),
	}
	assert.ErrorIs(t, store.InsertBulk(ctx, batch), storage.ErrDuplicateKey)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTradePairStore_Queries(t *testing.T) {
	ctx := context.Background()
	store := NewTradePairStore(openTestDB(t))

	base := time.Date(2020, 1, 2, 10, 0, 0, 0, time.UTC)
	pairs := []domain.TradePair{
		testPair("000002.SH", base, 0.01),
		testPair("000001.SH", base, 0.02),
		testPair("000001.SH", base.Add(48*time.Hour), 0.03),
	}
	require.NoError(t, store.InsertBulk(ctx, pairs))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "000001.SH", all[0].Symbol)
	assert.Equal(t, "000002.SH", all[1].Symbol)

	ranged, err := store.GetByOpenTimeRange(ctx, base, base)
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	bySymbol, err := store.GetBySymbol(ctx, "000001.SH")
	require.NoError(t, err)
	require.Len(t, bySymbol, 2)
	assert.Equal(t, 0.03, bySymbol[1].PnLRatio)
}

func TestHoldingStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewHoldingStore(openTestDB(t))

	d1 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)
	holdings := []domain.PortfolioHolding{
		{CompositionDate: d2, SecurityCode: "000001.SZ", Weight: 0.3},
		{CompositionDate: d1, SecurityCode: "000001.SZ", Weight: 0.001232},
	}
	require.NoError(t, store.InsertBulk(ctx, holdings))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, d1.Equal(all[0].CompositionDate))
	assert.Equal(t, 0.001232, all[0].Weight)

	ranged, err := store.GetByDateRange(ctx, d2, d2.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.True(t, d2.Equal(ranged[0].CompositionDate))

	assert.ErrorIs(t, store.InsertBulk(ctx, holdings[:1]), storage.ErrDuplicateKey)
}
