package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestBarStore_InsertAndQuery(t *testing.T) {
	conn := setupTestDB(t)

	ctx := context.Background()
	store := NewBarStore(conn)

	bars := []*domain.Bar{
		{Symbol: "SPY", Date: day0, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1e6, VIX: ptr(18.5)},
		{Symbol: "SPY", Date: day0.AddDate(0, 0, 1), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1e6, IV: ptr(0.22), OpenInterest: ptr(4000.0)},
		{Symbol: "SPY", Date: day0.AddDate(0, 0, 2), Open: 101, High: 103, Low: 100, Close: 102, Volume: 1e6},
		{Symbol: "QQQ", Date: day0, Open: 400, High: 405, Low: 398, Close: 402, Volume: 5e5},
	}
	require.NoError(t, store.InsertBulk(ctx, bars))

	got, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].Date.Equal(day0))
	require.NotNil(t, got[0].VIX)
	assert.InDelta(t, 18.5, *got[0].VIX, 1e-9)
	assert.Nil(t, got[0].IV)
	require.NotNil(t, got[1].OpenInterest)
	assert.InDelta(t, 4000, *got[1].OpenInterest, 1e-9)
	assert.Nil(t, got[2].OptionVolume)

	ranged, err := store.GetByTimeRange(ctx, "SPY", day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	symbols, err := store.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"QQQ", "SPY"}, symbols)
}

func TestBarStore_Duplicates(t *testing.T) {
	conn := setupTestDB(t)

	ctx := context.Background()
	store := NewBarStore(conn)

	bar := &domain.Bar{Symbol: "SPY", Date: day0, Open: 100, High: 100, Low: 100, Close: 100}
	require.NoError(t, store.InsertBulk(ctx, []*domain.Bar{bar}))

	err := store.InsertBulk(ctx, []*domain.Bar{bar})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	next := &domain.Bar{Symbol: "SPY", Date: day0.AddDate(0, 0, 1), Open: 101, High: 101, Low: 101, Close: 101}
	err = store.InsertBulk(ctx, []*domain.Bar{next, next})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEquityCurveStore_InsertAndGet(t *testing.T) {
	conn := setupTestDB(t)

	ctx := context.Background()
	store := NewEquityCurveStore(conn)

	points := []*domain.EquityPoint{
		{RunID: "run-1", Date: day0, Equity: 100000, Cash: 100000},
		{RunID: "run-1", Date: day0.AddDate(0, 0, 1), Equity: 99500, Cash: 97000, ActiveTradeCount: 1, NetDelta: 48, HedgeShares: -48},
		{RunID: "run-1", Date: day0.AddDate(0, 0, 2), Equity: 97400, Cash: 97000, ActiveTradeCount: 1, TradingHalted: true},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[1].ActiveTradeCount)
	assert.InDelta(t, -48, got[1].HedgeShares, 1e-9)
	assert.True(t, got[2].TradingHalted)
	assert.False(t, got[0].TradingHalted)

	err = store.InsertBulk(ctx, points[:1])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	empty, err := store.GetByRunID(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
