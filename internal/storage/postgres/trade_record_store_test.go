package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

var entryDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func createTestTradeRecord(runID, tradeID, profile string, entry time.Time) *domain.TradeRecord {
	return &domain.TradeRecord{
		TradeID:     tradeID,
		RunID:       runID,
		ProfileName: profile,
		Kind:        "multi_leg",
		Symbol:      "SPY",
		Legs: []domain.LegRecord{
			{Strike: 105, OptionType: "call", Quantity: -5, Expiry: entry.AddDate(0, 0, 30), EntryPrice: 1.20, ExitPrice: 0.40, Status: "closed"},
			{Strike: 95, OptionType: "put", Quantity: -5, Expiry: entry.AddDate(0, 0, 30), EntryPrice: 1.10, ExitPrice: 0.35, Status: "closed"},
		},
		EntryDate:       entry,
		EntryCost:       -1150,
		EntryCommission: 6.5,
		ExitDate:        entry.AddDate(0, 0, 12),
		ExitProceeds:    -375,
		ExitCommission:  6.5,
		ExitReason:      domain.ExitReasonStrategy,
		RealizedPnL:     762,
		HoldDays:        12,
	}
}

func TestTradeRecordStore_InsertAndGetByID(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewTradeRecordStore(pool)

	trade := createTestTradeRecord("run-1", "short_strangle-1", domain.ProfileShortStrangle, entryDay)
	require.NoError(t, store.Insert(ctx, trade))

	retrieved, err := store.GetByID(ctx, "run-1", "short_strangle-1")
	require.NoError(t, err)

	assert.Equal(t, trade.TradeID, retrieved.TradeID)
	assert.Equal(t, trade.RunID, retrieved.RunID)
	assert.Equal(t, trade.ProfileName, retrieved.ProfileName)
	assert.Equal(t, trade.Kind, retrieved.Kind)
	assert.True(t, trade.EntryDate.Equal(retrieved.EntryDate))
	assert.True(t, trade.ExitDate.Equal(retrieved.ExitDate))
	assert.InDelta(t, trade.EntryCost, retrieved.EntryCost, 0.0001)
	assert.InDelta(t, trade.RealizedPnL, retrieved.RealizedPnL, 0.0001)
	assert.Equal(t, trade.ExitReason, retrieved.ExitReason)
	assert.Equal(t, trade.HoldDays, retrieved.HoldDays)

	require.Len(t, retrieved.Legs, 2)
	assert.Equal(t, -5, retrieved.Legs[0].Quantity)
	assert.Equal(t, "put", retrieved.Legs[1].OptionType)
	assert.InDelta(t, 0.35, retrieved.Legs[1].ExitPrice, 0.0001)
}

func TestTradeRecordStore_DuplicateKey(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewTradeRecordStore(pool)

	trade := createTestTradeRecord("run-1", "long_call-1", domain.ProfileLongCall, entryDay)
	require.NoError(t, store.Insert(ctx, trade))

	err := store.Insert(ctx, trade)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Trade ids only need to be unique within a run
	other := createTestTradeRecord("run-2", "long_call-1", domain.ProfileLongCall, entryDay)
	assert.NoError(t, store.Insert(ctx, other))
}

func TestTradeRecordStore_NotFound(t *testing.T) {
	pool := setupTestDB(t)

	store := NewTradeRecordStore(pool)

	_, err := store.GetByID(context.Background(), "run-1", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTradeRecordStore_InsertBulkAndQueries(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewTradeRecordStore(pool)

	trades := []*domain.TradeRecord{
		createTestTradeRecord("run-1", "t2", domain.ProfileShortStrangle, entryDay.AddDate(0, 0, 2)),
		createTestTradeRecord("run-1", "t1", domain.ProfileShortStrangle, entryDay.AddDate(0, 0, 1)),
		createTestTradeRecord("run-2", "t3", domain.ProfileShortStrangle, entryDay),
		createTestTradeRecord("run-2", "t4", domain.ProfileLongCall, entryDay),
	}
	require.NoError(t, store.InsertBulk(ctx, trades))

	byRun, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, byRun, 2)
	assert.Equal(t, "t1", byRun[0].TradeID)
	assert.Equal(t, "t2", byRun[1].TradeID)

	byProfile, err := store.GetByProfile(ctx, domain.ProfileShortStrangle)
	require.NoError(t, err)
	require.Len(t, byProfile, 3)
	assert.Equal(t, "t3", byProfile[0].TradeID)
}

func TestTradeRecordStore_InsertBulkRollsBack(t *testing.T) {
	pool := setupTestDB(t)

	ctx := context.Background()
	store := NewTradeRecordStore(pool)

	existing := createTestTradeRecord("run-1", "t1", domain.ProfileLongCall, entryDay)
	require.NoError(t, store.Insert(ctx, existing))

	err := store.InsertBulk(ctx, []*domain.TradeRecord{
		createTestTradeRecord("run-1", "t2", domain.ProfileLongCall, entryDay.AddDate(0, 0, 1)),
		existing,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed batch must not leave partial rows")
}
