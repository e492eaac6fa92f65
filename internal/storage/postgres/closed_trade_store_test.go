package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/storage"
)

func testTrade(id, pool string, entryTs int64) *domain.Trade {
	return &domain.Trade{
		ID:               id,
		Type:             domain.TradeTypeBuy,
		Amount:           1.5,
		EntryPrice:       100.25,
		EntryTimestampMs: entryTs,
		ExitPrice:        ptr(105.5),
		ExitTimestampMs:  ptr(entryTs + 5000),
		PoolAddress:      pool,
		Strategy:         domain.StrategyA,
		Slippage:         0.001,
	}
}

func TestClosedTradeStore_InsertAndGetByPool(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosedTradeStore(pool)

	trade := testTrade("trade-1", "pool-A", 1700000000000)
	require.NoError(t, store.Insert(ctx, trade))

	trades, err := store.GetByPool(ctx, "pool-A")
	require.NoError(t, err)

	require.Len(t, trades, 1)
	got := trades[0]
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, trade.Type, got.Type)
	assert.Equal(t, trade.Strategy, got.Strategy)
	assert.Equal(t, trade.PoolAddress, got.PoolAddress)
	assert.Equal(t, trade.EntryTimestampMs, got.EntryTimestampMs)
	assert.InDelta(t, trade.Amount, got.Amount, 1e-9)
	assert.InDelta(t, trade.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, trade.Slippage, got.Slippage, 1e-9)
	require.NotNil(t, got.ExitPrice)
	assert.InDelta(t, *trade.ExitPrice, *got.ExitPrice, 1e-9)
	require.NotNil(t, got.ExitTimestampMs)
	assert.Equal(t, *trade.ExitTimestampMs, *got.ExitTimestampMs)
	// PnL is recomputed from the scanned prices.
	assert.InDelta(t, trade.PnL(), got.PnL(), 1e-9)
}

func TestClosedTradeStore_DuplicateID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosedTradeStore(pool)

	require.NoError(t, store.Insert(ctx, testTrade("trade-1", "pool-A", 1700000000000)))

	err := store.Insert(ctx, testTrade("trade-1", "pool-B", 1700000001000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestClosedTradeStore_RejectsOpenTrade(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosedTradeStore(pool)

	open := &domain.Trade{
		ID:               "trade-open",
		Type:             domain.TradeTypeBuy,
		Amount:           1,
		EntryPrice:       100,
		EntryTimestampMs: 1700000000000,
		PoolAddress:      "pool-A",
		Strategy:         domain.StrategyA,
	}
	err := store.Insert(ctx, open)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestClosedTradeStore_GetAllOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosedTradeStore(pool)

	require.NoError(t, store.Insert(ctx, testTrade("trade-b", "pool-A", 1700000002000)))
	require.NoError(t, store.Insert(ctx, testTrade("trade-a", "pool-B", 1700000001000)))
	require.NoError(t, store.Insert(ctx, testTrade("trade-c", "pool-A", 1700000001000)))

	trades, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	// Entry timestamp ASC, then trade ID ASC.
	assert.Equal(t, "trade-a", trades[0].ID)
	assert.Equal(t, "trade-c", trades[1].ID)
	assert.Equal(t, "trade-b", trades[2].ID)
}

func TestClosedTradeStore_GetByPoolEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewClosedTradeStore(pool)

	trades, err := store.GetByPool(ctx, "no-such-pool")
	require.NoError(t, err)
	assert.Empty(t, trades)
}
