package memory

import (
	"context"
	"errors"
	"testing"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/storage"
)

func closedTrade(id, pool string, entryTs int64) *domain.Trade {
	ts := entryTs + 1000
	return &domain.Trade{
		ID:               id,
		Type:             domain.TradeTypeBuy,
		Amount:           1,
		EntryPrice:       100,
		EntryTimestampMs: entryTs,
		ExitPrice:        ptr(105),
		ExitTimestampMs:  &ts,
		PoolAddress:      pool,
		Strategy:         domain.StrategyA,
		Slippage:         0.001,
	}
}

func TestClosedTradeStore_InsertAndGet(t *testing.T) {
	store := NewClosedTradeStore()
	ctx := context.Background()

	if err := store.Insert(ctx, closedTrade("t2", "pool-1", 2000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, closedTrade("t1", "pool-1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, closedTrade("t3", "pool-2", 1500)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByPool(ctx, "pool-1")
	if err != nil {
		t.Fatalf("GetByPool failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}
	if got[0].ID != "t1" || got[1].ID != "t2" {
		t.Errorf("expected entry-timestamp order, got %s, %s", got[0].ID, got[1].ID)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 trades, got %d", len(all))
	}
}

func TestClosedTradeStore_DuplicateID(t *testing.T) {
	store := NewClosedTradeStore()
	ctx := context.Background()

	if err := store.Insert(ctx, closedTrade("t1", "pool-1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, closedTrade("t1", "pool-1", 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestClosedTradeStore_RejectsOpenTrade(t *testing.T) {
	store := NewClosedTradeStore()
	ctx := context.Background()

	open := &domain.Trade{ID: "t1", Type: domain.TradeTypeBuy, EntryPrice: 100, PoolAddress: "pool-1"}
	if err := store.Insert(ctx, open); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for open trade, got %v", err)
	}
}

func TestClosedTradeStore_ReturnsCopies(t *testing.T) {
	store := NewClosedTradeStore()
	ctx := context.Background()

	if err := store.Insert(ctx, closedTrade("t1", "pool-1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, _ := store.GetByPool(ctx, "pool-1")
	got[0].EntryPrice = 0

	fresh, _ := store.GetByPool(ctx, "pool-1")
	if fresh[0].EntryPrice != 100 {
		t.Errorf("mutating a result leaked into the store: %v", fresh[0].EntryPrice)
	}
}
