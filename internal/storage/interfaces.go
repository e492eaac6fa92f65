// Package storage defines the analytics sinks the engine writes to.
// Sinks are write-mostly and append-only; nothing here is ever read
// back to restore ledger state.
package storage

import (
	"context"

	"pool-signal-lab/internal/domain"
)

// SlopePointStore provides access to slope_points storage.
type SlopePointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (pool_address, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.SlopePoint) error

	// GetByPool retrieves all points for a pool, ordered by timestamp ASC.
	GetByPool(ctx context.Context, poolAddress string) ([]*domain.SlopePoint, error)

	// GetByTimeRange retrieves points for a pool within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, poolAddress string, start, end int64) ([]*domain.SlopePoint, error)
}

// ClosedTradeStore provides access to closed_trades storage.
type ClosedTradeStore interface {
	// Insert adds a closed trade. Returns ErrDuplicateKey if the trade
	// ID exists and ErrInvalidInput for trades without an exit price.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByPool retrieves all closed trades for a pool, ordered by
	// entry timestamp ASC.
	GetByPool(ctx context.Context, poolAddress string) ([]*domain.Trade, error)

	// GetAll retrieves all closed trades ordered by entry timestamp ASC.
	GetAll(ctx context.Context) ([]*domain.Trade, error)
}
