package postgres

import (
	"context"
	"fmt"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/storage"
)

// ClosedTradeStore implements storage.ClosedTradeStore using PostgreSQL.
type ClosedTradeStore struct {
	pool *Pool
}

// NewClosedTradeStore creates a new ClosedTradeStore.
func NewClosedTradeStore(pool *Pool) *ClosedTradeStore {
	return &ClosedTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)

const insertClosedTradeQuery = `
	INSERT INTO closed_trades (
		trade_id, pool_address, strategy, trade_type,
		amount, slippage,
		entry_price, entry_timestamp_ms,
		exit_price, exit_timestamp_ms, pnl
	) VALUES (
		$1, $2, $3, $4,
		$5, $6,
		$7, $8,
		$9, $10, $11
	)
`

// Insert adds a closed trade. Returns ErrDuplicateKey if the trade ID
// exists and ErrInvalidInput for trades without an exit price.
func (s *ClosedTradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || !t.Closed() {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertClosedTradeQuery,
		t.ID, t.PoolAddress, t.Strategy, t.Type,
		t.Amount, t.Slippage,
		t.EntryPrice, t.EntryTimestampMs,
		*t.ExitPrice, *t.ExitTimestampMs, t.PnL(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert closed trade: %w", err)
	}
	return nil
}

const selectClosedTradeColumns = `
	SELECT trade_id, pool_address, strategy, trade_type,
	       amount, slippage,
	       entry_price, entry_timestamp_ms,
	       exit_price, exit_timestamp_ms
	FROM closed_trades
`

// GetByPool retrieves all closed trades for a pool, ordered by entry
// timestamp ASC.
func (s *ClosedTradeStore) GetByPool(ctx context.Context, poolAddress string) ([]*domain.Trade, error) {
	query := selectClosedTradeColumns + `
		WHERE pool_address = $1
		ORDER BY entry_timestamp_ms ASC, trade_id ASC
	`
	rows, err := s.pool.Query(ctx, query, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("query closed trades by pool: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetAll retrieves all closed trades ordered by entry timestamp ASC.
func (s *ClosedTradeStore) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	query := selectClosedTradeColumns + `
		ORDER BY entry_timestamp_ms ASC, trade_id ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query closed trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades reads rows into trades. rows must expose the columns in
// selectClosedTradeColumns order.
func scanTrades(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*domain.Trade, error) {
	var result []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		var exitPrice float64
		var exitTS int64
		if err := rows.Scan(
			&t.ID, &t.PoolAddress, &t.Strategy, &t.Type,
			&t.Amount, &t.Slippage,
			&t.EntryPrice, &t.EntryTimestampMs,
			&exitPrice, &exitTS,
		); err != nil {
			return nil, fmt.Errorf("scan closed trade: %w", err)
		}
		t.ExitPrice = &exitPrice
		t.ExitTimestampMs = &exitTS
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed trades: %w", err)
	}
	return result, nil
}
