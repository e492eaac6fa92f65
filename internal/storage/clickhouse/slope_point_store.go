package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/storage"
)

// SlopePointStore implements storage.SlopePointStore using ClickHouse.
type SlopePointStore struct {
	conn *Conn
}

// NewSlopePointStore creates a new SlopePointStore.
func NewSlopePointStore(conn *Conn) *SlopePointStore {
	return &SlopePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SlopePointStore = (*SlopePointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (pool_address, timestamp_ms). MergeTree does not enforce uniqueness,
// so duplicates are checked explicitly before the batch is sent.
func (s *SlopePointStore) InsertBulk(ctx context.Context, points []*domain.SlopePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		poolAddress string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.PoolAddress == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.PoolAddress, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.PoolAddress, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO slope_points (
			pool_address, timestamp_ms, slope, delta_slope, liquidity
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(
			p.PoolAddress, uint64(p.TimestampMs), p.Slope, p.DeltaSlope, p.Liquidity,
		); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByPool retrieves all points for a pool, ordered by timestamp ASC.
func (s *SlopePointStore) GetByPool(ctx context.Context, poolAddress string) ([]*domain.SlopePoint, error) {
	query := `
		SELECT pool_address, timestamp_ms, slope, delta_slope, liquidity
		FROM slope_points
		WHERE pool_address = ?
		ORDER BY timestamp_ms ASC
	`
	rows, err := s.conn.Query(ctx, query, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("query by pool: %w", err)
	}
	defer rows.Close()

	return scanSlopePoints(rows)
}

// GetByTimeRange retrieves points for a pool within [start, end] (inclusive).
func (s *SlopePointStore) GetByTimeRange(ctx context.Context, poolAddress string, start, end int64) ([]*domain.SlopePoint, error) {
	query := `
		SELECT pool_address, timestamp_ms, slope, delta_slope, liquidity
		FROM slope_points
		WHERE pool_address = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`
	rows, err := s.conn.Query(ctx, query, poolAddress, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSlopePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *SlopePointStore) exists(ctx context.Context, poolAddress string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM slope_points
		WHERE pool_address = ? AND timestamp_ms = ?
	`
	var count uint64
	if err := s.conn.QueryRow(ctx, query, poolAddress, uint64(timestampMs)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanSlopePoints(rows driver.Rows) ([]*domain.SlopePoint, error) {
	var result []*domain.SlopePoint
	for rows.Next() {
		var p domain.SlopePoint
		var ts uint64
		if err := rows.Scan(&p.PoolAddress, &ts, &p.Slope, &p.DeltaSlope, &p.Liquidity); err != nil {
			return nil, fmt.Errorf("scan slope point: %w", err)
		}
		p.TimestampMs = int64(ts)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slope points: %w", err)
	}
	return result, nil
}
