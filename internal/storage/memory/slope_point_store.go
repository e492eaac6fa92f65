package memory

import (
	"context"
	"sort"
	"sync"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/storage"
)

// SlopePointStore is an in-memory implementation of storage.SlopePointStore.
type SlopePointStore struct {
	mu   sync.RWMutex
	data map[pointKey]*domain.SlopePoint
}

type pointKey struct {
	poolAddress string
	timestampMs int64
}

// NewSlopePointStore creates a new in-memory slope point store.
func NewSlopePointStore() *SlopePointStore {
	return &SlopePointStore{
		data: make(map[pointKey]*domain.SlopePoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (pool_address, timestamp_ms).
func (s *SlopePointStore) InsertBulk(_ context.Context, points []*domain.SlopePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[pointKey]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.PoolAddress == "" {
			return storage.ErrInvalidInput
		}
		k := pointKey{p.PoolAddress, p.TimestampMs}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		cp := *p
		s.data[pointKey{p.PoolAddress, p.TimestampMs}] = &cp
	}
	return nil
}

// GetByPool retrieves all points for a pool, ordered by timestamp ASC.
func (s *SlopePointStore) GetByPool(_ context.Context, poolAddress string) ([]*domain.SlopePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SlopePoint
	for _, p := range s.data {
		if p.PoolAddress == poolAddress {
			cp := *p
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

// GetByTimeRange retrieves points for a pool within [start, end] (inclusive).
func (s *SlopePointStore) GetByTimeRange(_ context.Context, poolAddress string, start, end int64) ([]*domain.SlopePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SlopePoint
	for _, p := range s.data {
		if p.PoolAddress == poolAddress && p.TimestampMs >= start && p.TimestampMs <= end {
			cp := *p
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

var _ storage.SlopePointStore = (*SlopePointStore)(nil)
