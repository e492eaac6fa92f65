package memory

import (
	"context"
	"sort"
	"sync"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/storage"
)

// ClosedTradeStore is an in-memory implementation of storage.ClosedTradeStore.
type ClosedTradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trade ID
}

// NewClosedTradeStore creates a new in-memory closed trade store.
func NewClosedTradeStore() *ClosedTradeStore {
	return &ClosedTradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Insert adds a closed trade. Returns ErrDuplicateKey if the trade ID
// exists and ErrInvalidInput for trades without an exit price.
func (s *ClosedTradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || !t.Closed() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.data[t.ID] = &cp
	return nil
}

// GetByPool retrieves all closed trades for a pool, ordered by entry
// timestamp ASC.
func (s *ClosedTradeStore) GetByPool(_ context.Context, poolAddress string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.PoolAddress == poolAddress {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortTrades(result)
	return result, nil
}

// GetAll retrieves all closed trades ordered by entry timestamp ASC.
func (s *ClosedTradeStore) GetAll(_ context.Context) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Trade, 0, len(s.data))
	for _, t := range s.data {
		cp := *t
		result = append(result, &cp)
	}
	sortTrades(result)
	return result, nil
}

// sortTrades orders by entry timestamp ASC, trade ID ASC for
// deterministic output.
func sortTrades(trades []*domain.Trade) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].EntryTimestampMs != trades[j].EntryTimestampMs {
			return trades[i].EntryTimestampMs < trades[j].EntryTimestampMs
		}
		return trades[i].ID < trades[j].ID
	})
}

var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)
