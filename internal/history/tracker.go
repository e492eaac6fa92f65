// Package history maintains bounded per-pool slope time series.
package history

import (
	"sync"

	"pool-signal-lab/internal/domain"
)

// DefaultCapacity is the per-pool FIFO capacity.
const DefaultCapacity = 100

// Tracker keeps a FIFO of slope records per pool address.
// Insertion evicts the oldest record once a pool reaches capacity.
type Tracker struct {
	mu       sync.RWMutex
	capacity int
	pools    map[string][]domain.SlopeRecord
}

// NewTracker creates a tracker. capacity <= 0 selects DefaultCapacity.
func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		capacity: capacity,
		pools:    make(map[string][]domain.SlopeRecord),
	}
}

// DeltaSlope returns current - lastRecorded for the pool, or nil when
// the pool has no prior record. Call before Update for the same
// observation.
func (t *Tracker) DeltaSlope(poolAddress string, current float64) *float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := t.pools[poolAddress]
	if len(records) == 0 {
		return nil
	}
	d := current - records[len(records)-1].Slope
	return &d
}

// Update appends a slope record, evicting the oldest entry when the
// pool is at capacity.
func (t *Tracker) Update(poolAddress string, slope float64, timestampMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := t.pools[poolAddress]
	if len(records) >= t.capacity {
		records = records[1:]
	}
	t.pools[poolAddress] = append(records, domain.SlopeRecord{
		TimestampMs: timestampMs,
		Slope:       slope,
	})
}

// Records returns a copy of the pool's history in arrival order.
func (t *Tracker) Records(poolAddress string) []domain.SlopeRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := t.pools[poolAddress]
	out := make([]domain.SlopeRecord, len(records))
	copy(out, records)
	return out
}

// Len returns the number of records held for the pool.
func (t *Tracker) Len(poolAddress string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pools[poolAddress])
}

// Reset drops all per-pool history.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pools = make(map[string][]domain.SlopeRecord)
}
