// Package ledger simulates trade execution against pool snapshots and
// keeps the virtual record of every position taken.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pool-signal-lab/internal/domain"
)

// Ledger errors
var (
	// ErrPriceResolution means no bucket or price could satisfy the
	// requested slippage on an execution attempt.
	ErrPriceResolution = errors.New("no execution price resolvable for requested slippage")

	// ErrNoOpenPosition means a close was attempted with no open trade.
	// Non-fatal: callers log and continue.
	ErrNoOpenPosition = errors.New("no open position to close")
)

// Ledger is the append-only sequence of simulated trades plus at most
// one reference to the currently open trade.
//
// The open-position slot is global, not keyed by pool: opening a trade
// always overwrites the slot, even when the prior open trade belongs to
// another pool. The orphaned trade stays in the ledger unclosed. This
// matches the behavior of the producing system and is kept for
// compatibility.
type Ledger struct {
	mu     sync.Mutex
	trades []*domain.Trade
	open   *domain.Trade
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// OpenBuy resolves an execution price from the snapshot and creates a
// new OPEN trade, unconditionally replacing any prior open reference.
// Returns ErrPriceResolution when no price can be resolved.
func (l *Ledger) OpenBuy(snap *domain.PoolSnapshot, amount, slippageFraction float64, strategy string) (*domain.Trade, error) {
	price, err := ResolveExecutionPrice(snap, slippageFraction)
	if err != nil {
		return nil, err
	}

	trade := &domain.Trade{
		ID:               uuid.NewString(),
		Type:             domain.TradeTypeBuy,
		Amount:           amount,
		EntryPrice:       price,
		EntryTimestampMs: snap.TimestampMs,
		PoolAddress:      snap.PoolAddress,
		Strategy:         strategy,
		Slippage:         slippageFraction,
	}

	l.mu.Lock()
	l.trades = append(l.trades, trade)
	l.open = trade
	l.mu.Unlock()

	out := *trade
	return &out, nil
}

// CloseSell resolves an exit price and closes the open trade in place.
// Returns ErrNoOpenPosition when the open slot is empty, and
// ErrPriceResolution when the snapshot cannot price the requested
// slippage; in both cases the ledger is left unchanged.
func (l *Ledger) CloseSell(snap *domain.PoolSnapshot, amount, slippageFraction float64, strategy string) (*domain.Trade, error) {
	_ = amount // sizing is fixed by the opening trade
	_ = strategy

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.open == nil {
		return nil, ErrNoOpenPosition
	}

	price, err := ResolveExecutionPrice(snap, slippageFraction)
	if err != nil {
		return nil, fmt.Errorf("close %s: %w", l.open.ID, err)
	}

	ts := snap.TimestampMs
	l.open.ExitPrice = &price
	l.open.ExitTimestampMs = &ts
	closed := *l.open
	l.open = nil

	return &closed, nil
}

// HasOpen reports whether an open position reference exists.
func (l *Ledger) HasOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open != nil
}

// Snapshot returns value copies of all trades in append order.
func (l *Ledger) Snapshot() []domain.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Trade, len(l.trades))
	for i, t := range l.trades {
		out[i] = *t
	}
	return out
}

// Reset drops all trades and clears the open slot.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.trades = nil
	l.open = nil
	l.mu.Unlock()
}

// ResolveExecutionPrice converts the slippage fraction to basis points
// (round to nearest integer) and resolves a price:
//
//  1. exact bucket match;
//  2. bucket with minimal absolute basis-point distance, ties resolving
//     to the earliest entry in table order;
//  3. when the snapshot carries no bucket table, nearest key in the
//     flat price map, ties resolving to the smaller basis-point value.
//
// A price of zero is indistinguishable from missing data in the source
// feed and fails resolution.
func ResolveExecutionPrice(snap *domain.PoolSnapshot, slippageFraction float64) (float64, error) {
	if snap == nil || len(snap.Prices) == 0 {
		return 0, ErrPriceResolution
	}

	target := int(math.Round(slippageFraction * 10000))

	if price, ok := snap.PriceAt(target); ok {
		if price == 0 {
			return 0, ErrPriceResolution
		}
		return price, nil
	}

	if len(snap.Buckets) > 0 {
		return nearestBucketPrice(snap.Buckets, target)
	}
	return nearestFlatPrice(snap.Prices, target)
}

// nearestBucketPrice scans the table in producer order; only a strictly
// smaller distance replaces the current best, so ties keep the earliest
// entry.
func nearestBucketPrice(buckets []domain.SlippageBucket, target int) (float64, error) {
	found := false
	var best domain.SlippageBucket
	bestDist := 0
	for _, b := range buckets {
		dist := b.BasisPoints - target
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			found = true
			best = b
			bestDist = dist
		}
	}
	if !found || best.Price == 0 {
		return 0, ErrPriceResolution
	}
	return best.Price, nil
}

func nearestFlatPrice(prices map[int]float64, target int) (float64, error) {
	keys := make([]int, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	found := false
	bestKey := 0
	bestDist := 0
	for _, k := range keys {
		dist := k - target
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			found = true
			bestKey = k
			bestDist = dist
		}
	}
	if !found || prices[bestKey] == 0 {
		return 0, ErrPriceResolution
	}
	return prices[bestKey], nil
}
