// Package slope derives a scalar price-impact slope from a snapshot's
// slippage-bucket table. The slope is the relative price change between
// the 0.1% and 1% slippage buckets and proxies local curvature.
package slope

import (
	"sort"

	"pool-signal-lab/internal/domain"
)

// Reference buckets in basis points.
const (
	ReferenceLowBps  = 10  // 0.1% slippage
	ReferenceHighBps = 100 // 1% slippage
)

// Compute returns (price@100bp - price@10bp) / price@10bp.
// Returns nil when either reference price cannot be resolved, or when
// the 10bp price is exactly zero.
func Compute(snap *domain.PoolSnapshot) *float64 {
	if snap == nil || len(snap.Prices) == 0 {
		return nil
	}

	low, ok := priceNearest(snap.Prices, ReferenceLowBps)
	if !ok {
		return nil
	}
	high, ok := priceNearest(snap.Prices, ReferenceHighBps)
	if !ok {
		return nil
	}
	if low == 0 {
		return nil
	}

	s := (high - low) / low
	return &s
}

// priceNearest returns the price at the exact bucket when present,
// otherwise the bucket with minimal absolute basis-point distance.
// Distance ties resolve to the smaller basis-point value: keys are
// scanned in ascending order and only a strictly smaller distance
// replaces the current best.
func priceNearest(prices map[int]float64, target int) (float64, bool) {
	if p, ok := prices[target]; ok {
		return p, true
	}

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
	if !found {
		return 0, false
	}
	return prices[bestKey], true
}
