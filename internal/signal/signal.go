// Package signal maps (slope, delta slope) to a trading action.
package signal

import "pool-signal-lab/internal/domain"

// Evaluate derives an action from the current slope and its delta.
// Rules, first match wins:
//  1. delta < 0 and slope < threshold -> BUY
//  2. delta > 0 or slope > threshold  -> SELL
//  3. otherwise hold.
//
// Either input nil (no history yet, or slope unresolved) means no signal.
func Evaluate(slope, deltaSlope *float64, threshold float64) domain.Signal {
	if slope == nil || deltaSlope == nil {
		return domain.SignalNone
	}

	if *deltaSlope < 0 && *slope < threshold {
		return domain.SignalBuy
	}
	if *deltaSlope > 0 || *slope > threshold {
		return domain.SignalSell
	}
	return domain.SignalNone
}
