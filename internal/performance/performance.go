// Package performance reduces a ledger snapshot into summary statistics.
package performance

import "pool-signal-lab/internal/domain"

// Summarize computes the performance summary for a ledger snapshot.
// hasOpen reflects the ledger's open-position reference; orphaned open
// trades in the snapshot count toward TotalTrades only.
func Summarize(trades []domain.Trade, hasOpen bool) domain.PerformanceSummary {
	s := domain.PerformanceSummary{
		TotalTrades: len(trades),
	}
	if hasOpen {
		s.OpenPosition = 1
	}

	wins := 0
	entrySum := 0.0
	for i := range trades {
		t := &trades[i]
		if !t.Closed() {
			continue
		}
		s.ClosedTrades++
		pnl := t.PnL()
		s.TotalPnL += pnl
		if pnl > 0 {
			wins++
		}
		entrySum += t.EntryPrice
	}

	if s.ClosedTrades > 0 {
		s.WinRate = float64(wins) / float64(s.ClosedTrades)
		s.AverageExecutionPrice = entrySum / float64(s.ClosedTrades)
	}
	return s
}
