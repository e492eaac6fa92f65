package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.Summary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Closed Trades | %d |\n", r.Summary.ClosedTrades))
	sb.WriteString(fmt.Sprintf("| Open Position | %d |\n", r.Summary.OpenPosition))
	sb.WriteString(fmt.Sprintf("| Total PnL | %.6f |\n", r.Summary.TotalPnL))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", r.Summary.WinRate))
	sb.WriteString(fmt.Sprintf("| Avg Execution Price | %.6f |\n", r.Summary.AverageExecutionPrice))
	sb.WriteString("\n")

	if len(r.Trades) == 0 {
		sb.WriteString("No trades recorded.\n")
		return sb.String()
	}

	sb.WriteString("## Trades\n\n")
	sb.WriteString("| ID | Pool | Strategy | Amount | Entry | Exit | PnL | Status |\n")
	sb.WriteString("|----|------|----------|--------|-------|------|-----|--------|\n")
	for i := range r.Trades {
		t := &r.Trades[i]
		exit := "-"
		status := "OPEN"
		if t.Closed() {
			exit = fmt.Sprintf("%.6f", *t.ExitPrice)
			status = "CLOSED"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.4f | %.6f | %s | %.6f | %s |\n",
			t.ID, t.PoolAddress, t.Strategy, t.Amount, t.EntryPrice, exit, t.PnL(), status))
	}
	return sb.String()
}
