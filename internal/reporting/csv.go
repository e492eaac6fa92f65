package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the report's trades as a CSV string.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("trade_id,pool_address,strategy,type,amount,slippage,")
	sb.WriteString("entry_price,entry_timestamp_ms,exit_price,exit_timestamp_ms,pnl,status\n")

	for i := range r.Trades {
		t := &r.Trades[i]
		exitPrice := ""
		exitTS := ""
		status := "OPEN"
		if t.Closed() {
			exitPrice = fmt.Sprintf("%.6f", *t.ExitPrice)
			exitTS = fmt.Sprintf("%d", *t.ExitTimestampMs)
			status = "CLOSED"
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%.6f,%.6f,%d,%s,%s,%.6f,%s\n",
			t.ID,
			t.PoolAddress,
			t.Strategy,
			t.Type,
			t.Amount,
			t.Slippage,
			t.EntryPrice,
			t.EntryTimestampMs,
			exitPrice,
			exitTS,
			t.PnL(),
			status,
		))
	}
	return sb.String()
}
