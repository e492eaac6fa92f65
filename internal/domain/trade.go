package domain

// Trade type constants: the type of the opening action.
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Strategy tag constants
const (
	StrategyA = "A"
	StrategyB = "B"
)

// Trade is a simulated position in the virtual ledger.
// A trade is created OPEN by a buy action and transitions to CLOSED in
// place when a matching sell resolves an exit price. It is never reopened.
type Trade struct {
	ID     string // unique trade identifier
	Type   string // TradeTypeBuy or TradeTypeSell (opening action)
	Amount float64

	EntryPrice       float64
	EntryTimestampMs int64

	// Exit fields are nil while the trade is open.
	ExitPrice       *float64
	ExitTimestampMs *int64

	PoolAddress string
	Strategy    string  // StrategyA or StrategyB
	Slippage    float64 // requested slippage fraction at open
}

// Closed reports whether the trade has a resolved exit price.
func (t *Trade) Closed() bool {
	return t.ExitPrice != nil
}

// PnL returns the realized profit for a closed trade, 0 otherwise.
// A BUY-opened trade profits when the exit price exceeds the entry
// price; a SELL-opened trade carries the symmetric sign.
func (t *Trade) PnL() float64 {
	if !t.Closed() {
		return 0
	}
	if t.Type == TradeTypeSell {
		return (t.EntryPrice - *t.ExitPrice) * t.Amount
	}
	return (*t.ExitPrice - t.EntryPrice) * t.Amount
}

// PerformanceSummary is the on-demand reduction of the ledger.
type PerformanceSummary struct {
	TotalTrades  int // open + closed
	ClosedTrades int
	OpenPosition int // 1 if an open reference exists, else 0

	TotalPnL float64
	// WinRate is closed trades with positive PnL over closed trades,
	// 0 when none are closed.
	WinRate float64
	// AverageExecutionPrice is the mean entry price over closed trades,
	// 0 when none are closed.
	AverageExecutionPrice float64
}
