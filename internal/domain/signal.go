package domain

// Signal is the action derived from one scored observation.
type Signal string

// Signal constants. SignalNone means hold (or no history yet).
const (
	SignalNone Signal = ""
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)
