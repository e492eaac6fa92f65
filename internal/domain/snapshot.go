package domain

// Direction identifies which side of a pool's price-impact tables applies
// to an observation.
type Direction string

// Pool direction constants
const (
	DirectionAToB Direction = "A_TO_B"
	DirectionBToA Direction = "B_TO_A"
)

// SlippageBucket is one (basis points, price) pair from a pool's
// price-impact table. 100 bp = 1% slippage.
type SlippageBucket struct {
	BasisPoints int     // slippage tolerance in basis points
	Price       float64 // execution price available at that tolerance
}

// PoolSnapshot is one normalized observation of a pool's state.
// It is produced once at the extractor boundary; downstream components
// never see the raw record's field-naming variance.
type PoolSnapshot struct {
	PoolAddress string    // identity key
	TokenA      string    // first currency address
	TokenB      string    // second currency address
	Direction   Direction // which side's price table was selected
	Liquidity   float64
	TimestampMs int64 // Unix timestamp in milliseconds

	// Buckets is the selected price-impact table in producer order.
	// Empty when the record carried only a flat price map.
	Buckets []SlippageBucket

	// Prices maps basis points to price for the selected direction.
	// Buckets without a price field are absent from the map.
	Prices map[int]float64
}

// PriceAt returns the price at an exact basis-point bucket.
// The second return is false when no such bucket exists.
func (s *PoolSnapshot) PriceAt(basisPoints int) (float64, bool) {
	p, ok := s.Prices[basisPoints]
	return p, ok
}

// SlopeRecord is one slope observation appended to a pool's history.
type SlopeRecord struct {
	TimestampMs int64
	Slope       float64
}

// SlopePoint is the analytics-sink row for one scored observation.
// Corresponds to slope_points table in ClickHouse.
type SlopePoint struct {
	PoolAddress string
	TimestampMs int64
	Slope       float64
	DeltaSlope  *float64 // nil on the first observation for a pool
	Liquidity   float64
}
