// Package extractor normalizes decoded pool records into canonical
// snapshots. All schema tolerance (dual-cased field names, nested token
// objects, split timestamps) is handled here so downstream components
// only ever see domain.PoolSnapshot.
package extractor

import (
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"pool-signal-lab/internal/domain"
)

// RawRecord is one decoded message payload as delivered by the
// transport collaborator.
type RawRecord = map[string]any

// Extraction errors
var (
	ErrMissingPoolAddress = errors.New("record has no pool address")
	ErrMissingTokens      = errors.New("record has no token addresses")
	ErrBadAddress         = errors.New("address is not valid base58")
)

// Config holds the token allow-set and the base/quote pairing used for
// direction detection.
type Config struct {
	// AllowedTokens is the supported quote/base token allow-set.
	// Records whose pair is not fully covered are dropped, not failed.
	AllowedTokens []string

	// BaseToken and QuoteToken drive direction detection (e.g. WETH/USDT).
	BaseToken  string
	QuoteToken string
}

// Extractor turns raw records into pool snapshots.
type Extractor struct {
	allowed map[string]struct{}
	base    string
	quote   string
}

// New creates an extractor from config. The base and quote tokens are
// added to the allow-set implicitly.
func New(cfg Config) *Extractor {
	allowed := make(map[string]struct{}, len(cfg.AllowedTokens)+2)
	for _, t := range cfg.AllowedTokens {
		allowed[t] = struct{}{}
	}
	if cfg.BaseToken != "" {
		allowed[cfg.BaseToken] = struct{}{}
	}
	if cfg.QuoteToken != "" {
		allowed[cfg.QuoteToken] = struct{}{}
	}
	return &Extractor{
		allowed: allowed,
		base:    cfg.BaseToken,
		quote:   cfg.QuoteToken,
	}
}

// Extract normalizes a decoded record.
// Returns (nil, nil) when the record's token pair is outside the
// allow-set: a filtered record is not an error.
func (e *Extractor) Extract(rec RawRecord) (*domain.PoolSnapshot, error) {
	poolAddr, ok := stringField(rec, "poolAddress", "pool_address")
	if !ok || poolAddr == "" {
		return nil, ErrMissingPoolAddress
	}
	if _, err := base58.Decode(poolAddr); err != nil {
		return nil, fmt.Errorf("pool %q: %w", poolAddr, ErrBadAddress)
	}

	tokenA, okA := addressField(rec, "tokenA", "token_a")
	tokenB, okB := addressField(rec, "tokenB", "token_b")
	if !okA || !okB {
		return nil, ErrMissingTokens
	}
	for _, tok := range []string{tokenA, tokenB} {
		if _, err := base58.Decode(tok); err != nil {
			return nil, fmt.Errorf("token %q: %w", tok, ErrBadAddress)
		}
	}

	// Allow-filter: both sides must be supported. Drop, don't fail.
	if !e.supported(tokenA) || !e.supported(tokenB) {
		return nil, nil
	}

	direction, table := e.detectDirection(rec, tokenA, tokenB)

	snap := &domain.PoolSnapshot{
		PoolAddress: poolAddr,
		TokenA:      tokenA,
		TokenB:      tokenB,
		Direction:   direction,
		TimestampMs: resolveTimestamp(rec),
	}
	if liq, ok := floatField(rec, "liquidity"); ok {
		snap.Liquidity = liq
	}

	snap.Buckets, snap.Prices = buildBuckets(table)
	if len(snap.Prices) == 0 {
		// No usable table for the selected direction: fall back to a
		// flat basisPoints -> price map if the record carries one.
		snap.Buckets = nil
		snap.Prices = buildFlatPrices(rec)
	}

	return snap, nil
}

func (e *Extractor) supported(token string) bool {
	_, ok := e.allowed[token]
	return ok
}

// detectDirection selects the relevant price table.
// base/quote pairing selects A-to-B, the reverse selects B-to-A; any
// other allowed pairing defaults to A-to-B.
func (e *Extractor) detectDirection(rec RawRecord, tokenA, tokenB string) (domain.Direction, []any) {
	if tokenA == e.quote && tokenB == e.base {
		return domain.DirectionBToA, listField(rec, "priceImpactBToA", "price_impact_b_to_a")
	}
	return domain.DirectionAToB, listField(rec, "priceImpactAToB", "price_impact_a_to_b")
}

// buildBuckets converts the raw table into ordered buckets plus a
// bps -> price map. Entries without a price field are skipped, so
// "absent" stays distinct from any stored value.
func buildBuckets(table []any) ([]domain.SlippageBucket, map[int]float64) {
	if len(table) == 0 {
		return nil, nil
	}
	buckets := make([]domain.SlippageBucket, 0, len(table))
	prices := make(map[int]float64, len(table))
	for _, entry := range table {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		bps, ok := intField(m, "slippageBps", "slippage_bps")
		if !ok {
			bps, ok = intField(m, "basisPoints", "basis_points")
		}
		if !ok || bps < 0 {
			continue
		}
		price, ok := floatField(m, "price")
		if !ok {
			continue
		}
		buckets = append(buckets, domain.SlippageBucket{BasisPoints: bps, Price: price})
		if _, exists := prices[bps]; !exists {
			prices[bps] = price
		}
	}
	return buckets, prices
}

// buildFlatPrices reads a flat price map keyed by numeric or string
// basis points.
func buildFlatPrices(rec RawRecord) map[int]float64 {
	raw, ok := mapField(rec, "prices", "price_map")
	if !ok {
		return nil
	}
	prices := make(map[int]float64, len(raw))
	for k, v := range raw {
		bps, ok := toInt(k)
		if !ok || bps < 0 {
			continue
		}
		price, ok := toFloat(v)
		if !ok {
			continue
		}
		prices[bps] = price
	}
	return prices
}

// resolveTimestamp supports the producer's 64-bit-split encoding
// (low + high * 2^32) as well as plain numeric or string values.
// Any parse failure falls back to wall clock.
func resolveTimestamp(rec RawRecord) int64 {
	v, ok := lookup(rec, "timestamp", "time_stamp")
	if !ok {
		return time.Now().UnixMilli()
	}
	switch ts := v.(type) {
	case map[string]any:
		low, okLow := floatField(ts, "low")
		high, okHigh := floatField(ts, "high")
		if okLow && okHigh {
			return int64(low) + int64(high)*(1<<32)
		}
	default:
		if ms, ok := toFloat(v); ok {
			return int64(ms)
		}
	}
	return time.Now().UnixMilli()
}
