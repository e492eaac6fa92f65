// Package engine runs the per-record pipeline: extract, score, signal,
// execute. One engine owns all mutable state (per-pool history and the
// virtual ledger) so instances are independently testable and resettable.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pool-signal-lab/internal/domain"
	"pool-signal-lab/internal/extractor"
	"pool-signal-lab/internal/history"
	"pool-signal-lab/internal/ledger"
	"pool-signal-lab/internal/observability"
	"pool-signal-lab/internal/performance"
	"pool-signal-lab/internal/signal"
	"pool-signal-lab/internal/slope"
	"pool-signal-lab/internal/storage"
)

// DefaultChunkCount is the number of equal-size executions strategy B
// splits a trade into.
const DefaultChunkCount = 2

// Config holds the engine's trading parameters.
type Config struct {
	TradeSize float64

	// Slippage thresholds as fractions in (0,1).
	SlippageThresholdA float64
	SlippageThresholdB float64

	SlopeThreshold float64
	Strategy       string // domain.StrategyA or domain.StrategyB
	ChunkCount     int    // 0 selects DefaultChunkCount
}

// Options for creating an Engine.
type Options struct {
	Config    Config
	Extractor *extractor.Extractor
	Logger    zerolog.Logger

	// HistoryCapacity bounds each pool's slope FIFO; 0 selects the
	// package default.
	HistoryCapacity int

	// Optional analytics sinks. Sink failures are logged, never fatal.
	SlopePoints  storage.SlopePointStore
	ClosedTrades storage.ClosedTradeStore

	// Metrics defaults to observability.DefaultMetrics.
	Metrics *observability.Metrics
}

// Result is the outcome of processing one non-filtered record.
type Result struct {
	Snapshot   *domain.PoolSnapshot
	Slope      *float64 // nil when unresolved
	DeltaSlope *float64 // nil on a pool's first scored observation
	Signal     domain.Signal

	// Trades are the executions performed for this record's signal.
	Trades []domain.Trade
}

// Engine holds all process-wide mutable state for signal generation and
// trade simulation.
type Engine struct {
	cfg       Config
	extractor *extractor.Extractor
	history   *history.Tracker
	ledger    *ledger.Ledger
	log       zerolog.Logger
	metrics   *observability.Metrics

	slopePoints  storage.SlopePointStore
	closedTrades storage.ClosedTradeStore
}

// New creates an engine.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg.ChunkCount <= 0 {
		cfg.ChunkCount = DefaultChunkCount
	}
	if cfg.Strategy == "" {
		cfg.Strategy = domain.StrategyA
	}
	m := opts.Metrics
	if m == nil {
		m = observability.DefaultMetrics
	}
	return &Engine{
		cfg:          cfg,
		extractor:    opts.Extractor,
		history:      history.NewTracker(opts.HistoryCapacity),
		ledger:       ledger.New(),
		log:          opts.Logger,
		metrics:      m,
		slopePoints:  opts.SlopePoints,
		closedTrades: opts.ClosedTrades,
	}
}

// ProcessRecord runs one decoded record through the full pipeline.
// Returns (nil, nil) for records dropped by the allow-filter and an
// error for extraction failures; both leave history and ledger
// untouched. Callers log errors and continue with the next record.
func (e *Engine) ProcessRecord(ctx context.Context, rec extractor.RawRecord) (*Result, error) {
	start := time.Now()
	defer func() {
		e.metrics.ProcessingLatency.Observe(time.Since(start).Seconds())
	}()
	e.metrics.RecordsProcessed.Inc()

	snap, err := e.extractor.Extract(rec)
	if err != nil {
		e.metrics.ExtractionErrors.Inc()
		return nil, err
	}
	if snap == nil {
		e.metrics.RecordsFiltered.Inc()
		return nil, nil
	}

	result := &Result{Snapshot: snap}

	result.Slope = slope.Compute(snap)
	if result.Slope == nil {
		e.metrics.SlopeUnresolved.Inc()
		return result, nil
	}

	// Delta must be read before the new record lands in history.
	result.DeltaSlope = e.history.DeltaSlope(snap.PoolAddress, *result.Slope)
	e.history.Update(snap.PoolAddress, *result.Slope, snap.TimestampMs)
	e.recordSlopePoint(ctx, snap, *result.Slope, result.DeltaSlope)

	result.Signal = signal.Evaluate(result.Slope, result.DeltaSlope, e.cfg.SlopeThreshold)
	if result.Signal != domain.SignalNone {
		e.metrics.SignalsEmitted.WithLabelValues(string(result.Signal)).Inc()
	}

	switch result.Signal {
	case domain.SignalBuy:
		result.Trades = e.executeBuy(ctx, snap)
	case domain.SignalSell:
		result.Trades = e.executeSell(ctx, snap)
	}

	e.updateLedgerGauges()
	return result, nil
}

// executionPlan resolves chunking and slippage from the strategy tag.
// Strategy B splits the trade into equal-size executions at the B
// threshold; strategy A executes once at the A threshold.
func (e *Engine) executionPlan() (chunks int, amount, slippage float64) {
	if e.cfg.Strategy == domain.StrategyB {
		chunks = e.cfg.ChunkCount
		return chunks, e.cfg.TradeSize / float64(chunks), e.cfg.SlippageThresholdB
	}
	return 1, e.cfg.TradeSize, e.cfg.SlippageThresholdA
}

func (e *Engine) executeBuy(ctx context.Context, snap *domain.PoolSnapshot) []domain.Trade {
	chunks, amount, slippage := e.executionPlan()

	var executed []domain.Trade
	for i := 0; i < chunks; i++ {
		trade, err := e.ledger.OpenBuy(snap, amount, slippage, e.cfg.Strategy)
		if err != nil {
			e.metrics.ExecutionErrors.WithLabelValues("price_resolution").Inc()
			e.log.Warn().Err(err).
				Str("pool", snap.PoolAddress).
				Float64("slippage", slippage).
				Msg("buy not executed")
			continue
		}
		e.metrics.TradesOpened.Inc()
		e.log.Info().
			Str("trade_id", trade.ID).
			Str("pool", snap.PoolAddress).
			Float64("amount", trade.Amount).
			Float64("entry_price", trade.EntryPrice).
			Msg("opened position")
		executed = append(executed, *trade)
	}
	return executed
}

func (e *Engine) executeSell(ctx context.Context, snap *domain.PoolSnapshot) []domain.Trade {
	chunks, amount, slippage := e.executionPlan()

	var executed []domain.Trade
	for i := 0; i < chunks; i++ {
		trade, err := e.ledger.CloseSell(snap, amount, slippage, e.cfg.Strategy)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrNoOpenPosition):
			e.metrics.ExecutionErrors.WithLabelValues("no_open_position").Inc()
			e.log.Debug().
				Str("pool", snap.PoolAddress).
				Msg("sell signal with no open position")
			continue
		default:
			e.metrics.ExecutionErrors.WithLabelValues("price_resolution").Inc()
			e.log.Warn().Err(err).
				Str("pool", snap.PoolAddress).
				Float64("slippage", slippage).
				Msg("sell not executed")
			continue
		}
		e.metrics.TradesClosed.Inc()
		e.log.Info().
			Str("trade_id", trade.ID).
			Str("pool", snap.PoolAddress).
			Float64("exit_price", *trade.ExitPrice).
			Float64("pnl", trade.PnL()).
			Msg("closed position")
		e.recordClosedTrade(ctx, trade)
		executed = append(executed, *trade)
	}
	return executed
}

// recordSlopePoint writes one scored observation to the analytics sink.
func (e *Engine) recordSlopePoint(ctx context.Context, snap *domain.PoolSnapshot, s float64, delta *float64) {
	if e.slopePoints == nil {
		return
	}
	point := &domain.SlopePoint{
		PoolAddress: snap.PoolAddress,
		TimestampMs: snap.TimestampMs,
		Slope:       s,
		DeltaSlope:  delta,
		Liquidity:   snap.Liquidity,
	}
	if err := e.slopePoints.InsertBulk(ctx, []*domain.SlopePoint{point}); err != nil {
		e.log.Warn().Err(err).Str("pool", snap.PoolAddress).Msg("slope point not stored")
	}
}

func (e *Engine) recordClosedTrade(ctx context.Context, trade *domain.Trade) {
	if e.closedTrades == nil {
		return
	}
	if err := e.closedTrades.Insert(ctx, trade); err != nil {
		e.log.Warn().Err(err).Str("trade_id", trade.ID).Msg("closed trade not stored")
	}
}

func (e *Engine) updateLedgerGauges() {
	summary := e.Performance()
	e.metrics.OpenPosition.Set(float64(summary.OpenPosition))
	e.metrics.TotalPnL.Set(summary.TotalPnL)
}

// Performance reduces the current ledger into summary statistics.
func (e *Engine) Performance() domain.PerformanceSummary {
	return performance.Summarize(e.ledger.Snapshot(), e.ledger.HasOpen())
}

// Trades returns value copies of the full ledger in append order.
func (e *Engine) Trades() []domain.Trade {
	return e.ledger.Snapshot()
}

// HistoryLen returns the number of slope records held for a pool.
func (e *Engine) HistoryLen(poolAddress string) int {
	return e.history.Len(poolAddress)
}

// Reset clears history and ledger state.
func (e *Engine) Reset() {
	e.history.Reset()
	e.ledger.Reset()
	e.updateLedgerGauges()
}
