package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pool-signal-lab/internal/config"
	"pool-signal-lab/internal/engine"
	"pool-signal-lab/internal/extractor"
	"pool-signal-lab/internal/logging"
	"pool-signal-lab/internal/observability"
	"pool-signal-lab/internal/reporting"
	"pool-signal-lab/internal/storage"
	chstore "pool-signal-lab/internal/storage/clickhouse"
	"pool-signal-lab/internal/storage/migrations"
	pgstore "pool-signal-lab/internal/storage/postgres"
	"pool-signal-lab/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty).With().Str("component", "trader").Logger()

	// Metrics server
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, logger, cfg)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("trader exited with error")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, logger zerolog.Logger, cfg *config.Config) error {
	// Optional analytics sinks. An empty DSN leaves the sink nil; the
	// engine treats nil sinks as disabled.
	var slopePoints storage.SlopePointStore
	var closedTrades storage.ClosedTradeStore

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		closedTrades = pgstore.NewClosedTradeStore(pool)
		logger.Info().Msg("closed-trade sink enabled (postgres)")
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		slopePoints = chstore.NewSlopePointStore(conn)
		logger.Info().Msg("slope-point sink enabled (clickhouse)")
	}

	ext := extractor.New(extractor.Config{
		AllowedTokens: cfg.AllowedTokens,
		BaseToken:     cfg.BaseToken,
		QuoteToken:    cfg.QuoteToken,
	})

	eng := engine.New(engine.Options{
		Config: engine.Config{
			TradeSize:          cfg.TradeSize,
			SlippageThresholdA: cfg.SlippageThresholdA,
			SlippageThresholdB: cfg.SlippageThresholdB,
			SlopeThreshold:     cfg.SlopeThreshold,
			Strategy:           cfg.Strategy,
		},
		Extractor:    ext,
		Logger:       logger,
		SlopePoints:  slopePoints,
		ClosedTrades: closedTrades,
	})

	// Periodic performance reports.
	if cfg.ReportInterval > 0 {
		gen := reporting.NewGenerator(eng)
		go func() {
			ticker := time.NewTicker(cfg.ReportInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					report := gen.Generate()
					if err := reporting.WriteFiles(cfg.ReportDir, report); err != nil {
						logger.Error().Err(err).Msg("write performance report")
						continue
					}
					logger.Info().
						Int("total_trades", report.Summary.TotalTrades).
						Float64("total_pnl", report.Summary.TotalPnL).
						Msg("performance report written")
				}
			}
		}()
	}

	handle := func(ctx context.Context, rec extractor.RawRecord) error {
		res, err := eng.ProcessRecord(ctx, rec)
		if err != nil {
			logger.Warn().Err(err).Msg("record rejected")
			return nil
		}
		if res != nil && len(res.Trades) > 0 {
			for i := range res.Trades {
				t := &res.Trades[i]
				logger.Info().
					Str("trade_id", t.ID).
					Str("type", t.Type).
					Str("pool", t.PoolAddress).
					Float64("entry_price", t.EntryPrice).
					Msg("trade executed")
			}
		}
		return nil
	}

	// A configured WebSocket endpoint takes precedence over Kafka.
	if cfg.WSEndpoint != "" {
		src := stream.NewWSSource(stream.DefaultWSConfig(cfg.WSEndpoint), logger)
		logger.Info().Str("endpoint", cfg.WSEndpoint).Msg("consuming pool updates over websocket")
		return src.Run(ctx, handle)
	}

	src := stream.NewKafkaSource(stream.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
	}, logger)
	defer src.Close()

	logger.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaTopic).
		Msg("consuming pool updates from kafka")
	return src.Run(ctx, handle)
}
