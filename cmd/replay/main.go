package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pool-signal-lab/internal/engine"
	"pool-signal-lab/internal/extractor"
	"pool-signal-lab/internal/logging"
	"pool-signal-lab/internal/reporting"
	"pool-signal-lab/internal/storage/memory"
	"pool-signal-lab/internal/stream"
)

func main() {
	input := flag.String("input", "", "Path to a JSON-lines file of raw pool records (required)")
	tradeSize := flag.Float64("trade-size", 1.0, "Trade size per position")
	thresholdA := flag.Float64("slippage-threshold-a", 0.001, "Slippage fraction for strategy A executions")
	thresholdB := flag.Float64("slippage-threshold-b", 0.01, "Slippage fraction for strategy B executions")
	slopeThreshold := flag.Float64("slope-threshold", -0.001, "Slope threshold for signal generation")
	strategy := flag.String("strategy", "A", "Execution strategy: A or B")
	allowedTokens := flag.String("allowed-tokens", "", "Comma-separated token addresses to accept (empty accepts base/quote only)")
	baseToken := flag.String("base-token", "", "Base token address")
	quoteToken := flag.String("quote-token", "", "Quote token address")
	reportDir := flag.String("report-dir", "", "Directory for markdown/CSV report files (empty prints to stdout)")
	logLevel := flag.String("log-level", "warn", "Log level")

	flag.Parse()

	logger := logging.New(*logLevel, true).With().Str("component", "replay").Logger()

	if *input == "" {
		logger.Fatal().Msg("--input is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	ext := extractor.New(extractor.Config{
		AllowedTokens: splitTokens(*allowedTokens),
		BaseToken:     *baseToken,
		QuoteToken:    *quoteToken,
	})

	eng := engine.New(engine.Options{
		Config: engine.Config{
			TradeSize:          *tradeSize,
			SlippageThresholdA: *thresholdA,
			SlippageThresholdB: *thresholdB,
			SlopeThreshold:     *slopeThreshold,
			Strategy:           *strategy,
		},
		Extractor:    ext,
		Logger:       logger,
		SlopePoints:  memory.NewSlopePointStore(),
		ClosedTrades: memory.NewClosedTradeStore(),
	})

	processed, skipped, err := replayFile(ctx, eng, *input)
	if err != nil {
		logger.Fatal().Err(err).Msg("replay failed")
	}
	logger.Info().Int("processed", processed).Int("skipped", skipped).Msg("replay finished")

	report := reporting.NewGenerator(eng).Generate()
	if *reportDir != "" {
		if err := reporting.WriteFiles(*reportDir, report); err != nil {
			logger.Fatal().Err(err).Msg("write report files")
		}
		logger.Info().Str("dir", *reportDir).Msg("report written")
		return
	}
	fmt.Print(reporting.RenderMarkdown(report))
}

// replayFile feeds each JSON line through the engine in file order.
// Malformed lines and rejected records are counted and skipped.
func replayFile(ctx context.Context, eng *engine.Engine, path string) (processed, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return processed, skipped, ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := stream.DecodeRecord(line)
		if err != nil {
			skipped++
			continue
		}
		if _, err := eng.ProcessRecord(ctx, rec); err != nil {
			skipped++
			continue
		}
		processed++
	}
	if err := scanner.Err(); err != nil {
		return processed, skipped, fmt.Errorf("read input: %w", err)
	}
	return processed, skipped, nil
}

func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
