// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pool-signal-lab/internal/domain"
)

// Config holds all app configuration.
type Config struct {
	// Trading
	TradeSize          float64
	SlippageThresholdA float64 // fraction in (0,1)
	SlippageThresholdB float64 // fraction in (0,1)
	SlopeThreshold     float64
	Strategy           string // "A" | "B"

	// Token filter
	AllowedTokens []string
	BaseToken     string
	QuoteToken    string

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// WebSocket source
	WSEndpoint string

	// Sinks (empty DSN disables the sink)
	PostgresDSN   string
	ClickHouseDSN string

	// Process
	MetricsAddr    string
	ReportInterval time.Duration
	ReportDir      string
	LogLevel       string
	LogPretty      bool
}

// Load reads configuration from environment variables, with an optional
// .env file applied first.
func Load() (*Config, error) {
	// Missing .env is fine; env vars win over file values either way.
	_ = godotenv.Load()

	cfg := &Config{
		TradeSize:          getEnvFloat("TRADE_SIZE", 1.0),
		SlippageThresholdA: getEnvFloat("SLIPPAGE_THRESHOLD_A", 0.001),
		SlippageThresholdB: getEnvFloat("SLIPPAGE_THRESHOLD_B", 0.01),
		SlopeThreshold:     getEnvFloat("SLOPE_THRESHOLD", -0.001),
		Strategy:           getEnv("STRATEGY", domain.StrategyA),

		AllowedTokens: getEnvSlice("ALLOWED_TOKENS", nil),
		BaseToken:     getEnv("BASE_TOKEN", ""),
		QuoteToken:    getEnv("QUOTE_TOKEN", ""),

		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "pool-updates"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "pool-signal-lab"),

		WSEndpoint: getEnv("WS_ENDPOINT", ""),

		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickHouseDSN: getEnv("CLICKHOUSE_DSN", ""),

		MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
		ReportInterval: getEnvDuration("REPORT_INTERVAL", 60*time.Second),
		ReportDir:      getEnv("REPORT_DIR", "reports"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvBool("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.TradeSize <= 0 {
		return fmt.Errorf("trade size must be positive, got %v", c.TradeSize)
	}
	if c.SlippageThresholdA <= 0 || c.SlippageThresholdA >= 1 {
		return fmt.Errorf("slippage threshold A must be in (0,1), got %v", c.SlippageThresholdA)
	}
	if c.SlippageThresholdB <= 0 || c.SlippageThresholdB >= 1 {
		return fmt.Errorf("slippage threshold B must be in (0,1), got %v", c.SlippageThresholdB)
	}
	if c.Strategy != domain.StrategyA && c.Strategy != domain.StrategyB {
		return fmt.Errorf("strategy must be %q or %q, got %q", domain.StrategyA, domain.StrategyB, c.Strategy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
