// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	RecordsProcessed  prometheus.Counter
	RecordsFiltered   prometheus.Counter
	ExtractionErrors  prometheus.Counter
	SlopeUnresolved   prometheus.Counter
	SignalsEmitted    *prometheus.CounterVec
	ProcessingLatency prometheus.Histogram

	// Ledger metrics
	TradesOpened    prometheus.Counter
	TradesClosed    prometheus.Counter
	ExecutionErrors *prometheus.CounterVec
	OpenPosition    prometheus.Gauge
	TotalPnL        prometheus.Gauge

	// Stream metrics
	StreamMessages     prometheus.Counter
	StreamDecodeErrors prometheus.Counter
	StreamReconnects   prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pool_signal_lab"
	}

	return &Metrics{
		RecordsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "records_processed_total",
			Help:      "Total number of decoded records processed",
		}),
		RecordsFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "records_filtered_total",
			Help:      "Total number of records dropped by the token allow-filter",
		}),
		ExtractionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "extraction_errors_total",
			Help:      "Total number of records with malformed or missing critical fields",
		}),
		SlopeUnresolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "slope_unresolved_total",
			Help:      "Total number of snapshots with insufficient bucket data for a slope",
		}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "signals_emitted_total",
			Help:      "Total number of signals emitted by action",
		}, []string{"action"}),
		ProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "processing_latency_seconds",
			Help:      "Per-record processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		TradesOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_opened_total",
			Help:      "Total number of simulated trades opened",
		}),
		TradesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_closed_total",
			Help:      "Total number of simulated trades closed",
		}),
		ExecutionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "execution_errors_total",
			Help:      "Total number of failed executions by reason",
		}, []string{"reason"}),
		OpenPosition: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "open_position",
			Help:      "1 when an open position reference exists",
		}),
		TotalPnL: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "total_pnl",
			Help:      "Sum of realized PnL over closed trades",
		}),

		StreamMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Total number of messages delivered by the transport",
		}),
		StreamDecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "decode_errors_total",
			Help:      "Total number of payloads that failed to decode",
		}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "reconnects_total",
			Help:      "Total number of transport reconnect attempts",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")
