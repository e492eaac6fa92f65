// Package reporting renders periodic performance reports from the
// engine's ledger.
package reporting

import (
	"time"

	"pool-signal-lab/internal/domain"
)

// Report is one rendered view of the virtual ledger.
type Report struct {
	GeneratedAt time.Time
	Summary     domain.PerformanceSummary
	// Trades in append order.
	Trades []domain.Trade
}

// Generator builds reports from an engine-like source.
type Generator struct {
	source Source
	now    func() time.Time // injectable clock for deterministic output
}

// Source is the slice of the engine the generator reads.
type Source interface {
	Performance() domain.PerformanceSummary
	Trades() []domain.Trade
}

// NewGenerator creates a report generator.
func NewGenerator(source Source) *Generator {
	return &Generator{
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate snapshots the ledger into a report.
func (g *Generator) Generate() *Report {
	return &Report{
		GeneratedAt: g.now(),
		Summary:     g.source.Performance(),
		Trades:      g.source.Trades(),
	}
}
