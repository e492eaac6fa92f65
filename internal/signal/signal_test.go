package signal

import (
	"testing"

	"pool-signal-lab/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluate_Buy(t *testing.T) {
	// Falling slope below threshold -> BUY
	got := Evaluate(ptr(-0.02), ptr(-0.005), -0.01)
	if got != domain.SignalBuy {
		t.Errorf("expected BUY, got %q", got)
	}
}

func TestEvaluate_SellOnRisingDelta(t *testing.T) {
	// Rising delta alone is enough for SELL, regardless of slope.
	got := Evaluate(ptr(-0.05), ptr(0.001), -0.01)
	if got != domain.SignalSell {
		t.Errorf("expected SELL, got %q", got)
	}
}

func TestEvaluate_SellOnSlopeAboveThreshold(t *testing.T) {
	// Slope above threshold with falling delta still sells.
	got := Evaluate(ptr(0.02), ptr(-0.001), -0.01)
	if got != domain.SignalSell {
		t.Errorf("expected SELL, got %q", got)
	}
}

func TestEvaluate_Hold(t *testing.T) {
	// delta == 0 and slope == threshold matches neither rule.
	got := Evaluate(ptr(-0.01), ptr(0.0), -0.01)
	if got != domain.SignalNone {
		t.Errorf("expected no signal, got %q", got)
	}
}

func TestEvaluate_NilInputs(t *testing.T) {
	if got := Evaluate(nil, ptr(-0.5), -0.01); got != domain.SignalNone {
		t.Errorf("nil slope: expected no signal, got %q", got)
	}
	if got := Evaluate(ptr(-0.5), nil, -0.01); got != domain.SignalNone {
		t.Errorf("nil delta: expected no signal, got %q", got)
	}
	if got := Evaluate(nil, nil, -0.01); got != domain.SignalNone {
		t.Errorf("both nil: expected no signal, got %q", got)
	}
}

func TestEvaluate_SlopeJustUnderThreshold(t *testing.T) {
	got := Evaluate(ptr(-0.0101), ptr(-0.0001), -0.01)
	if got != domain.SignalBuy {
		t.Errorf("expected BUY, got %q", got)
	}
}
