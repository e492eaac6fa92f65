package slope

import (
	"math"
	"testing"

	"pool-signal-lab/internal/domain"
)

func TestCompute_ExactReferenceBuckets(t *testing.T) {
	snap := &domain.PoolSnapshot{
		Prices: map[int]float64{
			10:  100.0,
			100: 99.0,
		},
	}

	s := Compute(snap)
	if s == nil {
		t.Fatal("expected a slope, got nil")
	}
	// (99 - 100) / 100 = -0.01
	if math.Abs(*s-(-0.01)) > 1e-12 {
		t.Errorf("expected slope -0.01, got %v", *s)
	}
}

func TestCompute_NearestBucketFallback(t *testing.T) {
	// 10bp missing: 12 is nearest. 100bp missing: 90 is nearest.
	snap := &domain.PoolSnapshot{
		Prices: map[int]float64{
			12: 200.0,
			90: 210.0,
		},
	}

	s := Compute(snap)
	if s == nil {
		t.Fatal("expected a slope, got nil")
	}
	// (210 - 200) / 200 = 0.05
	if math.Abs(*s-0.05) > 1e-12 {
		t.Errorf("expected slope 0.05, got %v", *s)
	}
}

func TestCompute_DistanceTiePrefersSmallerBps(t *testing.T) {
	// 5 and 15 are both 5bp from the 10bp reference; 5 must win.
	snap := &domain.PoolSnapshot{
		Prices: map[int]float64{
			5:   100.0,
			15:  50.0,
			100: 110.0,
		},
	}

	s := Compute(snap)
	if s == nil {
		t.Fatal("expected a slope, got nil")
	}
	// (110 - 100) / 100 = 0.1; had 15 won the tie it would be 1.2.
	if math.Abs(*s-0.1) > 1e-12 {
		t.Errorf("expected slope 0.1 (low bucket 5bp), got %v", *s)
	}
}

func TestCompute_ZeroLowPrice(t *testing.T) {
	snap := &domain.PoolSnapshot{
		Prices: map[int]float64{
			10:  0.0,
			100: 99.0,
		},
	}

	if s := Compute(snap); s != nil {
		t.Errorf("expected nil slope for zero low price, got %v", *s)
	}
}

func TestCompute_EmptyPrices(t *testing.T) {
	if s := Compute(&domain.PoolSnapshot{}); s != nil {
		t.Errorf("expected nil slope for empty prices, got %v", *s)
	}
	if s := Compute(nil); s != nil {
		t.Errorf("expected nil slope for nil snapshot, got %v", *s)
	}
}

func TestCompute_SingleBucketServesBothReferences(t *testing.T) {
	// One bucket is nearest to both references: slope is exactly zero.
	snap := &domain.PoolSnapshot{
		Prices: map[int]float64{
			50: 123.45,
		},
	}

	s := Compute(snap)
	if s == nil {
		t.Fatal("expected a slope, got nil")
	}
	if *s != 0 {
		t.Errorf("expected slope 0, got %v", *s)
	}
}
