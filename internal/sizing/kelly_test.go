package sizing

import (
	"math"
	"testing"
)

func TestKelly_NoEdge(t *testing.T) {
	cases := []struct {
		name string
		p, q float64
	}{
		{"below market", 0.4, 0.5},
		{"equal to market", 0.5, 0.5},
		{"zero probability", 0, 0.5},
		{"negative probability", -0.1, 0.5},
		{"certainty", 1, 0.5},
		{"above one", 1.2, 0.5},
		{"market at one", 0.9, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Kelly(tc.p, tc.q, 1000, 100, 0.25); got != 0 {
				t.Errorf("Kelly(%v, %v) = %v, want 0", tc.p, tc.q, got)
			}
		})
	}
}

func TestKelly_KnownValue(t *testing.T) {
	// b = (1-0.5)/0.5 = 1, k = (1*0.7 - 0.3)/1 = 0.4,
	// stake = 0.4 * 0.25 * 1000 = 100, clamped at max 100.
	got := Kelly(0.7, 0.5, 1000, 100, 0.25)
	if got != 100 {
		t.Errorf("Kelly(0.7, 0.5, 1000, 100, 0.25) = %v, want 100", got)
	}
}

func TestKelly_UnclampedValue(t *testing.T) {
	// Same edge, smaller bankroll: 0.4 * 0.25 * 500 = 50, under the cap.
	got := Kelly(0.7, 0.5, 500, 100, 0.25)
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("Kelly(0.7, 0.5, 500, 100, 0.25) = %v, want 50", got)
	}
}

func TestKelly_NeverExceedsCapOrFormula(t *testing.T) {
	bankroll, maxBet, fraction := 1000.0, 100.0, 0.25
	for p := 0.05; p < 1; p += 0.05 {
		for q := 0.05; q < 1; q += 0.05 {
			if p <= q {
				continue
			}
			got := Kelly(p, q, bankroll, maxBet, fraction)
			if got > maxBet {
				t.Fatalf("Kelly(%v, %v) = %v exceeds max bet %v", p, q, got, maxBet)
			}
			b := (1 - q) / q
			raw := ((b*p - (1 - p)) / b) * fraction * bankroll
			if got > raw+1e-9 {
				t.Fatalf("Kelly(%v, %v) = %v exceeds unclamped formula value %v", p, q, got, raw)
			}
			if got < 0 {
				t.Fatalf("Kelly(%v, %v) = %v is negative", p, q, got)
			}
		}
	}
}

func TestKelly_MarketAtZeroSaturates(t *testing.T) {
	// Implied odds diverge at q = 0; any positive edge takes the cap.
	if got := Kelly(0.3, 0, 1000, 100, 0.25); got != 100 {
		t.Errorf("Kelly(0.3, 0, ...) = %v, want 100", got)
	}
}
