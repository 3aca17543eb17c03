// Package sizing computes bet sizes with a fractional Kelly criterion.
package sizing

// Kelly returns the stake for an estimated win probability p against a
// market quoting probability q, scaled by the Kelly fraction and clamped
// to [0, maxBet].
//
// Fractional Kelly caps the volatility of a single estimate's error; the
// clamp both discards negative Kelly fractions and enforces the hard
// per-bet ceiling regardless of bankroll.
//
// Degenerate inputs resolve to a stake, never an error: p <= q or p
// outside (0, 1) returns 0. q = 0 means the implied odds diverge, so any
// positive edge saturates the cap and maxBet is returned; q = 1 leaves no
// p with an edge and returns 0.
func Kelly(p, q, bankroll, maxBet, fraction float64) float64 {
	if p <= q || p <= 0 || p >= 1 {
		return 0
	}
	if q <= 0 {
		return maxBet
	}

	// Full Kelly: k = (b*p - (1-p)) / b, with implied odds b = (1-q)/q.
	b := (1 - q) / q
	k := (b*p - (1 - p)) / b

	stake := k * fraction * bankroll
	if stake < 0 {
		return 0
	}
	if stake > maxBet {
		return maxBet
	}
	return stake
}
