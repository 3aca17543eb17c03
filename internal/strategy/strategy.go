package strategy

import (
	"context"

	"caissa/internal/manifold"
)

// Signal is a strategy's recommendation for one market. A Signal is always
// present: strategies that fail internally degrade to a zero-confidence
// no-bet Signal instead of surfacing an error.
type Signal struct {
	ShouldBet       bool
	Outcome         string  // "YES" or "NO"
	Confidence      float64 // 0-1
	EstimatedProb   float64 // 0-1
	Reasoning       string
	SuggestedAmount *float64
}

// Strategy is the contract all forecast strategies implement. Analyze is
// total: it never returns an error, only a low-confidence Signal.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, market manifold.Market) Signal
}
