package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"caissa/internal/manifold"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Model() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return f.reply, f.err
}

func binaryMarket(prob float64) manifold.Market {
	return manifold.Market{
		ID:          "mkt-1",
		Question:    "Will it happen?",
		Probability: prob,
		OutcomeType: manifold.OutcomeTypeBinary,
	}
}

func TestForecast_ActionableSignal(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{reply: "PROBABILITY: 65\nCONFIDENCE: 75\nREASONING: strong base rate"})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if !sig.ShouldBet {
		t.Error("expected ShouldBet with 15 point divergence and 0.75 confidence")
	}
	if sig.Outcome != "YES" {
		t.Errorf("expected YES outcome, got %s", sig.Outcome)
	}
	if sig.EstimatedProb != 0.65 {
		t.Errorf("expected estimated probability 0.65, got %v", sig.EstimatedProb)
	}
	if sig.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", sig.Confidence)
	}
	if sig.Reasoning != "strong base rate" {
		t.Errorf("unexpected reasoning %q", sig.Reasoning)
	}
}

func TestForecast_DirectionAgainst(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{reply: "PROBABILITY: 30\nCONFIDENCE: 80\nREASONING: unlikely"})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if sig.Outcome != "NO" {
		t.Errorf("expected NO outcome when estimate is below market, got %s", sig.Outcome)
	}
	if !sig.ShouldBet {
		t.Error("expected ShouldBet")
	}
}

func TestForecast_InsufficientDivergence(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{reply: "PROBABILITY: 53\nCONFIDENCE: 90\nREASONING: close call"})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if sig.ShouldBet {
		t.Error("expected no bet with 3 point divergence")
	}
}

func TestForecast_InsufficientConfidence(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{reply: "PROBABILITY: 70\nCONFIDENCE: 40\nREASONING: uncertain"})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if sig.ShouldBet {
		t.Error("expected no bet with confidence 0.40")
	}
}

func TestForecast_MalformedReply(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"missing probability", "CONFIDENCE: 80\nREASONING: x"},
		{"missing confidence", "PROBABILITY: 70\nREASONING: x"},
		{"non-numeric probability", "PROBABILITY: high\nCONFIDENCE: 80\nREASONING: x"},
		{"free text", "I think this is likely to resolve YES."},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewForecast("test", &fakeCompleter{reply: tc.reply})

			sig := f.Analyze(context.Background(), binaryMarket(0.42))

			if sig.ShouldBet {
				t.Error("expected no bet on malformed reply")
			}
			if sig.Confidence != 0 {
				t.Errorf("expected confidence exactly 0, got %v", sig.Confidence)
			}
			if sig.EstimatedProb != 0.42 {
				t.Errorf("expected estimate to default to market probability, got %v", sig.EstimatedProb)
			}
		})
	}
}

func TestForecast_BackendError(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{err: errors.New("connection refused")})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if sig.ShouldBet {
		t.Error("expected no bet on back-end error")
	}
	if sig.Confidence != 0 {
		t.Errorf("expected confidence exactly 0, got %v", sig.Confidence)
	}
	if !strings.Contains(sig.Reasoning, "connection refused") {
		t.Errorf("expected failure reason in reasoning, got %q", sig.Reasoning)
	}
}

func TestForecast_ReasoningKeepsColons(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{reply: "PROBABILITY: 70\nCONFIDENCE: 80\nREASONING: key factors: polling, turnout"})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if sig.Reasoning != "key factors: polling, turnout" {
		t.Errorf("expected remainder after first colon verbatim, got %q", sig.Reasoning)
	}
}

func TestForecast_PercentSignTolerated(t *testing.T) {
	f := NewForecast("test", &fakeCompleter{reply: "PROBABILITY: 65%\nCONFIDENCE: 75%\nREASONING: x"})

	sig := f.Analyze(context.Background(), binaryMarket(0.5))

	if sig.EstimatedProb != 0.65 || sig.Confidence != 0.75 {
		t.Errorf("expected 0.65/0.75, got %v/%v", sig.EstimatedProb, sig.Confidence)
	}
}

func TestBuildPrompt_ContainsMarketContext(t *testing.T) {
	m := binaryMarket(0.37)
	m.TextDescription = "Resolves YES if the event occurs before 2027."

	prompt := buildPrompt(m)

	for _, want := range []string{
		"Will it happen?",
		"Resolves YES if the event occurs before 2027.",
		"37.0%",
		"PROBABILITY:",
		"CONFIDENCE:",
		"REASONING:",
		"Example:",
		"PROBABILITY: 65",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
