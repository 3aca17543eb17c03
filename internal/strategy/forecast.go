package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"caissa/internal/llm"
	"caissa/internal/manifold"
)

const (
	// A forecast is actionable when it diverges from the market by at
	// least this much and the model reports at least this confidence.
	minDivergence        = 0.05
	actionableConfidence = 0.6

	systemPrompt = "You are an expert prediction market analyst. Provide objective probability estimates based on facts and reasoning."
)

// Forecast asks a completion back-end to estimate the true probability of
// a binary market. All back-ends share the same prompt, reply format, and
// decision thresholds; only the Completer differs.
type Forecast struct {
	name      string
	completer llm.Completer
}

func NewForecast(name string, completer llm.Completer) *Forecast {
	return &Forecast{name: name, completer: completer}
}

func (f *Forecast) Name() string { return f.name }

func (f *Forecast) Analyze(ctx context.Context, market manifold.Market) Signal {
	prompt := buildPrompt(market)

	reply, err := f.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		slog.Warn("forecast back-end failed",
			"strategy", f.name,
			"market", market.ID,
			"error", err,
		)
		return noSignal(market.Probability, fmt.Sprintf("back-end error: %v", err))
	}

	sig, err := parseReply(reply, market.Probability)
	if err != nil {
		slog.Warn("forecast reply unparseable",
			"strategy", f.name,
			"market", market.ID,
			"error", err,
			"reply", reply,
		)
		return noSignal(market.Probability, fmt.Sprintf("parse error: %v", err))
	}
	return sig
}

func buildPrompt(m manifold.Market) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this prediction market and estimate the probability of YES.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", m.Question)
	fmt.Fprintf(&b, "Description: %s\n\n", m.TextDescription)
	fmt.Fprintf(&b, "Current market probability: %.1f%%\n\n", m.Probability*100)
	b.WriteString(`Please provide:
1. Your estimated probability of YES (0-100%)
2. Your confidence in this estimate (0-100%)
3. Brief reasoning (2-3 sentences)

Respond in this exact format:
PROBABILITY: [number]
CONFIDENCE: [number]
REASONING: [your reasoning]

Example:
PROBABILITY: 65
CONFIDENCE: 75
REASONING: Based on historical data and current trends, the outcome is more likely than not. However, there is uncertainty due to external factors that could change the situation.
`)
	return b.String()
}

// parseReply extracts the three expected lines from a back-end reply.
// Either numeric line missing or unparseable fails the whole reply.
func parseReply(reply string, marketProb float64) (Signal, error) {
	var (
		probability, confidence *float64
		reasoning               string
	)

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "PROBABILITY:"):
			v, err := parsePercent(line)
			if err != nil {
				return Signal{}, fmt.Errorf("probability line: %w", err)
			}
			probability = &v
		case strings.HasPrefix(line, "CONFIDENCE:"):
			v, err := parsePercent(line)
			if err != nil {
				return Signal{}, fmt.Errorf("confidence line: %w", err)
			}
			confidence = &v
		case strings.HasPrefix(line, "REASONING:"):
			reasoning = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		}
	}

	if probability == nil || confidence == nil {
		return Signal{}, fmt.Errorf("missing PROBABILITY or CONFIDENCE line")
	}

	divergence := math.Abs(*probability - marketProb)
	shouldBet := divergence >= minDivergence && *confidence >= actionableConfidence

	outcome := "NO"
	if *probability > marketProb {
		outcome = "YES"
	}

	return Signal{
		ShouldBet:     shouldBet,
		Outcome:       outcome,
		Confidence:    *confidence,
		EstimatedProb: *probability,
		Reasoning:     reasoning,
	}, nil
}

// parsePercent reads the first colon-delimited field after the prefix as a
// 0-100 number and scales it to 0-1.
func parsePercent(line string) (float64, error) {
	fields := strings.Split(line, ":")
	if len(fields) < 2 {
		return 0, fmt.Errorf("no value after prefix")
	}
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(fields[1]), "%"))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", raw, err)
	}
	return v / 100, nil
}

func noSignal(marketProb float64, reason string) Signal {
	return Signal{
		ShouldBet:     false,
		Outcome:       "YES",
		Confidence:    0,
		EstimatedProb: marketProb,
		Reasoning:     reason,
	}
}
