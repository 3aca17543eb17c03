// Package monitor runs the polling and decision pipeline: fetch a
// creator's markets, analyze the unseen ones, and act on the first
// actionable signal per market.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"caissa/internal/manifold"
	"caissa/internal/performance"
	"caissa/internal/sizing"
	"caissa/internal/strategy"
)

// MarketSource is the slice of the provider client the monitor needs.
type MarketSource interface {
	GetUserMarkets(ctx context.Context, username string, limit int) ([]manifold.Market, error)
	PlaceBet(ctx context.Context, req manifold.BetRequest) (*manifold.Bet, error)
}

// Recorder persists executed bets. A nil Recorder disables recording.
type Recorder interface {
	EnsureMarket(m manifold.Market) error
	RecordBet(marketID, strategy, outcome string, amount, estimatedProb, marketProb, confidence float64, providerBetID string) error
	SnapshotBankroll(bankroll float64) error
}

type Config struct {
	Creator        string
	PollInterval   time.Duration
	Cooldown       time.Duration
	MarketLimit    int
	ReportInterval time.Duration

	Bankroll      float64
	MaxBet        float64
	KellyFraction float64
	MinConfidence float64
	MinStake      float64

	Simulate bool
}

// Monitor owns the processed-market set and the polling loop. The set
// lives only for the process lifetime; a restart starts fresh.
type Monitor struct {
	source     MarketSource
	strategies []strategy.Strategy
	recorder   Recorder
	tracker    *performance.Tracker
	cfg        Config

	processed map[string]struct{}

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func New(source MarketSource, strategies []strategy.Strategy, recorder Recorder, tracker *performance.Tracker, cfg Config) *Monitor {
	return &Monitor{
		source:     source,
		strategies: strategies,
		recorder:   recorder,
		tracker:    tracker,
		cfg:        cfg,
		processed:  make(map[string]struct{}),
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// Run polls until the context is cancelled or maxCycles cycles have run.
// maxCycles <= 0 means run indefinitely. A failed cycle is logged and
// followed by the cooldown pause; the loop itself only stops on
// cancellation, cycle exhaustion, or an unknown target creator.
func (m *Monitor) Run(ctx context.Context, maxCycles int) error {
	// Running without strategies is a valid degraded state: every market
	// gets filtered and marked processed, none produce a signal.
	slog.Info("monitor starting",
		"creator", m.cfg.Creator,
		"strategies", len(m.strategies),
		"poll_interval", m.cfg.PollInterval,
		"simulate", m.cfg.Simulate,
	)

	lastReport := m.now()
	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Checked at the head so the limit holds even when every cycle
		// fails and takes the cooldown path.
		if maxCycles > 0 && cycle > maxCycles {
			slog.Info("reached cycle limit, stopping", "cycles", maxCycles)
			return nil
		}

		slog.Info("starting cycle", "cycle", cycle)
		if err := m.runCycle(ctx); err != nil {
			if errors.Is(err, manifold.ErrUserNotFound) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("cycle failed", "cycle", cycle, "error", err)
			if err := m.sleep(ctx, m.cfg.Cooldown); err != nil {
				return err
			}
			continue
		}

		if m.tracker != nil && m.cfg.ReportInterval > 0 && m.now().Sub(lastReport) >= m.cfg.ReportInterval {
			m.report()
			lastReport = m.now()
		}

		if err := m.sleep(ctx, m.cfg.PollInterval); err != nil {
			return err
		}
	}
}

func (m *Monitor) runCycle(ctx context.Context) error {
	markets, err := m.source.GetUserMarkets(ctx, m.cfg.Creator, m.cfg.MarketLimit)
	if err != nil {
		return fmt.Errorf("fetching markets: %w", err)
	}

	fresh := 0
	for _, market := range markets {
		if _, seen := m.processed[market.ID]; seen {
			continue
		}
		fresh++
		m.processMarket(ctx, market)
		m.processed[market.ID] = struct{}{}
	}

	slog.Info("cycle complete", "markets", len(markets), "new", fresh)
	return nil
}

// processMarket runs one market through filter, analysis, consensus, and
// execution. Whatever happens, the caller marks the market processed.
func (m *Monitor) processMarket(ctx context.Context, market manifold.Market) {
	slog.Info("analyzing market",
		"market", market.ID,
		"question", market.Question,
		"probability", market.Probability,
		"volume", market.Volume,
	)

	if market.Closed(m.now()) {
		slog.Info("market closed or resolved, skipping", "market", market.ID)
		return
	}
	if !market.IsBinary() {
		slog.Info("non-binary market, skipping",
			"market", market.ID,
			"outcome_type", market.OutcomeType,
		)
		return
	}

	// Every strategy gets to look at the market; only the first actionable
	// signal in registration order is executed.
	var winner *strategy.Signal
	var winnerName string
	for _, strat := range m.strategies {
		sig := strat.Analyze(ctx, market)
		slog.Info("signal",
			"strategy", strat.Name(),
			"market", market.ID,
			"should_bet", sig.ShouldBet,
			"outcome", sig.Outcome,
			"confidence", sig.Confidence,
			"estimated_prob", sig.EstimatedProb,
			"reasoning", sig.Reasoning,
		)
		if winner == nil && sig.ShouldBet && sig.Confidence >= m.cfg.MinConfidence {
			winner = &sig
			winnerName = strat.Name()
		}
	}

	if winner == nil {
		slog.Info("no signal met confidence threshold", "market", market.ID)
		return
	}

	m.execute(ctx, market, winnerName, *winner)
}

func (m *Monitor) execute(ctx context.Context, market manifold.Market, strategyName string, sig strategy.Signal) {
	stake := sizing.Kelly(sig.EstimatedProb, market.Probability, m.cfg.Bankroll, m.cfg.MaxBet, m.cfg.KellyFraction)
	if stake < m.cfg.MinStake {
		slog.Info("stake below minimum, skipping",
			"market", market.ID,
			"stake", stake,
			"min_stake", m.cfg.MinStake,
		)
		return
	}

	slog.Info("trade signal",
		"strategy", strategyName,
		"market", market.ID,
		"question", market.Question,
		"outcome", sig.Outcome,
		"stake", stake,
		"confidence", sig.Confidence,
	)

	if m.cfg.Simulate {
		slog.Info("simulation mode, bet not placed", "market", market.ID, "stake", stake)
		return
	}

	bet, err := m.source.PlaceBet(ctx, manifold.BetRequest{
		ContractID: market.ID,
		Amount:     stake,
		Outcome:    sig.Outcome,
	})
	if err != nil {
		slog.Error("bet submission failed", "market", market.ID, "error", err)
		return
	}

	slog.Info("bet placed",
		"market", market.ID,
		"bet_id", bet.ID,
		"outcome", sig.Outcome,
		"stake", stake,
	)

	m.record(market, strategyName, sig, stake, bet.ID)
}

func (m *Monitor) record(market manifold.Market, strategyName string, sig strategy.Signal, stake float64, betID string) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.EnsureMarket(market); err != nil {
		slog.Error("failed to record market", "market", market.ID, "error", err)
		return
	}
	if err := m.recorder.RecordBet(market.ID, strategyName, sig.Outcome, stake, sig.EstimatedProb, market.Probability, sig.Confidence, betID); err != nil {
		slog.Error("failed to record bet", "market", market.ID, "error", err)
	}
	if err := m.recorder.SnapshotBankroll(m.cfg.Bankroll); err != nil {
		slog.Error("failed to snapshot bankroll", "error", err)
	}
}

func (m *Monitor) report() {
	report, err := m.tracker.Generate()
	if err != nil {
		slog.Error("activity report failed", "error", err)
		return
	}
	performance.LogReport(report)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
