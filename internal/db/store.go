package db

import (
	"database/sql"
	"fmt"

	"caissa/internal/manifold"
)

// Store records executed bets and the markets they were placed on. Open
// is the only constructor.
type Store struct {
	db *sql.DB
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for read-side consumers like the
// performance tracker.
func (s *Store) DB() *sql.DB { return s.db }

// EnsureMarket inserts a market record if it doesn't already exist.
func (s *Store) EnsureMarket(m manifold.Market) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO markets (id, question, outcome_type, creator_id, created_time, close_time, url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Question, m.OutcomeType, m.CreatorID, m.CreatedTime, m.CloseTime, m.URL,
	)
	if err != nil {
		return fmt.Errorf("inserting market: %w", err)
	}
	return nil
}

// RecordBet records an executed bet.
func (s *Store) RecordBet(marketID, strategy, outcome string, amount, estimatedProb, marketProb, confidence float64, providerBetID string) error {
	_, err := s.db.Exec(`
		INSERT INTO bot_bets (market_id, strategy, outcome, amount, estimated_prob, market_prob_at_bet, confidence, provider_bet_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		marketID, strategy, outcome, amount, estimatedProb, marketProb, confidence, providerBetID,
	)
	if err != nil {
		return fmt.Errorf("inserting bot_bet: %w", err)
	}
	return nil
}

// SnapshotBankroll records the notional bankroll and total wagered so far.
func (s *Store) SnapshotBankroll(bankroll float64) error {
	_, err := s.db.Exec(`
		INSERT INTO bankroll_snapshots (bankroll, wagered)
		VALUES (?, (SELECT COALESCE(SUM(amount), 0) FROM bot_bets))`,
		bankroll,
	)
	if err != nil {
		return fmt.Errorf("inserting bankroll snapshot: %w", err)
	}
	return nil
}
