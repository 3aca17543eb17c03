package performance

import (
	"database/sql"
	"fmt"
)

// Tracker computes activity metrics from the recorded bets.
type Tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Report contains the aggregated metrics.
type Report struct {
	TotalBets     int
	TotalWagered  float64
	MarketsTraded int
	StrategyStats map[string]StrategyStats
}

// StrategyStats contains per-strategy activity.
type StrategyStats struct {
	BetCount      int
	Wagered       float64
	AvgConfidence float64
	AvgDivergence float64
}

// Generate computes the full report.
func (t *Tracker) Generate() (*Report, error) {
	r := &Report{
		StrategyStats: make(map[string]StrategyStats),
	}

	if err := t.computeOverall(r); err != nil {
		return nil, fmt.Errorf("computing overall stats: %w", err)
	}
	if err := t.computeStrategyStats(r); err != nil {
		return nil, fmt.Errorf("computing strategy stats: %w", err)
	}

	return r, nil
}

func (t *Tracker) computeOverall(r *Report) error {
	row := t.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COUNT(DISTINCT market_id)
		FROM bot_bets`)
	return row.Scan(&r.TotalBets, &r.TotalWagered, &r.MarketsTraded)
}

func (t *Tracker) computeStrategyStats(r *Report) error {
	rows, err := t.db.Query(`
		SELECT strategy, COUNT(*), COALESCE(SUM(amount), 0),
		       COALESCE(AVG(confidence), 0),
		       COALESCE(AVG(ABS(estimated_prob - market_prob_at_bet)), 0)
		FROM bot_bets GROUP BY strategy`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var stats StrategyStats
		if err := rows.Scan(&name, &stats.BetCount, &stats.Wagered, &stats.AvgConfidence, &stats.AvgDivergence); err != nil {
			return err
		}
		r.StrategyStats[name] = stats
	}
	return rows.Err()
}
