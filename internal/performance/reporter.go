package performance

import (
	"log/slog"
)

// LogReport logs the report as structured JSON.
func LogReport(r *Report) {
	slog.Info("activity report",
		"total_bets", r.TotalBets,
		"total_wagered", r.TotalWagered,
		"markets_traded", r.MarketsTraded,
	)

	for name, stats := range r.StrategyStats {
		slog.Info("strategy activity",
			"strategy", name,
			"bets", stats.BetCount,
			"wagered", stats.Wagered,
			"avg_confidence", stats.AvgConfidence,
			"avg_divergence", stats.AvgDivergence,
		)
	}
}
