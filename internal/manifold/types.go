package manifold

import "time"

// OutcomeTypeBinary is the only market type the bot trades.
const OutcomeTypeBinary = "BINARY"

// Market is a point-in-time snapshot of a Manifold market. The bot never
// holds one beyond a single polling cycle.
type Market struct {
	ID              string  `json:"id"`
	Question        string  `json:"question"`
	TextDescription string  `json:"textDescription"`
	Probability     float64 `json:"probability"`
	OutcomeType     string  `json:"outcomeType"`
	IsResolved      bool    `json:"isResolved"`
	CloseTime       int64   `json:"closeTime"` // epoch millis
	CreatedTime     int64   `json:"createdTime"`
	Volume          float64 `json:"volume"`
	CreatorID       string  `json:"creatorId"`
	CreatorUsername string  `json:"creatorUsername"`
	URL             string  `json:"url"`
}

func (m Market) IsBinary() bool {
	return m.OutcomeType == OutcomeTypeBinary
}

// Closed reports whether the market has resolved or its close time has
// passed. A zero CloseTime means the market has no close time set.
func (m Market) Closed(now time.Time) bool {
	if m.IsResolved {
		return true
	}
	return m.CloseTime != 0 && m.CloseTime < now.UnixMilli()
}

// User is the subset of a Manifold user record the bot needs.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
}

// BetRequest is the payload for POST /bet.
type BetRequest struct {
	ContractID string   `json:"contractId"`
	Amount     float64  `json:"amount"`
	Outcome    string   `json:"outcome"` // "YES" or "NO"
	LimitProb  *float64 `json:"limitProb,omitempty"`
}

// Bet is a bet record, either a placement confirmation or an entry from
// GET /bets.
type Bet struct {
	ID         string  `json:"id"`
	ContractID string  `json:"contractId"`
	Amount     float64 `json:"amount"`
	Outcome    string  `json:"outcome"`
	ProbBefore float64 `json:"probBefore"`
	ProbAfter  float64 `json:"probAfter"`
	CreatedAt  int64   `json:"createdTime"`
}
