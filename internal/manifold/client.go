// Package manifold is a rate-limited client for the Manifold Markets v0
// REST API.
package manifold

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.manifold.markets/v0"

	// Manifold allows 500 requests per minute per key; stay under it with
	// some headroom.
	defaultSoftCeiling = 450
	rateWindow         = time.Minute
)

// ErrUserNotFound is returned when a username does not resolve to a user.
// It is distinct from *APIError so callers can treat an unknown creator as
// a configuration problem rather than a transient provider failure.
var ErrUserNotFound = errors.New("manifold: user not found")

// APIError is a non-success response from the Manifold API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("manifold: status %d: %s", e.Status, e.Body)
}

// Client wraps the Manifold v0 API. Every call passes the rate-limit gate
// before going out on the wire.
type Client struct {
	http *resty.Client
	gate *limiter
}

type Option func(*Client)

// WithBaseURL overrides the API base URL (tests point this at httptest).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(url) }
}

// WithSoftCeiling overrides the per-minute request budget.
func WithSoftCeiling(n int) Option {
	return func(c *Client) { c.gate = newLimiter(n, rateWindow) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func NewClient(apiKey string, opts ...Option) *Client {
	hc := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Authorization", "Key "+apiKey).
		SetHeader("Content-Type", "application/json")

	c := &Client{
		http: hc,
		gate: newLimiter(defaultSoftCeiling, rateWindow),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetUser resolves a username to a user record.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	var user User
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/user/" + username)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", username, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return &user, nil
}

// GetUserMarkets returns markets created by the given username, resolving
// the username to an id first.
func (c *Client) GetUserMarkets(ctx context.Context, username string, limit int) ([]Market, error) {
	user, err := c.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	var markets []Market
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("userId", user.ID).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&markets).
		Get("/markets")
	if err != nil {
		return nil, fmt.Errorf("listing markets for %s: %w", username, err)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	return markets, nil
}

// GetMarket fetches one market by id.
func (c *Client) GetMarket(ctx context.Context, id string) (*Market, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	var market Market
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&market).
		Get("/market/" + id)
	if err != nil {
		return nil, fmt.Errorf("getting market %s: %w", id, err)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	return &market, nil
}

// GetMarketProbability fetches just the current probability of a market.
func (c *Client) GetMarketProbability(ctx context.Context, id string) (float64, error) {
	if err := c.gate.wait(ctx); err != nil {
		return 0, err
	}

	var out struct {
		Prob float64 `json:"prob"`
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/market/" + id + "/prob")
	if err != nil {
		return 0, fmt.Errorf("getting probability for %s: %w", id, err)
	}
	if res.IsError() {
		return 0, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	return out.Prob, nil
}

// PlaceBet submits a bet and returns the provider's confirmation.
func (c *Client) PlaceBet(ctx context.Context, req BetRequest) (*Bet, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	var bet Bet
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&bet).
		Post("/bet")
	if err != nil {
		return nil, fmt.Errorf("placing bet on %s: %w", req.ContractID, err)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	return &bet, nil
}

// GetBets lists bets filtered by username and/or contract id.
func (c *Client) GetBets(ctx context.Context, username, contractID string) ([]Bet, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	r := c.http.R().SetContext(ctx)
	if username != "" {
		r.SetQueryParam("username", username)
	}
	if contractID != "" {
		r.SetQueryParam("contractId", contractID)
	}

	var bets []Bet
	res, err := r.SetResult(&bets).Get("/bets")
	if err != nil {
		return nil, fmt.Errorf("listing bets: %w", err)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	return bets, nil
}

// SearchMarkets searches markets by term and/or creator id.
func (c *Client) SearchMarkets(ctx context.Context, term, creatorID string, limit int) ([]Market, error) {
	if err := c.gate.wait(ctx); err != nil {
		return nil, err
	}

	r := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit))
	if term != "" {
		r.SetQueryParam("term", term)
	}
	if creatorID != "" {
		r.SetQueryParam("creatorId", creatorID)
	}

	var markets []Market
	res, err := r.SetResult(&markets).Get("/search-markets")
	if err != nil {
		return nil, fmt.Errorf("searching markets: %w", err)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Body: string(res.Body())}
	}
	return markets, nil
}
