package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// Anthropic calls the Anthropic messages endpoint.
type Anthropic struct {
	http  *resty.Client
	model string
}

func NewAnthropic(apiKey, model string, opts ...BackendOption) *Anthropic {
	a := &Anthropic{
		http: resty.New().
			SetBaseURL(anthropicBaseURL).
			SetTimeout(60 * time.Second).
			SetHeader("x-api-key", apiKey).
			SetHeader("anthropic-version", "2023-06-01").
			SetHeader("Content-Type", "application/json"),
		model: model,
	}
	for _, opt := range opts {
		opt(a.http)
	}
	return a
}

func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Complete(ctx context.Context, system, user string) (string, error) {
	body := struct {
		Model     string        `json:"model"`
		System    string        `json:"system"`
		Messages  []chatMessage `json:"messages"`
		MaxTokens int           `json:"max_tokens"`
	}{
		Model:     a.model,
		System:    system,
		Messages:  []chatMessage{{Role: "user", Content: user}},
		MaxTokens: 500,
	}

	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	res, err := a.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("anthropic: status %d: %s", res.StatusCode(), res.Body())
	}
	for _, block := range out.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: empty response")
}
