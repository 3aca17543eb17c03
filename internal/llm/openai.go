package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAI calls the OpenAI chat completions endpoint.
type OpenAI struct {
	http  *resty.Client
	model string
}

func NewOpenAI(apiKey, model string, opts ...BackendOption) *OpenAI {
	o := &OpenAI{
		http: resty.New().
			SetBaseURL(openAIBaseURL).
			SetTimeout(60 * time.Second).
			SetHeader("Authorization", "Bearer "+apiKey).
			SetHeader("Content-Type", "application/json"),
		model: model,
	}
	for _, opt := range opts {
		opt(o.http)
	}
	return o
}

// BackendOption adjusts the underlying HTTP client; tests use it to point
// a back-end at a local server.
type BackendOption func(*resty.Client)

func WithBaseURL(url string) BackendOption {
	return func(c *resty.Client) { c.SetBaseURL(url) }
}

func (o *OpenAI) Model() string { return o.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	body := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	}

	var out struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}

	res, err := o.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("openai: status %d: %s", res.StatusCode(), res.Body())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return out.Choices[0].Message.Content, nil
}
