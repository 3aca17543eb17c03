package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAI_Complete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "PROBABILITY: 60"}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o := NewOpenAI("sk-test", "gpt-4o-mini", WithBaseURL(srv.URL))
	reply, err := o.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "PROBABILITY: 60" {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestOpenAI_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", "gpt-4o-mini", WithBaseURL(srv.URL))
	if _, err := o.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestAnthropic_Complete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "ak-test" {
			t.Errorf("unexpected x-api-key header %q", got)
		}
		var req struct {
			System   string `json:"system"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.System != "sys" {
			t.Errorf("expected system prompt in system field, got %q", req.System)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "CONFIDENCE: 70"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAnthropic("ak-test", "claude-3-5-haiku-latest", WithBaseURL(srv.URL))
	reply, err := a.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "CONFIDENCE: 70" {
		t.Errorf("unexpected reply %q", reply)
	}
}
