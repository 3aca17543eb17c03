// Package llm provides chat-completion back-ends for forecast strategies.
package llm

import "context"

// Completer is a single-round-trip text generator: one system instruction,
// one user message, one text reply.
type Completer interface {
	Model() string
	Complete(ctx context.Context, system, user string) (string, error)
}
