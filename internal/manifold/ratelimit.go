package manifold

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// limiter self-throttles requests against a rolling window budget. It is
// advisory: it keeps this one process under the upstream per-key budget
// and makes no attempt at coordination across processes.
type limiter struct {
	mu          sync.Mutex
	window      time.Duration
	ceiling     int
	count       int
	windowStart time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newLimiter(ceiling int, window time.Duration) *limiter {
	return &limiter{
		window:  window,
		ceiling: ceiling,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// wait accounts for one request, blocking until the window resets if the
// ceiling has been reached within it. Returns early only on context
// cancellation.
func (l *limiter) wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() {
		l.windowStart = now
	}

	elapsed := now.Sub(l.windowStart)
	if elapsed > l.window {
		l.count = 0
		l.windowStart = now
		elapsed = 0
	}

	l.count++
	if l.count <= l.ceiling {
		return nil
	}

	remaining := l.window - elapsed
	slog.Warn("rate limit ceiling reached, pausing",
		"ceiling", l.ceiling,
		"wait", remaining,
	)
	if err := l.sleep(ctx, remaining); err != nil {
		// Undo the reservation so a cancelled call isn't counted.
		l.count--
		return err
	}

	l.count = 1
	l.windowStart = l.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
