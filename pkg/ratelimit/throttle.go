package ratelimit

import (
	"context"
	"time"
)

// Throttle allows at most Limit events per key per Window.
type Throttle struct {
	counter Counter
	limit   int64
	window  time.Duration
}

func NewThrottle(counter Counter, limit int, window time.Duration) *Throttle {
	return &Throttle{counter: counter, limit: int64(limit), window: window}
}

// Allow records an attempt for key and reports whether it is within the
// limit. Attempts over the limit still count.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	n, err := t.counter.Incr(ctx, key, t.window)
	if err != nil {
		return false, err
	}
	return n <= t.limit, nil
}
