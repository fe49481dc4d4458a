package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Counter counts events per key inside a fixed window that starts with the
// key's first event.
type Counter interface {
	// Incr records one event for key and returns the count in the current
	// window, including this one.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type window struct {
	count   int64
	resetAt time.Time
}

// InMemoryCounter is a process-local Counter.
type InMemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewInMemoryCounter() *InMemoryCounter {
	return &InMemoryCounter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (c *InMemoryCounter) Incr(ctx context.Context, key string, d time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.resetAt) {
		c.sweep(now)
		w = &window{resetAt: now.Add(d)}
		c.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// sweep drops finished windows. Callers hold the lock.
func (c *InMemoryCounter) sweep(now time.Time) {
	for k, w := range c.windows {
		if !now.Before(w.resetAt) {
			delete(c.windows, k)
		}
	}
}
