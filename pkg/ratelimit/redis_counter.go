package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a Counter shared by every instance using the same Redis.
type RedisCounter struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCounter namespaces all keys under prefix.
func NewRedisCounter(client redis.Cmdable, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

// Incr increments the key and sets its TTL only when the key is new, so the
// window is anchored at the first event.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := c.prefix + key

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.ExpireNX(ctx, fullKey, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", fullKey, err)
	}
	return incr.Val(), nil
}
