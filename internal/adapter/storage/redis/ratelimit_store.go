package redis

import (
	"context"
	"fmt"
	"time"

	"federated-bank/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimitStore counts requests per caller in fixed windows. Counters of
// every bank instance behind the same redis are shared.
type RateLimitStore struct {
	client *goredis.Client
}

func NewRateLimitStore(client *goredis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// windowKey scopes the counter to the window number, so a counter never
// needs resetting: the next window simply uses a new key.
func windowKey(key string, window time.Duration, now time.Time) (string, int64) {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	id := now.Unix() / secs
	return fmt.Sprintf("ratelimit:%s:%d", key, id), (id + 1) * secs
}

// Allow increments the caller's counter and its expiry in one round trip.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	redisKey, resetAt := windowKey(key, window, time.Now())

	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, window+time.Second)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := incr.Val()
	return &ports.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}, nil
}
