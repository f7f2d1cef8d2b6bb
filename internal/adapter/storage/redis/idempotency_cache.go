package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache is the fast path in front of the payments and
// inbound_transfers tables. A miss is never authoritative: callers fall
// back to the database row.
type IdempotencyCache struct {
	client    *goredis.Client
	namespace string
}

// NewIdempotencyCache keeps its keys under idem:<namespace>:, so payment
// replies and inbound acks can share one client.
func NewIdempotencyCache(client *goredis.Client, namespace string) *IdempotencyCache {
	return &IdempotencyCache{client: client, namespace: namespace}
}

func (c *IdempotencyCache) key(k string) string {
	return "idem:" + c.namespace + ":" + k
}

// Get returns nil, nil on a miss.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("idempotency get %s/%s: %w", c.namespace, key, err)
	}
	return val, nil
}

// Set stores a terminal reply. Non-terminal payments are never cached by
// the services, so overwriting is safe.
func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("idempotency set %s/%s: ttl must be positive", c.namespace, key)
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency set %s/%s: %w", c.namespace, key, err)
	}
	return nil
}
