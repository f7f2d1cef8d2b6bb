package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"federated-bank/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// AggregateCache implements ports.AggregateCache. Each (bank, consent) pair
// is one JSON value with its own TTL.
type AggregateCache struct {
	client *goredis.Client
	prefix string
}

// NewAggregateCache creates a Redis-backed aggregation cache.
func NewAggregateCache(client *goredis.Client) *AggregateCache {
	return &AggregateCache{client: client, prefix: "aggregate:"}
}

func (c *AggregateCache) key(bankCode, consentID string) string {
	return c.prefix + bankCode + ":" + consentID
}

// Get returns nil, nil on a miss.
func (c *AggregateCache) Get(ctx context.Context, bankCode, consentID string) (*domain.BankAccounts, error) {
	raw, err := c.client.Get(ctx, c.key(bankCode, consentID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis aggregate get: %w", err)
	}
	var entry domain.BankAccounts
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry behaves like a miss and is overwritten on refresh.
		return nil, nil
	}
	return &entry, nil
}

// Set stores one bank's listing.
func (c *AggregateCache) Set(ctx context.Context, entry *domain.BankAccounts, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal aggregate entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(entry.BankCode, entry.ConsentID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis aggregate set: %w", err)
	}
	return nil
}

// Delete drops one bank's listing.
func (c *AggregateCache) Delete(ctx context.Context, bankCode, consentID string) error {
	if err := c.client.Del(ctx, c.key(bankCode, consentID)).Err(); err != nil {
		return fmt.Errorf("redis aggregate delete: %w", err)
	}
	return nil
}
