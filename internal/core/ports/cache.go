package ports

import (
	"context"
	"time"

	"federated-bank/internal/core/domain"
)

// IdempotencyCache is the fast-path store for replayable responses.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AggregateCache holds one peer's account listing per (bank, consent).
// It is an optimisation only; a miss always falls back to the peer.
type AggregateCache interface {
	Get(ctx context.Context, bankCode, consentID string) (*domain.BankAccounts, error) // nil on miss
	Set(ctx context.Context, entry *domain.BankAccounts, ttl time.Duration) error
	Delete(ctx context.Context, bankCode, consentID string) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}
