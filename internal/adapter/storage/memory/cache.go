package memory

import (
	"context"
	"sync"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
)

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// IdempotencyCache implements ports.IdempotencyCache in process.
type IdempotencyCache struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

// NewIdempotencyCache creates an empty cache.
func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{items: make(map[string]cacheItem), now: time.Now}
}

func (c *IdempotencyCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return nil, nil
	}
	if !c.now().Before(it.expiresAt) {
		delete(c.items, key)
		return nil, nil
	}
	return it.value, nil
}

func (c *IdempotencyCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

type aggregateItem struct {
	entry     domain.BankAccounts
	expiresAt time.Time
}

// AggregateCache implements ports.AggregateCache in process.
type AggregateCache struct {
	mu    sync.RWMutex
	items map[string]aggregateItem
	now   func() time.Time
}

// NewAggregateCache creates an empty cache.
func NewAggregateCache() *AggregateCache {
	return &AggregateCache{items: make(map[string]aggregateItem), now: time.Now}
}

func aggregateKey(bank, consentID string) string { return bank + ":" + consentID }

func (c *AggregateCache) Get(_ context.Context, bankCode, consentID string) (*domain.BankAccounts, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[aggregateKey(bankCode, consentID)]
	if !ok || !c.now().Before(it.expiresAt) {
		return nil, nil
	}
	entry := it.entry
	return &entry, nil
}

func (c *AggregateCache) Set(_ context.Context, entry *domain.BankAccounts, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[aggregateKey(entry.BankCode, entry.ConsentID)] = aggregateItem{entry: *entry, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *AggregateCache) Delete(_ context.Context, bankCode, consentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, aggregateKey(bankCode, consentID))
	return nil
}

// NoopAggregateCache never stores anything.
type NoopAggregateCache struct{}

func (NoopAggregateCache) Get(context.Context, string, string) (*domain.BankAccounts, error) {
	return nil, nil
}
func (NoopAggregateCache) Set(context.Context, *domain.BankAccounts, time.Duration) error { return nil }
func (NoopAggregateCache) Delete(context.Context, string, string) error                   { return nil }

type window struct {
	id    int64
	count int64
}

// RateLimitStore implements ports.RateLimitStore with fixed windows in process.
type RateLimitStore struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

// NewRateLimitStore creates an empty limiter.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{windows: make(map[string]window), now: time.Now}
}

func (s *RateLimitStore) Allow(_ context.Context, key string, limit int64, win time.Duration) (*ports.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secs := int64(win.Seconds())
	if secs < 1 {
		secs = 1
	}
	id := s.now().Unix() / secs
	w := s.windows[key]
	if w.id != id {
		w = window{id: id}
	}
	w.count++
	s.windows[key] = w

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return &ports.RateLimitResult{
		Allowed:   w.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (id + 1) * secs,
	}, nil
}
