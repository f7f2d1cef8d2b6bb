package redis

import (
	"context"
	"testing"
	"time"

	"federated-bank/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCache_RoundTripAndTTL(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAggregateCache(client)
	ctx := context.Background()

	bal := decimal.RequireFromString("120.50")
	entry := &domain.BankAccounts{
		BankCode:  "beta",
		ConsentID: "c-1",
		Accounts: []domain.AccountView{
			{AccountNumber: "B-1", Name: "Savings", Currency: "RUB", Status: "active", Balance: &bal},
		},
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}

	got, err := cache.Get(ctx, "beta", "c-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, entry, time.Minute))

	got, err = cache.Get(ctx, "beta", "c-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Accounts, 1)
	assert.True(t, got.Accounts[0].Balance.Equal(bal))

	// A different consent for the same bank is a separate entry.
	other, err := cache.Get(ctx, "beta", "c-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	s.FastForward(2 * time.Minute)
	got, err = cache.Get(ctx, "beta", "c-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAggregateCache_DeleteAndCorrupt(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAggregateCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.BankAccounts{BankCode: "beta", ConsentID: "c-1"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "beta", "c-1"))
	got, err := cache.Get(ctx, "beta", "c-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("aggregate:beta:c-9", "{not json"))
	got, err = cache.Get(ctx, "beta", "c-9")
	require.NoError(t, err)
	assert.Nil(t, got)
}
