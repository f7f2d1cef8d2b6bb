package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowKey(t *testing.T) {
	now := time.Unix(1_700_000_030, 0)

	key, reset := windowKey("bank:beta:interbank", time.Minute, now)
	assert.Equal(t, "ratelimit:bank:beta:interbank:28333333", key)
	assert.Equal(t, int64(1_700_000_040), reset)

	// Sub-second windows round up to one second.
	_, reset = windowKey("k", 10*time.Millisecond, now)
	assert.Equal(t, int64(1_700_000_031), reset)
}

func TestRateLimitStore_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRateLimitStore(client)
	ctx := context.Background()

	tests := []struct {
		key       string
		limit     int64
		calls     int
		allowed   bool
		remaining int64
	}{
		{key: "client:alice:payments", limit: 3, calls: 3, allowed: true, remaining: 0},
		{key: "client:bob:payments", limit: 3, calls: 4, allowed: false, remaining: 0},
		{key: "bank:beta:interbank", limit: 10, calls: 1, allowed: true, remaining: 9},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var allowed bool
			var remaining int64
			for i := 0; i < tt.calls; i++ {
				res, err := store.Allow(ctx, tt.key, tt.limit, time.Minute)
				require.NoError(t, err)
				assert.Equal(t, tt.limit, res.Limit)
				assert.Greater(t, res.ResetAt, time.Now().Unix()-1)
				allowed, remaining = res.Allowed, res.Remaining
			}
			assert.Equal(t, tt.allowed, allowed)
			assert.Equal(t, tt.remaining, remaining)
		})
	}
}

func TestRateLimitStore_CountersExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRateLimitStore(client)
	ctx := context.Background()

	_, err := store.Allow(ctx, "ip:10.0.0.1:auth_login", 1, time.Minute)
	require.NoError(t, err)
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, 61*time.Second, mr.TTL(keys[0]))

	mr.FastForward(62 * time.Second)
	assert.False(t, mr.Exists(keys[0]))
}

func TestRateLimitStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRateLimitStore(client)
	mr.Close()

	_, err := store.Allow(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
