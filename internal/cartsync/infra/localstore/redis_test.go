package localstore

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

// Requires Redis on localhost:6379; skipped otherwise.
const testRedisAddr = "localhost:6379"

func setupRedisStore(t *testing.T, prefix string) (*RedisStore, *redis.Client) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	client.Del(ctx, prefix+itemsKey, prefix+modeKey)
	t.Cleanup(func() {
		client.Del(ctx, prefix+itemsKey, prefix+modeKey)
		client.Close()
	})

	return NewRedisStore(client, prefix, 99, nil), client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := setupRedisStore(t, "cartsync:test:roundtrip:")

	assert.Empty(t, s.Load(ctx))

	require.NoError(t, s.Save(ctx, []cartdomain.CartItem{salmon(1, 1000)}))
	got := s.Load(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, 99, got[0].Quantity)
}

func TestRedisStoreCorrupt(t *testing.T) {
	ctx := context.Background()
	prefix := "cartsync:test:corrupt:"
	s, client := setupRedisStore(t, prefix)

	require.NoError(t, client.Set(ctx, prefix+itemsKey, "garbage", 0).Err())
	assert.Empty(t, s.Load(ctx))
}

func TestRedisStoreMode(t *testing.T) {
	ctx := context.Background()
	s, _ := setupRedisStore(t, "cartsync:test:mode:")

	assert.Equal(t, domain.Online, s.Mode(ctx))
	require.NoError(t, s.SetMode(ctx, domain.Offline))
	assert.Equal(t, domain.Offline, s.Mode(ctx))
}
