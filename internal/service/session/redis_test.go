package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, 30*time.Minute, zap.NewNop())
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	_, ok, err := store.Load(ctx, "sid", "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "sid", loadedState("abc")))

	got, ok, err := store.Load(ctx, "sid", "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.PhaseLoaded, got.Phase)
	assert.Equal(t, "García", got.Profile.LastName)
	assert.Empty(t, got.Pin)

	raw, err := mr.Get("attendee:session:sid:abc")
	require.NoError(t, err)
	assert.NotContains(t, raw, "1234")
	assert.False(t, strings.Contains(raw, `"pin"`))
	assert.Equal(t, 30*time.Minute, mr.TTL("attendee:session:sid:abc"))
}

func TestRedisStoreExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, store.Save(ctx, "sid", loadedState("abc")))

	mr.FastForward(31 * time.Minute)

	_, ok, err := store.Load(ctx, "sid", "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("attendee:session:sid:abc", "{not json"))

	_, ok, err := store.Load(ctx, "sid", "abc")

	assert.False(t, ok)
	assert.Error(t, err)
}

func TestRedisStorePing(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	assert.NoError(t, store.Ping(ctx))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{Host: "127.0.0.1", Port: 1, TTL: time.Minute}, zap.NewNop())
	assert.Error(t, err)
}
