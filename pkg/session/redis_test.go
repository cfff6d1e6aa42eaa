package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "app_token", ttl, zap.NewNop()), mr
}

func TestRedisStore_SetThenGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, 0)
	defer mr.Close()

	require.NoError(t, s.Set(ctx, "abc123"))

	got, ok := s.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc123", got)

	raw, err := mr.Get("app_token:" + s.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "abc123", raw, "slot holds the raw token string")
}

func TestRedisStore_EmptySlotReadsAbsent(t *testing.T) {
	s, mr := newTestRedisStore(t, 0)
	defer mr.Close()

	v, ok := s.Get(context.Background())
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestRedisStore_SetReplacesAndClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, 0)
	defer mr.Close()

	require.NoError(t, s.Set(ctx, "first"))
	require.NoError(t, s.Set(ctx, "second"))
	got, _ := s.Get(ctx)
	assert.Equal(t, "second", got)

	s.Clear(ctx)
	s.Clear(ctx)
	_, ok := s.Get(ctx)
	assert.False(t, ok)
}

func TestRedisStore_SessionsDoNotShareSlots(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestRedisStore(t, 0)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close() //nolint:errcheck
	b := NewRedisStore(rdb, "app_token", 0, zap.NewNop())

	require.NoError(t, a.Set(ctx, "only-a"))

	_, ok := b.Get(ctx)
	assert.False(t, ok)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestRedisStore_TTLExpiryReadsAbsent(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)
	defer mr.Close()

	require.NoError(t, s.Set(ctx, "abc"))
	mr.FastForward(2 * time.Minute)

	_, ok := s.Get(ctx)
	assert.False(t, ok)
}

func TestRedisStore_BackendDown(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, 0)
	require.NoError(t, s.Set(ctx, "abc"))

	// Close miniredis to simulate failure
	mr.Close()

	_, ok := s.Get(ctx)
	assert.False(t, ok, "read failures degrade to absent")

	err := s.Set(ctx, "def")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session store set")

	assert.NotPanics(t, func() { s.Clear(ctx) })
}

func TestRedisStore_CloseRemovesSlot(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, 0)
	defer mr.Close()

	require.NoError(t, s.Set(ctx, "abc"))
	s.Close(ctx)

	assert.False(t, mr.Exists("app_token:"+s.SessionID()))
}

func TestRedisStore_SetEmptyReadsAbsent(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, 0)
	defer mr.Close()

	require.NoError(t, s.Set(ctx, ""))
	v, ok := s.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, "", v)

	require.NoError(t, s.Set(ctx, "abc123"))
	require.NoError(t, s.Set(ctx, ""))
	v, ok = s.Get(ctx)
	assert.False(t, ok, "setting an empty value drops the previous credential")
	assert.Equal(t, "", v)
	assert.False(t, mr.Exists("app_token:"+s.SessionID()))
}
