package lease

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) (*RedisLease, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	l, err := Connect(context.Background(), Config{Addr: srv.Addr(), TTL: time.Minute})
	require.NoError(t, err)

	t.Cleanup(func() { l.Close() })

	return l, srv
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()
	l, srv := connect(t)

	ok, err := l.Acquire(ctx, "tick:1", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	owner, err := srv.Get("tick:1")
	require.NoError(t, err)
	assert.Equal(t, l.owner, owner)
	assert.Equal(t, 5*time.Minute, srv.TTL("tick:1"))

	ok, err = l.Acquire(ctx, "tick:1", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held key is not granted twice")

	ok, err = l.Acquire(ctx, "tick:2", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "another key is independent")

	srv.FastForward(5 * time.Minute)

	ok, err = l.Acquire(ctx, "tick:1", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key is granted again")
}

func TestAcquireCompeting(t *testing.T) {
	ctx := context.Background()
	a, srv := connect(t)

	b, err := Connect(ctx, Config{Addr: srv.Addr()})
	require.NoError(t, err)
	defer b.Close()

	ok, err := a.Acquire(ctx, "tick", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, "tick", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcquireServerDown(t *testing.T) {
	l, srv := connect(t)
	srv.Close()

	_, err := l.Acquire(context.Background(), "tick", time.Minute)
	assert.Error(t, err)
}

func TestConnectUnreachable(t *testing.T) {
	l, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Nil(t, l)
	assert.Contains(t, err.Error(), "cant connect to redis")
}

func TestNewRedisLeaseOwner(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	a, b := NewRedisLease(client), NewRedisLease(client)
	assert.NotEmpty(t, a.owner)
	assert.NotEqual(t, a.owner, b.owner)

	require.NoError(t, a.Close())
}
