package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/cache"
)

var ctx = context.Background()

func newRedis(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedis(client, "bizadmin:", time.Minute), mr
}

func TestRedis_Get(t *testing.T) {
	t.Parallel()

	t.Run("miss", func(t *testing.T) {
		t.Parallel()

		c, _ := newRedis(t)

		data, found, err := c.Get(ctx, "crm.titles")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("hit", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedis(t)

		require.NoError(t, c.Set(ctx, "crm.titles", []byte(`{"items":[]}`)))
		assert.True(t, mr.Exists("bizadmin:crm.titles"), "key is prefixed")

		data, found, err := c.Get(ctx, "crm.titles")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"items":[]}`), data)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedis(t)

		require.NoError(t, c.Set(ctx, "crm.titles", []byte("[]")))
		mr.FastForward(2 * time.Minute)

		_, found, err := c.Get(ctx, "crm.titles")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("redis down", func(t *testing.T) {
		t.Parallel()

		c, mr := newRedis(t)
		mr.Close()

		_, found, err := c.Get(ctx, "crm.titles")
		assert.ErrorIs(t, err, cache.ErrCache)
		assert.False(t, found)
		assert.ErrorIs(t, c.Ping(ctx), cache.ErrCache)
	})
}

func TestRedis_Delete(t *testing.T) {
	t.Parallel()

	c, mr := newRedis(t)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))

	assert.NoError(t, c.Delete(ctx))
	assert.NoError(t, c.Delete(ctx, "a", "b", "not-existing"))
	assert.False(t, mr.Exists("bizadmin:a"))
	assert.False(t, mr.Exists("bizadmin:b"))
}
