package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_BasicOperations(t *testing.T) {
	c := NewInMemoryCache(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key1", []byte("value1"), time.Second))

	value, found, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value1"), value)

	_, found, err = c.Get(ctx, "nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryCache_ValuesAreCopied(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, time.Second))
	in[0] = 'x'

	out, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[0] = 'y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestInMemoryCache_Expiration(t *testing.T) {
	c := NewInMemoryCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "expire", []byte("value"), 50*time.Millisecond))

	_, found, _ := c.Get(ctx, "expire")
	assert.True(t, found)

	now = now.Add(60 * time.Millisecond)
	_, found, _ = c.Get(ctx, "expire")
	assert.False(t, found)

	// still stored until cleanup runs
	assert.Equal(t, 1, c.Size())
	c.cleanup()
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	_, found, _ := c.Get(ctx, "a")
	assert.False(t, found)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryCache_CloseTwice(t *testing.T) {
	c := NewInMemoryCache(time.Millisecond)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache(time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = c.Set(ctx, key, []byte(key), time.Second)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Size())
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := NewRedisCache(RedisConfig{Addr: mr.Addr(), Prefix: "mls:"})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	t.Run("miss", func(t *testing.T) {
		value, found, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("set and get with prefix", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "123", []byte(`{"mls_number":"123"}`), time.Minute))

		raw, err := mr.Get("mls:123")
		require.NoError(t, err)
		assert.Equal(t, `{"mls_number":"123"}`, raw)

		value, found, err := c.Get(ctx, "123")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"mls_number":"123"}`, string(value))
	})

	t.Run("ttl", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Minute))
		mr.FastForward(2 * time.Minute)

		_, found, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", []byte("x"), time.Minute))
		require.NoError(t, c.Delete(ctx, "gone"))
		assert.False(t, mr.Exists("mls:gone"))
	})

	t.Run("server down", func(t *testing.T) {
		down := NewRedisCache(RedisConfig{Addr: mr.Addr()})
		defer down.Close()
		mr.Close()

		_, _, err := down.Get(ctx, "k")
		assert.Error(t, err)
		assert.Error(t, down.Ping(ctx))
	})
}
