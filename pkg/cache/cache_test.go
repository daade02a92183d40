package cache

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "p", point{Name: "a", Value: 1.5}, time.Minute))
	var got point
	require.NoError(t, c.Get(ctx, "p", &got))
	assert.Equal(t, point{Name: "a", Value: 1.5}, got)

	require.NoError(t, c.Set(ctx, "s", "raw", 0))
	var s string
	require.NoError(t, c.Get(ctx, "s", &s))
	assert.Equal(t, "raw", s)

	ok, err := c.Exists(ctx, "missing", "p")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "p"))
	assert.ErrorIs(t, c.Get(ctx, "p", &got), ErrCacheMiss)
}

func TestMemoryCacheStoresCopies(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	v := &point{Name: "a"}
	require.NoError(t, c.Set(ctx, "k", v, 0))
	v.Name = "changed"

	var got point
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "a", got.Name)
}

func TestMemoryCacheExpiryAndEviction(t *testing.T) {
	c := NewMemoryCache(WithMemoryMaxSize(2))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "x", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	var s string
	assert.ErrorIs(t, c.Get(ctx, "short", &s), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, c.Set(ctx, "c", "3", 0))
	assert.Equal(t, 2, c.Len())
	assert.ErrorIs(t, c.Get(ctx, "a", &s), ErrCacheMiss)
}

func TestLayeredCacheFillsL1(t *testing.T) {
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote)
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, remote.Set(ctx, "k", point{Name: "r"}, 0))
	var got point
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "r", got.Name)

	ok, err := lc.memCache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "monitor:BTC:short", GenerateKeyWithParams("monitor", "BTC", "short"))
	assert.Equal(t, "a:b", GenerateKey("a", "b"))
}

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := NewRedisCache(WithRedisHost(host), WithRedisPort(port), WithRedisPrefix("manifold-test"))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	key := GenerateKeyWithParams("roundtrip", time.Now().UnixNano())
	require.NoError(t, c.Set(ctx, key, point{Name: "r", Value: 2}, time.Minute))

	var got point
	require.NoError(t, c.Get(ctx, key, &got))
	assert.Equal(t, point{Name: "r", Value: 2}, got)

	ok, err := c.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, key))
	assert.ErrorIs(t, c.Get(ctx, key, &got), ErrCacheMiss)
}
