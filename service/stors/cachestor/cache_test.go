package cachestor

import (
	"context"
	"testing"
	"time"

	"integral-solver/api"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

func sample() *api.SolveResponse {
	return &api.SolveResponse{
		Success: true,
		Input:   "∫ x^2 dx",
		Result:  "x^3/3 + C",
		Method:  "Power Rule",
		Steps:   []string{"Power rule: ∫ x dx = x^2/2"},
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "x|x^2 + 1", Key(api.SolveRequest{Expression: " x^2 + 1 "}))
	assert.Equal(t, "t|sin(t)", Key(api.SolveRequest{Expression: "sin(t)", Variable: "t"}))
	assert.Equal(t, Key(api.SolveRequest{Expression: "2*x"}), Key(api.SolveRequest{Expression: "2 * x", Variable: "x"}))
	assert.Equal(t, Key(api.SolveRequest{Expression: "x^2"}), Key(api.SolveRequest{Expression: "x x"}))
}

func TestKeyKeepsMeaningfulSpaces(t *testing.T) {
	key := func(expr string) string { return Key(api.SolveRequest{Expression: expr}) }
	assert.NotEqual(t, key("xx"), key("x x"))
	assert.NotEqual(t, key("x2"), key("x 2"))
	assert.Equal(t, "x|x 2", key(" x 2 "))
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Config{Backend: "memory", TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Backend())

	c, err = New(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, "none", c.Backend())

	_, err = New(ctx, Config{Backend: "memcached"})
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_, ok, err := c.Get(ctx, "x|x^2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "x|x^2", sample()))
	got, ok, err := c.Get(ctx, "x|x^2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample(), got)

	got.Steps[0] = "mutated"
	again, _, _ := c.Get(ctx, "x|x^2")
	assert.Equal(t, sample().Steps, again.Steps)

	s := c.Stats()
	assert.Equal(t, uint64(2), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.Sets)
	assert.InDelta(t, 66.67, s.HitRate, 0.01)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", sample()))
	now = now.Add(30 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCachePurge(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)
	require.NoError(t, c.Set(ctx, "x|x", sample()))
	require.NoError(t, c.Set(ctx, "x|x^2", sample()))
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Purge(ctx))
	assert.Equal(t, 0, c.Len())
	_, ok, err := c.Get(ctx, "x|x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c SolveCache = Nop{}
	require.NoError(t, c.Set(ctx, "k", sample()))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Purge(ctx))
}

func setupRedis(t *testing.T, prefix string) *RedisCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	c := NewRedisWithClient(client, prefix, time.Minute)
	require.NoError(t, c.Purge(context.Background()))
	t.Cleanup(func() {
		_ = c.Purge(context.Background())
		c.Close()
	})
	return c
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c := setupRedis(t, "integral-test:")

	_, ok, err := c.Get(ctx, "x|x^2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "x|x^2", sample()))
	got, ok, err := c.Get(ctx, "x|x^2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample(), got)

	assert.Equal(t, uint64(1), c.Stats().Hits)
	assert.NoError(t, c.Ping(ctx))
}

func TestNewRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "127.0.0.1:1", "p:", time.Minute)
	assert.Error(t, err)
}
