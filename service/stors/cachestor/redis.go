package cachestor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"integral-solver/api"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  stats
}

var _ SolveCache = (*RedisCache)(nil)

// NewRedis connects to addr and fails when the server does not answer a
// ping.
func NewRedis(ctx context.Context, addr, prefix string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisWithClient(client, prefix, ttl), nil
}

func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*api.SolveResponse, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.misses.Add(1)
			return nil, false, nil
		}
		c.stats.errors.Add(1)
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var resp api.SolveResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		c.stats.errors.Add(1)
		return nil, false, fmt.Errorf("cache unmarshal: %w", err)
	}
	c.stats.hits.Add(1)
	return &resp, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, resp *api.SolveResponse) error {
	data, err := sonic.Marshal(resp)
	if err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.stats.errors.Add(1)
		return fmt.Errorf("cache set: %w", err)
	}
	c.stats.sets.Add(1)
	return nil
}

// Purge removes every key under the prefix.
func (c *RedisCache) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *RedisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }

func (c *RedisCache) Stats() StatsSnapshot { return c.stats.snapshot() }

func (c *RedisCache) Backend() string { return "redis" }

func (c *RedisCache) Close() error { return c.client.Close() }
