// Package cache keeps short-lived dashboard summaries in Redis.
// A nil *Cache is valid: every lookup misses and writes are dropped.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisClient connects to addr and pings it with a short timeout.
// It returns nil when addr is empty or the server is unreachable, so callers run without caching.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, dashboard cache disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// New returns nil when rdb is nil.
func New(rdb *redis.Client, ttl time.Duration, prefix string) *Cache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// GetJSON decodes the cached value for k into dst and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, k string, dst any) bool {
	if c == nil {
		return false
	}
	bs, err := c.rdb.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed", "key", k, "error", err)
		}
		return false
	}
	return json.Unmarshal(bs, dst) == nil
}

func (c *Cache) SetJSON(ctx context.Context, k string, v any) {
	if c == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, c.key(k), bs, c.ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", k, "error", err)
	}
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		slog.Warn("cache invalidate failed", "keys", keys, "error", err)
	}
}
