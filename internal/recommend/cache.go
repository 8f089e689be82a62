package recommend

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed recommendation payloads in Redis/Dragonfly. A nil
// *Cache is a valid no-op, so callers never need to branch on whether
// caching is enabled.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a recommendation cache with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(email string) string {
	return "recommendations:" + email
}

// Get returns a cached payload, or ok=false on miss or any cache failure.
func (c *Cache) Get(ctx context.Context, email string) (*Response, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, cacheKey(email)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("recommendation cache read failed", "email", email, "error", err)
		}
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		slog.Warn("recommendation cache entry corrupt", "email", email, "error", err)
		return nil, false
	}
	return &resp, true
}

// Set stores a payload. Failures are logged and otherwise ignored.
func (c *Cache) Set(ctx context.Context, email string, resp *Response) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("recommendation cache encode failed", "email", email, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(email), data, c.ttl).Err(); err != nil {
		slog.Warn("recommendation cache write failed", "email", email, "error", err)
	}
}

// Invalidate drops a learner's cached payload, typically after a new
// credential is issued.
func (c *Cache) Invalidate(ctx context.Context, email string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(email)).Err(); err != nil {
		slog.Warn("recommendation cache invalidate failed", "email", email, "error", err)
	}
}
