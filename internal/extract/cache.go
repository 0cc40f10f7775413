package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores normalized results keyed by page URL.
type Cache interface {
	Get(ctx context.Context, rawURL string) (*Result, bool, error)
	Set(ctx context.Context, rawURL string, result *Result) error
}

// redisStore is the part of a redis client the cache needs.
type redisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache keeps results in redis with a fixed TTL.
type RedisCache struct {
	store  redisStore
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps a redis client (or any compatible store).
func NewRedisCache(store redisStore, ttl time.Duration, prefix string) *RedisCache {
	return &RedisCache{store: store, ttl: ttl, prefix: prefix}
}

// Key returns the redis key used for rawURL.
func (c *RedisCache) Key(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result for rawURL. A miss is (nil, false, nil).
func (c *RedisCache) Get(ctx context.Context, rawURL string) (*Result, bool, error) {
	val, err := c.store.Get(ctx, c.Key(rawURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var result Result
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, true, nil
}

// Set stores result for rawURL.
func (c *RedisCache) Set(ctx context.Context, rawURL string, result *Result) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.store.Set(ctx, c.Key(rawURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
