package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching
// ⭐ SSOT: cache helpers live here only
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value. A miss returns (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it.
// Cache read and write failures degrade to calling fn; only fn's error is returned.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var cached T
	if found, err := c.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	value, err := fn()
	if err != nil {
		return value, err
	}

	// Best effort
	_ = c.Set(ctx, key, value, ttl)

	return value, nil
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // live quotes
	TTLMedium = 10 * time.Minute // market news
	TTLLong   = 1 * time.Hour    // per-symbol fundamentals
)

// Common cache key generators

// QuoteKey caches a provider quote for one symbol
func QuoteKey(provider, symbol string) string {
	return fmt.Sprintf("quote:%s:%s", provider, strings.ToUpper(symbol))
}

// SecurityKey caches the fundamentals used for ranking
func SecurityKey(provider, symbol string) string {
	return fmt.Sprintf("security:%s:%s", provider, strings.ToUpper(symbol))
}

// ScreenKey caches a full sector screen
func ScreenKey(sector string, limit int) string {
	return fmt.Sprintf("screen:%s:%d", strings.ToLower(strings.ReplaceAll(sector, " ", "-")), limit)
}

// NewsKey caches general market headlines
func NewsKey(category string) string {
	return fmt.Sprintf("news:%s", category)
}
