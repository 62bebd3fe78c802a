package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/magicformula/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), KeyPrefix)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), AlphaVantageRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, AlphaVantageRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), FinnhubRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), KeyPrefix)
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestGetOrSet_DisabledCallsLoader(t *testing.T) {
	cache := NewCache(Disabled(), KeyPrefix)

	calls := 0
	load := func() (float64, error) {
		calls++
		return 192.53, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetOrSet(context.Background(), cache, QuoteKey("finnhub", "AAPL"), TTLShort, load)
		require.NoError(t, err)
		assert.Equal(t, 192.53, got)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrSet_LoaderError(t *testing.T) {
	cache := NewCache(Disabled(), KeyPrefix)
	wantErr := errors.New("upstream down")

	_, err := GetOrSet(context.Background(), cache, "k", TTLShort, func() (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "QuoteKey",
			fn:       func() string { return QuoteKey("finnhub", "aapl") },
			expected: "quote:finnhub:AAPL",
		},
		{
			name:     "SecurityKey",
			fn:       func() string { return SecurityKey("alphavantage", "MSFT") },
			expected: "security:alphavantage:MSFT",
		},
		{
			name:     "ScreenKey",
			fn:       func() string { return ScreenKey("Consumer Discretionary", 10) },
			expected: "screen:consumer-discretionary:10",
		},
		{
			name:     "NewsKey",
			fn:       func() string { return NewsKey("general") },
			expected: "news:general",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
