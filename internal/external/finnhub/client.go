package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
	"github.com/wonny/magicformula/pkg/redis"
)

// Client handles Finnhub API operations
// ⭐ SSOT: Finnhub calls go through this client only
type Client struct {
	client *resty.Client
	cache  *redis.Cache
	logger *logger.Logger
	apiKey string
}

// NewClient creates a new Finnhub client
func NewClient(cfg *config.Config, cache *redis.Cache, log *logger.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Finnhub.BaseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
		})

	return &Client{
		client: client,
		cache:  cache,
		logger: log,
		apiKey: cfg.Finnhub.APIKey,
	}
}

// WithRetry overrides the retry policy
func (c *Client) WithRetry(count int, wait time.Duration) *Client {
	c.client.SetRetryCount(count).SetRetryWaitTime(wait).SetRetryMaxWaitTime(wait)
	return c
}

// WithRateLimiter paces requests through the shared Redis limiter
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		return limiter.Wait(r.Context(), cfg)
	})
	return c
}

// Name identifies the provider
func (c *Client) Name() string {
	return config.ProviderFinnhub
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// RawQuote fetches /quote
func (c *Client) RawQuote(ctx context.Context, symbol string) (*QuoteResponse, error) {
	var quote QuoteResponse
	if err := c.get(ctx, "/quote", map[string]string{"symbol": symbol}, &quote); err != nil {
		return nil, err
	}
	if quote.Current <= 0 {
		return nil, upstream("quote", symbol, errors.New("no price returned"))
	}
	return &quote, nil
}

// Profile fetches /stock/profile2
func (c *Client) Profile(ctx context.Context, symbol string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/stock/profile2", map[string]string{"symbol": symbol}, &profile); err != nil {
		return nil, err
	}
	if profile.Name == "" {
		return nil, upstream("profile", symbol, errors.New("no profile returned"))
	}
	return &profile, nil
}

// Metrics fetches /stock/metric?metric=all
func (c *Client) Metrics(ctx context.Context, symbol string) (*Metrics, error) {
	var resp MetricResponse
	if err := c.get(ctx, "/stock/metric", map[string]string{"symbol": symbol, "metric": "all"}, &resp); err != nil {
		return nil, err
	}
	return &resp.Metric, nil
}

// Security combines quote, profile and metrics into a rankable security
func (c *Client) Security(ctx context.Context, symbol string) (*contracts.Security, error) {
	symbol = strings.ToUpper(symbol)
	return redis.GetOrSet(ctx, c.cache, redis.SecurityKey(c.Name(), symbol), redis.TTLLong, func() (*contracts.Security, error) {
		quote, err := c.RawQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}

		metrics, err := c.Metrics(ctx, symbol)
		if err != nil {
			return nil, err
		}

		sec := &contracts.Security{
			Symbol:                symbol,
			Name:                  symbol,
			Price:                 quote.Current,
			PriceToEarnings:       metrics.PriceToEarnings(),
			ReturnOnEquityPercent: metrics.ReturnOnEquityPercent(),
		}

		// Profile is informational only
		if profile, err := c.Profile(ctx, symbol); err == nil {
			sec.Name = profile.Name
			sec.Sector = profile.Industry
			sec.MarketCapitalization = profile.MarketCapitalization * 1_000_000
		} else {
			c.logger.WithError(err).WithField("symbol", symbol).Debug("Finnhub profile unavailable")
		}

		return sec, nil
	})
}

// Quote returns a live price snapshot with the company name when available
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	symbol = strings.ToUpper(symbol)
	return redis.GetOrSet(ctx, c.cache, redis.QuoteKey(c.Name(), symbol), redis.TTLShort, func() (*contracts.Quote, error) {
		quote, err := c.RawQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}

		result := &contracts.Quote{
			Symbol:        symbol,
			Price:         quote.Current,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
		}
		if profile, err := c.Profile(ctx, symbol); err == nil {
			result.Name = profile.Name
		}

		return result, nil
	})
}

// MarketNews returns up to limit general market headlines
func (c *Client) MarketNews(ctx context.Context, limit int) ([]contracts.Headline, error) {
	items, err := redis.GetOrSet(ctx, c.cache, redis.NewsKey("general"), redis.TTLMedium, func() ([]NewsItem, error) {
		var items []NewsItem
		if err := c.get(ctx, "/news", map[string]string{"category": "general"}, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	headlines := make([]contracts.Headline, 0, limit)
	for _, item := range items {
		if limit > 0 && len(headlines) == limit {
			break
		}
		if strings.TrimSpace(item.Headline) == "" {
			continue
		}
		headlines = append(headlines, contracts.Headline{
			Headline: item.Headline,
			Summary:  item.Summary,
			Source:   item.Source,
			URL:      item.URL,
			Datetime: item.DateTime,
		})
	}

	return headlines, nil
}

// Search looks up symbols matching query
func (c *Client) Search(ctx context.Context, query string) ([]contracts.SymbolMatch, error) {
	var resp SearchResponse
	if err := c.get(ctx, "/search", map[string]string{"q": query}, &resp); err != nil {
		return nil, err
	}

	matches := make([]contracts.SymbolMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, contracts.SymbolMatch{
			Symbol:      r.Symbol,
			Description: r.Description,
			Type:        r.Type,
		})
	}
	return matches, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, dest interface{}) error {
	op := strings.TrimPrefix(path, "/")
	symbol := params["symbol"]

	if !c.Configured() {
		return upstream(op, symbol, errors.New("api key not configured"))
	}

	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("token", c.apiKey).
		ForceContentType("application/json").
		SetResult(dest).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return upstream(op, symbol, err)
	}

	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return upstream(op, symbol, fmt.Errorf("status %d: %s", resp.StatusCode(), msg))
	}

	c.logger.WithFields(map[string]interface{}{
		"path":     path,
		"symbol":   symbol,
		"duration": resp.Time(),
	}).Debug("Finnhub request completed")

	return nil
}

func upstream(op, symbol string, err error) error {
	if symbol == "" {
		return fmt.Errorf("finnhub %s: %w: %w", op, err, contracts.ErrUpstreamUnavailable)
	}
	return fmt.Errorf("finnhub %s %s: %w: %w", op, symbol, err, contracts.ErrUpstreamUnavailable)
}
