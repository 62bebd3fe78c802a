package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/httputil"
	"github.com/wonny/magicformula/pkg/logger"
	"github.com/wonny/magicformula/pkg/redis"
)

// Client handles communication with the Alpha Vantage API
// ⭐ SSOT: Alpha Vantage calls go through this client only
type Client struct {
	http    *httputil.Client
	cache   *redis.Cache
	logger  *logger.Logger
	apiKey  string
	baseURL string
}

// NewClient creates a new Alpha Vantage client
func NewClient(cfg *config.Config, http *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		http:    http,
		cache:   cache,
		logger:  log,
		apiKey:  cfg.AlphaVantage.APIKey,
		baseURL: strings.TrimRight(cfg.AlphaVantage.BaseURL, "/"),
	}
}

// Name identifies the provider
func (c *Client) Name() string {
	return config.ProviderAlphaVantage
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Overview fetches company fundamentals
func (c *Client) Overview(ctx context.Context, symbol string) (*Overview, error) {
	var overview Overview
	if err := c.query(ctx, "OVERVIEW", symbol, &overview); err != nil {
		return nil, err
	}
	if msg := overview.Message(); msg != "" {
		return nil, upstream("overview", symbol, errors.New(msg))
	}
	if overview.Symbol == "" {
		return nil, upstream("overview", symbol, errors.New("no data returned"))
	}
	return &overview, nil
}

// GlobalQuote fetches the latest quote
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (*GlobalQuote, error) {
	var resp GlobalQuoteResponse
	if err := c.query(ctx, "GLOBAL_QUOTE", symbol, &resp); err != nil {
		return nil, err
	}
	if msg := resp.Message(); msg != "" {
		return nil, upstream("quote", symbol, errors.New(msg))
	}
	if resp.Quote.Price == "" {
		return nil, upstream("quote", symbol, errors.New("no data returned"))
	}
	return &resp.Quote, nil
}

// Security combines OVERVIEW and GLOBAL_QUOTE into a rankable security
func (c *Client) Security(ctx context.Context, symbol string) (*contracts.Security, error) {
	symbol = strings.ToUpper(symbol)
	return redis.GetOrSet(ctx, c.cache, redis.SecurityKey(c.Name(), symbol), redis.TTLLong, func() (*contracts.Security, error) {
		overview, err := c.Overview(ctx, symbol)
		if err != nil {
			return nil, err
		}

		quote, err := c.GlobalQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}

		sec := &contracts.Security{
			Symbol:               overview.Symbol,
			Name:                 overview.Name,
			Sector:               overview.Sector,
			Price:                valueOr(quote.Price),
			PriceToEarnings:      parseNumber(overview.PERatio),
			MarketCapitalization: valueOr(overview.MarketCapitalization),
		}
		if roe := parseNumber(overview.ReturnOnEquityTTM); roe != nil {
			sec.ReturnOnEquityPercent = contracts.Float(*roe * 100)
		}

		c.logger.WithFields(map[string]interface{}{
			"symbol": sec.Symbol,
			"price":  sec.Price,
		}).Debug("Alpha Vantage security fetched")

		return sec, nil
	})
}

// Quote returns a live price snapshot
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	symbol = strings.ToUpper(symbol)
	return redis.GetOrSet(ctx, c.cache, redis.QuoteKey(c.Name(), symbol), redis.TTLShort, func() (*contracts.Quote, error) {
		quote, err := c.GlobalQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}

		return &contracts.Quote{
			Symbol:        symbol,
			Price:         valueOr(quote.Price),
			Change:        valueOr(quote.Change),
			ChangePercent: valueOr(quote.ChangePercent),
		}, nil
	})
}

func (c *Client) query(ctx context.Context, function, symbol string, dest interface{}) error {
	if !c.Configured() {
		return upstream(strings.ToLower(function), symbol, errors.New("api key not configured"))
	}

	params := url.Values{
		"function": {function},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	}

	if err := c.http.GetJSON(ctx, c.baseURL+"/query?"+params.Encode(), dest); err != nil {
		return upstream(strings.ToLower(function), symbol, err)
	}
	return nil
}

func upstream(op, symbol string, err error) error {
	return fmt.Errorf("alphavantage %s %s: %w: %w", op, symbol, err, contracts.ErrUpstreamUnavailable)
}
