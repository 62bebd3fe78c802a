package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
	"github.com/wonny/magicformula/pkg/redis"
)

func newTestClient(t *testing.T, apiKey string, routes map[string]string) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" {
			assert.Equal(t, apiKey, r.URL.Query().Get("token"))
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{Finnhub: config.FinnhubConfig{APIKey: apiKey, BaseURL: server.URL}}
	return NewClient(cfg, redis.NewCache(redis.Disabled(), redis.KeyPrefix), logger.Nop()).
		WithRetry(0, time.Millisecond)
}

func TestSecurity(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/quote":          `{"c":192.53,"d":2.3,"dp":1.21,"h":193,"l":190,"o":191,"pc":190.23}`,
		"/stock/metric":   `{"symbol":"AAPL","metric":{"peTTM":29.1,"peBasicExclExtraTTM":30.2,"roeTTM":147.25}}`,
		"/stock/profile2": `{"ticker":"AAPL","name":"Apple Inc","finnhubIndustry":"Technology","marketCapitalization":3000000}`,
	})

	sec, err := client.Security(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", sec.Symbol)
	assert.Equal(t, "Apple Inc", sec.Name)
	assert.Equal(t, "Technology", sec.Sector)
	assert.Equal(t, 192.53, sec.Price)
	assert.Equal(t, 29.1, *sec.PriceToEarnings)
	assert.Equal(t, 147.25, *sec.ReturnOnEquityPercent)
	assert.Equal(t, 3e12, sec.MarketCapitalization)
}

func TestSecurity_NullMetrics(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/quote":        `{"c":10.5,"d":0,"dp":0}`,
		"/stock/metric": `{"symbol":"RIVN","metric":{"peTTM":null,"roeTTM":null}}`,
	})

	sec, err := client.Security(context.Background(), "RIVN")
	require.NoError(t, err)

	// Profile 404 is tolerated
	assert.Equal(t, "RIVN", sec.Name)
	assert.Nil(t, sec.PriceToEarnings)
	assert.Nil(t, sec.ReturnOnEquityPercent)
}

func TestSecurity_PEFallsBackToBasic(t *testing.T) {
	m := Metrics{PEBasicExclExtraTTM: contracts.Float(18)}
	assert.Equal(t, 18.0, *m.PriceToEarnings())

	m = Metrics{ROEAnnual: contracts.Float(12)}
	assert.Equal(t, 12.0, *m.ReturnOnEquityPercent())
}

func TestQuote(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/quote":          `{"c":875.28,"d":12.3,"dp":1.43}`,
		"/stock/profile2": `{"name":"NVIDIA Corp"}`,
	})

	q, err := client.Quote(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, &contracts.Quote{
		Symbol: "NVDA", Name: "NVIDIA Corp", Price: 875.28, Change: 12.3, ChangePercent: 1.43,
	}, q)
}

func TestQuote_ZeroPriceIsUnavailable(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/quote": `{"c":0,"d":null,"dp":null}`,
	})

	_, err := client.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"You don't have access to this resource."}`))
	}))
	defer server.Close()

	cfg := &config.Config{Finnhub: config.FinnhubConfig{APIKey: "tok", BaseURL: server.URL}}
	client := NewClient(cfg, redis.NewCache(redis.Disabled(), redis.KeyPrefix), logger.Nop()).WithRetry(0, time.Millisecond)

	_, err := client.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.ErrorContains(t, err, "don't have access")
}

func TestMarketNews(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/news": `[
			{"headline":"Stocks rally","source":"Reuters","datetime":1700000000},
			{"headline":"  "},
			{"headline":"Fed holds rates","source":"CNBC"},
			{"headline":"Oil slips"}
		]`,
	})

	headlines, err := client.MarketNews(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, headlines, 2)
	assert.Equal(t, "Stocks rally", headlines[0].Headline)
	assert.Equal(t, "Fed holds rates", headlines[1].Headline)
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/search": `{"count":2,"result":[
			{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"},
			{"description":"APPLE HOSPITALITY REIT","displaySymbol":"APLE","symbol":"APLE","type":"REIT"}
		]}`,
	})

	matches, err := client.Search(context.Background(), "apple")
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, contracts.SymbolMatch{Symbol: "AAPL", Description: "APPLE INC", Type: "Common Stock"}, matches[0])
}

func TestNotConfigured(t *testing.T) {
	client := newTestClient(t, "", nil)

	assert.False(t, client.Configured())
	_, err := client.MarketNews(context.Background(), 5)
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
}

func TestWithRateLimiter_DisabledPassesThrough(t *testing.T) {
	client := newTestClient(t, "tok", map[string]string{
		"/quote": `{"c":412.64,"d":-1.1,"dp":-0.27,"pc":413.74}`,
	}).WithRateLimiter(redis.NewRateLimiter(redis.Disabled(), redis.KeyPrefix), redis.FinnhubRateLimit)

	quote, err := client.Quote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 412.64, quote.Price)
}
