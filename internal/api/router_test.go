package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/magicformula/internal/api/handlers"
	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/portfolio"
	"github.com/wonny/magicformula/internal/recommend"
	"github.com/wonny/magicformula/internal/screening"
	"github.com/wonny/magicformula/internal/universe"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
	"github.com/wonny/magicformula/pkg/redis"
)

// newTestRouter wires the real services with no provider configured,
// so every screen runs on the substitute dataset
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Port:       "0",
		CORSOrigin: "*",
		Screener: config.ScreenerConfig{
			MaxSymbols:   3,
			DefaultLimit: 10,
			CacheTTL:     time.Minute,
		},
	}
	log := logger.Nop()
	cache := redis.NewCache(redis.Disabled(), redis.KeyPrefix)
	allocator := portfolio.NewAllocator(cfg.Screener.ConcentrationLimit, portfolio.DefaultViewConfig(), log)

	screener := screening.NewService(cfg, universe.Default(), nil, allocator, cache, log)
	recommender := recommend.NewService(screener, nil, nil, log)
	tracker := portfolio.NewTracker(portfolio.NewMemoryRepository(), nil, log)

	return NewRouter(Handlers{
		Screener:  handlers.NewScreenerHandler(screener, recommender, allocator, log),
		Portfolio: handlers.NewPortfolioHandler(tracker, log),
		Stock:     handlers.NewStockHandler(nil, log),
	}, cfg.CORSOrigin, log)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, logger.ServiceName, body["service"])
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodOptions, "/api/magic-formula-screener", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "content-type")
}

func TestSectors(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/sectors", "")

	require.Equal(t, http.StatusOK, rec.Code)
	sectors := decode(t, rec)["sectors"].([]interface{})
	assert.Equal(t, universe.AllSectors, sectors[0])
	assert.Len(t, sectors, 12)
}

func TestScreener(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/magic-formula-screener",
		`{"sector":"Technology","limit":10,"investmentAmount":10000}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)

	assert.Equal(t, "Technology", body["sector"])
	assert.Equal(t, true, body["fallback"])
	assert.Contains(t, body["error"], "not configured")

	stocks := body["stocks"].([]interface{})
	require.Len(t, stocks, 3)
	first := stocks[0].(map[string]interface{})
	assert.Equal(t, "AAPL", first["symbol"])
	assert.Equal(t, 1.0, first["overallRank"])

	allocation := body["allocation"].(map[string]interface{})
	assert.Equal(t, 2000.0, allocation["maxPerSecurity"])
}

func TestScreener_Validation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing sector", `{"limit":5}`, "sector is required"},
		{"negative amount", `{"sector":"Technology","investmentAmount":-1}`, "investmentAmount"},
		{"limit too high", `{"sector":"Technology","concentrationLimit":2}`, "concentrationLimit"},
		{"unknown sector", `{"sector":"Crypto"}`, "unknown sector"},
		{"bad json", `{"sector":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/magic-formula-screener", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], tt.want)
		})
	}
}

func TestRecommendations(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/ai-stock-recommendations",
		`{"investmentAmount":10000,"sector":"Technology","riskTolerance":"aggressive"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)

	assert.Equal(t, true, body["fallback"])
	assert.Equal(t, true, body["narrativeFallback"])
	assert.Equal(t, 10000.0, body["investmentAmount"])

	recs := body["aiRecommendations"].([]interface{})
	require.NotEmpty(t, recs)
	assert.Equal(t, float64(len(recs)), body["totalRecommendations"])
}

func TestRecommendations_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/ai-stock-recommendations", `{"investmentAmount":0,"sector":"Technology"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/ai-stock-recommendations", `{"investmentAmount":100,"sector":"Technology","timeHorizon":"decade"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "timeHorizon must be one of")
}

func TestAllocate(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/allocate", `{
		"securities": [
			{"symbol":"X","price":10,"priceToEarnings":5,"returnOnEquityPercent":20},
			{"symbol":"Y","price":50,"priceToEarnings":20,"returnOnEquityPercent":5},
			{"symbol":"Z","price":30,"priceToEarnings":null,"returnOnEquityPercent":12}
		],
		"budget": 1000,
		"concentrationLimit": 0.2
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.AllocateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Ranking.Ranked, 2)
	assert.Equal(t, "X", resp.Ranking.Ranked[0].Symbol)
	assert.Equal(t, 2, resp.Ranking.Ranked[0].CombinedRank)
	assert.Equal(t, 1, resp.Ranking.ExcludedCount)
	assert.Equal(t, "Z", resp.Ranking.Exclusions[0].Symbol)

	assert.Equal(t, 200.0, resp.Allocation.MaxPerSecurity)
	x, ok := resp.Allocation.GetPlan("X")
	require.True(t, ok)
	assert.Equal(t, int64(20), x.SharesToBuy)
	y, ok := resp.Allocation.GetPlan("Y")
	require.True(t, ok)
	assert.Equal(t, int64(4), y.SharesToBuy)
}

func TestAllocate_EmptySecurities(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/allocate", `{"securities":[],"budget":1000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	ranking := out["ranking"].(map[string]interface{})
	allocation := out["allocation"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, ranking["ranked"])
	assert.Equal(t, []interface{}{}, allocation["general"])
	assert.Equal(t, []interface{}{}, allocation["priceOptimized"])
	assert.Equal(t, 1000.0, allocation["cashRemaining"])
}

func TestAllocate_SubnormalPEIsExcluded(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/allocate", `{
		"securities": [{"symbol":"X","price":10,"priceToEarnings":1e-320,"returnOnEquityPercent":20}],
		"budget": 1000
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotZero(t, rec.Body.Len())

	var resp handlers.AllocateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Ranking.Ranked)
	require.Len(t, resp.Ranking.Exclusions, 1)
	assert.Equal(t, contracts.ReasonEarningsYield, resp.Ranking.Exclusions[0].Reason)
}

func TestAllocate_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/allocate", `{"securities":[{"symbol":"X","price":10}],"budget":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/allocate", `{"budget":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/allocate", `{"securities":[{"price":10}],"budget":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "securities[0].symbol is required")
}

func TestSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/stocks/search?q=nvd", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "NVDA", resp.Results[0].Symbol)

	rec = do(t, router, http.MethodGet, "/api/stocks/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/portfolio/holdings", `{"symbol":"AAPL","shares":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "AAPL", created["symbol"])
	assert.Equal(t, 1755.0, created["value"])
	assert.NotEmpty(t, created["id"])

	rec = do(t, router, http.MethodPost, "/api/portfolio/holdings", `{"symbol":"AAPL","shares":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/portfolio/holdings", `{"symbol":"ZZZZ","shares":1}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/portfolio/holdings", `{"symbol":"MSFT","shares":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["holdings"], 1)
	assert.Equal(t, 1.0, body["summary"].(map[string]interface{})["holdingsCount"])

	rec = do(t, router, http.MethodDelete, "/api/portfolio/holdings/AAPL", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/portfolio/holdings/AAPL", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/portfolio", "")
	assert.Len(t, decode(t, rec)["holdings"], 0)
}

func TestScreenerStream(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/screener?sector=Healthcare&investmentAmount=5000"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
		Error   string                 `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	// No provider is configured, so the only frame is the fallback result
	assert.Equal(t, "result", msg.Type)
	assert.Equal(t, "Healthcare", msg.Payload["sector"])
	assert.Equal(t, true, msg.Payload["fallback"])
	assert.NotNil(t, msg.Payload["allocation"])

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestScreenerStream_BadQuery(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/ws/screener?sector=Technology&limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
