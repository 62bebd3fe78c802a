package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wonny/magicformula/internal/api/handlers"
	"github.com/wonny/magicformula/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Screener  *handlers.ScreenerHandler
	Portfolio *handlers.PortfolioHandler
	Stock     *handlers.StockHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing lives in this function only
func NewRouter(h Handlers, corsOrigin string, log *logger.Logger) http.Handler {
	handlers.SetLogger(log)
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Magic Formula
	api.HandleFunc("/sectors", h.Screener.GetSectors).Methods("GET")
	api.HandleFunc("/magic-formula-screener", h.Screener.Screen).Methods("POST")
	api.HandleFunc("/ai-stock-recommendations", h.Screener.Recommend).Methods("POST")
	api.HandleFunc("/allocate", h.Screener.Allocate).Methods("POST")

	// Stocks
	api.HandleFunc("/stocks/search", h.Stock.Search).Methods("GET")

	// Portfolio tracker
	api.HandleFunc("/portfolio", h.Portfolio.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolio/holdings", h.Portfolio.AddHolding).Methods("POST")
	api.HandleFunc("/portfolio/holdings/{symbol}", h.Portfolio.DeleteHolding).Methods("DELETE")

	// Streaming
	r.HandleFunc("/ws/screener", h.Screener.Stream).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	// CORS wraps the router so preflights reach it even on POST-only routes
	return corsMiddleware(corsOrigin)(r)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": logger.ServiceName,
	})
}

// corsMiddleware sets CORS headers and answers preflight requests
func corsMiddleware(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			if websocket.IsWebSocketUpgrade(r) {
				// Upgrades need the raw writer for hijacking
				rec.status = http.StatusSwitchingProtocols
				next.ServeHTTP(w, r)
			} else {
				next.ServeHTTP(rec, r)
			}

			fields := map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}
			log.WithFields(fields).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
