package handlers

import (
	"net/http"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/fallback"
	"github.com/wonny/magicformula/pkg/logger"
)

// StockHandler handles symbol lookup
type StockHandler struct {
	searcher contracts.SymbolSearcher // may be nil
	logger   *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(searcher contracts.SymbolSearcher, log *logger.Logger) *StockHandler {
	return &StockHandler{
		searcher: searcher,
		logger:   log,
	}
}

// SearchResponse lists symbol matches
type SearchResponse struct {
	Query    string                  `json:"query"`
	Results  []contracts.SymbolMatch `json:"results"`
	Fallback bool                    `json:"fallback"`
}

// Search looks up tickers, falling back to the built-in catalog
// GET /api/stocks/search?q=apple
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	if h.searcher != nil {
		matches, err := h.searcher.Search(r.Context(), query)
		if err == nil {
			respondJSON(w, http.StatusOK, SearchResponse{Query: query, Results: matches})
			return
		}
		h.logger.WithError(err).WithField("query", query).Warn("Symbol search failed, using catalog")
	}

	respondJSON(w, http.StatusOK, SearchResponse{
		Query:    query,
		Results:  fallback.Search(query),
		Fallback: true,
	})
}
