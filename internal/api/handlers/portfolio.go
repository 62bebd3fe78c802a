package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/logger"
)

// Tracker is the portfolio tracker as seen by the API
type Tracker interface {
	Add(ctx context.Context, symbol string, shares float64) (*contracts.Holding, error)
	Remove(ctx context.Context, symbol string) error
	Summary(ctx context.Context) ([]contracts.Holding, *contracts.PortfolioSummary, error)
}

// PortfolioHandler handles portfolio tracker endpoints
type PortfolioHandler struct {
	tracker Tracker
	logger  *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(tracker Tracker, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		tracker: tracker,
		logger:  log,
	}
}

// PortfolioResponse lists holdings with their totals
type PortfolioResponse struct {
	Holdings []contracts.Holding        `json:"holdings"`
	Summary  *contracts.PortfolioSummary `json:"summary"`
}

// AddHoldingRequest is the add holding request body
type AddHoldingRequest struct {
	Symbol string  `json:"symbol" validate:"required,max=16"`
	Shares float64 `json:"shares" validate:"gt=0"`
}

// GetPortfolio returns all holdings and the summary
// GET /api/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	holdings, summary, err := h.tracker.Summary(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get portfolio")
		respondErr(w, err)
		return
	}

	if holdings == nil {
		holdings = make([]contracts.Holding, 0)
	}
	respondJSON(w, http.StatusOK, PortfolioResponse{Holdings: holdings, Summary: summary})
}

// AddHolding adds a holding priced from the live quote
// POST /api/portfolio/holdings
func (h *PortfolioHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	var req AddHoldingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	holding, err := h.tracker.Add(r.Context(), req.Symbol, req.Shares)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", req.Symbol).Warn("Failed to add holding")
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, holding)
}

// DeleteHolding removes a holding by symbol
// DELETE /api/portfolio/holdings/{symbol}
func (h *PortfolioHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	if err := h.tracker.Remove(r.Context(), symbol); err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to delete holding")
		respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
