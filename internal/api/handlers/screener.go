package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/portfolio"
	"github.com/wonny/magicformula/internal/recommend"
	"github.com/wonny/magicformula/internal/screening"
	"github.com/wonny/magicformula/internal/selection"
	"github.com/wonny/magicformula/pkg/logger"
)

// Screener is the screening service as seen by the API
type Screener interface {
	Screen(ctx context.Context, req screening.ScreenRequest, progress screening.ProgressFunc) (*screening.ScreenResult, error)
	Sectors() []string
}

// Recommender is the recommendation service as seen by the API
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

// ScreenerHandler handles screening, recommendation and allocation endpoints
// ⭐ SSOT: Magic Formula API handlers live in this struct only
type ScreenerHandler struct {
	screener    Screener
	recommender Recommender
	allocator   *portfolio.Allocator
	logger      *logger.Logger
}

// NewScreenerHandler creates a new screener handler
func NewScreenerHandler(
	screener Screener,
	recommender Recommender,
	allocator *portfolio.Allocator,
	log *logger.Logger,
) *ScreenerHandler {
	return &ScreenerHandler{
		screener:    screener,
		recommender: recommender,
		allocator:   allocator,
		logger:      log,
	}
}

// ScreenRequest is the screener request body
type ScreenRequest struct {
	Sector             string   `json:"sector" validate:"required"`
	Limit              int      `json:"limit" validate:"gte=0,lte=100"`
	InvestmentAmount   float64  `json:"investmentAmount" validate:"gte=0"`
	ConcentrationLimit *float64 `json:"concentrationLimit" validate:"omitempty,gt=0,lte=1"`
}

func (r ScreenRequest) toService() screening.ScreenRequest {
	return screening.ScreenRequest{
		Sector:             r.Sector,
		Limit:              r.Limit,
		InvestmentAmount:   r.InvestmentAmount,
		ConcentrationLimit: r.ConcentrationLimit,
	}
}

// RecommendRequest is the AI recommendation request body
type RecommendRequest struct {
	InvestmentAmount   float64  `json:"investmentAmount" validate:"gt=0"`
	Sector             string   `json:"sector" validate:"required"`
	RiskTolerance      string   `json:"riskTolerance" validate:"omitempty,oneof=conservative moderate aggressive"`
	TimeHorizon        string   `json:"timeHorizon" validate:"omitempty,oneof=short medium long"`
	ConcentrationLimit *float64 `json:"concentrationLimit" validate:"omitempty,gt=0,lte=1"`
}

// AllocateRequest runs the calculator over caller-supplied securities
type AllocateRequest struct {
	Securities         []contracts.Security `json:"securities" validate:"required,dive"`
	Budget             float64              `json:"budget" validate:"gt=0"`
	ConcentrationLimit *float64             `json:"concentrationLimit" validate:"omitempty,gt=0,lte=1"`
}

// AllocateResponse pairs the ranking with its allocation
type AllocateResponse struct {
	Ranking    *contracts.RankResult       `json:"ranking"`
	Allocation *contracts.AllocationResult `json:"allocation"`
}

// GetSectors lists the screenable sectors
// GET /api/sectors
func (h *ScreenerHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sectors": h.screener.Sectors(),
	})
}

// Screen runs a Magic Formula screen
// POST /api/magic-formula-screener
func (h *ScreenerHandler) Screen(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	result, err := h.screener.Screen(r.Context(), req.toService(), nil)
	if err != nil {
		h.logger.WithError(err).WithField("sector", req.Sector).Warn("Screen failed")
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Recommend generates narrated recommendations
// POST /api/ai-stock-recommendations
func (h *ScreenerHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	result, err := h.recommender.Recommend(r.Context(), recommend.Request{
		InvestmentAmount:   req.InvestmentAmount,
		Sector:             req.Sector,
		RiskTolerance:      contracts.RiskTolerance(req.RiskTolerance),
		TimeHorizon:        contracts.TimeHorizon(req.TimeHorizon),
		ConcentrationLimit: req.ConcentrationLimit,
	})
	if err != nil {
		h.logger.WithError(err).WithField("sector", req.Sector).Warn("Recommendation failed")
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Allocate ranks and sizes caller-supplied securities
// POST /api/allocate
func (h *ScreenerHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	ranking := selection.Rank(req.Securities)

	allocation, err := h.allocator.Allocate(r.Context(), ranking.Ranked, req.Budget, req.ConcentrationLimit)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AllocateResponse{
		Ranking:    ranking,
		Allocation: allocation,
	})
}
