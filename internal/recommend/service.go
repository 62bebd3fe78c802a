package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/narrative"
	"github.com/wonny/magicformula/internal/portfolio"
	"github.com/wonny/magicformula/internal/screening"
	"github.com/wonny/magicformula/pkg/logger"
)

const (
	// MaxPicks is the number of recommendations returned
	MaxPicks = 5
	// MaxHeadlines is the number of news headlines given to the narrator
	MaxHeadlines = 5
)

// Screener is the part of screening.Service used here
type Screener interface {
	Screen(ctx context.Context, req screening.ScreenRequest, progress screening.ProgressFunc) (*screening.ScreenResult, error)
}

// Request asks for recommendations
type Request struct {
	InvestmentAmount   float64
	Sector             string
	RiskTolerance      contracts.RiskTolerance // "" = moderate
	TimeHorizon        contracts.TimeHorizon   // "" = medium
	ConcentrationLimit *float64
}

// Recommendation is one sized pick with its narrative
type Recommendation struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	RecommendedShares int64   `json:"recommendedShares"`
	AllocationAmount  float64 `json:"allocationAmount"`
	PortfolioWeight   float64 `json:"portfolioWeight"`
	Confidence        int     `json:"confidence"`
	Reasoning         string  `json:"reasoning"`
	MarketTrends      string  `json:"marketTrends"`
	MagicFormulaScore int     `json:"magicFormulaScore"` // combined rank, lower is better
	OverallRank       int     `json:"overallRank"`
}

// Result is the recommendation response
type Result struct {
	AIRecommendations    []Recommendation `json:"aiRecommendations"`
	MarketSummary        string           `json:"marketSummary"`
	InvestmentAmount     float64          `json:"investmentAmount"`
	Sector               string           `json:"sector"`
	TotalRecommendations int              `json:"totalRecommendations"`
	AnalysisTimestamp    time.Time        `json:"analysisTimestamp"`
	Fallback             bool             `json:"fallback"`
	NarrativeFallback    bool             `json:"narrativeFallback"`
	Error                string           `json:"error,omitempty"`
}

// Service combines a screen with headlines and a narrative
// ⭐ SSOT: narrator output is merged onto calculator output here only
type Service struct {
	screener Screener
	news     contracts.NewsProvider // may be nil
	narrator contracts.Narrator     // may be nil
	template narrative.TemplateNarrator
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new recommendation service
func NewService(screener Screener, news contracts.NewsProvider, narrator contracts.Narrator, log *logger.Logger) *Service {
	return &Service{
		screener: screener,
		news:     news,
		narrator: narrator,
		logger:   log.WithModule("recommend"),
		now:      time.Now,
	}
}

// Recommend screens the sector, sizes positions and narrates the picks
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	if err := normalize(&req); err != nil {
		return nil, err
	}

	screen, err := s.screener.Screen(ctx, screening.ScreenRequest{
		Sector:             req.Sector,
		InvestmentAmount:   req.InvestmentAmount,
		ConcentrationLimit: req.ConcentrationLimit,
	}, nil)
	if err != nil {
		return nil, err
	}

	picks := selectPicks(screen.Allocation, MaxPicks)
	headlines := s.headlines(ctx)

	narrativeReq := contracts.NarrativeRequest{
		InvestmentAmount: req.InvestmentAmount,
		Sector:           screen.Sector,
		RiskTolerance:    req.RiskTolerance,
		TimeHorizon:      req.TimeHorizon,
		Headlines:        headlines,
		Picks:            picks,
	}

	story, narrativeFallback := s.narrate(ctx, narrativeReq)

	result := &Result{
		AIRecommendations: merge(picks, story),
		MarketSummary:     story.MarketSummary,
		InvestmentAmount:  req.InvestmentAmount,
		Sector:            screen.Sector,
		AnalysisTimestamp: s.now(),
		Fallback:          screen.Fallback,
		NarrativeFallback: narrativeFallback,
		Error:             screen.Error,
	}
	result.TotalRecommendations = len(result.AIRecommendations)

	s.logger.WithFields(map[string]interface{}{
		"sector":             result.Sector,
		"amount":             req.InvestmentAmount,
		"recommendations":    result.TotalRecommendations,
		"headlines":          len(headlines),
		"fallback":           result.Fallback,
		"narrative_fallback": narrativeFallback,
	}).Info("Recommendations generated")

	return result, nil
}

func normalize(req *Request) error {
	if err := portfolio.ValidateBudget(req.InvestmentAmount); err != nil {
		return fmt.Errorf("investment amount: %w", err)
	}

	switch req.RiskTolerance {
	case "":
		req.RiskTolerance = contracts.RiskModerate
	case contracts.RiskConservative, contracts.RiskModerate, contracts.RiskAggressive:
	default:
		return fmt.Errorf("risk tolerance %q: %w", req.RiskTolerance, contracts.ErrInvalidArgument)
	}

	switch req.TimeHorizon {
	case "":
		req.TimeHorizon = contracts.HorizonMedium
	case contracts.HorizonShort, contracts.HorizonMedium, contracts.HorizonLong:
	default:
		return fmt.Errorf("time horizon %q: %w", req.TimeHorizon, contracts.ErrInvalidArgument)
	}

	return nil
}

// selectPicks takes the price-optimized plans first, then tops up from the general view
func selectPicks(allocation *contracts.AllocationResult, n int) []contracts.AllocationPlan {
	picks := make([]contracts.AllocationPlan, 0, n)
	if allocation == nil {
		return picks
	}

	seen := make(map[string]bool)
	for _, view := range [][]contracts.AllocationPlan{allocation.PriceOptimized, allocation.General} {
		for _, plan := range view {
			if len(picks) == n {
				return picks
			}
			if seen[plan.Symbol] {
				continue
			}
			seen[plan.Symbol] = true
			picks = append(picks, plan)
		}
	}
	return picks
}

func (s *Service) headlines(ctx context.Context) []contracts.Headline {
	if s.news == nil {
		return nil
	}
	headlines, err := s.news.MarketNews(ctx, MaxHeadlines)
	if err != nil {
		s.logger.WithError(err).Warn("Market news unavailable")
		return nil
	}
	return headlines
}

// narrate returns the narrator's story, or the template one when it fails
func (s *Service) narrate(ctx context.Context, req contracts.NarrativeRequest) (*contracts.Narrative, bool) {
	if s.narrator != nil {
		story, err := s.narrator.Narrate(ctx, req)
		if err == nil {
			return story, false
		}
		s.logger.WithError(err).Warn("Narrator failed, using template")
	}

	story, _ := s.template.Narrate(ctx, req)
	return story, true
}

// merge decorates picks with narrative; only the narrative text and confidence
// are taken from story, and notes for symbols outside picks are dropped
func merge(picks []contracts.AllocationPlan, story *contracts.Narrative) []Recommendation {
	var fallbackNotes *contracts.Narrative

	recs := make([]Recommendation, 0, len(picks))
	for _, p := range picks {
		note, ok := story.For(p.Symbol)
		if !ok {
			if fallbackNotes == nil {
				fallbackNotes, _ = narrative.TemplateNarrator{}.Narrate(context.Background(), contracts.NarrativeRequest{Picks: picks})
			}
			note, _ = fallbackNotes.For(p.Symbol)
		}

		recs = append(recs, Recommendation{
			Symbol:            p.Symbol,
			Name:              p.Name,
			Price:             p.Price,
			RecommendedShares: p.SharesToBuy,
			AllocationAmount:  p.AllocationAmount,
			PortfolioWeight:   p.PortfolioWeight,
			Confidence:        note.Confidence,
			Reasoning:         note.Reasoning,
			MarketTrends:      note.MarketTrends,
			MagicFormulaScore: p.CombinedRank,
			OverallRank:       p.OverallRank,
		})
	}
	return recs
}
