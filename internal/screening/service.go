package screening

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/fallback"
	"github.com/wonny/magicformula/internal/portfolio"
	"github.com/wonny/magicformula/internal/selection"
	"github.com/wonny/magicformula/internal/universe"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
	"github.com/wonny/magicformula/pkg/redis"
)

// ScreenRequest selects a sector and optionally sizes positions
type ScreenRequest struct {
	Sector             string
	Limit              int      // 0 = configured default
	InvestmentAmount   float64  // 0 = no allocation
	ConcentrationLimit *float64 // nil = configured default
}

// ScreenResult is the outcome of one screen
type ScreenResult struct {
	Sector          string                      `json:"sector"`
	Stocks          []contracts.RankedSecurity  `json:"stocks"`
	TotalAnalyzed   int                         `json:"totalAnalyzed"`
	ExcludedCount   int                         `json:"excludedCount"`
	Exclusions      []contracts.Exclusion       `json:"exclusions"`
	Allocation      *contracts.AllocationResult `json:"allocation,omitempty"`
	Fallback        bool                        `json:"fallback"`
	Error           string                      `json:"error,omitempty"`
	UniverseVersion string                      `json:"universeVersion"`
	AnalyzedAt      time.Time                   `json:"analyzedAt"`
}

// Service screens a sector: symbols → fetch → rank → allocate
// ⭐ SSOT: the only place that decides between live and substitute data
type Service struct {
	universe     *universe.Universe
	provider     contracts.MarketDataProvider
	collector    *Collector
	ranker       *selection.Ranker
	allocator    *portfolio.Allocator
	cache        *redis.Cache
	cacheTTL     time.Duration
	maxSymbols   int
	defaultLimit int
	logger       *logger.Logger
	now          func() time.Time
}

// NewService creates a new screening service
func NewService(
	cfg *config.Config,
	u *universe.Universe,
	provider contracts.MarketDataProvider,
	allocator *portfolio.Allocator,
	cache *redis.Cache,
	log *logger.Logger,
) *Service {
	log = log.WithModule("screening")
	return &Service{
		universe:     u,
		provider:     provider,
		collector:    NewCollector(provider, cfg.Screener.FetchDelay, log),
		ranker:       selection.NewRanker(log),
		allocator:    allocator,
		cache:        cache,
		cacheTTL:     cfg.Screener.CacheTTL,
		maxSymbols:   cfg.Screener.MaxSymbols,
		defaultLimit: cfg.Screener.DefaultLimit,
		logger:       log,
		now:          time.Now,
	}
}

// Sectors lists the screenable sectors, "All Sectors" first
func (s *Service) Sectors() []string {
	return s.universe.Sectors()
}

// Universe returns the loaded sector universe
func (s *Service) Universe() *universe.Universe {
	return s.universe
}

// Screen runs one screen. Upstream failures never surface as errors:
// the substitute dataset is used and the result is marked Fallback.
func (s *Service) Screen(ctx context.Context, req ScreenRequest, progress ProgressFunc) (*ScreenResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	sector, err := s.universe.Canonical(req.Sector)
	if err != nil {
		return nil, err
	}

	symbols, err := s.universe.Symbols(sector, req.Limit)
	if err != nil {
		return nil, err
	}
	if s.maxSymbols > 0 && len(symbols) > s.maxSymbols {
		symbols = symbols[:s.maxSymbols]
	}

	result := &ScreenResult{
		Sector:          sector,
		UniverseVersion: s.universe.Version(),
		AnalyzedAt:      s.now(),
	}

	securities, fetchErr := s.securities(ctx, sector, req.Limit, symbols, progress)
	if fetchErr != nil {
		if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
			return nil, fetchErr
		}
		s.logger.WithError(fetchErr).WithField("sector", sector).Warn("Using fallback data")
		securities = fallback.Securities(sector)
		result.Fallback = true
		result.Error = fetchErr.Error()
	}

	ranking := s.ranker.Rank(ctx, securities)

	result.Stocks = ranking.Top(req.Limit)
	result.TotalAnalyzed = len(securities)
	result.ExcludedCount = ranking.ExcludedCount
	result.Exclusions = ranking.Exclusions

	if req.InvestmentAmount > 0 {
		allocation, err := s.allocator.Allocate(ctx, ranking.Ranked, req.InvestmentAmount, req.ConcentrationLimit)
		if err != nil {
			return nil, err
		}
		result.Allocation = allocation
	}

	s.logger.WithFields(map[string]interface{}{
		"sector":   sector,
		"analyzed": result.TotalAnalyzed,
		"ranked":   len(ranking.Ranked),
		"excluded": result.ExcludedCount,
		"fallback": result.Fallback,
	}).Info("Screen completed")

	return result, nil
}

func (s *Service) validate(req *ScreenRequest) error {
	if req.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %w", contracts.ErrInvalidArgument)
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}
	if req.InvestmentAmount < 0 || math.IsNaN(req.InvestmentAmount) || math.IsInf(req.InvestmentAmount, 0) {
		return fmt.Errorf("investment amount must be a non-negative number: %w", contracts.ErrInvalidArgument)
	}
	if req.ConcentrationLimit != nil {
		return portfolio.ValidateConcentrationLimit(*req.ConcentrationLimit)
	}
	return nil
}

// securities returns live data for symbols, from cache when a previous screen
// of the same universe version already fetched them.
func (s *Service) securities(ctx context.Context, sector string, limit int, symbols []string, progress ProgressFunc) ([]contracts.Security, error) {
	if !configured(s.provider) {
		return nil, fmt.Errorf("market data provider not configured: %w", contracts.ErrUpstreamUnavailable)
	}

	key := fmt.Sprintf("%s:%s:%s", redis.ScreenKey(sector, limit), s.provider.Name(), s.universe.Version())

	var cached []contracts.Security
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("Screen cache read failed")
	} else if hit {
		s.logger.WithField("sector", sector).Debug("Screen cache hit")
		return cached, nil
	}

	securities, results, err := s.collector.Collect(ctx, symbols, progress)
	if err != nil {
		return nil, err
	}
	if len(securities) == 0 {
		cause := lastError(results)
		if cause == nil {
			cause = errors.New("no symbols to fetch")
		}
		return nil, fmt.Errorf("no data for %d symbols: %w: %w", len(results), cause, contracts.ErrUpstreamUnavailable)
	}

	if err := s.cache.Set(ctx, key, securities, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Screen cache write failed")
	}

	return securities, nil
}

type configurable interface {
	Configured() bool
}

func configured(p contracts.MarketDataProvider) bool {
	if p == nil {
		return false
	}
	if c, ok := p.(configurable); ok {
		return c.Configured()
	}
	return true
}
