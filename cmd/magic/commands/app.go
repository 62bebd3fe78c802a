package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/external/alphavantage"
	"github.com/wonny/magicformula/internal/external/finnhub"
	"github.com/wonny/magicformula/internal/narrative"
	"github.com/wonny/magicformula/internal/portfolio"
	"github.com/wonny/magicformula/internal/recommend"
	"github.com/wonny/magicformula/internal/screening"
	"github.com/wonny/magicformula/internal/universe"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/database"
	"github.com/wonny/magicformula/pkg/httputil"
	"github.com/wonny/magicformula/pkg/logger"
	"github.com/wonny/magicformula/pkg/redis"
)

// app holds every wired component
// ⭐ SSOT: the composition root, commands never construct services themselves
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	redis     *redis.Client
	db        *database.DB // nil when holdings live in memory
	finnhub   *finnhub.Client
	provider  contracts.MarketDataProvider
	allocator *portfolio.Allocator
	tracker   *portfolio.Tracker
	screening *screening.Service
	recommend *recommend.Service
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		if env != "development" && env != "staging" && env != "production" {
			return nil, fmt.Errorf("--env must be one of: development, staging, production")
		}
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Redis (optional)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		rdb = redis.Disabled()
	}
	cache := redis.NewCache(rdb, redis.KeyPrefix)
	limiter := redis.NewRateLimiter(rdb, redis.KeyPrefix)

	a := &app{cfg: cfg, log: log, redis: rdb}

	// 4. External API clients
	httpClient := httputil.New(cfg, log).WithRateLimiter(limiter, redis.AlphaVantageRateLimit)
	a.finnhub = finnhub.NewClient(cfg, cache, log.WithField("provider", config.ProviderFinnhub)).
		WithRateLimiter(limiter, redis.FinnhubRateLimit)

	switch cfg.Screener.Provider {
	case config.ProviderAlphaVantage:
		a.provider = alphavantage.NewClient(cfg, httpClient, cache, log.WithField("provider", config.ProviderAlphaVantage))
	default:
		a.provider = a.finnhub
	}

	// 5. Holdings storage
	var repo contracts.HoldingRepository = portfolio.NewMemoryRepository()
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db

		if err := db.Migrate(ctx, portfolio.Schema...); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate holdings: %w", err)
		}
		repo = portfolio.NewRepository(db.Pool)
	}

	// 6. Universe
	u, err := universe.Load(cfg.Screener.UniverseFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load universe: %w", err)
	}

	// 7. Services
	a.allocator = portfolio.NewAllocator(cfg.Screener.ConcentrationLimit, portfolio.DefaultViewConfig(), log)
	a.tracker = portfolio.NewTracker(repo, a.provider, log)
	a.screening = screening.NewService(cfg, u, a.provider, a.allocator, cache, log)

	var narrator contracts.Narrator
	llm, err := narrative.NewOpenAINarrator(ctx, cfg, log)
	switch {
	case err == nil:
		narrator = llm
	case errors.Is(err, narrative.ErrNotConfigured):
		log.Info("OpenAI not configured, narratives use templates")
	default:
		log.WithError(err).Warn("Narrator unavailable, narratives use templates")
	}
	a.recommend = recommend.NewService(a.screening, a.finnhub, narrator, log)

	log.WithFields(map[string]interface{}{
		"provider": a.provider.Name(),
		"universe": u.Version(),
		"redis":    rdb.Enabled(),
		"database": a.db != nil,
		"narrator": narrator != nil,
	}).Info("Application wired")

	return a, nil
}

// Close releases external connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
