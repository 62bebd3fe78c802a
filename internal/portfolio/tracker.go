package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/fallback"
	"github.com/wonny/magicformula/pkg/logger"
)

// Tracker manages the holdings of the portfolio page
type Tracker struct {
	repo   contracts.HoldingRepository
	quotes contracts.MarketDataProvider // nil when no provider is configured
	logger *logger.Logger
	now    func() time.Time
}

// NewTracker creates a new tracker
func NewTracker(repo contracts.HoldingRepository, quotes contracts.MarketDataProvider, logger *logger.Logger) *Tracker {
	return &Tracker{
		repo:   repo,
		quotes: quotes,
		logger: logger,
		now:    time.Now,
	}
}

// List returns every holding
func (t *Tracker) List(ctx context.Context) ([]contracts.Holding, error) {
	return t.repo.List(ctx)
}

// Add buys shares of symbol at the current quote
func (t *Tracker) Add(ctx context.Context, symbol string, shares float64) (*contracts.Holding, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", contracts.ErrInvalidArgument)
	}
	if math.IsInf(shares, 0) || !(shares > 0) {
		return nil, fmt.Errorf("shares must be positive, got %v: %w", shares, contracts.ErrInvalidArgument)
	}

	existing, err := t.repo.GetBySymbol(ctx, symbol)
	if err != nil && !errors.Is(err, contracts.ErrHoldingNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrDuplicateHolding)
	}

	quote, err := t.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	name := quote.Name
	if name == "" {
		name = symbol
	}

	holding := &contracts.Holding{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Name:          name,
		Shares:        shares,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Value:         holdingValue(quote.Price, shares),
		AddedAt:       t.now().UTC(),
	}

	if err := t.repo.Create(ctx, holding); err != nil {
		return nil, err
	}

	t.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"shares": shares,
		"price":  quote.Price,
	}).Info("Holding added")

	return holding, nil
}

// Remove drops the holding for symbol
func (t *Tracker) Remove(ctx context.Context, symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if err := t.repo.DeleteBySymbol(ctx, symbol); err != nil {
		return err
	}

	t.logger.WithField("symbol", symbol).Info("Holding removed")
	return nil
}

// Summary aggregates the current holdings
func (t *Tracker) Summary(ctx context.Context) ([]contracts.Holding, *contracts.PortfolioSummary, error) {
	holdings, err := t.repo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return holdings, Summarize(holdings), nil
}

// quote prefers the live provider and falls back to the catalog
func (t *Tracker) quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	var upstreamErr error
	if t.quotes != nil {
		q, err := t.quotes.Quote(ctx, symbol)
		if err == nil && q.Price > 0 {
			return q, nil
		}
		upstreamErr = err
		if upstreamErr == nil {
			upstreamErr = fmt.Errorf("no price for %s", symbol)
		}
		t.logger.WithError(upstreamErr).WithField("symbol", symbol).Warn("Live quote failed, trying catalog")
	}

	if q, ok := fallback.Quote(symbol); ok {
		return q, nil
	}

	if upstreamErr == nil {
		upstreamErr = errors.New("no market data provider configured")
	}
	return nil, fmt.Errorf("quote %s: %v: %w", symbol, upstreamErr, contracts.ErrUpstreamUnavailable)
}

// Summarize computes portfolio totals
func Summarize(holdings []contracts.Holding) *contracts.PortfolioSummary {
	totalValue := decimal.Zero
	totalChange := decimal.Zero

	for _, h := range holdings {
		shares := decimal.NewFromFloat(h.Shares)
		totalValue = totalValue.Add(decimal.NewFromFloat(h.Price).Mul(shares))
		totalChange = totalChange.Add(decimal.NewFromFloat(h.Change).Mul(shares))
	}

	summary := &contracts.PortfolioSummary{
		TotalValue:    totalValue.InexactFloat64(),
		TotalChange:   totalChange.InexactFloat64(),
		HoldingsCount: len(holdings),
	}

	base := totalValue.Sub(totalChange)
	if totalValue.IsPositive() && !base.IsZero() {
		summary.TotalChangePercent = totalChange.Div(base).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return summary
}

func holdingValue(price, shares float64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(shares)).InexactFloat64()
}
