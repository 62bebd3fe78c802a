package portfolio

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/logger"
)

// Allocate sizes each ranked security against budget.
// ⭐ SSOT: the only position sizing implementation
//
// maxPerSecurity = budget × limit, sharesToBuy = floor(maxPerSecurity / price).
// Arithmetic runs in decimal so floor never sees binary rounding error.
func Allocate(ranked []contracts.RankedSecurity, budget, limit float64, views ViewConfig) (*contracts.AllocationResult, error) {
	if err := ValidateBudget(budget); err != nil {
		return nil, err
	}
	if err := ValidateConcentrationLimit(limit); err != nil {
		return nil, err
	}

	budgetDec := decimal.NewFromFloat(budget)
	maxPer := budgetDec.Mul(decimal.NewFromFloat(limit))

	plans := make([]contracts.AllocationPlan, len(ranked))
	for i, rs := range ranked {
		plans[i] = sizePlan(rs, budgetDec, maxPer)
	}

	general := plans
	if views.TopN > 0 && views.TopN < len(plans) {
		general = plans[:views.TopN]
	}

	total := decimal.Zero
	for _, plan := range general {
		total = total.Add(decimal.NewFromFloat(plan.AllocationAmount))
	}

	return &contracts.AllocationResult{
		Budget:             budget,
		ConcentrationLimit: limit,
		MaxPerSecurity:     maxPer.InexactFloat64(),
		Plans:              plans,
		General:            append(make([]contracts.AllocationPlan, 0, len(general)), general...),
		PriceOptimized:     priceOptimized(plans, views),
		TotalAllocated:     total.InexactFloat64(),
		CashRemaining:      budgetDec.Sub(total).InexactFloat64(),
	}, nil
}

// sizePlan computes shares, amount and weight for one security
func sizePlan(rs contracts.RankedSecurity, budget, maxPer decimal.Decimal) contracts.AllocationPlan {
	plan := contracts.AllocationPlan{RankedSecurity: rs}

	price := decimal.NewFromFloat(rs.Price)
	if !price.IsPositive() {
		return plan
	}

	shares := maxPer.Div(price).Floor()
	// Div rounds at DivisionPrecision; never let that push past the cap
	if shares.Mul(price).GreaterThan(maxPer) {
		shares = shares.Sub(decimal.NewFromInt(1))
	}
	if shares.IsNegative() {
		shares = decimal.Zero
	}

	amount := shares.Mul(price)

	plan.SharesToBuy = shares.IntPart()
	plan.AllocationAmount = amount.InexactFloat64()
	plan.PortfolioWeight = amount.Div(budget).InexactFloat64()

	return plan
}

// priceOptimized keeps affordable, meaningfully sized plans and favors
// many shares at a good rank
func priceOptimized(plans []contracts.AllocationPlan, views ViewConfig) []contracts.AllocationPlan {
	selected := make([]contracts.AllocationPlan, 0, len(plans))
	for i := range plans {
		if views.Admits(&plans[i]) {
			selected = append(selected, plans[i])
		}
	}

	score := func(p *contracts.AllocationPlan) float64 {
		if p.OverallRank <= 0 {
			return 0
		}
		return float64(p.SharesToBuy) / float64(p.OverallRank)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return score(&selected[i]) > score(&selected[j])
	})

	return selected
}

// Allocator wraps Allocate with configured defaults and logging
type Allocator struct {
	concentrationLimit float64
	views              ViewConfig
	logger             *logger.Logger
}

// NewAllocator creates a new allocator
func NewAllocator(concentrationLimit float64, views ViewConfig, logger *logger.Logger) *Allocator {
	if concentrationLimit == 0 {
		concentrationLimit = DefaultConcentrationLimit
	}
	return &Allocator{
		concentrationLimit: concentrationLimit,
		views:              views,
		logger:             logger,
	}
}

// Allocate sizes ranked securities; a nil limit uses the configured one
func (a *Allocator) Allocate(ctx context.Context, ranked []contracts.RankedSecurity, budget float64, limit *float64) (*contracts.AllocationResult, error) {
	effective := a.concentrationLimit
	if limit != nil {
		effective = *limit
	}

	result, err := Allocate(ranked, budget, effective, a.views)
	if err != nil {
		return nil, err
	}

	a.logger.WithFields(map[string]interface{}{
		"budget":          budget,
		"limit":           effective,
		"plans":           len(result.Plans),
		"price_optimized": len(result.PriceOptimized),
		"total_allocated": result.TotalAllocated,
		"cash_remaining":  result.CashRemaining,
	}).Info("Allocation completed")

	return result, nil
}

// ConcentrationLimit returns the configured default limit
func (a *Allocator) ConcentrationLimit() float64 {
	return a.concentrationLimit
}
