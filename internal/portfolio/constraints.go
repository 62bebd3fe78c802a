package portfolio

import (
	"fmt"
	"math"

	"github.com/wonny/magicformula/internal/contracts"
)

// DefaultConcentrationLimit caps a single security at 20% of the budget
const DefaultConcentrationLimit = 0.20

// ViewConfig defines how allocation plans are cut into result views
// ⭐ SSOT: view thresholds live here only
type ViewConfig struct {
	TopN      int     // general view size (≤ 0 keeps every plan)
	MinWeight float64 // price-optimized lower weight bound (inclusive)
	MaxWeight float64 // price-optimized upper weight bound (inclusive)
	MinShares int64   // price-optimized minimum share count
}

// Admits reports whether a plan belongs in the price-optimized view
func (v *ViewConfig) Admits(plan *contracts.AllocationPlan) bool {
	return plan.PortfolioWeight >= v.MinWeight &&
		plan.PortfolioWeight <= v.MaxWeight &&
		plan.SharesToBuy >= v.MinShares
}

// DefaultViewConfig returns default view thresholds
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		TopN:      5,    // top 5 regardless of affordability
		MinWeight: 0.05, // 5%
		MaxWeight: 0.25, // 25%
		MinShares: 10,
	}
}

// ValidateBudget rejects non-positive or non-finite budgets
func ValidateBudget(budget float64) error {
	if math.IsInf(budget, 0) || !(budget > 0) {
		return fmt.Errorf("budget must be positive, got %v: %w", budget, contracts.ErrInvalidArgument)
	}
	return nil
}

// ValidateConcentrationLimit rejects limits outside (0, 1]
func ValidateConcentrationLimit(limit float64) error {
	if !(limit > 0 && limit <= 1) {
		return fmt.Errorf("concentration limit must be in (0, 1], got %v: %w", limit, contracts.ErrInvalidArgument)
	}
	return nil
}
