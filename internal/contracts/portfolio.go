package contracts

import "time"

// AllocationPlan sizes one ranked security against a budget
type AllocationPlan struct {
	RankedSecurity

	SharesToBuy      int64   `json:"sharesToBuy"`
	AllocationAmount float64 `json:"allocationAmount"`
	PortfolioWeight  float64 `json:"portfolioWeight"` // 0.0 ~ 1.0
}

// AllocationResult is the output of Allocate
// ⭐ contract: SharesToBuy × Price never exceeds MaxPerSecurity
type AllocationResult struct {
	Budget             float64          `json:"budget"`
	ConcentrationLimit float64          `json:"concentrationLimit"`
	MaxPerSecurity     float64          `json:"maxPerSecurity"`
	Plans              []AllocationPlan `json:"plans"`
	General            []AllocationPlan `json:"general"`
	PriceOptimized     []AllocationPlan `json:"priceOptimized"`
	TotalAllocated     float64          `json:"totalAllocated"` // over General
	CashRemaining      float64          `json:"cashRemaining"`
}

// GetPlan finds a plan by symbol
func (a *AllocationResult) GetPlan(symbol string) (*AllocationPlan, bool) {
	for i := range a.Plans {
		if a.Plans[i].Symbol == symbol {
			return &a.Plans[i], true
		}
	}
	return nil, false
}

// Holding is a tracked position
type Holding struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Shares        float64   `json:"shares"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Value         float64   `json:"value"`
	AddedAt       time.Time `json:"addedAt"`
}

// PortfolioSummary aggregates holdings
type PortfolioSummary struct {
	TotalValue         float64 `json:"totalValue"`
	TotalChange        float64 `json:"totalChange"`
	TotalChangePercent float64 `json:"totalChangePercent"`
	HoldingsCount      int     `json:"holdingsCount"`
}
