package contracts

import "math"

// Security is one candidate evaluated by the ranker
// ⭐ SSOT: provider output → Rank input
type Security struct {
	Symbol                string   `json:"symbol" validate:"required,max=16"`
	Name                  string   `json:"name,omitempty"`
	Sector                string   `json:"sector,omitempty"`
	Price                 float64  `json:"price"`
	PriceToEarnings       *float64 `json:"priceToEarnings"`       // nil = not reported
	ReturnOnEquityPercent *float64 `json:"returnOnEquityPercent"` // 18.2 means 18.2%
	MarketCapitalization  float64  `json:"marketCapitalization"`
}

// ExclusionReason names the first eligibility bound a security violated
type ExclusionReason string

const (
	ReasonPrice           ExclusionReason = "price"
	ReasonEarningsYield   ExclusionReason = "earnings_yield"
	ReasonReturnOnCapital ExclusionReason = "return_on_capital"
)

// Float returns a pointer to v, for optional fields
func Float(v float64) *float64 {
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// EarningsYield returns 1/PE; ok is false when PE is absent or not positive
func (s *Security) EarningsYield() (float64, bool) {
	if s.PriceToEarnings == nil {
		return 0, false
	}
	pe := *s.PriceToEarnings
	if !finite(pe) || pe <= 0 {
		return 0, false
	}
	// Subnormal PEs overflow to +Inf
	ey := 1 / pe
	if !finite(ey) {
		return 0, false
	}
	return ey, true
}

// ReturnOnCapital returns ROE as a fraction; ok is false when absent or not positive
func (s *Security) ReturnOnCapital() (float64, bool) {
	if s.ReturnOnEquityPercent == nil {
		return 0, false
	}
	roe := *s.ReturnOnEquityPercent
	if !finite(roe) || roe <= 0 {
		return 0, false
	}
	// Subnormal ROEs underflow to zero
	roc := roe / 100
	if !finite(roc) || roc <= 0 {
		return 0, false
	}
	return roc, true
}

// Eligibility returns "" when the security may be ranked
func (s *Security) Eligibility() ExclusionReason {
	if !finite(s.Price) || s.Price <= 0 {
		return ReasonPrice
	}
	if _, ok := s.EarningsYield(); !ok {
		return ReasonEarningsYield
	}
	if _, ok := s.ReturnOnCapital(); !ok {
		return ReasonReturnOnCapital
	}
	return ""
}

// Quote is a live price snapshot
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Headline is a general market news item
type Headline struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary,omitempty"`
	Source   string `json:"source,omitempty"`
	URL      string `json:"url,omitempty"`
	Datetime int64  `json:"datetime,omitempty"`
}

// SymbolMatch is one result of a ticker lookup
type SymbolMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type,omitempty"`
}
