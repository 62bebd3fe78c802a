package contracts

// RiskTolerance of the investor
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// TimeHorizon of the investment
type TimeHorizon string

const (
	HorizonShort  TimeHorizon = "short"
	HorizonMedium TimeHorizon = "medium"
	HorizonLong   TimeHorizon = "long"
)

// NarrativeRequest is what the narrator sees: the calculator's picks plus context
type NarrativeRequest struct {
	InvestmentAmount float64
	Sector           string
	RiskTolerance    RiskTolerance
	TimeHorizon      TimeHorizon
	Headlines        []Headline
	Picks            []AllocationPlan
}

// PickNarrative decorates a single pick
type PickNarrative struct {
	Symbol       string `json:"symbol"`
	Confidence   int    `json:"confidence"` // 1 ~ 100
	Reasoning    string `json:"reasoning"`
	MarketTrends string `json:"marketTrends"`
}

// Narrative is the narrator's answer
// ⭐ contract: decorative only, never changes symbols, shares or amounts
type Narrative struct {
	Recommendations []PickNarrative `json:"recommendations"`
	MarketSummary   string          `json:"marketSummary"`
}

// For returns the narrative for symbol, if any
func (n *Narrative) For(symbol string) (PickNarrative, bool) {
	for _, p := range n.Recommendations {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return PickNarrative{}, false
}
