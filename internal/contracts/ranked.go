package contracts

// RankedSecurity is an eligible Security with its Magic Formula ranks
// ⭐ SSOT: Rank → Allocate
type RankedSecurity struct {
	Security

	EarningsYield       float64 `json:"earningsYield"`
	ReturnOnCapital     float64 `json:"returnOnCapital"`
	EarningsYieldRank   int     `json:"earningsYieldRank"`   // 1-based, descending EY
	ReturnOnCapitalRank int     `json:"returnOnCapitalRank"` // 1-based, descending ROC
	CombinedRank        int     `json:"combinedRank"`        // lower is better
	OverallRank         int     `json:"overallRank"`         // 1-based, ascending combined
}

// Exclusion records an input dropped from ranking
type Exclusion struct {
	Symbol string          `json:"symbol"`
	Reason ExclusionReason `json:"reason"`
}

// RankResult is the output of Rank
type RankResult struct {
	Ranked        []RankedSecurity `json:"ranked"`
	Exclusions    []Exclusion      `json:"exclusions"`
	ExcludedCount int              `json:"excludedCount"`
}

// Top returns at most n ranked securities, best first
func (r *RankResult) Top(n int) []RankedSecurity {
	if n <= 0 || n >= len(r.Ranked) {
		return r.Ranked
	}
	return r.Ranked[:n]
}
