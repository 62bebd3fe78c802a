package selection

import (
	"context"
	"sort"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/logger"
)

// Rank orders securities by the Magic Formula.
// ⭐ SSOT: the only ranking implementation
//
// Eligible securities get an earnings yield rank and a return on capital rank
// (both descending), their sum is the combined rank, and the output is sorted
// by combined rank ascending. Every sort is stable, so ties keep input order.
func Rank(securities []contracts.Security) *contracts.RankResult {
	eligible, exclusions := Filter(securities)

	ranked := make([]contracts.RankedSecurity, len(eligible))
	for i, sec := range eligible {
		ey, _ := sec.EarningsYield()
		roc, _ := sec.ReturnOnCapital()
		ranked[i] = contracts.RankedSecurity{
			Security:        sec,
			EarningsYield:   ey,
			ReturnOnCapital: roc,
		}
	}

	assignRanks(ranked, func(r *contracts.RankedSecurity) float64 { return r.EarningsYield },
		func(r *contracts.RankedSecurity, rank int) { r.EarningsYieldRank = rank })
	assignRanks(ranked, func(r *contracts.RankedSecurity) float64 { return r.ReturnOnCapital },
		func(r *contracts.RankedSecurity, rank int) { r.ReturnOnCapitalRank = rank })

	for i := range ranked {
		ranked[i].CombinedRank = ranked[i].EarningsYieldRank + ranked[i].ReturnOnCapitalRank
	}

	// Sort by combined rank (ascending)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedRank < ranked[j].CombinedRank
	})

	for i := range ranked {
		ranked[i].OverallRank = i + 1
	}

	return &contracts.RankResult{
		Ranked:        ranked,
		Exclusions:    exclusions,
		ExcludedCount: len(exclusions),
	}
}

// assignRanks sets 1-based descending ranks on a factor without reordering ranked
func assignRanks(
	ranked []contracts.RankedSecurity,
	factor func(*contracts.RankedSecurity) float64,
	set func(*contracts.RankedSecurity, int),
) {
	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return factor(&ranked[order[a]]) > factor(&ranked[order[b]])
	})

	for pos, idx := range order {
		set(&ranked[idx], pos+1)
	}
}

// Ranker wraps Rank with logging
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{
		logger: logger,
	}
}

// Rank ranks securities and logs a summary
func (r *Ranker) Rank(ctx context.Context, securities []contracts.Security) *contracts.RankResult {
	result := Rank(securities)

	fields := map[string]interface{}{
		"total_input": len(securities),
		"ranked":      len(result.Ranked),
		"excluded":    result.ExcludedCount,
		"filters":     CountByReason(result.Exclusions),
	}
	if len(result.Ranked) > 0 {
		fields["top_symbol"] = result.Ranked[0].Symbol
		fields["top_combined_rank"] = result.Ranked[0].CombinedRank
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return result
}
