package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/fallback"
	"github.com/wonny/magicformula/pkg/format"
)

// TemplateNarrator builds a deterministic narrative from the metrics alone
type TemplateNarrator struct{}

// Narrate implements contracts.Narrator; it never fails
func (TemplateNarrator) Narrate(ctx context.Context, req contracts.NarrativeRequest) (*contracts.Narrative, error) {
	trend := "No market headlines were available for this analysis."
	if len(req.Headlines) > 0 {
		trend = "Recent headline: " + req.Headlines[0].Headline
	}

	narrative := &contracts.Narrative{
		Recommendations: make([]contracts.PickNarrative, 0, len(req.Picks)),
		MarketSummary:   marketSummary(req.Headlines),
	}

	for _, p := range req.Picks {
		narrative.Recommendations = append(narrative.Recommendations, contracts.PickNarrative{
			Symbol:     p.Symbol,
			Confidence: templateConfidence(p.OverallRank),
			Reasoning: fmt.Sprintf(
				"%s ranks #%d overall with a %s earnings yield and a %s return on capital (combined rank %d). "+
					"%d shares keep the position at %s of the budget.",
				p.Symbol, p.OverallRank,
				format.Percent(p.EarningsYield),
				format.Percent(p.ReturnOnCapital),
				p.CombinedRank,
				p.SharesToBuy,
				format.Percent(p.PortfolioWeight),
			),
			MarketTrends: trend,
		})
	}

	return narrative, nil
}

// templateConfidence decays 5 points per overall rank from 95
func templateConfidence(overallRank int) int {
	if overallRank < 1 {
		return minConfidence
	}
	return clampConfidence(float64(95 - (overallRank-1)*5))
}

func marketSummary(headlines []contracts.Headline) string {
	if len(headlines) == 0 {
		return fallback.MarketSummary
	}

	n := min(len(headlines), 3)
	titles := make([]string, 0, n)
	for _, h := range headlines[:n] {
		titles = append(titles, strings.TrimSuffix(strings.TrimSpace(h.Headline), "."))
	}
	return "Market context: " + strings.Join(titles, ". ") + "."
}
