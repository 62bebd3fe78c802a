package narrative

import (
	"fmt"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/format"
)

const systemPrompt = "You are a professional financial advisor with expertise in Magic Formula investing, " +
	"market analysis, and portfolio construction. Provide actionable, data-driven commentary. " +
	"Never change the stocks, share counts or amounts you are given."

const responseFormat = `{
  "recommendations": [
    {
      "symbol": "STOCK_SYMBOL",
      "confidence": 1-100,
      "reasoning": "Two sentences combining the Magic Formula metrics with current market trends",
      "marketTrends": "Current trend insight"
    }
  ],
  "marketSummary": "Overall market outlook for this investment strategy"
}`

func buildUserPrompt(req contracts.NarrativeRequest) string {
	var b strings.Builder

	b.WriteString("INVESTMENT PARAMETERS:\n")
	fmt.Fprintf(&b, "- Investment Amount: %s\n", format.Currency(req.InvestmentAmount))
	fmt.Fprintf(&b, "- Sector Focus: %s\n", req.Sector)
	fmt.Fprintf(&b, "- Risk Tolerance: %s\n", req.RiskTolerance)
	fmt.Fprintf(&b, "- Time Horizon: %s\n\n", req.TimeHorizon)

	b.WriteString("CURRENT MARKET CONTEXT:\n")
	if len(req.Headlines) == 0 {
		b.WriteString("No headlines available.\n")
	}
	for _, h := range req.Headlines {
		fmt.Fprintf(&b, "- %s\n", h.Headline)
	}

	b.WriteString("\nMAGIC FORMULA PICKS (already sized, do not alter):\n")
	for _, p := range req.Picks {
		fmt.Fprintf(&b, "- %s (%s): price %s, earnings yield %s, return on capital %s, combined rank %d, %d shares for %s\n",
			p.Symbol, p.Name,
			format.Currency(p.Price),
			format.Percent(p.EarningsYield),
			format.Percent(p.ReturnOnCapital),
			p.CombinedRank,
			p.SharesToBuy,
			format.Currency(p.AllocationAmount),
		)
	}

	b.WriteString("\nFor each pick give a confidence score, a two-sentence reasoning and a brief market trend insight.\n")
	b.WriteString("Respond with JSON only, in this format:\n")
	b.WriteString(responseFormat)

	return b.String()
}
