// Package fallback holds the substitute datasets served when upstream
// market data is unavailable.
package fallback

import (
	"sort"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
)

// AllSectors selects every substitute security
const AllSectors = "All Sectors"

// MarketSummary is used when no narrator summary is available
const MarketSummary = "Market shows strong momentum in technology sector with AI-driven growth opportunities."

// mock carries the published factor values; raw PE/ROE are derived from them
type mock struct {
	symbol          string
	name            string
	sector          string
	price           float64
	earningsYield   float64
	returnOnCapital float64
	marketCap       float64
}

var mocks = []mock{
	{"AAPL", "Apple Inc.", "Technology", 192.53, 0.058, 0.284, 3_000_000_000_000},
	{"MSFT", "Microsoft Corp.", "Technology", 412.64, 0.032, 0.185, 2_800_000_000_000},
	{"GOOGL", "Alphabet Inc.", "Technology", 166.41, 0.041, 0.142, 2_100_000_000_000},
	{"JNJ", "Johnson & Johnson", "Healthcare", 158.42, 0.045, 0.128, 425_000_000_000},
	{"PFE", "Pfizer Inc.", "Healthcare", 28.95, 0.089, 0.095, 163_000_000_000},
}

// quotes is the popular-stocks catalog of the portfolio page
var quotes = []contracts.Quote{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.50, Change: 2.30, ChangePercent: 1.33},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 350.20, Change: -1.80, ChangePercent: -0.51},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 125.30, Change: 3.20, ChangePercent: 2.62},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 145.80, Change: -0.90, ChangePercent: -0.61},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: 250.40, Change: 8.70, ChangePercent: 3.60},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 450.60, Change: 12.30, ChangePercent: 2.81},
	{Symbol: "META", Name: "Meta Platforms Inc.", Price: 320.90, Change: -2.40, ChangePercent: -0.74},
	{Symbol: "NFLX", Name: "Netflix Inc.", Price: 420.15, Change: 5.60, ChangePercent: 1.35},
}

func (m mock) security() contracts.Security {
	return contracts.Security{
		Symbol:                m.symbol,
		Name:                  m.name,
		Sector:                m.sector,
		Price:                 m.price,
		PriceToEarnings:       contracts.Float(1 / m.earningsYield),
		ReturnOnEquityPercent: contracts.Float(m.returnOnCapital * 100),
		MarketCapitalization:  m.marketCap,
	}
}

// Securities returns the substitute securities for sector.
// Sectors without their own dataset get the Technology one.
func Securities(sector string) []contracts.Security {
	var out []contracts.Security
	for _, m := range mocks {
		if sector == AllSectors || strings.EqualFold(m.sector, sector) {
			out = append(out, m.security())
		}
	}
	if len(out) == 0 {
		return Securities("Technology")
	}
	return out
}

// Quote returns the catalog quote for symbol
func Quote(symbol string) (*contracts.Quote, bool) {
	symbol = strings.TrimSpace(symbol)
	for _, q := range quotes {
		if q.Symbol == symbol {
			quote := q
			return &quote, true
		}
	}
	return nil, false
}

// Catalog returns every catalog quote
func Catalog() []contracts.Quote {
	return append([]contracts.Quote(nil), quotes...)
}

// Search matches the catalog by symbol or name, case-insensitively
func Search(query string) []contracts.SymbolMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]contracts.SymbolMatch, 0)
	for _, q := range quotes {
		if query == "" ||
			strings.Contains(strings.ToLower(q.Symbol), query) ||
			strings.Contains(strings.ToLower(q.Name), query) {
			matches = append(matches, contracts.SymbolMatch{
				Symbol:      q.Symbol,
				Description: q.Name,
				Type:        "Common Stock",
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Symbol < matches[j].Symbol
	})
	return matches
}
