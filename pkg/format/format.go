// Package format renders money, market caps and ratios for the CLI and logs.
package format

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyCode is the only currency the screener deals in
const CurrencyCode = money.USD

// Currency renders a dollar amount as "$1,234.57"
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	return CurrencyDecimal(decimal.NewFromFloat(amount))
}

// CurrencyDecimal renders an exact amount, rounding half away from zero to cents
func CurrencyDecimal(amount decimal.Decimal) string {
	cur := money.GetCurrency(CurrencyCode)
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return money.New(minor, CurrencyCode).Display()
}

// MarketCap abbreviates a capitalization: $2.9T, $412.6B, $850.0M
func MarketCap(v float64) string {
	switch {
	case math.IsNaN(v) || v <= 0:
		return "-"
	case v >= 1e12:
		return fmt.Sprintf("$%.1fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// Percent renders a fraction (0.058) as "5.8%"
func Percent(fraction float64) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// SignedPercent renders an already-scaled percentage with an explicit sign: "+1.43%"
func SignedPercent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}
