package format

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{192.53, "$192.53"},
		{1234.567, "$1,234.57"},
		{10000, "$10,000.00"},
		{1250000.5, "$1,250,000.50"},
		{math.NaN(), "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestCurrencyDecimal(t *testing.T) {
	assert.Equal(t, "$1,999.89", CurrencyDecimal(decimal.RequireFromString("1999.885")))
}

func TestMarketCap(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.95e12, "$3.0T"},
		{412.6e9, "$412.6B"},
		{850e6, "$850.0M"},
		{12345, "$12345"},
		{0, "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MarketCap(tt.in), "MarketCap(%v)", tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "5.8%", Percent(0.058))
	assert.Equal(t, "28.4%", Percent(0.284))
	assert.Equal(t, "-", Percent(math.Inf(1)))
	assert.Equal(t, "+1.43%", SignedPercent(1.43))
	assert.Equal(t, "-0.50%", SignedPercent(-0.5))
}
