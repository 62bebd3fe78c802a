package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurities(t *testing.T) {
	tech := Securities("Technology")
	require.Len(t, tech, 3)
	assert.Equal(t, "AAPL", tech[0].Symbol)

	ey, ok := tech[0].EarningsYield()
	require.True(t, ok)
	assert.InDelta(t, 0.058, ey, 1e-9)

	roc, ok := tech[0].ReturnOnCapital()
	require.True(t, ok)
	assert.InDelta(t, 0.284, roc, 1e-9)
}

func TestSecurities_Healthcare(t *testing.T) {
	health := Securities("healthcare")
	require.Len(t, health, 2)
	assert.Equal(t, "JNJ", health[0].Symbol)
	assert.Equal(t, "PFE", health[1].Symbol)
}

func TestSecurities_DefaultsToTechnology(t *testing.T) {
	assert.Equal(t, Securities("Technology"), Securities("Energy"))
	assert.Len(t, Securities(AllSectors), 5)
}

func TestSecurities_ReturnsCopies(t *testing.T) {
	first := Securities("Technology")
	*first[0].PriceToEarnings = -1

	second := Securities("Technology")
	assert.Greater(t, *second[0].PriceToEarnings, 0.0)
}

func TestQuote(t *testing.T) {
	q, ok := Quote(" NVDA ")
	require.True(t, ok)
	assert.Equal(t, 450.60, q.Price)
	assert.Equal(t, "NVIDIA Corp.", q.Name)

	_, ok = Quote("ZZZZ")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	matches := Search("micro")
	require.Len(t, matches, 1)
	assert.Equal(t, "MSFT", matches[0].Symbol)

	assert.Len(t, Search(""), len(Catalog()))
	assert.Empty(t, Search("nothing-like-this"))
}
