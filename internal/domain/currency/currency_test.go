package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhyland87/chem-crawler/pkg/types/product"
)

func testRates() Rates {
	return Rates{"EUR": 0.92, "GBP": 0.79, "CAD": 1.36}
}

func TestToUSD(t *testing.T) {
	c := NewConverter(testRates(), "EUR")

	usd, ok := c.ToUSD(92, "EUR")
	require.True(t, ok)
	assert.InDelta(t, 100, usd, 0.01)

	usd, ok = c.ToUSD(25, "usd")
	require.True(t, ok)
	assert.Equal(t, 25.0, usd)

	_, ok = c.ToUSD(10, "XXX")
	assert.False(t, ok)
}

func TestDerive_ForeignSourcePrice(t *testing.T) {
	c := NewConverter(testRates(), "GBP")
	p := &product.Product{Price: 92, CurrencyCode: "EUR"}

	c.Derive(p)

	require.NotNil(t, p.USDPrice)
	assert.InDelta(t, 100, *p.USDPrice, 0.01)
	require.NotNil(t, p.LocalPrice)
	assert.InDelta(t, 79, *p.LocalPrice, 0.01)
	// Authoritative price untouched.
	assert.Equal(t, 92.0, p.Price)
}

func TestDerive_USDSource(t *testing.T) {
	c := NewConverter(testRates(), "EUR")
	p := &product.Product{Price: 50, CurrencyCode: "USD"}

	c.Derive(p)

	assert.Nil(t, p.USDPrice, "USD source needs no derived USD price")
	require.NotNil(t, p.LocalPrice)
	assert.InDelta(t, 46, *p.LocalPrice, 0.01)
}

func TestDerive_DisplayMatchesSource(t *testing.T) {
	c := NewConverter(testRates(), "EUR")
	p := &product.Product{Price: 10, CurrencyCode: "EUR"}

	c.Derive(p)

	require.NotNil(t, p.USDPrice)
	assert.Nil(t, p.LocalPrice)
}

func TestDerive_UnknownOrMissingCurrency(t *testing.T) {
	c := NewConverter(testRates(), "EUR")

	unknown := &product.Product{Price: 10, CurrencyCode: "XYZ"}
	c.Derive(unknown)
	assert.Nil(t, unknown.USDPrice)
	assert.Nil(t, unknown.LocalPrice)

	missing := &product.Product{Price: 10}
	c.Derive(missing)
	assert.Nil(t, missing.USDPrice)

	c.Derive(nil) // must not panic
}
