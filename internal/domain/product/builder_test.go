package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/jhyland87/chem-crawler/pkg/types/product"
)

func TestBuilderHappyPath(t *testing.T) {
	b := NewBuilder("carolina").
		SetBasicInfo("Sodium Chloride, ACS", "https://carolina.test/p/nacl").
		SetPricingFromText("$12.99 USD").
		SetQuantityFromText("500 g").
		SetSKU("NACL-500").
		SetGrade("ACS").
		SetDescription("Sodium chloride NaCl, CAS 7647-14-5, crystalline.")

	p, drop := b.Build(DefaultDefaults())
	require.Nil(t, drop)
	require.NotNil(t, p)

	assert.Equal(t, "carolina", p.Supplier)
	assert.Equal(t, "Sodium Chloride, ACS", p.Title)
	assert.InDelta(t, 12.99, p.Price, 1e-9)
	assert.Equal(t, "USD", p.CurrencyCode)
	assert.Equal(t, 500.0, p.Quantity)
	assert.Equal(t, types.UOMGram, p.UOM)
	assert.Equal(t, "7647-14-5", p.CAS)
	assert.Equal(t, "NaCl", p.Formula)
	assert.NotEmpty(t, p.ID)
}

func TestBuilderDropsWithoutPrice(t *testing.T) {
	b := NewBuilder("bio").
		SetBasicInfo("Acetone", "https://bio.test/acetone").
		SetPricingFromText("call for quote")

	p, drop := b.Build(DefaultDefaults())
	assert.Nil(t, p)
	require.NotNil(t, drop)
	assert.Equal(t, "price", drop.Field)
}

func TestBuilderDropsWithoutTitle(t *testing.T) {
	b := NewBuilder("bio").
		SetBasicInfo("", "https://bio.test/x").
		SetPricing(5, "USD", "$")

	p, drop := b.Build(DefaultDefaults())
	assert.Nil(t, p)
	require.NotNil(t, drop)
	assert.Equal(t, "title", drop.Field)
}

func TestBuilderQuantityDefault(t *testing.T) {
	b := NewBuilder("bio").
		SetBasicInfo("Ethanol", "https://bio.test/etoh").
		SetPricing(9.5, "", "")

	p, drop := b.Build(DefaultDefaults())
	require.Nil(t, drop)
	assert.Equal(t, 1.0, p.Quantity)
	assert.Equal(t, types.UOMGram, p.UOM)
	assert.Equal(t, "USD", p.CurrencyCode)
	assert.Equal(t, "$", p.CurrencySymbol)
}

func TestBuilderRejectsInvalidInputs(t *testing.T) {
	b := NewBuilder("bio").
		SetBasicInfo("Thing", "https://bio.test/t").
		SetPricing(-4, "USD", "$").
		SetQuantity(0, types.UOMGram).
		SetQuantity(5, types.UOM("bogus")).
		SetCAS("50-78-3")

	assert.Empty(t, b.p.CAS)
	assert.False(t, b.hasPrice)
	assert.False(t, b.hasQuantity)
}

func TestBuilderImmutableAfterBuild(t *testing.T) {
	b := NewBuilder("bio").
		SetBasicInfo("Thing", "https://bio.test/t").
		SetPricing(4, "USD", "$")

	p, drop := b.Build(DefaultDefaults())
	require.Nil(t, drop)
	title := p.Title

	b.SetBasicInfo("Renamed", "https://bio.test/r").SetPricing(99, "EUR", "€")
	assert.Equal(t, title, p.Title)
	assert.Equal(t, 4.0, p.Price)

	p2, drop2 := b.Build(DefaultDefaults())
	assert.Nil(t, p2)
	require.NotNil(t, drop2)
	assert.Equal(t, "builder", drop2.Field)
}

func TestBuilderVariantsKeepOrder(t *testing.T) {
	b := NewBuilder("bio").
		SetBasicInfo("Thing", "https://bio.test/t").
		SetPricing(4, "USD", "$").
		AddVariant(types.Variant{Title: "100 g", SKU: "T-100"}).
		AddVariant(types.Variant{Title: "500 g", SKU: "T-500"})

	p, drop := b.Build(DefaultDefaults())
	require.Nil(t, drop)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, "T-100", p.Variants[0].SKU)
	assert.Equal(t, "T-500", p.Variants[1].SKU)
}
