package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProduct() *Product {
	return &Product{
		Supplier:       "acme-chem",
		Title:          "Sodium Chloride 500g",
		URL:            "https://acme-chem.example/products/nacl-500g",
		Price:          19.99,
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
		Quantity:       500,
		UOM:            UOMGram,
	}
}

func TestUOM_Dimension(t *testing.T) {
	assert.Equal(t, DimMass, UOMKilogram.Dimension())
	assert.Equal(t, DimVolume, UOMMilliliter.Dimension())
	assert.Equal(t, DimLength, UOMMeter.Dimension())
	assert.Equal(t, DimCount, UOMPiece.Dimension())
	assert.Equal(t, DimNone, UOM("furlong").Dimension())
}

func TestUOM_IsCanonical(t *testing.T) {
	assert.True(t, UOMGram.IsCanonical())
	assert.False(t, UOM("grams").IsCanonical())
	assert.False(t, UOM("").IsCanonical())
}

func TestQuantityObject_IsZero(t *testing.T) {
	assert.True(t, QuantityObject{}.IsZero())
	assert.False(t, QuantityObject{Quantity: 100, UOM: UOMGram}.IsZero())
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Product)
		wantErr string
	}{
		{"valid", func(p *Product) {}, ""},
		{"missing supplier", func(p *Product) { p.Supplier = " " }, "supplier"},
		{"missing title", func(p *Product) { p.Title = "" }, "title"},
		{"missing url", func(p *Product) { p.URL = "" }, "url"},
		{"zero price", func(p *Product) { p.Price = 0 }, "price"},
		{"negative quantity", func(p *Product) { p.Quantity = -1 }, "quantity"},
		{"raw uom alias", func(p *Product) { p.UOM = "grams" }, "uom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestProduct_VariantInheritance(t *testing.T) {
	p := validProduct()
	p.Variants = []Variant{
		{Quantity: 100}, // inherits g and parent title
		{Title: "NaCl 1kg", Quantity: 1, UOM: UOMKilogram},
	}

	q0 := p.VariantQuantity(0)
	assert.Equal(t, QuantityObject{Quantity: 100, UOM: UOMGram}, q0)
	assert.Equal(t, "Sodium Chloride 500g", p.VariantTitle(0))

	q1 := p.VariantQuantity(1)
	assert.Equal(t, QuantityObject{Quantity: 1, UOM: UOMKilogram}, q1)
	assert.Equal(t, "NaCl 1kg", p.VariantTitle(1))

	// Out of range is a zero value, not a panic.
	assert.True(t, p.VariantQuantity(5).IsZero())
	assert.Empty(t, p.VariantTitle(-1))
}
