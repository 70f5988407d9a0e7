// Package currency derives comparison prices (USD and the user's display
// currency) from a product's authoritative source price.  Derived prices are
// informational only; the source price is never rewritten.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhyland87/chem-crawler/pkg/types/product"
)

// Rates maps an ISO 4217 code to the number of units of that currency per
// one US dollar.  The table is injected from configuration; this package
// never fetches rates.
type Rates map[string]float64

// Converter computes derived prices against a fixed rate table and display
// currency.
type Converter struct {
	rates   Rates
	display string
}

// NewConverter builds a Converter.  An empty display code disables local
// price derivation; USD derivation only needs the rate table.
func NewConverter(rates Rates, displayCode string) *Converter {
	normalized := make(Rates, len(rates)+1)
	for code, rate := range rates {
		normalized[strings.ToUpper(code)] = rate
	}
	normalized["USD"] = 1
	return &Converter{rates: normalized, display: strings.ToUpper(displayCode)}
}

// ToUSD converts an amount in the given currency to USD.  Returns
// (0, false) when the currency has no rate.
func (c *Converter) ToUSD(amount float64, code string) (float64, bool) {
	rate, ok := c.rates[strings.ToUpper(code)]
	if !ok || rate <= 0 {
		return 0, false
	}
	usd, _ := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return usd, true
}

// FromUSD converts a USD amount to the given currency.
func (c *Converter) FromUSD(usd float64, code string) (float64, bool) {
	rate, ok := c.rates[strings.ToUpper(code)]
	if !ok || rate <= 0 {
		return 0, false
	}
	out, _ := decimal.NewFromFloat(usd).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return out, true
}

// Derive fills in USDPrice and LocalPrice on p when they can be computed.
// A product already priced in USD gets no USDPrice (the source price is
// authoritative); a product already priced in the display currency gets no
// LocalPrice.  Unknown currencies leave both fields nil.
func (c *Converter) Derive(p *product.Product) {
	if p == nil || p.Price <= 0 {
		return
	}
	code := strings.ToUpper(p.CurrencyCode)
	if code == "" {
		return
	}

	usd, ok := c.ToUSD(p.Price, code)
	if !ok {
		return
	}
	if code != "USD" {
		p.USDPrice = &usd
	}
	if c.display != "" && c.display != code {
		if local, ok := c.FromUSD(usd, c.display); ok {
			p.LocalPrice = &local
		}
	}
}
