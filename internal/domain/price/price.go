// Package price extracts a numeric amount and currency designation from
// free-text or vendor-formatted price fields.  Like the other parsers in
// this tree, failure is (zero, false) and never an error: a candidate whose
// price cannot be read is simply skipped by the pipeline.
package price

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a parsed price: an exact decimal amount plus whatever currency
// designation the source carried.  Code and Symbol may each be empty when the
// source was a bare number; the product builder applies supplier defaults.
type Price struct {
	Amount Amount `json:"price"`
	Code   string `json:"currencyCode,omitempty"`
	Symbol string `json:"currencySymbol,omitempty"`
}

// Amount wraps decimal.Decimal so callers outside this package do not import
// the decimal library directly.
type Amount = decimal.Decimal

// Float64 returns the amount as a float64 for the emitted record.
func (p Price) Float64() float64 {
	f, _ := p.Amount.Float64()
	return f
}

// symbolCurrencies maps currency symbols found in vendor price strings to
// ISO 4217 codes.  Multi-rune symbols are matched before single-rune ones.
var symbolCurrencies = []struct {
	Symbol string
	Code   string
}{
	{"C$", "CAD"},
	{"A$", "AUD"},
	{"NZ$", "NZD"},
	{"HK$", "HKD"},
	{"US$", "USD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"zł", "PLN"},
	{"kr", "SEK"},
	{"₽", "RUB"},
}

// codeSymbols is the reverse mapping used when the source carries a code but
// no symbol.
var codeSymbols = map[string]string{
	"USD": "$", "CAD": "C$", "AUD": "A$", "NZD": "NZ$", "HKD": "HK$",
	"EUR": "€", "GBP": "£", "JPY": "¥", "INR": "₹", "PLN": "zł",
	"SEK": "kr", "RUB": "₽",
}

var (
	currencyCodeRe = regexp.MustCompile(`\b([A-Z]{3})\b`)
	numberRe       = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)*`)
	euNumberRe     = regexp.MustCompile(`^(?:[0-9]{1,3}(?:\.[0-9]{3})+,[0-9]+|[0-9]+,[0-9]{1,2})$`)
)

// SymbolForCode returns the display symbol for an ISO currency code, or the
// code itself when no symbol is known.
func SymbolForCode(code string) string {
	if s, ok := codeSymbols[strings.ToUpper(code)]; ok {
		return s
	}
	return code
}

// Parse extracts a price from text.  It handles plain numbers ("19.99"),
// symbol-prefixed strings ("$1,299.00", "€12,50"), and code-tagged strings
// ("19.99 USD").  Returns (zero, false) when no numeric token is present or
// the amount is not positive.
func Parse(text string) (Price, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Price{}, false
	}

	var p Price

	// Symbol detection; longest symbols first so "C$" wins over "$".
	for _, sc := range symbolCurrencies {
		if strings.Contains(text, sc.Symbol) {
			p.Symbol = sc.Symbol
			p.Code = sc.Code
			break
		}
	}

	// Explicit ISO code overrides the symbol guess ("CA$ 9.99 CAD").
	if m := currencyCodeRe.FindStringSubmatch(text); m != nil {
		if _, known := codeSymbols[m[1]]; known {
			p.Code = m[1]
			if p.Symbol == "" {
				p.Symbol = SymbolForCode(m[1])
			}
		}
	}

	token := numberRe.FindString(text)
	if token == "" {
		return Price{}, false
	}
	if euNumberRe.MatchString(token) {
		token = strings.NewReplacer(".", ",", ",", ".").Replace(token)
	}
	token = strings.ReplaceAll(token, ",", "")

	amount, err := decimal.NewFromString(token)
	if err != nil || !amount.IsPositive() {
		return Price{}, false
	}
	p.Amount = amount
	return p, true
}

// ParseCoalesce tries each candidate in order and returns the first
// successful parse, or (zero, false) when none parse.
func ParseCoalesce(candidates ...string) (Price, bool) {
	for _, c := range candidates {
		if p, ok := Parse(c); ok {
			return p, true
		}
	}
	return Price{}, false
}
