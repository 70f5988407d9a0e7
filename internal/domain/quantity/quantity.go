// Package quantity parses free-text quantity strings ("120 grams", "1.2 L")
// into canonical quantity/unit pairs and converts them to comparable base
// units.  Parse failures are reported as (zero, false), never as errors:
// vendor listings routinely carry garbage here and callers are expected to
// try the next candidate string.
package quantity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhyland87/chem-crawler/pkg/types/product"
)

// ─────────────────────────────────────────────────────────────────────────────
// UOM alias table
// ─────────────────────────────────────────────────────────────────────────────

// uomAliases maps every accepted raw unit token (lower-cased) to its
// canonical UOM.  Singular, plural, and abbreviated forms are all listed;
// StandardizeUOM is a straight lookup into this table.
var uomAliases = map[string]product.UOM{
	// Mass.
	"mg": product.UOMMilligram, "milligram": product.UOMMilligram, "milligrams": product.UOMMilligram,
	"g": product.UOMGram, "gm": product.UOMGram, "gram": product.UOMGram, "grams": product.UOMGram,
	"kg": product.UOMKilogram, "kilo": product.UOMKilogram, "kilos": product.UOMKilogram,
	"kilogram": product.UOMKilogram, "kilograms": product.UOMKilogram,
	"lb": product.UOMPound, "lbs": product.UOMPound, "pound": product.UOMPound, "pounds": product.UOMPound,
	"oz": product.UOMOunce, "ounce": product.UOMOunce, "ounces": product.UOMOunce,

	// Volume.
	"ml": product.UOMMilliliter, "milliliter": product.UOMMilliliter, "milliliters": product.UOMMilliliter,
	"millilitre": product.UOMMilliliter, "millilitres": product.UOMMilliliter, "cc": product.UOMMilliliter,
	"l": product.UOMLiter, "liter": product.UOMLiter, "liters": product.UOMLiter,
	"litre": product.UOMLiter, "litres": product.UOMLiter,
	"gal": product.UOMGallon, "gallon": product.UOMGallon, "gallons": product.UOMGallon,
	"qt": product.UOMQuart, "quart": product.UOMQuart, "quarts": product.UOMQuart,

	// Length.
	"mm": product.UOMMillimeter, "millimeter": product.UOMMillimeter, "millimeters": product.UOMMillimeter,
	"millimetre": product.UOMMillimeter, "millimetres": product.UOMMillimeter,
	"cm": product.UOMCentimeter, "centimeter": product.UOMCentimeter, "centimeters": product.UOMCentimeter,
	"m": product.UOMMeter, "meter": product.UOMMeter, "meters": product.UOMMeter,
	"metre": product.UOMMeter, "metres": product.UOMMeter,

	// Count.
	"pc": product.UOMPiece, "pcs": product.UOMPiece, "piece": product.UOMPiece, "pieces": product.UOMPiece,
	"ea": product.UOMPiece, "each": product.UOMPiece, "unit": product.UOMPiece, "units": product.UOMPiece,
	"count": product.UOMPiece,
}

// toBaseFactors converts each canonical UOM to its dimension's base unit:
// grams for mass, milliliters for volume, millimeters for length.  Count has
// no meaningful base and is listed at 1.
var toBaseFactors = map[product.UOM]float64{
	product.UOMMilligram: 0.001,
	product.UOMGram:      1,
	product.UOMKilogram:  1000,
	product.UOMPound:     453.592,
	product.UOMOunce:     28.3495,

	product.UOMMilliliter: 1,
	product.UOMLiter:      1000,
	product.UOMGallon:     3785.41,
	product.UOMQuart:      946.353,

	product.UOMMillimeter: 1,
	product.UOMCentimeter: 10,
	product.UOMMeter:      1000,

	product.UOMPiece: 1,
}

// ─────────────────────────────────────────────────────────────────────────────
// Parsing
// ─────────────────────────────────────────────────────────────────────────────

var (
	// quantityRe captures a numeric token (US or European separators)
	// followed by at most one space and a unit token.  The unit token is
	// validated against the alias table after the match, not in the regex.
	quantityRe = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)*)\s?([A-Za-z]+)`)

	// euNumberRe recognises the European "group-of-3-digits,decimal" forms:
	// "1.234,56" and "123,45".  Numbers in these forms have "." and ","
	// swapped before standard decimal parsing.
	euNumberRe = regexp.MustCompile(`^(?:[0-9]{1,3}(?:\.[0-9]{3})+,[0-9]+|[0-9]+,[0-9]{1,2})$`)
)

// StandardizeUOM resolves a raw unit token to its canonical UOM via a
// case-insensitive lookup into the alias table.  Unknown tokens yield
// ("", false).
func StandardizeUOM(raw string) (product.UOM, bool) {
	u, ok := uomAliases[strings.ToLower(strings.TrimSpace(raw))]
	return u, ok
}

// parseNumber parses a numeric token whose separators may follow either the
// US ("1,234.56") or the European ("1.234,56") convention.
func parseNumber(token string) (float64, bool) {
	if euNumberRe.MatchString(token) {
		// Swap "." and "," so the token reads as a standard decimal.
		token = strings.NewReplacer(".", ",", ",", ".").Replace(token)
	}
	token = strings.ReplaceAll(token, ",", "")
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Parse extracts the first quantity+unit pair from text.  It returns
// (zero, false) when no numeric token is found, the unit token is missing,
// or the unit is not in the alias table — callers must treat that as
// "could not parse", not as an error.
func Parse(text string) (product.QuantityObject, bool) {
	m := quantityRe.FindStringSubmatch(text)
	if m == nil {
		return product.QuantityObject{}, false
	}
	uom, ok := StandardizeUOM(m[2])
	if !ok {
		return product.QuantityObject{}, false
	}
	qty, ok := parseNumber(m[1])
	if !ok || qty <= 0 {
		return product.QuantityObject{}, false
	}
	return product.QuantityObject{Quantity: qty, UOM: uom}, true
}

// ParseCoalesce tries each candidate string in order and returns the first
// successful parse.  When none parse it returns the zero QuantityObject;
// callers must check IsZero.
func ParseCoalesce(candidates ...string) product.QuantityObject {
	for _, c := range candidates {
		if q, ok := Parse(c); ok {
			return q
		}
	}
	return product.QuantityObject{}
}

// ToBase converts a quantity to its dimension's base unit (grams,
// milliliters, millimeters) for comparability across variants.  Units
// outside the three convertible families — and non-canonical units — are
// returned unchanged; this is an explicit non-conversion, not an error, and
// the result is never used for authoritative storage.
func ToBase(qty float64, uom product.UOM) float64 {
	switch uom.Dimension() {
	case product.DimMass, product.DimVolume, product.DimLength:
		return qty * toBaseFactors[uom]
	default:
		return qty
	}
}
