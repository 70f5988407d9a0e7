// Package product defines the unified product record, its variant and
// quantity value types, and the canonical unit-of-measure enumeration shared
// across every layer of chem-crawler.  No domain logic lives here — only
// plain data types that are safe to import from any layer without creating
// circular dependencies.
package product

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// UOM — canonical unit-of-measure enumeration
// ─────────────────────────────────────────────────────────────────────────────

// UOM is a canonical unit of measure.  Values outside this enumeration never
// appear on a Product or Variant: raw vendor unit strings are standardized by
// the quantity normalizer before they reach a record.
type UOM string

const (
	// Mass units.
	UOMMilligram UOM = "mg"
	UOMGram      UOM = "g"
	UOMKilogram  UOM = "kg"
	UOMPound     UOM = "lb"
	UOMOunce     UOM = "oz"

	// Volume units.
	UOMMilliliter UOM = "ml"
	UOMLiter      UOM = "L"
	UOMGallon     UOM = "gal"
	UOMQuart      UOM = "qt"

	// Length units.
	UOMMillimeter UOM = "mm"
	UOMCentimeter UOM = "cm"
	UOMMeter      UOM = "m"

	// Count units.
	UOMPiece UOM = "pcs"
)

// Dimension classifies a UOM by the physical quantity it measures.
type Dimension int

const (
	DimNone Dimension = iota
	DimMass
	DimVolume
	DimLength
	DimCount
)

// uomDimensions maps every canonical UOM to its dimension.
var uomDimensions = map[UOM]Dimension{
	UOMMilligram:  DimMass,
	UOMGram:       DimMass,
	UOMKilogram:   DimMass,
	UOMPound:      DimMass,
	UOMOunce:      DimMass,
	UOMMilliliter: DimVolume,
	UOMLiter:      DimVolume,
	UOMGallon:     DimVolume,
	UOMQuart:      DimVolume,
	UOMMillimeter: DimLength,
	UOMCentimeter: DimLength,
	UOMMeter:      DimLength,
	UOMPiece:      DimCount,
}

// Dimension returns the physical dimension of the unit, or DimNone when the
// value is not a canonical UOM.
func (u UOM) Dimension() Dimension {
	return uomDimensions[u]
}

// IsCanonical reports whether u is a member of the UOM enumeration.
func (u UOM) IsCanonical() bool {
	_, ok := uomDimensions[u]
	return ok
}

// ─────────────────────────────────────────────────────────────────────────────
// QuantityObject — parsed quantity + unit pair
// ─────────────────────────────────────────────────────────────────────────────

// QuantityObject is the output of the quantity normalizer: a numeric amount
// paired with a canonical unit.  The zero value means "could not parse";
// callers must check IsZero before using it.
type QuantityObject struct {
	Quantity float64 `json:"quantity"`
	UOM      UOM     `json:"uom"`
}

// IsZero reports whether q carries no parsed quantity.
func (q QuantityObject) IsZero() bool {
	return q.Quantity == 0 && q.UOM == ""
}

func (q QuantityObject) String() string {
	return fmt.Sprintf("%g %s", q.Quantity, q.UOM)
}

// ─────────────────────────────────────────────────────────────────────────────
// Variant — package-size / grade alternative owned by one parent Product
// ─────────────────────────────────────────────────────────────────────────────

// Variant is a partial Product-shaped record representing a package-size or
// grade alternative.  A Variant has no identity outside its parent Product;
// Title and UOM may be empty, in which case consumers inherit the parent's
// values.
type Variant struct {
	Title          string  `json:"title,omitempty"`
	SKU            string  `json:"sku,omitempty"`
	URL            string  `json:"url,omitempty"`
	Price          float64 `json:"price,omitempty"`
	CurrencyCode   string  `json:"currencyCode,omitempty"`
	CurrencySymbol string  `json:"currencySymbol,omitempty"`
	Quantity       float64 `json:"quantity,omitempty"`
	UOM            UOM     `json:"uom,omitempty"`
	Grade          string  `json:"grade,omitempty"`
	Conc           string  `json:"conc,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Product — the unified output record
// ─────────────────────────────────────────────────────────────────────────────

// Product is the normalized record emitted by the aggregation pipeline.
// Every emitted Product satisfies the required-field invariant (non-empty
// Supplier, Title, URL, and a printable Price+Quantity+UOM triple); builders
// that cannot satisfy it are dropped, never emitted half-valid.  A Product is
// immutable once built.
type Product struct {
	// Identity.
	ID       string `json:"id"`
	Supplier string `json:"supplier"`
	Title    string `json:"title"`
	URL      string `json:"url"`

	// Commercial.
	Price          float64 `json:"price"`
	CurrencyCode   string  `json:"currencyCode"`
	CurrencySymbol string  `json:"currencySymbol"`
	Quantity       float64 `json:"quantity"`
	UOM            UOM     `json:"uom"`

	// Derived prices; computed from exchange rates, never authoritative.
	USDPrice   *float64 `json:"usdPrice,omitempty"`
	LocalPrice *float64 `json:"localPrice,omitempty"`

	// Chemistry.
	CAS     string `json:"cas,omitempty"`
	Formula string `json:"formula,omitempty"`
	Grade   string `json:"grade,omitempty"`
	Conc    string `json:"conc,omitempty"`

	// Extras carried through from the source.
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`

	// Variants in source order.
	Variants []Variant `json:"variants,omitempty"`

	// MatchScore is the fuzzy similarity of Title against the originating
	// query, recorded when the candidate passed the relevance filter.
	MatchScore float64 `json:"matchScore,omitempty"`
}

// Validate checks the required-field invariant.  It returns a descriptive
// error naming the first missing field, or nil when the record is emittable.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Supplier) == "":
		return fmt.Errorf("product missing supplier")
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("product missing title")
	case strings.TrimSpace(p.URL) == "":
		return fmt.Errorf("product missing url")
	case p.Price <= 0:
		return fmt.Errorf("product missing price")
	case p.Quantity <= 0:
		return fmt.Errorf("product missing quantity")
	case !p.UOM.IsCanonical():
		return fmt.Errorf("product has non-canonical uom %q", p.UOM)
	}
	return nil
}

// VariantQuantity returns the effective quantity object for variant i,
// inheriting the parent's UOM when the variant omits one.
func (p *Product) VariantQuantity(i int) QuantityObject {
	if i < 0 || i >= len(p.Variants) {
		return QuantityObject{}
	}
	v := p.Variants[i]
	uom := v.UOM
	if uom == "" {
		uom = p.UOM
	}
	qty := v.Quantity
	if qty == 0 {
		qty = p.Quantity
	}
	return QuantityObject{Quantity: qty, UOM: uom}
}

// VariantTitle returns the effective title for variant i, inheriting the
// parent's Title when the variant omits one.
func (p *Product) VariantTitle(i int) string {
	if i < 0 || i >= len(p.Variants) {
		return ""
	}
	if t := p.Variants[i].Title; t != "" {
		return t
	}
	return p.Title
}
