// Package product implements the staged builder that assembles a unified
// product record from the partial, order-independent fields a supplier
// adapter scrapes across one or more round-trips.
//
// A builder has exactly two states.  While Building it accumulates fields
// through chained setters, each validating only its own input class.  Build
// transitions it to Built: supplier defaults are applied, the required-field
// invariant is checked, and either an immutable record or a drop reason comes
// back.  There is no transition back; setters called on a Built builder are
// no-ops.  A dropped builder is silently excluded from results — dropping is
// not a pipeline error.
package product

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/jhyland87/chem-crawler/internal/domain/chem"
	"github.com/jhyland87/chem-crawler/internal/domain/price"
	"github.com/jhyland87/chem-crawler/internal/domain/quantity"
	types "github.com/jhyland87/chem-crawler/pkg/types/product"
)

// ─────────────────────────────────────────────────────────────────────────────
// DropReason
// ─────────────────────────────────────────────────────────────────────────────

// DropReason explains why Build declined to emit a product.  It is a value,
// not an error: callers log it at debug level and move on.
type DropReason struct {
	// Field names the missing or invalid required field.
	Field string
	// Detail is a short human-readable explanation.
	Detail string
}

func (d DropReason) String() string {
	return d.Field + ": " + d.Detail
}

// ─────────────────────────────────────────────────────────────────────────────
// Defaults
// ─────────────────────────────────────────────────────────────────────────────

// Defaults carries supplier-level fallbacks applied at Build for optional
// fields the adapter never set.
type Defaults struct {
	UOM            types.UOM
	Quantity       float64
	CurrencyCode   string
	CurrencySymbol string
}

// DefaultDefaults are the platform-wide fallbacks: one gram priced in USD.
func DefaultDefaults() Defaults {
	return Defaults{
		UOM:            types.UOMGram,
		Quantity:       1,
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Builder
// ─────────────────────────────────────────────────────────────────────────────

// Builder owns the in-progress product state exclusively during
// construction.  One builder corresponds to one in-flight candidate and is
// never shared across concurrent tasks.
type Builder struct {
	p     types.Product
	built bool

	hasPrice    bool
	hasQuantity bool
}

// NewBuilder starts a builder for a candidate from the named supplier.
func NewBuilder(supplier string) *Builder {
	return &Builder{p: types.Product{Supplier: supplier}}
}

// Supplier returns the owning supplier name.
func (b *Builder) Supplier() string { return b.p.Supplier }

// Title returns the candidate title accumulated so far; adapters use it for
// fuzzy filtering before the record is complete.
func (b *Builder) Title() string { return b.p.Title }

// Built reports whether Build has already run.
func (b *Builder) Built() bool { return b.built }

// SetBasicInfo records the candidate's title and absolute URL.
func (b *Builder) SetBasicInfo(title, url string) *Builder {
	if b.built {
		return b
	}
	b.p.Title = strings.TrimSpace(title)
	b.p.URL = strings.TrimSpace(url)
	return b
}

// SetPricing records the price and currency.  Non-finite and non-positive
// amounts are rejected (the field stays unset); currency fields may be empty
// and fall back to supplier defaults at Build.
func (b *Builder) SetPricing(amount float64, code, symbol string) *Builder {
	if b.built {
		return b
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return b
	}
	b.p.Price = amount
	b.p.CurrencyCode = strings.ToUpper(strings.TrimSpace(code))
	b.p.CurrencySymbol = strings.TrimSpace(symbol)
	b.hasPrice = true
	return b
}

// SetPricingFromText parses a vendor price string and records it when
// parseable; unparseable text leaves the builder unchanged.
func (b *Builder) SetPricingFromText(text string) *Builder {
	if p, ok := price.Parse(text); ok {
		return b.SetPricing(p.Float64(), p.Code, p.Symbol)
	}
	return b
}

// SetQuantity records an already-normalized quantity.  A non-canonical UOM
// or non-positive amount is rejected.
func (b *Builder) SetQuantity(qty float64, uom types.UOM) *Builder {
	if b.built {
		return b
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) || !uom.IsCanonical() {
		return b
	}
	b.p.Quantity = qty
	b.p.UOM = uom
	b.hasQuantity = true
	return b
}

// SetQuantityFromText parses the first quantity found in any of the
// candidate strings, trying them in order.
func (b *Builder) SetQuantityFromText(candidates ...string) *Builder {
	if q := quantity.ParseCoalesce(candidates...); !q.IsZero() {
		return b.SetQuantity(q.Quantity, q.UOM)
	}
	return b
}

// SetID records the supplier's own identifier for the product.
func (b *Builder) SetID(id string) *Builder {
	if b.built {
		return b
	}
	b.p.ID = strings.TrimSpace(id)
	return b
}

// SetSKU records the stock-keeping unit.
func (b *Builder) SetSKU(sku string) *Builder {
	if b.built {
		return b
	}
	b.p.SKU = strings.TrimSpace(sku)
	return b
}

// SetCAS records a CAS registry number.  Checksum-invalid values are
// rejected and the field stays unset.
func (b *Builder) SetCAS(cas string) *Builder {
	if b.built {
		return b
	}
	cas = strings.TrimSpace(cas)
	if chem.ValidateCAS(cas) {
		b.p.CAS = cas
	}
	return b
}

// SetFormula records a molecular formula verbatim.  Adapters that extract
// from HTML should prefer SetDescription, which validates via the formula
// extractor.
func (b *Builder) SetFormula(formula string) *Builder {
	if b.built {
		return b
	}
	b.p.Formula = strings.TrimSpace(formula)
	return b
}

// SetGrade records the purity grade ("ACS", "technical", ...).
func (b *Builder) SetGrade(grade string) *Builder {
	if b.built {
		return b
	}
	b.p.Grade = strings.TrimSpace(grade)
	return b
}

// SetConc records the concentration ("37%", "0.1 M", ...).
func (b *Builder) SetConc(conc string) *Builder {
	if b.built {
		return b
	}
	b.p.Conc = strings.TrimSpace(conc)
	return b
}

// SetDescription records the raw description and mines it for chemistry
// fields the adapter did not set explicitly: a checksum-valid CAS number and
// a validated molecular formula.
func (b *Builder) SetDescription(desc string) *Builder {
	if b.built {
		return b
	}
	b.p.Description = strings.TrimSpace(desc)
	if b.p.CAS == "" {
		if cas, ok := chem.FindCAS(desc); ok {
			b.p.CAS = cas
		}
	}
	if b.p.Formula == "" {
		if formula, ok := chem.FindFormulaInHTML(desc); ok {
			b.p.Formula = formula
		}
	}
	return b
}

// AddVariant appends a package-size/grade alternative.  Variants keep their
// source order.
func (b *Builder) AddVariant(v types.Variant) *Builder {
	if b.built {
		return b
	}
	b.p.Variants = append(b.p.Variants, v)
	return b
}

// SetMatchScore records the fuzzy score this candidate achieved against the
// originating query.
func (b *Builder) SetMatchScore(score float64) *Builder {
	if b.built {
		return b
	}
	b.p.MatchScore = score
	return b
}

// Build finalizes the builder: supplier defaults fill any unset optional
// field, the required-field invariant is checked, and the builder becomes
// immutable.  On success the finished record is returned; on invariant
// failure Build returns a DropReason and the candidate must be silently
// excluded.  Build is idempotent-hostile by design: a second call on the
// same builder reports a drop.
func (b *Builder) Build(defaults Defaults) (*types.Product, *DropReason) {
	if b.built {
		return nil, &DropReason{Field: "builder", Detail: "already finalized"}
	}
	b.built = true

	// Required identity fields have no defaults.
	if b.p.Title == "" {
		return nil, &DropReason{Field: "title", Detail: "missing title"}
	}
	if b.p.URL == "" {
		return nil, &DropReason{Field: "url", Detail: "missing url"}
	}
	if b.p.Supplier == "" {
		return nil, &DropReason{Field: "supplier", Detail: "missing supplier"}
	}
	if !b.hasPrice {
		return nil, &DropReason{Field: "price", Detail: "no parsable price"}
	}

	// Optional fields fall back to supplier-level defaults.
	if !b.hasQuantity {
		if defaults.Quantity > 0 && defaults.UOM.IsCanonical() {
			b.p.Quantity = defaults.Quantity
			b.p.UOM = defaults.UOM
		} else {
			return nil, &DropReason{Field: "quantity", Detail: "no parsable quantity and no default"}
		}
	}
	if b.p.CurrencyCode == "" {
		b.p.CurrencyCode = defaults.CurrencyCode
	}
	if b.p.CurrencySymbol == "" {
		b.p.CurrencySymbol = defaults.CurrencySymbol
	}
	if b.p.ID == "" {
		b.p.ID = uuid.NewString()
	}

	snapshot := b.p
	if err := snapshot.Validate(); err != nil {
		return nil, &DropReason{Field: "validate", Detail: err.Error()}
	}
	return &snapshot, nil
}
