// Package suppliers defines the adapter contract every chemical supplier
// implements, the registry that constructs adapters by identifier, and the
// transport strategy bases (REST, GraphQL, HTML scrape) concrete adapters
// build on.
package suppliers

import (
	"context"

	"github.com/jhyland87/chem-crawler/internal/domain/product"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/httpx"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
)

// Supplier is the closed contract the aggregator depends on.  Adapters
// differ only in transport and schema; concurrency and failure semantics
// are identical across implementations.
//
// QueryProducts performs the source-specific search call or pagination
// loop, fuzzy-filters raw candidates against the query, truncates to limit,
// and returns builders carrying whatever the search response contained.
//
// GetProductData optionally performs a second detail round-trip to fill
// fields the search response omitted.  Adapters whose search responses are
// complete return the builder unchanged.
type Supplier interface {
	Name() string
	BaseURL() string
	QueryProducts(ctx context.Context, query string, limit int) ([]*product.Builder, error)
	GetProductData(ctx context.Context, b *product.Builder) (*product.Builder, error)
}

// Deps carries the shared collaborators injected into every adapter.
// Per-query state (the request budget) is never part of Deps.
type Deps struct {
	Client  *httpx.Client
	Logger  logging.Logger
	Metrics *prometheus.PipelineMetrics

	// FuzzyCutoff is the minimum similarity score a raw candidate must
	// reach against the query to survive filtering.
	FuzzyCutoff float64

	// RequestCeiling caps outbound requests per query per adapter.
	RequestCeiling int

	// CeilingOverrides replaces RequestCeiling for the named suppliers,
	// for sources with tighter rate limits than the fleet default.
	CeilingOverrides map[string]int

	// Defaults are the supplier-level fallbacks applied at build time.
	Defaults product.Defaults
}

// CeilingFor returns the per-query request ceiling for the named supplier.
func (d Deps) CeilingFor(name string) int {
	if c, ok := d.CeilingOverrides[name]; ok && c > 0 {
		return c
	}
	return d.RequestCeiling
}

// Normalize fills zero-valued Deps fields with platform defaults.
func (d Deps) Normalize() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.Metrics == nil {
		d.Metrics = prometheus.NewNopPipelineMetrics()
	}
	if d.FuzzyCutoff == 0 {
		d.FuzzyCutoff = 0.4
	}
	if d.RequestCeiling == 0 {
		d.RequestCeiling = 20
	}
	if d.Defaults == (product.Defaults{}) {
		d.Defaults = product.DefaultDefaults()
	}
	return d
}
