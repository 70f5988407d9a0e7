package suppliers

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhyland87/chem-crawler/internal/domain/match"
	"github.com/jhyland87/chem-crawler/internal/domain/product"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/httpx"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// Base carries the state and helpers shared by every transport strategy.
// Concrete adapters embed one of the strategy types below.
type Base struct {
	Deps         Deps
	SupplierName string
	SupplierURL  string
}

func (b *Base) Name() string    { return b.SupplierName }
func (b *Base) BaseURL() string { return b.SupplierURL }

// NewBudget starts a fresh request budget for one query, honoring any
// per-supplier ceiling override.
func (b *Base) NewBudget() *httpx.Budget {
	return httpx.NewBudget(b.Deps.CeilingFor(b.SupplierName))
}

// Defaults returns the supplier-level build fallbacks.
func (b *Base) Defaults() product.Defaults {
	return b.Deps.Defaults
}

// Resolve joins a path or relative URL against the supplier base URL.
func (b *Base) Resolve(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	base, err := url.Parse(b.SupplierURL)
	if err != nil {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}

// FilterCandidates fuzzy-scores builders against the query, drops those
// below the cutoff, records the surviving scores on the builders, and
// truncates to limit.  A non-positive limit keeps everything that passed.
func (b *Base) FilterCandidates(query string, builders []*product.Builder, limit int) []*product.Builder {
	candidates := make([]match.Candidate[*product.Builder], len(builders))
	for i, bd := range builders {
		candidates[i] = match.Candidate[*product.Builder]{Name: bd.Title(), Value: bd}
	}
	ranked := match.Filter(query, candidates, b.Deps.FuzzyCutoff)

	kept := make([]*product.Builder, 0, len(ranked))
	for _, c := range ranked {
		c.Value.SetMatchScore(c.Score)
		kept = append(kept, c.Value)
		if limit > 0 && len(kept) == limit {
			break
		}
	}
	return kept
}

// CollectPages drives a pagination loop: fetch is called with 1-based page
// numbers until it reports no further pages, the context ends, or the
// request budget runs out.  Budget exhaustion truncates the result instead
// of failing; the pages already fetched are still usable.
func (b *Base) CollectPages(ctx context.Context, fetch func(ctx context.Context, page int) (candidates []*product.Builder, more bool, err error)) ([]*product.Builder, error) {
	var all []*product.Builder
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, errors.Wrap(err, errors.CodeAborted, "search canceled")
		}
		candidates, more, err := fetch(ctx, page)
		if err != nil {
			if errors.IsCode(err, errors.CodeRequestBudget) {
				b.Deps.Metrics.BudgetExhaustedTotal.WithLabelValues(b.SupplierName).Inc()
				b.Deps.Logger.Warn("request budget exhausted, truncating pagination",
					logging.String("supplier", b.SupplierName),
					logging.Int("pages", page-1))
				return all, nil
			}
			return all, err
		}
		all = append(all, candidates...)
		if !more {
			return all, nil
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport strategies
// ─────────────────────────────────────────────────────────────────────────────

// RESTStrategy backs adapters over plain JSON search endpoints.
type RESTStrategy struct {
	Base
}

// GetJSON fetches a JSON document from path with params, spending budget.
func (s *RESTStrategy) GetJSON(ctx context.Context, path string, params url.Values, budget *httpx.Budget, dest interface{}) error {
	s.Deps.Metrics.SupplierRequestsTotal.WithLabelValues(s.SupplierName).Inc()
	return s.Deps.Client.GetJSON(ctx, s.Resolve(path), params, budget, dest)
}

// GraphQLStrategy backs adapters over GraphQL endpoints.
type GraphQLStrategy struct {
	Base

	// Endpoint is the GraphQL path relative to the base URL, typically
	// "/graphql".
	Endpoint string
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Query executes a GraphQL query and decodes the data object into dest.
// Transport-level errors and GraphQL-level errors both surface as
// CodeBadResponse.
func (s *GraphQLStrategy) Query(ctx context.Context, query string, variables map[string]interface{}, budget *httpx.Budget, dest interface{}) error {
	s.Deps.Metrics.SupplierRequestsTotal.WithLabelValues(s.SupplierName).Inc()

	envelope := struct {
		Data   interface{}    `json:"data"`
		Errors []graphqlError `json:"errors"`
	}{Data: dest}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = "/graphql"
	}
	if err := s.Deps.Client.PostJSON(ctx, s.Resolve(endpoint), graphqlRequest{Query: query, Variables: variables}, budget, &envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return errors.New(errors.CodeBadResponse, "graphql error").WithDetail(envelope.Errors[0].Message)
	}
	return nil
}

// HTMLStrategy backs adapters that scrape storefront HTML.
type HTMLStrategy struct {
	Base
}

// GetDocument fetches path and parses it into a goquery document.
func (s *HTMLStrategy) GetDocument(ctx context.Context, path string, params url.Values, budget *httpx.Budget) (*goquery.Document, error) {
	s.Deps.Metrics.SupplierRequestsTotal.WithLabelValues(s.SupplierName).Inc()
	return s.Deps.Client.GetHTML(ctx, s.Resolve(path), params, budget)
}
