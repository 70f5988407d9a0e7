package suppliers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhyland87/chem-crawler/internal/domain/product"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/httpx"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Client: httpx.NewClient(logging.NewNopLogger()),
		Logger: logging.NewNopLogger(),
	}.Normalize()
}

// restFixture is a minimal adapter over RESTStrategy used to exercise the
// strategy base end to end.
type restFixture struct {
	RESTStrategy
}

func (s *restFixture) QueryProducts(ctx context.Context, query string, limit int) ([]*product.Builder, error) {
	budget := s.NewBudget()
	raw, err := s.CollectPages(ctx, func(ctx context.Context, page int) ([]*product.Builder, bool, error) {
		var resp struct {
			Items []struct {
				Title string  `json:"title"`
				URL   string  `json:"url"`
				Price float64 `json:"price"`
			} `json:"items"`
			HasMore bool `json:"has_more"`
		}
		params := url.Values{"q": {query}, "page": {fmt.Sprint(page)}}
		if err := s.GetJSON(ctx, "/search", params, budget, &resp); err != nil {
			return nil, false, err
		}
		builders := make([]*product.Builder, 0, len(resp.Items))
		for _, item := range resp.Items {
			b := product.NewBuilder(s.Name()).
				SetBasicInfo(item.Title, s.Resolve(item.URL)).
				SetPricing(item.Price, "USD", "$")
			builders = append(builders, b)
		}
		return builders, resp.HasMore, nil
	})
	if err != nil {
		return nil, err
	}
	return s.FilterCandidates(query, raw, limit), nil
}

func (s *restFixture) GetProductData(ctx context.Context, b *product.Builder) (*product.Builder, error) {
	return b, nil
}

func TestRegistry(t *testing.T) {
	Register("fixture-rest", func(deps Deps) (Supplier, error) {
		return &restFixture{RESTStrategy{Base{Deps: deps, SupplierName: "fixture-rest", SupplierURL: "https://fixture.test"}}}, nil
	})

	assert.Contains(t, IDs(), "fixture-rest")

	s, err := New("fixture-rest", testDeps(t))
	require.NoError(t, err)
	assert.Equal(t, "fixture-rest", s.Name())

	_, err = New("nope", testDeps(t))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSupplierUnknown))

	assert.Panics(t, func() {
		Register("fixture-rest", func(deps Deps) (Supplier, error) { return nil, nil })
	})
}

func TestCeilingOverridesScopeBudgetPerSupplier(t *testing.T) {
	deps := testDeps(t)
	deps.RequestCeiling = 20
	deps.CeilingOverrides = map[string]int{"throttled": 3}

	throttled := Base{Deps: deps, SupplierName: "throttled"}
	assert.Equal(t, 3, throttled.NewBudget().Remaining())

	regular := Base{Deps: deps, SupplierName: "regular"}
	assert.Equal(t, 20, regular.NewBudget().Remaining())

	// A non-positive override falls back to the fleet ceiling.
	deps.CeilingOverrides["broken"] = 0
	broken := Base{Deps: deps, SupplierName: "broken"}
	assert.Equal(t, 20, broken.NewBudget().Remaining())
}

func TestRESTStrategyPaginationAndFiltering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"items":[
				{"title":"Sodium Chloride ACS","url":"/p/1","price":12.5},
				{"title":"Garden Hose","url":"/p/2","price":8}
			],"has_more":true}`))
		default:
			w.Write([]byte(`{"items":[
				{"title":"Sodium Chloride Technical","url":"/p/3","price":6}
			],"has_more":false}`))
		}
	}))
	defer srv.Close()

	deps := testDeps(t)
	s := &restFixture{RESTStrategy{Base{Deps: deps, SupplierName: "rest", SupplierURL: srv.URL}}}

	builders, err := s.QueryProducts(context.Background(), "sodium chloride", 10)
	require.NoError(t, err)
	require.Len(t, builders, 2)
	for _, b := range builders {
		assert.Contains(t, b.Title(), "Sodium Chloride")
	}
}

func TestCollectPagesBudgetTruncates(t *testing.T) {
	var served int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.Write([]byte(`{"items":[{"title":"Acetone","url":"/p/a","price":4}],"has_more":true}`))
	}))
	defer srv.Close()

	deps := testDeps(t)
	deps.RequestCeiling = 3
	s := &restFixture{RESTStrategy{Base{Deps: deps, SupplierName: "rest", SupplierURL: srv.URL}}}

	builders, err := s.QueryProducts(context.Background(), "acetone", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, served)
	assert.Len(t, builders, 3)
}

func TestCollectPagesCancellation(t *testing.T) {
	deps := testDeps(t)
	base := Base{Deps: deps, SupplierName: "x", SupplierURL: "https://x.test"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := base.CollectPages(ctx, func(ctx context.Context, page int) ([]*product.Builder, bool, error) {
		t.Fatal("fetch must not run after cancellation")
		return nil, false, nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeAborted))
}

func TestGraphQLStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		w.Write([]byte(`{"data":{"products":[{"title":"Ethanol 95%"}]}}`))
	}))
	defer srv.Close()

	s := &GraphQLStrategy{Base: Base{Deps: testDeps(t), SupplierName: "gql", SupplierURL: srv.URL}}

	var data struct {
		Products []struct {
			Title string `json:"title"`
		} `json:"products"`
	}
	err := s.Query(context.Background(), `query { products { title } }`, nil, s.NewBudget(), &data)
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Ethanol 95%", data.Products[0].Title)
}

func TestGraphQLStrategyErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"rate limited"}]}`))
	}))
	defer srv.Close()

	s := &GraphQLStrategy{Base: Base{Deps: testDeps(t), SupplierName: "gql", SupplierURL: srv.URL}}

	var data struct{}
	err := s.Query(context.Background(), `query {}`, nil, s.NewBudget(), &data)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBadResponse))
}

func TestHTMLStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="product"><span class="name">Toluene</span></div></body></html>`))
	}))
	defer srv.Close()

	s := &HTMLStrategy{Base: Base{Deps: testDeps(t), SupplierName: "html", SupplierURL: srv.URL}}

	doc, err := s.GetDocument(context.Background(), "/catalog", nil, s.NewBudget())
	require.NoError(t, err)
	assert.Equal(t, "Toluene", doc.Find(".product .name").Text())
}

func TestResolve(t *testing.T) {
	base := Base{SupplierURL: "https://supplier.test/shop"}
	assert.Equal(t, "https://supplier.test/search", base.Resolve("/search"))
	assert.Equal(t, "https://other.test/x", base.Resolve("https://other.test/x"))
}
