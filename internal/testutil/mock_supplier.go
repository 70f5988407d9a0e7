// Package testutil provides mock suppliers and canned responses shared by
// the aggregator and interface tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/jhyland87/chem-crawler/internal/domain/product"
	"github.com/jhyland87/chem-crawler/internal/suppliers"
)

// Item is the canned search result a MockSupplier serves.
type Item struct {
	Title string
	URL   string
	Price float64
	// Detail fields only surfaced by GetProductData when DetailFetch is set.
	CAS      string
	Quantity string
}

// MockSupplier implements suppliers.Supplier over an in-memory item list.
// It records call counts and can inject latency and failures.
type MockSupplier struct {
	SupplierName string
	Items        []Item

	// QueryErr, when set, makes QueryProducts fail.
	QueryErr error
	// DetailErr, when set, makes every GetProductData call fail.
	DetailErr error
	// DetailFetch enables the second round-trip: search results carry no
	// CAS or quantity until GetProductData runs.
	DetailFetch bool
	// Latency is applied before QueryProducts returns, for arrival-order
	// and cancellation tests.
	Latency time.Duration

	mu          sync.Mutex
	queryCalls  int
	detailCalls int
}

var _ suppliers.Supplier = (*MockSupplier)(nil)

func (m *MockSupplier) Name() string    { return m.SupplierName }
func (m *MockSupplier) BaseURL() string { return "https://" + m.SupplierName + ".test" }

func (m *MockSupplier) QueryProducts(ctx context.Context, query string, limit int) ([]*product.Builder, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	builders := make([]*product.Builder, 0, len(m.Items))
	for _, item := range m.Items {
		b := product.NewBuilder(m.SupplierName).SetBasicInfo(item.Title, item.URL)
		if !m.DetailFetch {
			b.SetPricing(item.Price, "USD", "$")
			if item.CAS != "" {
				b.SetCAS(item.CAS)
			}
			if item.Quantity != "" {
				b.SetQuantityFromText(item.Quantity)
			}
		}
		builders = append(builders, b)
		if limit > 0 && len(builders) == limit {
			break
		}
	}
	return builders, nil
}

func (m *MockSupplier) GetProductData(ctx context.Context, b *product.Builder) (*product.Builder, error) {
	m.mu.Lock()
	m.detailCalls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.DetailErr != nil {
		return nil, m.DetailErr
	}
	if !m.DetailFetch {
		return b, nil
	}

	var item Item
	for _, it := range m.Items {
		if it.Title == b.Title() {
			item = it
			break
		}
	}

	b.SetPricing(item.Price, "USD", "$")
	if item.CAS != "" {
		b.SetCAS(item.CAS)
	}
	if item.Quantity != "" {
		b.SetQuantityFromText(item.Quantity)
	}
	return b, nil
}

// QueryCalls reports how many times QueryProducts ran.
func (m *MockSupplier) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// DetailCalls reports how many times GetProductData ran.
func (m *MockSupplier) DetailCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailCalls
}
