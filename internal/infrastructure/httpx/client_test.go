package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

func TestBudgetCeiling(t *testing.T) {
	b := NewBudget(2)
	require.NoError(t, b.Acquire())
	require.NoError(t, b.Acquire())

	err := b.Acquire()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeRequestBudget))
	assert.Equal(t, 2, b.Used())
	assert.Equal(t, 0, b.Remaining())
}

func TestBudgetNilAndUnlimited(t *testing.T) {
	var b *Budget
	assert.NoError(t, b.Acquire())
	assert.Equal(t, -1, b.Remaining())

	u := NewBudget(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, u.Acquire())
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acetone", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 3}`))
	}))
	defer srv.Close()

	c := NewClient(logging.NewNopLogger())
	var out struct {
		Count int `json:"count"`
	}
	err := c.GetJSON(context.Background(), srv.URL+"/search", url.Values{"q": {"acetone"}}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient(logging.NewNopLogger())
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.PostJSON(context.Background(), srv.URL, map[string]string{"query": "{}"}, nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestGetHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1 class="title">Sodium Chloride</h1></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(logging.NewNopLogger())
	doc, err := c.GetHTML(context.Background(), srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sodium Chloride", doc.Find("h1.title").Text())
}

func TestCacheHitSkipsNetworkAndBudget(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"n": 1}`))
	}))
	defer srv.Close()

	store := cache.NewMemoryStore(time.Minute)
	c := NewClient(logging.NewNopLogger(), WithCache(store, time.Minute))
	budget := NewBudget(1)

	var out struct {
		N int `json:"n"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, budget, &out))
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, 1, budget.Used())

	// Budget is spent, but the cached copy answers without the network.
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, budget, &out))
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, 1, budget.Used())
}

func TestBudgetExhaustedSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(logging.NewNopLogger())
	budget := NewBudget(1)

	var out map[string]interface{}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/a", nil, budget, &out))

	err := c.GetJSON(context.Background(), srv.URL+"/b", nil, budget, &out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeRequestBudget))
}

func TestNon200IsBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(logging.NewNopLogger())
	var out map[string]interface{}
	err := c.GetJSON(context.Background(), srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBadResponse))
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(logging.NewNopLogger())
	var out map[string]interface{}
	err := c.GetJSON(ctx, srv.URL, nil, nil, &out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTimeout))
}
