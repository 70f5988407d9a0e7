package http

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhyland87/chem-crawler/internal/application/search"
	"github.com/jhyland87/chem-crawler/internal/config"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
	"github.com/jhyland87/chem-crawler/internal/suppliers"
	"github.com/jhyland87/chem-crawler/internal/testutil"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

func testServer(t *testing.T, mocks ...*testutil.MockSupplier) *Server {
	t.Helper()

	byName := make(map[string]*testutil.MockSupplier, len(mocks))
	for _, m := range mocks {
		byName[m.SupplierName] = m
	}
	resolver := func(id string, deps suppliers.Deps) (suppliers.Supplier, error) {
		m, ok := byName[id]
		if !ok {
			return nil, errors.New(errors.CodeSupplierUnknown, "unknown supplier").WithDetail(id)
		}
		return m, nil
	}

	store := cache.NewMemoryStore(time.Minute)
	svc := search.NewService(suppliers.Deps{},
		search.WithResolver(resolver),
		search.WithSessionSink(store, time.Minute))

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "chemcrawl"}, logging.NewNopLogger())
	require.NoError(t, err)

	return NewServer(config.ServerConfig{Port: 0, Mode: "test", ShutdownTimeout: time.Second}, ServerDeps{
		Search:        svc,
		Sessions:      search.NewSessionSink(store, time.Minute),
		Collector:     collector,
		Metrics:       prometheus.NewPipelineMetrics(collector),
		Logger:        logging.NewNopLogger(),
		SearchTimeout: 5 * time.Second,
		DefaultLimit:  25,
	})
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchStreamsNDJSON(t *testing.T) {
	sup := &testutil.MockSupplier{
		SupplierName: "carolina",
		Items: []testutil.Item{
			{Title: "Sodium Chloride ACS", URL: "https://carolina.test/p/1", Price: 12.5, Quantity: "500 g"},
			{Title: "Sodium Chloride Lab", URL: "https://carolina.test/p/2", Price: 8, Quantity: "100 g"},
		},
	}
	srv := testServer(t, sup)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=sodium+chloride&suppliers=carolina", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Search-ID"))

	var products int
	var sawSummary bool
	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var obj map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &obj), line)
		if done, ok := obj["done"]; ok {
			sawSummary = true
			assert.Equal(t, true, done)
			assert.Equal(t, float64(2), obj["count"])
		} else {
			products++
			assert.Equal(t, "carolina", obj["supplier"])
		}
	}
	assert.Equal(t, 2, products)
	assert.True(t, sawSummary)
}

func TestSearchRequiresQuery(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.CodeInvalidParam), resp.Code)
}

func TestSearchRejectsBadLimit(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x&limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuppliersEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Suppliers []string `json:"suppliers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
}

func TestSessionRoundTrip(t *testing.T) {
	sup := &testutil.MockSupplier{
		SupplierName: "bio",
		Items:        []testutil.Item{{Title: "Acetone", URL: "https://bio.test/a", Price: 4}},
	}
	srv := testServer(t, sup)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=acetone&suppliers=bio", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	searchID := rec.Header().Get("X-Search-ID")
	require.NotEmpty(t, searchID)

	// The session is persisted asynchronously after the stream closes.
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+searchID, nil))
		return rec.Code == http.StatusOK
	}, time.Second, 20*time.Millisecond)

	rec2 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+searchID, nil))
	var session search.Session
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &session))
	assert.Equal(t, "acetone", session.Query)
	require.Len(t, session.Results, 1)
}

func TestSessionNotFound(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
