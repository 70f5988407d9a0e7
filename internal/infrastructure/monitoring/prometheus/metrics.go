package prometheus

// PipelineMetrics holds the metrics the search pipeline records.
type PipelineMetrics struct {
	// Search layer
	SearchesTotal        CounterVec
	SearchDuration       HistogramVec
	ProductsEmittedTotal CounterVec
	ProductsDroppedTotal CounterVec

	// Supplier layer
	SupplierRequestsTotal CounterVec
	SupplierErrorsTotal   CounterVec
	SupplierQueryDuration HistogramVec
	BudgetExhaustedTotal  CounterVec

	// Cache layer
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// HTTP surface
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSearchDurationBuckets = []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60}
)

// NewPipelineMetrics registers every pipeline metric on the collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}

	m.SearchesTotal = collector.RegisterCounter("searches_total", "Search requests started", "status")
	m.SearchDuration = collector.RegisterHistogram("search_duration_seconds", "End-to-end search duration", DefaultSearchDurationBuckets)
	m.ProductsEmittedTotal = collector.RegisterCounter("products_emitted_total", "Products streamed to callers", "supplier")
	m.ProductsDroppedTotal = collector.RegisterCounter("products_dropped_total", "Candidates dropped at build", "supplier", "reason")

	m.SupplierRequestsTotal = collector.RegisterCounter("supplier_requests_total", "Outbound supplier requests", "supplier")
	m.SupplierErrorsTotal = collector.RegisterCounter("supplier_errors_total", "Supplier adapter failures", "supplier", "code")
	m.SupplierQueryDuration = collector.RegisterHistogram("supplier_query_duration_seconds", "Per-supplier query duration", DefaultSearchDurationBuckets, "supplier")
	m.BudgetExhaustedTotal = collector.RegisterCounter("budget_exhausted_total", "Queries that hit the request ceiling", "supplier")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Response cache hits", "layer")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Response cache misses", "layer")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "API requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "API request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight API requests", "method")

	return m
}

// NewNopPipelineMetrics returns metrics that record nothing, for tests and
// callers that run without a collector.
func NewNopPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		SearchesTotal:         noopCounterVec{},
		SearchDuration:        noopHistogramVec{},
		ProductsEmittedTotal:  noopCounterVec{},
		ProductsDroppedTotal:  noopCounterVec{},
		SupplierRequestsTotal: noopCounterVec{},
		SupplierErrorsTotal:   noopCounterVec{},
		SupplierQueryDuration: noopHistogramVec{},
		BudgetExhaustedTotal:  noopCounterVec{},
		CacheHitsTotal:        noopCounterVec{},
		CacheMissesTotal:      noopCounterVec{},
		HTTPRequestsTotal:     noopCounterVec{},
		HTTPRequestDuration:   noopHistogramVec{},
		HTTPActiveRequests:    noopGaugeVec{},
	}
}
