// Package search implements the supplier aggregation pipeline: given a
// free-text query and a set of enabled suppliers, it fans out search calls
// to every adapter concurrently, pushes each raw candidate through a
// bounded detail-fetch stage, finalizes builders, and streams finished
// products back in arrival order.  One slow or failing supplier degrades
// completeness, never correctness: the stream simply carries fewer items.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jhyland87/chem-crawler/internal/domain/currency"
	domainproduct "github.com/jhyland87/chem-crawler/internal/domain/product"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
	"github.com/jhyland87/chem-crawler/internal/suppliers"
	"github.com/jhyland87/chem-crawler/pkg/errors"
	"github.com/jhyland87/chem-crawler/pkg/types/product"
)

// defaultDetailBatch bounds concurrent detail fetches per adapter so one
// search never saturates a single remote host.
const defaultDetailBatch = 5

// Request describes one search invocation.
type Request struct {
	Query string
	// Suppliers is the ordered enabled-supplier list; empty means every
	// registered supplier.
	Suppliers []string
	// Limit caps results per adapter; non-positive means adapter default.
	Limit int
}

// Result is one streamed product, tagged with its origin.
type Result struct {
	Product  *product.Product `json:"product"`
	Supplier string           `json:"supplier"`
	Score    float64          `json:"score"`
}

// Stream is the lazy, single-pass output of one search.  Results ends when
// every adapter has settled or the context is canceled; cancellation is a
// normal termination path and never surfaces through Err.
type Stream struct {
	id      string
	results chan Result
	cancel  context.CancelFunc
}

// ID is the search/session identifier.
func (s *Stream) ID() string { return s.id }

// Results is the merged arrival-order product channel.
func (s *Stream) Results() <-chan Result { return s.results }

// Err reports a stream-level failure.  The pipeline has no fatal condition
// at this level, so it is always nil; it exists so callers range first and
// check after, like bufio.Scanner.
func (s *Stream) Err() error { return nil }

// Cancel aborts the search; the results channel closes after in-flight
// work observes the cancellation.
func (s *Stream) Cancel() { s.cancel() }

// Resolver constructs an adapter by identifier, normally suppliers.New.
type Resolver func(id string, deps suppliers.Deps) (suppliers.Supplier, error)

// Service orchestrates searches.  It is safe for concurrent use; each
// Search owns its own adapters, builders, and cancellation.
type Service struct {
	// mu guards the reload-safe tunables: deps and detailBatch are
	// snapshotted at the start of each Search and updated by
	// ApplyTunables.
	mu          sync.RWMutex
	deps        suppliers.Deps
	detailBatch int

	resolver  Resolver
	converter *currency.Converter
	sessions  *SessionSink
	metrics   *prometheus.PipelineMetrics
	logger    logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithResolver overrides adapter construction, mainly for tests.
func WithResolver(r Resolver) ServiceOption {
	return func(s *Service) { s.resolver = r }
}

// WithDetailBatch overrides the per-adapter detail-fetch concurrency.
func WithDetailBatch(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.detailBatch = n
		}
	}
}

// WithConverter enables derived-price computation: every built product
// gets USDPrice and LocalPrice filled from the converter's rate table
// before it is streamed.
func WithConverter(c *currency.Converter) ServiceOption {
	return func(s *Service) { s.converter = c }
}

// WithSessionSink enables write-through persistence of completed result
// sets.
func WithSessionSink(store cache.Store, ttl time.Duration) ServiceOption {
	return func(s *Service) { s.sessions = NewSessionSink(store, ttl) }
}

// NewService builds a search service over shared adapter dependencies.
func NewService(deps suppliers.Deps, opts ...ServiceOption) *Service {
	deps = deps.Normalize()
	s := &Service{
		deps:        deps,
		resolver:    suppliers.New,
		detailBatch: defaultDetailBatch,
		metrics:     deps.Metrics,
		logger:      deps.Logger.Named("search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyTunables updates the per-search knobs, typically from a reloaded
// configuration file.  Non-positive values leave the current setting
// unchanged; searches already in flight keep the values they started with.
func (s *Service) ApplyTunables(fuzzyCutoff float64, detailBatch, requestCeiling int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fuzzyCutoff > 0 {
		s.deps.FuzzyCutoff = fuzzyCutoff
	}
	if detailBatch > 0 {
		s.detailBatch = detailBatch
	}
	if requestCeiling > 0 {
		s.deps.RequestCeiling = requestCeiling
	}
}

// snapshot reads the reload-safe tunables for one search.
func (s *Service) snapshot() (suppliers.Deps, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deps, s.detailBatch
}

// Search starts the fan-out and returns immediately with the result
// stream.  The only error condition is an invalid request; everything
// downstream degrades silently per adapter and per candidate.
func (s *Service) Search(ctx context.Context, req Request) (*Stream, error) {
	if req.Query == "" {
		return nil, errors.InvalidParam("query must not be empty")
	}
	ids := req.Suppliers
	if len(ids) == 0 {
		ids = suppliers.IDs()
	}
	deps, detailBatch := s.snapshot()

	ctx, cancel := context.WithCancel(ctx)
	stream := &Stream{
		id:      uuid.NewString(),
		results: make(chan Result),
		cancel:  cancel,
	}

	s.metrics.SearchesTotal.WithLabelValues("started").Inc()
	timer := prometheus.NewTimer(s.metrics.SearchDuration.WithLabelValues())
	started := time.Now()

	var collected syncedResults

	var wg sync.WaitGroup
	for _, id := range ids {
		sup, err := s.resolver(id, deps)
		if err != nil {
			s.logger.Warn("skipping unresolvable supplier",
				logging.String("supplier", id), logging.Err(err))
			s.metrics.SupplierErrorsTotal.WithLabelValues(id, string(errors.GetCode(err))).Inc()
			continue
		}
		wg.Add(1)
		go func(sup suppliers.Supplier) {
			defer wg.Done()
			s.runAdapter(ctx, sup, req, detailBatch, deps.Defaults, stream.results, &collected)
		}(sup)
	}

	go func() {
		wg.Wait()
		// Abort state must be read before cancel; after cancel,
		// ctx.Err() is non-nil on every path.
		status := "ok"
		if ctx.Err() != nil {
			status = "aborted"
		}
		close(stream.results)
		cancel()
		timer.ObserveDuration()
		s.metrics.SearchesTotal.WithLabelValues(status).Inc()
		s.logger.Info("search completed",
			logging.String("search_id", stream.id),
			logging.String("query", req.Query),
			logging.Int("results", collected.len()),
			logging.Duration("elapsed", time.Since(started)))

		if s.sessions != nil {
			s.sessions.Save(context.Background(), Session{
				ID:          stream.id,
				Query:       req.Query,
				Suppliers:   ids,
				Results:     collected.snapshot(),
				CompletedAt: time.Now().UTC(),
			})
		}
	}()

	return stream, nil
}

// runAdapter performs the two-tier fan-out for one supplier: a single
// query call, then a semaphore-bounded detail fetch per candidate.
func (s *Service) runAdapter(ctx context.Context, sup suppliers.Supplier, req Request, detailBatch int, defaults domainproduct.Defaults, out chan<- Result, collected *syncedResults) {
	name := sup.Name()
	log := s.logger.With(logging.String("supplier", name))

	queryTimer := prometheus.NewTimer(s.metrics.SupplierQueryDuration.WithLabelValues(name))
	candidates, err := sup.QueryProducts(ctx, req.Query, req.Limit)
	queryTimer.ObserveDuration()
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("supplier query failed", logging.Err(err))
			s.metrics.SupplierErrorsTotal.WithLabelValues(name, string(errors.GetCode(err))).Inc()
		}
		return
	}

	sem := semaphore.NewWeighted(int64(detailBatch))
	var wg sync.WaitGroup
	for _, candidate := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(candidate *domainproduct.Builder) {
			defer wg.Done()
			defer sem.Release(1)
			s.finishCandidate(ctx, sup, candidate, defaults, out, collected, log)
		}(candidate)
	}
	wg.Wait()
}

func (s *Service) finishCandidate(ctx context.Context, sup suppliers.Supplier, candidate *domainproduct.Builder, defaults domainproduct.Defaults, out chan<- Result, collected *syncedResults, log logging.Logger) {
	name := sup.Name()

	b, err := sup.GetProductData(ctx, candidate)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("detail fetch failed", logging.Err(err))
			s.metrics.SupplierErrorsTotal.WithLabelValues(name, string(errors.GetCode(err))).Inc()
		}
		return
	}

	p, drop := b.Build(defaults)
	if drop != nil {
		log.Debug("candidate dropped", logging.String("reason", drop.String()))
		s.metrics.ProductsDroppedTotal.WithLabelValues(name, drop.Field).Inc()
		return
	}
	if s.converter != nil {
		s.converter.Derive(p)
	}

	result := Result{Product: p, Supplier: name, Score: p.MatchScore}
	select {
	case out <- result:
		s.metrics.ProductsEmittedTotal.WithLabelValues(name).Inc()
		collected.append(result)
	case <-ctx.Done():
	}
}

// syncedResults accumulates emitted results for the session sink.
type syncedResults struct {
	mu      sync.Mutex
	results []Result
}

func (c *syncedResults) append(r Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
}

func (c *syncedResults) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *syncedResults) snapshot() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}
