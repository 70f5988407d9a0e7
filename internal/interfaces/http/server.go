// Package http exposes the aggregation pipeline over a small gin API.  The
// search endpoint streams results as NDJSON so clients see products as they
// arrive, matching the pipeline's arrival-order semantics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jhyland87/chem-crawler/internal/application/search"
	"github.com/jhyland87/chem-crawler/internal/config"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
	"github.com/jhyland87/chem-crawler/internal/suppliers"
	"github.com/jhyland87/chem-crawler/pkg/errors"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	srv    *http.Server
	engine *gin.Engine
	cfg    config.ServerConfig
	logger logging.Logger
}

// ServerDeps carries the collaborators the API routes need.
type ServerDeps struct {
	Search    *search.Service
	Sessions  *search.SessionSink
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.PipelineMetrics
	Logger    logging.Logger

	// SearchTimeout bounds one streamed search end to end.
	SearchTimeout time.Duration
	// DefaultLimit is the per-adapter result cap when the client sends none.
	DefaultLimit int
}

// NewServer builds the API server.
func NewServer(cfg config.ServerConfig, deps ServerDeps) *Server {
	gin.SetMode(ginMode(cfg.Mode))

	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewNopPipelineMetrics()
	}
	if deps.SearchTimeout == 0 {
		deps.SearchTimeout = time.Minute
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestMetrics(deps.Metrics))

	registerRoutes(engine, deps)

	return &Server{
		engine: engine,
		cfg:    cfg,
		logger: deps.Logger.Named("http"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("api server listening", logging.Int("port", s.cfg.Port))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, errors.CodeInternal, "api server failed")
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func registerRoutes(engine *gin.Engine, deps ServerDeps) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Collector != nil {
		engine.GET("/metrics", gin.WrapH(deps.Collector.Handler()))
	}

	api := engine.Group("/api/v1")
	{
		api.GET("/search", searchHandler(deps))
		api.GET("/suppliers", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"suppliers": suppliers.IDs()})
		})
		if deps.Sessions != nil {
			api.GET("/sessions/:id", sessionHandler(deps))
		}
	}
}

// requestMetrics records per-request counters and latency.
func requestMetrics(m *prometheus.PipelineMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.HTTPActiveRequests.WithLabelValues(c.Request.Method).Inc()
		timer := prometheus.NewTimer(m.HTTPRequestDuration.WithLabelValues(c.Request.Method, c.FullPath()))

		c.Next()

		timer.ObserveDuration()
		m.HTTPActiveRequests.WithLabelValues(c.Request.Method).Dec()
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, c.FullPath(), fmt.Sprint(c.Writer.Status())).Inc()
	}
}
