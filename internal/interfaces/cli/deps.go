package cli

import (
	"github.com/redis/go-redis/v9"

	"github.com/jhyland87/chem-crawler/internal/application/search"
	"github.com/jhyland87/chem-crawler/internal/config"
	"github.com/jhyland87/chem-crawler/internal/domain/currency"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/cache"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/httpx"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
	"github.com/jhyland87/chem-crawler/internal/suppliers"
)

// buildStore constructs the cache backend selected in config.
func buildStore(cfg *config.Config, logger logging.Logger) cache.Store {
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		return cache.NewRedisStore(client, logger,
			cache.WithPrefix(cfg.Cache.KeyPrefix),
			cache.WithDefaultTTL(cfg.Cache.TTL))
	}
	return cache.NewMemoryStore(cfg.Cache.TTL)
}

// buildSearchService wires the full pipeline from config: HTTP client with
// response cache, adapter deps, metrics, and the session sink.
func buildSearchService(cfg *config.Config, logger logging.Logger, metrics *prometheus.PipelineMetrics) (*search.Service, *search.SessionSink, cache.Store) {
	store := buildStore(cfg, logger)

	client := httpx.NewClient(logger,
		httpx.WithTimeout(cfg.Suppliers.HTTPTimeout),
		httpx.WithUserAgent(cfg.Suppliers.UserAgent),
		httpx.WithCache(store, cfg.Cache.TTL))

	deps := suppliers.Deps{
		Client:           client,
		Logger:           logger,
		Metrics:          metrics,
		FuzzyCutoff:      cfg.Search.FuzzyCutoff,
		RequestCeiling:   cfg.Suppliers.RequestCeiling,
		CeilingOverrides: cfg.Suppliers.CeilingOverrides,
	}

	converter := currency.NewConverter(currency.Rates(cfg.Currency.Rates), cfg.Currency.Display)

	svc := search.NewService(deps,
		search.WithDetailBatch(cfg.Search.DetailBatch),
		search.WithConverter(converter),
		search.WithSessionSink(store, cfg.Cache.SessionTTL))

	return svc, search.NewSessionSink(store, cfg.Cache.SessionTTL), store
}
