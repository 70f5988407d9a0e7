// Package config defines all configuration structures for chem-crawler.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds logging tunables.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ServerConfig holds API server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig selects and tunes the response cache.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // "memory" | "redis"
	KeyPrefix  string        `mapstructure:"key_prefix"`
	TTL        time.Duration `mapstructure:"ttl"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// SearchConfig tunes the aggregation pipeline.
type SearchConfig struct {
	FuzzyCutoff  float64       `mapstructure:"fuzzy_cutoff"`
	DefaultLimit int           `mapstructure:"default_limit"`
	DetailBatch  int           `mapstructure:"detail_batch"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SuppliersConfig controls which adapters run and how hard they may hit
// their remote hosts.
type SuppliersConfig struct {
	Enabled        []string `mapstructure:"enabled"`
	RequestCeiling int      `mapstructure:"request_ceiling"`
	// CeilingOverrides replaces request_ceiling for individual suppliers.
	CeilingOverrides map[string]int `mapstructure:"ceiling_overrides"`
	HTTPTimeout      time.Duration  `mapstructure:"http_timeout"`
	UserAgent        string         `mapstructure:"user_agent"`
}

// CurrencyConfig holds the display currency and the static conversion
// table, expressed as units of each currency per one USD.
type CurrencyConfig struct {
	Display string             `mapstructure:"display"`
	Rates   map[string]float64 `mapstructure:"rates"`
}

// MetricsConfig controls the Prometheus surface.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Search    SearchConfig    `mapstructure:"search"`
	Suppliers SuppliersConfig `mapstructure:"suppliers"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Validate checks cross-field consistency after defaults are applied.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug|release|test, got %q", c.Server.Mode)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when cache.backend is redis")
	}

	if c.Search.FuzzyCutoff < 0 || c.Search.FuzzyCutoff > 1 {
		return fmt.Errorf("search.fuzzy_cutoff must be in [0, 1], got %v", c.Search.FuzzyCutoff)
	}
	if c.Search.DetailBatch <= 0 {
		return fmt.Errorf("search.detail_batch must be positive, got %d", c.Search.DetailBatch)
	}
	if c.Suppliers.RequestCeiling <= 0 {
		return fmt.Errorf("suppliers.request_ceiling must be positive, got %d", c.Suppliers.RequestCeiling)
	}
	for name, ceiling := range c.Suppliers.CeilingOverrides {
		if ceiling <= 0 {
			return fmt.Errorf("suppliers.ceiling_overrides[%s] must be positive, got %d", name, ceiling)
		}
	}

	if c.Currency.Display == "" {
		return fmt.Errorf("currency.display must not be empty")
	}
	for code, rate := range c.Currency.Rates {
		if rate <= 0 {
			return fmt.Errorf("currency.rates[%s] must be positive, got %v", code, rate)
		}
	}
	return nil
}
