package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.SessionTTL)
	assert.Equal(t, 0.4, cfg.Search.FuzzyCutoff)
	assert.Equal(t, 5, cfg.Search.DetailBatch)
	assert.Equal(t, 20, cfg.Suppliers.RequestCeiling)
	assert.Equal(t, "USD", cfg.Currency.Display)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Search.FuzzyCutoff = 0.7
	cfg.Server.Port = 9000
	ApplyDefaults(cfg)

	assert.Equal(t, 0.7, cfg.Search.FuzzyCutoff)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad port", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis backend needs addr", func(c *Config) { c.Cache.Backend = "redis" }, "redis.addr"},
		{"cutoff out of range", func(c *Config) { c.Search.FuzzyCutoff = 1.5 }, "fuzzy_cutoff"},
		{"zero batch", func(c *Config) { c.Search.DetailBatch = -1 }, "detail_batch"},
		{"bad ceiling", func(c *Config) { c.Suppliers.RequestCeiling = -1 }, "request_ceiling"},
		{"bad ceiling override", func(c *Config) { c.Suppliers.CeilingOverrides = map[string]int{"s1": -5} }, "ceiling_overrides"},
		{"valid ceiling override", func(c *Config) { c.Suppliers.CeilingOverrides = map[string]int{"s1": 5} }, ""},
		{"bad rate", func(c *Config) { c.Currency.Rates = map[string]float64{"EUR": -1} }, "currency.rates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
  format: console
server:
  port: 9090
search:
  fuzzy_cutoff: 0.55
suppliers:
  enabled: [carolina, bio]
  request_ceiling: 10
currency:
  display: EUR
  rates:
    EUR: 0.92
    GBP: 0.79
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.55, cfg.Search.FuzzyCutoff)
	assert.Equal(t, []string{"carolina", "bio"}, cfg.Suppliers.Enabled)
	assert.Equal(t, 10, cfg.Suppliers.RequestCeiling)
	assert.Equal(t, "EUR", cfg.Currency.Display)
	assert.Equal(t, 0.92, cfg.Currency.Rates["EUR"])

	// Unset fields still pick up defaults.
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5, cfg.Search.DetailBatch)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  fuzzy_cutoff: 3.0\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fuzzy_cutoff")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHEMCRAWL_LOG_LEVEL", "warn")
	t.Setenv("CHEMCRAWL_SERVER_PORT", "7070")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	updated := make(chan *Config, 1)
	Watch(path, func(cfg *Config) {
		select {
		case updated <- cfg:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	select {
	case cfg := <-updated:
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(3 * time.Second):
		t.Skip("filesystem notification did not arrive; environment-dependent")
	}
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
