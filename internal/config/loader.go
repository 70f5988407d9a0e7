package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "CHEMCRAWL"

// newViper builds a pre-configured Viper instance: YAML file type,
// CHEMCRAWL_ env prefix, automatic env binding, and a key replacer mapping
// "." to "_" so "search.fuzzy_cutoff" resolves to
// CHEMCRAWL_SEARCH_FUZZY_CUTOFF.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers every known key so env-only values survive
// Unmarshal; AutomaticEnv alone cannot enumerate unset keys.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
		"server.port", "server.mode", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"cache.backend", "cache.key_prefix", "cache.ttl", "cache.session_ttl",
		"search.fuzzy_cutoff", "search.default_limit", "search.detail_batch", "search.timeout",
		"suppliers.enabled", "suppliers.request_ceiling", "suppliers.http_timeout", "suppliers.user_agent",
		"currency.display",
		"metrics.enabled", "metrics.namespace",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Load reads the YAML file at configPath, merges CHEMCRAWL_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMCRAWL_* environment
// variables with no config file, for containerised deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes on disk.  It is meant for hot-reloading safe
// tunables such as log level, fuzzy cutoff, and the request ceiling;
// callers apply only the subset they can change at runtime.  A change that
// fails to parse or validate is skipped without invoking onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error, for use in main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
