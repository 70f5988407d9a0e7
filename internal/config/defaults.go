package config

import "time"

// ApplyDefaults fills every unset field with its platform default.  It is
// idempotent and never overwrites a value the operator set explicitly.
func ApplyDefaults(c *Config) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stdout"}
	}
	if len(c.Log.ErrorOutputPaths) == 0 {
		c.Log.ErrorOutputPaths = []string{"stderr"}
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// The write timeout bounds the whole streamed response, so it must
		// exceed the search timeout.
		c.Server.WriteTimeout = 2 * time.Minute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "chemcrawl:"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Cache.SessionTTL == 0 {
		c.Cache.SessionTTL = 30 * time.Minute
	}

	if c.Search.FuzzyCutoff == 0 {
		c.Search.FuzzyCutoff = 0.4
	}
	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = 25
	}
	if c.Search.DetailBatch == 0 {
		c.Search.DetailBatch = 5
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = time.Minute
	}

	if c.Suppliers.RequestCeiling == 0 {
		c.Suppliers.RequestCeiling = 20
	}
	if c.Suppliers.HTTPTimeout == 0 {
		c.Suppliers.HTTPTimeout = 30 * time.Second
	}
	if c.Suppliers.UserAgent == "" {
		c.Suppliers.UserAgent = "chem-crawler/1.0"
	}

	if c.Currency.Display == "" {
		c.Currency.Display = "USD"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "chemcrawl"
	}
}
