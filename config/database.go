package config

import "time"

// DBConfig holds PostgreSQL connection configuration.
type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"jobhub"`
	Password string `env:"PASSWORD" envDefault:"jobhub"`
	Name     string `env:"NAME" envDefault:"jobhub"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`

	// RunMigrationsOnStart applies pending migrations before serving.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig holds Redis connection configuration. Direct, sentinel,
// and cluster topologies are supported; direct is the default.
type RedisConfig struct {
	// URI is the redis address for a direct connection. Either a bare
	// host:port or a redis:// / rediss:// URL.
	URI      string `env:"URI" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`

	// UseSentinel enables sentinel-based failover.
	UseSentinel        bool     `env:"USE_SENTINEL" envDefault:"false"`
	SentinelNodes      []string `env:"SENTINEL_NODES"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"`

	// UseCluster enables cluster mode.
	UseCluster   bool     `env:"USE_CLUSTER" envDefault:"false"`
	ClusterNodes []string `env:"CLUSTER_NODES"`
}

// CacheConfig tunes the remote collection cache that backs list endpoints.
type CacheConfig struct {
	// CollectionTTL is how long a fetched collection stays fresh before
	// the next read triggers a background revalidation.
	CollectionTTL time.Duration `env:"CACHE_COLLECTION_TTL" envDefault:"30s"`
	// FetchTimeout bounds a single upstream fetch.
	FetchTimeout time.Duration `env:"CACHE_FETCH_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to cache tuning values.
func (c *CacheConfig) Sanitize() {
	if c.CollectionTTL < time.Second {
		c.CollectionTTL = 30 * time.Second
	}
	if c.FetchTimeout < time.Second {
		c.FetchTimeout = 10 * time.Second
	}
}
