package storage

import "time"

// Config holds storage backend configuration.
type Config struct {
	// Type selects the backend: memory, sqlite, or postgres
	Type string `yaml:"type"`

	// SQLite config
	SQLitePath string `yaml:"sqlite_path"`

	// PostgreSQL config
	PostgresURL      string        `yaml:"postgres_url"`
	PostgresMaxConns int           `yaml:"postgres_max_conns"`
	PostgresMinConns int           `yaml:"postgres_min_conns"`
	PostgresTimeout  time.Duration `yaml:"postgres_timeout"`

	// Redis token cache config
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Cache config
	CacheEnabled  bool          `yaml:"cache_enabled"`
	L1CacheSize   int           `yaml:"l1_cache_size"`
	TokenCacheTTL time.Duration `yaml:"token_cache_ttl"`
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		Type:             "sqlite",
		SQLitePath:       "wharf.db",
		PostgresMaxConns: 25,
		PostgresMinConns: 5,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          -1,
		CacheEnabled:     true,
		L1CacheSize:      4096,
		TokenCacheTTL:    15 * time.Minute,
	}
}
