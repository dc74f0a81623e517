// Package config provides application configuration management.
//
// # Overview
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then WHARF_* environment variable overrides. The result is validated
// before use.
//
// # Configuration Structure
//
// Server settings:
//
//	WHARF_HOST="0.0.0.0"
//	WHARF_PORT="8080"
//	WHARF_HEALTH_PORT="9090"
//	WHARF_READ_TIMEOUT="15s"
//	WHARF_WRITE_TIMEOUT="15s"
//
// Auth settings:
//
//	WHARF_TOKEN_TTL="720h"            # zero means tokens never expire
//	WHARF_TOKEN_CLEANUP_SCHEDULE="@hourly"
//
// Storage settings:
//
//	WHARF_STORAGE_TYPE="sqlite"  # memory, sqlite, postgres
//	WHARF_SQLITE_PATH="wharf.db"
//	WHARF_POSTGRES_URL="postgres://localhost/wharf"
//	WHARF_POSTGRES_MAX_CONNS="25"
//
// Cache settings:
//
//	WHARF_CACHE_ENABLED="true"
//	WHARF_REDIS_URL="redis://localhost:6379"
//	WHARF_L1_CACHE_SIZE="4096"
//	WHARF_TOKEN_CACHE_TTL="15m"
//
// Observability settings:
//
//	WHARF_LOG_LEVEL="info"  # debug, info, warn, error
//	WHARF_METRICS_ENABLED="true"
//	WHARF_OTEL_ENABLED="true"
//	WHARF_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig(os.Getenv("WHARF_CONFIG"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
