package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wharfhq/wharf/pkg/observability"
	"github.com/wharfhq/wharf/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Auth configuration
	Auth AuthConfig `yaml:"auth"`

	// Storage configuration
	Storage storage.Config `yaml:"storage"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`

	// Per-client rate limiting for the login endpoint
	RateLimitEnabled bool `yaml:"rate_limit_enabled"`
	RateLimitRPM     int  `yaml:"rate_limit_rpm"`
	RateLimitBurst   int  `yaml:"rate_limit_burst"`
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	// TokenTTL bounds token lifetime; zero means tokens never expire
	TokenTTL time.Duration `yaml:"token_ttl"`

	// TokenCleanupSchedule is a cron expression for the expired token purge
	TokenCleanupSchedule string `yaml:"token_cleanup_schedule"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"` // Use insecure gRPC connection
}

// ParsedLogLevel converts the configured log level string to a logger level
func (o ObservabilityConfig) ParsedLogLevel() observability.LogLevel {
	switch strings.ToLower(o.LogLevel) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             "8080",
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     15 * time.Second,
			IdleTimeout:      60 * time.Second,
			ShutdownTimeout:  30 * time.Second,
			HealthPort:       "9090",
			RateLimitEnabled: true,
			RateLimitRPM:     60,
			RateLimitBurst:   10,
		},
		Auth: AuthConfig{
			TokenTTL:             0,
			TokenCleanupSchedule: "@hourly",
		},
		Storage: storage.DefaultConfig(),
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			MetricsEnabled:     true,
			OTelEnabled:        false,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "wharf",
			OTelServiceVersion: observability.Version,
			OTelInsecure:       true,
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// and WHARF_* environment variable overrides, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides layers WHARF_* environment variables over the config
func applyEnvOverrides(cfg *Config) {
	// Server
	cfg.Server.Host = getEnv("WHARF_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("WHARF_PORT", cfg.Server.Port)
	cfg.Server.HealthPort = getEnv("WHARF_HEALTH_PORT", cfg.Server.HealthPort)
	cfg.Server.ReadTimeout = getEnvDuration("WHARF_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("WHARF_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("WHARF_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("WHARF_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.RateLimitEnabled = getEnvBool("WHARF_RATE_LIMIT_ENABLED", cfg.Server.RateLimitEnabled)
	cfg.Server.RateLimitRPM = getEnvInt("WHARF_RATE_LIMIT_RPM", cfg.Server.RateLimitRPM)
	cfg.Server.RateLimitBurst = getEnvInt("WHARF_RATE_LIMIT_BURST", cfg.Server.RateLimitBurst)

	// Auth
	cfg.Auth.TokenTTL = getEnvDuration("WHARF_TOKEN_TTL", cfg.Auth.TokenTTL)
	cfg.Auth.TokenCleanupSchedule = getEnv("WHARF_TOKEN_CLEANUP_SCHEDULE", cfg.Auth.TokenCleanupSchedule)

	// Storage
	cfg.Storage.Type = getEnv("WHARF_STORAGE_TYPE", cfg.Storage.Type)
	cfg.Storage.SQLitePath = getEnv("WHARF_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresURL = getEnv("WHARF_POSTGRES_URL", cfg.Storage.PostgresURL)
	cfg.Storage.PostgresMaxConns = getEnvInt("WHARF_POSTGRES_MAX_CONNS", cfg.Storage.PostgresMaxConns)
	cfg.Storage.PostgresMinConns = getEnvInt("WHARF_POSTGRES_MIN_CONNS", cfg.Storage.PostgresMinConns)
	cfg.Storage.PostgresTimeout = getEnvDuration("WHARF_POSTGRES_TIMEOUT", cfg.Storage.PostgresTimeout)
	cfg.Storage.RedisURL = getEnv("WHARF_REDIS_URL", cfg.Storage.RedisURL)
	cfg.Storage.RedisPassword = getEnv("WHARF_REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = getEnvInt("WHARF_REDIS_DB", cfg.Storage.RedisDB)
	cfg.Storage.CacheEnabled = getEnvBool("WHARF_CACHE_ENABLED", cfg.Storage.CacheEnabled)
	cfg.Storage.L1CacheSize = getEnvInt("WHARF_L1_CACHE_SIZE", cfg.Storage.L1CacheSize)
	cfg.Storage.TokenCacheTTL = getEnvDuration("WHARF_TOKEN_CACHE_TTL", cfg.Storage.TokenCacheTTL)

	// Observability
	cfg.Observability.LogLevel = getEnv("WHARF_LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Observability.MetricsEnabled = getEnvBool("WHARF_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
	cfg.Observability.OTelEnabled = getEnvBool("WHARF_OTEL_ENABLED", cfg.Observability.OTelEnabled)
	cfg.Observability.OTelEndpoint = getEnv("WHARF_OTEL_ENDPOINT", cfg.Observability.OTelEndpoint)
	cfg.Observability.OTelServiceName = getEnv("WHARF_OTEL_SERVICE_NAME", cfg.Observability.OTelServiceName)
	cfg.Observability.OTelServiceVersion = getEnv("WHARF_OTEL_SERVICE_VERSION", cfg.Observability.OTelServiceVersion)
	cfg.Observability.OTelInsecure = getEnvBool("WHARF_OTEL_INSECURE", cfg.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.RateLimitEnabled && c.Server.RateLimitRPM <= 0 {
		return fmt.Errorf("rate limit RPM must be positive when rate limiting is enabled")
	}

	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("token TTL must not be negative")
	}

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, or postgres)", c.Storage.Type)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
