package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wharfhq/wharf/pkg/audit"
	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/config"
	"github.com/wharfhq/wharf/pkg/middleware"
	"github.com/wharfhq/wharf/pkg/observability"
	"github.com/wharfhq/wharf/pkg/registry"
	"github.com/wharfhq/wharf/pkg/storage"
	"github.com/wharfhq/wharf/pkg/storage/postgres"
	"github.com/wharfhq/wharf/pkg/storage/sqlite"
)

func main() {
	configPath := flag.String("config", os.Getenv("WHARF_CONFIG"), "Path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.ParsedLogLevel(), os.Stdout)
	logger.WithField("version", observability.Version).Info("Starting wharf registry auth service")

	ctx := context.Background()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}

	// Storage backend
	store, db, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.WithField("backend", cfg.Storage.Type).Info("Storage initialized")

	// Redis backs the L2 token cache and the distributed rate limiter.
	// It is optional; without it both degrade gracefully.
	var redisClient *redis.Client
	if cfg.Storage.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			log.Fatalf("Invalid Redis URL: %v", err)
		}
		if cfg.Storage.RedisPassword != "" {
			opts.Password = cfg.Storage.RedisPassword
		}
		if cfg.Storage.RedisDB >= 0 {
			opts.DB = cfg.Storage.RedisDB
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable at startup, continuing degraded")
		}
	}

	// Token reads go through the cache; account operations hit the store
	var tokens storage.TokenStore = store
	if cfg.Storage.CacheEnabled {
		cache, err := storage.NewTokenCache(store, redisClient, cfg.Storage.L1CacheSize, cfg.Storage.TokenCacheTTL)
		if err != nil {
			log.Fatalf("Failed to initialize token cache: %v", err)
		}
		tokens = cache
	}

	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	trail := audit.NewTrailLogger(os.Stdout)

	// Core wiring: validator -> engine -> (gateway | provisioner) -> issuer
	issuer := auth.NewIssuer(tokens, cfg.Auth.TokenTTL)
	engine := registry.NewEngine(
		registry.NewStoreGateway(store),
		registry.NewStoreProvisioner(store),
		issuer,
		logger,
		metrics,
		trail,
	)
	resolver := registry.NewTokenResolver(tokens, store, trail)
	handlers := registry.NewHandlers(engine, resolver, logger, metrics)

	router := mux.NewRouter()
	router.Use(middleware.NewRequestLogger(logger, metrics).Handler)

	if cfg.Server.RateLimitEnabled {
		rlConfig := &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Server.RateLimitRPM,
			WindowDuration:    time.Minute,
			BurstSize:         cfg.Server.RateLimitBurst,
		}
		if redisClient != nil {
			router.Use(middleware.NewDistributedRateLimiter(redisClient, rlConfig).Handler)
		} else {
			limiter := middleware.NewRateLimiter(rlConfig)
			limiter.StartCleanup(ctx)
			router.Use(limiter.Handler)
		}
	}

	handlers.RegisterRoutes(router)

	var apiHandler http.Handler = router
	if otelProviders != nil {
		apiHandler = otelhttp.NewHandler(router, "wharf")
	}

	apiServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      apiHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for k8s probes
	adminMux := http.NewServeMux()
	observability.RegisterHealthRoutes(adminMux, observability.NewHealthChecker(db, redisClient))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(adminMux, promRegistry)
	}
	adminServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.HealthPort),
		Handler: adminMux,
	}

	// Scheduled purge of expired tokens
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Auth.TokenCleanupSchedule, func() {
		defer observability.RecoverPanic(logger, "token purge")
		purged, err := tokens.DeleteExpiredTokens(context.Background(), time.Now().UTC())
		if err != nil {
			logger.WithError(err).Error("Token purge failed")
			return
		}
		if purged > 0 {
			metrics.TokensPurgedTotal.Add(float64(purged))
			logger.Infof("Purged %d expired tokens", purged)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule token purge: %v", err)
	}
	scheduler.Start()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdown.RegisterServer(apiServer)
	shutdown.RegisterServer(adminServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		cronCtx := scheduler.Stop()
		select {
		case <-cronCtx.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return store.Close()
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	var group errgroup.Group
	group.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Admin server listening on %s", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	if err := group.Wait(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// openStore opens the configured storage backend, returning the
// underlying *sql.DB when one exists so the health checker can ping it.
func openStore(cfg storage.Config) (storage.Store, *sql.DB, error) {
	switch cfg.Type {
	case "memory":
		return storage.NewMemoryStore(), nil, nil
	case "sqlite":
		store, err := sqlite.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.DB(), nil
	case "postgres":
		store, err := postgres.NewPostgresStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.DB(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
