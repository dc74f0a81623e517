// Package middleware provides HTTP middleware for request logging, metrics,
// and rate limiting.
//
// # Request Logging
//
// RequestLogger assigns each request an ID, logs it on completion, and
// records Prometheus metrics labeled by the matched route template:
//
//	router.Use(middleware.NewRequestLogger(logger, metrics).Handler)
//
// # Rate Limiting
//
// Login attempts are rate limited per client address. The in-memory
// token-bucket limiter covers single-instance deployments; when Redis is
// configured, the distributed limiter shares buckets across instances and
// fails open on Redis errors.
package middleware
