package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wharfhq/wharf/pkg/httputil"
	"github.com/wharfhq/wharf/pkg/observability"
)

// RequestLogger logs each request on completion and records HTTP metrics.
type RequestLogger struct {
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewRequestLogger creates a request logging middleware. metrics may be nil
// when metrics collection is disabled.
func NewRequestLogger(logger *observability.Logger, metrics *observability.Metrics) *RequestLogger {
	return &RequestLogger{
		logger:  logger,
		metrics: metrics,
	}
}

// statusRecorder captures the response status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Handler wraps an HTTP handler with request logging and metrics.
func (rl *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithLogger(ctx, rl.logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		path := routeTemplate(r)

		rl.logger.WithFields(map[string]interface{}{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": duration.Milliseconds(),
			"client_addr": httputil.ClientAddr(r),
		}).Info("request completed")

		if rl.metrics != nil {
			status := strconv.Itoa(rec.status)
			rl.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			rl.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())
		}
	})
}

// routeTemplate returns the matched mux route template so metric labels
// stay bounded. Unmatched requests fall back to a fixed label.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
