// internal/middleware/accesslog.go
//
// Request id, request-scoped logger, access log, and latency metric.
//
// Workflow
// --------
//  1. Reuse an inbound X-Request-Id or mint a UUID, and echo it back.
//  2. Bind zap.S().With("request_id", id) to the context so every log
//     line for the request carries the id (logger.FromContext).
//  3. After the handler returns, log method, path, status, bytes,
//     duration, and host, and observe the chi route pattern in the
//     latency histogram.  Unmatched routes share one label so 404 scans
//     cannot explode cardinality.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/brochure/internal/logger"
	"github.com/yanizio/brochure/internal/metrics"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-Id"

// AccessLog wraps next with request-scoped logging.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		log := zap.S().With("request_id", id)
		ctx := logger.WithContext(r.Context(), log)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequestDuration.WithLabelValues(route, statusClass(status)).Observe(dur.Seconds())

		log.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", dur.Milliseconds(),
			"host", r.Host,
		)
	})
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
