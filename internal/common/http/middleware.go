// internal/common/http/middleware.go
package http

import (
	"context"
	stdhttp "net/http"
	"strconv"
	"time"

	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/common/metrics"
)

// Middleware wraps a handler.
type Middleware func(stdhttp.Handler) stdhttp.Handler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h stdhttp.Handler, mws ...Middleware) stdhttp.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type statusRecorder struct {
	stdhttp.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request and counts it by route pattern.
func RequestLogger(log logger.Logger) Middleware {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: stdhttp.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

			log.Debug("request handled", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"durationMs": time.Since(start).Milliseconds(),
			})
		})
	}
}

// Timeout bounds the request context.
func Timeout(d time.Duration) Middleware {
	return func(next stdhttp.Handler) stdhttp.Handler {
		if d <= 0 {
			return next
		}
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS allows any origin, as the dashboard is served from a different port.
func CORS(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == stdhttp.MethodOptions {
			w.WriteHeader(stdhttp.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
