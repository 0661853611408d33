// Package middleware provides reusable HTTP middleware for the API server.
package middleware

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pixtag/service/internal/logging"
)

// wrappedWriter captures the status code and byte count written by downstream handlers.
type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *wrappedWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *wrappedWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// Logger logs method, path, status code, sizes and duration for every request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		keyvals := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
			"out", humanize.Bytes(uint64(ww.written)),
		}
		if r.ContentLength > 0 {
			keyvals = append(keyvals, "in", humanize.Bytes(uint64(r.ContentLength)))
		}
		if id := chiMiddleware.GetReqID(r.Context()); id != "" {
			keyvals = append(keyvals, "request_id", id)
		}

		if ww.statusCode >= http.StatusInternalServerError {
			logging.Warn("request", keyvals...)
			return
		}
		logging.Info("request", keyvals...)
	})
}
