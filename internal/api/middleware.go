package api

import (
	"context"
	"net/http"
	"time"

	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/platform/obs"
)

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware logs end-to-end request duration and response size
// through the engine's own structured logger, tagging the request context
// with a correlation id so the obs.Time calls made while serving the
// request share it.
func loggingMiddleware(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := domain.NewID("req")
			ctx := context.WithValue(r.Context(), obs.RequestIDKey, reqID)
			r = r.WithContext(ctx)

			sw := &statusWriter{ResponseWriter: w, status: 0}
			next.ServeHTTP(sw, r)

			log.Infof("method=%s path=%s status=%d bytes=%d dur_ms=%d req_id=%s",
				r.Method, r.URL.RequestURI(), sw.status, sw.bytes, time.Since(start).Milliseconds(), reqID)
		})
	}
}
