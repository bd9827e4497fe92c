package middleware

import (
	"log"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// Logger writes one access log line per request.
func Logger(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		logger.Printf("%s %s %d %dB %s", r.Method, r.URL.RequestURI(), m.Code, m.Written, m.Duration)
	})
}

// Recover turns a panicking handler into a 500 response.
func Recover(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail":"Internal server error"}` + "\n"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
