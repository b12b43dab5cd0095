package middleware

import (
	"net/http"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/pkg/metrics"
)

// unmatchedRoute labels requests no route answers, keeping label cardinality bounded
const unmatchedRoute = "unmatched"

// MetricsMiddleware records method, route pattern, status and duration of
// every request served by mux
func MetricsMiddleware(m *metrics.Metrics, mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			route := unmatchedRoute
			if _, pattern := mux.Handler(r); pattern != "" {
				route = pattern
			}

			next.ServeHTTP(rw, r)

			m.ObserveHTTP(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
