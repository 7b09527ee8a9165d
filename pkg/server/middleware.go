package server

import (
	"net/http"
	"time"
)

// Metrics is the slice of the metrics client the middleware needs.
type Metrics interface {
	IncrementRequests(route, method, status string)
	RecordRequestDuration(start time.Time, route string)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withObservability logs and measures every request. The route label uses
// the registered pattern, not the raw URL, to keep metric cardinality
// bounded.
func withObservability(next http.Handler, metrics Metrics, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(recorder, r)

		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		if metrics != nil {
			metrics.IncrementRequests(route, r.Method, http.StatusText(recorder.status))
			metrics.RecordRequestDuration(start, route)
		}

		logger.Debug("request handled", nil, map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start).String(),
		})
	})
}
