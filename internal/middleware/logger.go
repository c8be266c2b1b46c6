package middleware

import (
	"net/http"
	"time"

	"HydroWatchAPI/internal/logger"
)

// statusRecorder captures the status code and body size written by a handler
// so the access line can report them.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

// RequestLogger emits one access line per request.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("%s %s %d %s %dms %dB",
				r.Method,
				r.URL.Path,
				rec.status,
				r.RemoteAddr,
				time.Since(start).Milliseconds(),
				rec.size,
			)
		})
	}
}
