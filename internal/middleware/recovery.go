package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"
)

// Recovery turns a handler panic into a 500 envelope instead of killing the
// connection. The panic value is logged, not echoed to the client.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("PANIC on %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(models.APIResponse{
						Success: false,
						Error:   "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
