package middleware

import (
	"net/http"
	"strings"
)

// CORS applies the configured origin and method policy. A single "*" entry
// allows any origin; otherwise the request origin is echoed back only when it
// is on the allow list.
func CORS(allowedOrigins, allowedMethods []string) func(http.Handler) http.Handler {
	allowAny := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	methods := strings.Join(allowedMethods, ",")

	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimSpace(o)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			default:
				if _, ok := origins[origin]; ok && origin != "" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
