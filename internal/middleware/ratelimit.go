package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// rateLimiter is a fixed-window per-client counter. Entries whose window has
// long expired are reaped by a background sweep so the map cannot grow
// without bound.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

type clientWindow struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   requestsPerMinute,
		window:  time.Minute,
	}

	go rl.sweep()

	return rl
}

func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, cw := range rl.clients {
			if time.Since(cw.windowStart) > 2*rl.window {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[key]
	if !ok || now.Sub(cw.windowStart) >= rl.window {
		rl.clients[key] = &clientWindow{windowStart: now, count: 1}
		return true
	}

	if cw.count >= rl.limit {
		return false
	}

	cw.count++
	return true
}

// clientKey identifies the caller: the first X-Forwarded-For hop when present,
// otherwise the remote address without its port.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	rl := newRateLimiter(requestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success": false, "error": "Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
