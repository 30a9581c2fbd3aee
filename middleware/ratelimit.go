package middleware

import (
	"net"
	"net/http"

	"github.com/en9inerd/geoserve/httperrors"
	"github.com/en9inerd/geoserve/ratelimit"
)

// RateLimit rejects requests with 429 once the client identified by
// r.RemoteAddr exhausts its bucket. Place it after RealIP when running
// behind a proxy. A nil limiter disables the check.
func RateLimit(limiter *ratelimit.Keyed) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if limiter == nil {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(key); err == nil {
				key = host
			}
			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", "1")
				httperrors.NewError(http.StatusTooManyRequests, "too many requests").Write(w)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
