package middleware

import (
	"net/http"

	"github.com/en9inerd/geoserve/httperrors"
)

// ThrottleConfig holds configuration for the throttle middleware
type ThrottleConfig struct {
	Limit   int64
	Message string
}

// GlobalThrottle returns a middleware that limits the total number
// of in-flight requests across all routes in the server.
func GlobalThrottle(limit int64) func(http.Handler) http.Handler {
	return GlobalThrottleWithConfig(ThrottleConfig{
		Limit:   limit,
		Message: "too many requests",
	})
}

// GlobalThrottleWithConfig returns a throttle middleware with custom configuration.
// A non-positive limit disables throttling.
func GlobalThrottleWithConfig(cfg ThrottleConfig) func(http.Handler) http.Handler {
	if cfg.Limit <= 0 {
		return func(h http.Handler) http.Handler { return h }
	}

	if cfg.Message == "" {
		cfg.Message = "too many requests"
	}

	// one global semaphore shared by all handlers
	ch := make(chan struct{}, cfg.Limit)

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case ch <- struct{}{}:
				defer func() { <-ch }()
				h.ServeHTTP(w, r)
			default:
				httperrors.NewError(http.StatusServiceUnavailable, cfg.Message).Write(w)
			}
		})
	}
}
