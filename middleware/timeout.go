package middleware

import (
	"net/http"
	"time"
)

// Timeout creates a timeout middleware with the default message "Request timeout".
// A non-positive timeout disables it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return TimeoutWithMessage(timeout, "Request timeout")
}

// TimeoutWithMessage creates a timeout middleware with a custom message.
// http.TimeoutHandler buffers the whole response, so keep it off for mounts
// serving large files.
func TimeoutWithMessage(timeout time.Duration, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, timeout, message)
	}
}
