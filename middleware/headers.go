package middleware

import (
	"net/http"
	"strings"
)

// Headers middleware adds "Key: value" headers to every response.
// Malformed entries and values containing CR or LF are dropped when the
// middleware is built, which prevents HTTP header injection.
func Headers(headers ...string) func(http.Handler) http.Handler {
	set := make(http.Header, len(headers))
	for _, h := range headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || strings.ContainsAny(key+value, "\r\n") {
			continue
		}
		set.Set(key, value)
	}

	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			dst := w.Header()
			for k, v := range set {
				dst[k] = v
			}
			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
