package middleware

import (
	"net/http"

	"github.com/en9inerd/geoserve/httpjson"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// Health answers GET and HEAD requests for path with {"status":"ok"} before
// they reach the router. An empty path disables the probe.
func Health(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if path == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == path {
				httpjson.WriteJSON(w, HealthResponse{Status: "ok"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
