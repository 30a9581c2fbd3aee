package middleware

import (
	"net/http"

	"github.com/en9inerd/geoserve/realip"
)

// RealIP sets r.RemoteAddr to the client address resolved by res. Forwarding
// headers are honoured only when the direct peer is a trusted proxy, which
// prevents clients from spoofing their address.
func RealIP(res *realip.Resolver) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if rip, err := res.ClientIP(r); err == nil {
				r.RemoteAddr = rip
			}
			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
