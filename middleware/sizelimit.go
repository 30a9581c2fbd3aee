package middleware

import (
	"net/http"

	"github.com/en9inerd/geoserve/httperrors"
)

// SizeLimit middleware rejects requests with bodies larger than size.
// The server only reads GET requests, so any sizeable body is refused early.
func SizeLimit(size int64) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				httperrors.NewError(http.StatusRequestEntityTooLarge, "request too large").Write(w)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, size)

			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
