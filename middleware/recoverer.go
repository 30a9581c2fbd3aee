package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/en9inerd/geoserve/httperrors"
)

// Recoverer is a middleware that recovers from panics, logs the panic and returns a HTTP 500 status if possible.
// If includeStack is true, full stack traces are logged. In production, set includeStack to false to prevent
// information disclosure if logs are exposed.
func Recoverer(logger *slog.Logger, includeStack bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				// net/http uses this panic to abort a response on purpose
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				attrs := []any{
					slog.Any("panic", rvr),
					slog.String("url", r.URL.String()),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				}
				if includeStack {
					attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				}
				logger.Error("panic recovered", attrs...)

				httperrors.NewError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).Write(w)
			}()
			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
