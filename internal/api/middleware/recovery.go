package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api/models"
)

// Recovery turns a handler panic into a 500 problem. When the handler had
// already started the response (a CSV export midway) nothing more is
// written. http.ErrAbortHandler is re-panicked for net/http to handle.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				requestID := GetRequestID(r.Context())
				log.Error().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("route", routePattern(r)).
					Bool("response_started", sw.wroteHeader).
					Interface("error", rec).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				if !sw.wroteHeader {
					writeProblem(sw, r, models.NewInternalError(requestID, "an unexpected error occurred"))
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
