package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger logs one line per request. The level follows the status: info,
// warn from 400, error from 500. Successful ops probes log at debug so
// health checks do not drown the request log.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			var event *zerolog.Event
			switch {
			case sw.statusCode >= 500:
				event = log.Error()
			case sw.statusCode >= 400:
				event = log.Warn()
			case strings.HasPrefix(r.URL.Path, "/v1/ops/"):
				event = log.Debug()
			default:
				event = log.Info()
			}

			if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.IsValid() {
				event = event.
					Str("trace_id", spanCtx.TraceID().String()).
					Str("span_id", spanCtx.SpanID().String())
			}
			sessionID, stationID := resourceIDs(r)
			if sessionID != "" {
				event = event.Str("session_id", sessionID)
			}
			if stationID != "" {
				event = event.Str("station_id", stationID)
			}

			event.
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", sw.statusCode).
				Int64("bytes", sw.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("request completed")
		})
	}
}
