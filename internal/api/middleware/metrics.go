package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/stationcal/stationcal/internal/api/middleware"

// Metrics records per-route request metrics for the calendar API.
type Metrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	size     metric.Int64Histogram
	rejected metric.Int64Counter
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter creates the instruments on the given meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.requests, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("HTTP server requests by route and status"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if m.size, err = meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Size of HTTP response bodies"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.rejected, err = meter.Int64Counter("stationcal.http.rejected",
		metric.WithDescription("Requests refused before reaching a handler: auth, rate limit, media type"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return &m, nil
}

// rejectionReason maps statuses produced by the guard middleware to a
// low-cardinality label. Empty means the request was not rejected.
func rejectionReason(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusUnsupportedMediaType:
		return "media_type"
	}
	return ""
}

// Middleware records duration, count and size per route pattern. Active
// requests are tracked per method since the route is not matched yet.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			method := metric.WithAttributes(attribute.String("http.request.method", r.Method))
			m.inFlight.Add(ctx, 1, method)
			defer m.inFlight.Add(ctx, -1, method)

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			route := routePattern(r)
			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.response.status_code", strconv.Itoa(sw.statusCode)),
			)
			m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			m.requests.Add(ctx, 1, attrs)
			m.size.Record(ctx, sw.written, attrs)

			if reason := rejectionReason(sw.statusCode); reason != "" {
				m.rejected.Add(ctx, 1, metric.WithAttributes(
					attribute.String("http.route", route),
					attribute.String("reason", reason),
				))
			}
		})
	}
}
