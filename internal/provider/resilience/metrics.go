package resilience

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/stationcal/stationcal/internal/provider/resilience"

type operationKey struct{}

// WithOperation labels provider calls made under ctx, e.g. "list_stations".
// Unlabelled calls are reported by HTTP method.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

func operationFrom(ctx context.Context, fallback string) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return fallback
}

// Metrics holds the instruments for upstream provider calls.
type Metrics struct {
	meter    metric.Meter
	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

// NewMetrics creates provider instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter creates provider instruments on meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	duration, err := meter.Float64Histogram("stationcal.provider.call.duration",
		metric.WithDescription("Duration of provider calls including retries"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	calls, err := meter.Int64Counter("stationcal.provider.calls",
		metric.WithDescription("Provider calls by operation and outcome"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}
	return &Metrics{meter: meter, duration: duration, calls: calls}, nil
}

// ObserveRegistry exports the breaker state of every provider in registry as
// a gauge: 0 closed, 1 half-open, 2 open.
func (m *Metrics) ObserveRegistry(registry *Registry) error {
	_, err := m.meter.Int64ObservableGauge("stationcal.provider.circuit.state",
		metric.WithDescription("Circuit breaker state: 0 closed, 1 half-open, 2 open"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			for _, h := range registry.AllHealth() {
				o.Observe(int64(h.CircuitState), metric.WithAttributes(attribute.String("provider.name", h.Name)))
			}
			return nil
		}))
	return err
}

// RecordRequest records one provider call.
func (m *Metrics) RecordRequest(ctx context.Context, provider, operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
		attribute.String("outcome", outcome),
	)

	// The request context may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	m.duration.Record(ctx, duration.Seconds(), attrs)
	m.calls.Add(ctx, 1, attrs)
}
