package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationcal/stationcal/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{ServiceName: "stationcal-api", Enabled: false})

	require.NoError(t, err)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want telemetry.Config
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: telemetry.Config{
				ServiceName: "stationcal-api", ServiceVersion: "dev", Environment: "development",
				OTLPEndpoint: "localhost:4317", Insecure: true, SampleRatio: 1, MetricInterval: 15 * time.Second,
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"OTEL_ENABLED":                "true",
				"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4317",
				"OTEL_EXPORTER_OTLP_INSECURE": "false",
				"OTEL_TRACES_SAMPLER_RATIO":   "0.25",
				"OTEL_METRIC_INTERVAL":        "1m",
			},
			want: telemetry.Config{
				ServiceName: "stationcal-api", ServiceVersion: "dev", Environment: "development", Enabled: true,
				OTLPEndpoint: "collector:4317", SampleRatio: 0.25, MetricInterval: time.Minute,
			},
		},
		{
			name: "unparseable values keep defaults",
			env:  map[string]string{"OTEL_TRACES_SAMPLER_RATIO": "half", "OTEL_METRIC_INTERVAL": "-5s"},
			want: telemetry.Config{
				ServiceName: "stationcal-api", ServiceVersion: "dev", Environment: "development",
				OTLPEndpoint: "localhost:4317", Insecure: true, SampleRatio: 1, MetricInterval: 15 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE", "OTEL_TRACES_SAMPLER_RATIO", "OTEL_METRIC_INTERVAL"} {
				t.Setenv(key, tt.env[key])
			}

			assert.Equal(t, tt.want, telemetry.ConfigFromEnv("stationcal-api", "dev", "development"))
		})
	}
}

func TestSampler(t *testing.T) {
	for _, ratio := range []float64{0, 1, 1.5} {
		desc := telemetry.Sampler(ratio).Description()
		assert.Contains(t, desc, "root:AlwaysOnSampler")
		assert.NotContains(t, desc, "TraceIDRatioBased")
	}
	assert.Contains(t, telemetry.Sampler(0.1).Description(), "TraceIDRatioBased{0.1}")
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	assert.NoError(t, (&telemetry.Provider{}).Shutdown(context.Background()))
}
