// Package metrics wires OpenTelemetry metric providers with Prometheus
// and OTLP exporters.
package metrics

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// MetricProvider is the subset of the SDK meter provider the app depends on.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// noopProvider satisfies MetricProvider when telemetry is disabled.
type noopProvider struct {
	noop.MeterProvider
}

func (noopProvider) Shutdown(context.Context) error { return nil }

// NewNoopProvider returns a provider that records nothing.
func NewNoopProvider() MetricProvider {
	return noopProvider{}
}

func buildReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	for _, provider := range cfg.Providers {
		switch provider.Kind {
		case PrometheusExporter:
			promExporter, err := prometheus.New()
			if err != nil {
				return nil, fmt.Errorf("prometheus exporter: %w", err)
			}
			readers = append(readers, promExporter)

		case OTLPExporter:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}
			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("otlp metric exporter: %w", err)
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	return readers, nil
}

// NewMetricProvider builds a meter provider from the configured exporters
// and installs it as the global provider.
func NewMetricProvider(ctx context.Context, options ...OptionFn) (MetricProvider, error) {
	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, err := buildReaders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(readers) == 0 {
		return NewNoopProvider(), nil
	}

	var sdkOpts []sdkmetric.Option
	for _, reader := range readers {
		sdkOpts = append(sdkOpts, sdkmetric.WithReader(reader))
	}

	sdkOpts = append(sdkOpts, sdkmetric.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
	))

	meterProvider := sdkmetric.NewMeterProvider(sdkOpts...)
	otel.SetMeterProvider(meterProvider)

	return meterProvider, nil
}

// ServePrometheusMetrics blocks serving /metrics on the given port.
func ServePrometheusMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("serving metrics at :%d/metrics", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil { //nolint:gosec // no timeout knobs on the helper
		log.Printf("metrics server stopped: %v", err)
	}
}
