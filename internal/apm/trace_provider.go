package apm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

type Provider string

const (
	OTLPGRPCProvider Provider = "OTLP_GRPC_PROVIDER"
	OTLPHTTPProvider Provider = "OTLP_HTTP_PROVIDER"
	ZipkinProvider   Provider = "ZIPKIN_PROVIDER"
	ConsoleProvider  Provider = "CONSOLE_PROVIDER"
	EmptyProvider    Provider = "EMPTY_PROVIDER"
)

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	serviceName        string
	tracerProviderName string
	useEmpty           bool
}

type TracerOption func(*TracerOptions)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) TracerOption {
	return func(option *TracerOptions) {
		option.serviceName = name
	}
}

// WithProvider selects the span exporter backend. Unknown providers fall
// back to a no-op provider so tracing never blocks startup.
func WithProvider(provider Provider, endpoint string, headers map[string]string, log logger.LoggerInterface) TracerOption {
	switch provider {
	case OTLPGRPCProvider:
		return useOTLPGRPC(endpoint, headers)
	case OTLPHTTPProvider:
		return useOTLPHTTP(endpoint, headers)
	case ZipkinProvider:
		return useZipkin(endpoint)
	case ConsoleProvider:
		return useConsole()
	}

	log.Warn(context.Background(), "trace provider not found, using empty provider", "provider", string(provider))

	return useEmpty()
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

func useConsole() TracerOption {
	return func(option *TracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(ConsoleProvider)
	}
}

func useZipkin(endpoint string) TracerOption {
	return func(option *TracerOptions) {
		exp, err := zipkin.New(endpoint)
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(ZipkinProvider)
	}
}

func useOTLPGRPC(endpoint string, headers map[string]string) TracerOption {
	return func(option *TracerOptions) {
		exp, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(headers),
		)
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(OTLPGRPCProvider)
	}
}

func useOTLPHTTP(endpoint string, headers map[string]string) TracerOption {
	return func(option *TracerOptions) {
		exp, err := otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(headers),
		)
		if err != nil {
			panic(err)
		}

		option.exporter = exp
		option.tracerProviderName = string(OTLPHTTPProvider)
	}
}

func NewTraceProvider(options ...TracerOption) TraceProvider {
	opts := &TracerOptions{}

	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty || opts.exporter == nil {
		return NewEmptyTraceProvider()
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{
		tp,
	}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	return o.tp.Shutdown(ctx)
}
