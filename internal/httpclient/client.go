// Package httpclient provides an instrumented HTTP client with OTEL tracing
// and metrics, plus a request-signing hook for authenticated venue APIs.
package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter = "http_client_requests_total"
)

// Signer computes per-request authentication headers. It sees the final
// method, URL path, raw query and encoded body.
type Signer func(method, path, query string, body []byte) map[string]string

// ResponseErrorHandler inspects a venue response and may turn it into an
// error (e.g. parsing a structured API error body).
type ResponseErrorHandler func(statusCode int, body []byte) error

// Client is the interface for making HTTP requests.
type Client interface {
	// NewRequest creates a request builder with the client defaults.
	NewRequest() Request
	// NewRequestWithOptions creates a request builder with overrides.
	NewRequestWithOptions(opts ...RequestOption) Request
}

// Options holds configuration for the instrumented client.
type Options struct {
	client         *http.Client
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	providerName   string
	baseURL        string
	headers        map[string]string
	requestTimeout *time.Duration
	signer         Signer
}

// Option configures Options.
type Option func(*Options)

// WithProviderName sets the provider name used in metrics and traces.
func WithProviderName(name string) Option {
	return func(o *Options) { o.providerName = name }
}

// WithBaseURL sets a base URL prepended to relative request paths.
func WithBaseURL(url string) Option {
	return func(o *Options) { o.baseURL = url }
}

// WithHeaders sets default headers applied to every request.
func WithHeaders(h map[string]string) Option {
	return func(o *Options) { o.headers = h }
}

// WithRequestTimeout overrides the default request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) { o.requestTimeout = &d }
}

// WithSigner installs a per-request authentication signer.
func WithSigner(s Signer) Option {
	return func(o *Options) { o.signer = s }
}

// WithHTTPClient supplies a pre-built http.Client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.client = c }
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) { o.meterProvider = mp }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) { o.tracer = t }
}

// InstrumentedClient wraps http.Client with OTEL instrumentation.
type InstrumentedClient struct {
	client         *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	defaultHeaders map[string]string
	signer         Signer
}

// New creates a new instrumented HTTP client.
func New(opts ...Option) (Client, error) {
	options := &Options{}
	for _, o := range opts {
		o(options)
	}

	httpClient := options.client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if httpClient.Transport == nil {
		httpClient.Transport = &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}
	if options.requestTimeout != nil {
		httpClient.Timeout = *options.requestTimeout
	}

	httpClient.Transport = otelhttp.NewTransport(
		httpClient.Transport,
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)
	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("instrumented_http_client")
	}

	return &InstrumentedClient{
		client:         httpClient,
		requestCounter: requestCounter,
		providerName:   providerName,
		tracer:         tracer,
		baseURL:        options.baseURL,
		defaultHeaders: options.headers,
		signer:         options.signer,
	}, nil
}

// NewRequest creates a request builder with the client defaults.
func (c *InstrumentedClient) NewRequest() Request {
	return c.NewRequestWithOptions()
}

// RequestOption configures a single request.
type RequestOption func(*requestBuilder)

// WithResponseErrorHandler installs a venue-specific error parser.
func WithResponseErrorHandler(h ResponseErrorHandler) RequestOption {
	return func(r *requestBuilder) { r.errorHandler = h }
}

// NewRequestWithOptions creates a request builder with overrides.
func (c *InstrumentedClient) NewRequestWithOptions(opts ...RequestOption) Request {
	rb := &requestBuilder{
		client:         c.client,
		requestCounter: c.requestCounter,
		providerName:   c.providerName,
		tracer:         c.tracer,
		baseURL:        c.baseURL,
		headers:        copyHeaders(c.defaultHeaders),
		signer:         c.signer,
	}
	for _, o := range opts {
		o(rb)
	}
	return rb
}

func copyHeaders(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ReadBody reads and returns the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
