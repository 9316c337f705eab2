package metrics

// ExporterKind selects the exporter backend for a provider entry.
type ExporterKind string

const (
	PrometheusExporter ExporterKind = "prometheus"
	OTLPExporter       ExporterKind = "otlp"
)

// ProviderCfg configures one metric exporter.
type ProviderCfg struct {
	Kind     ExporterKind
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// NewPrometheusConfig returns a pull-based Prometheus exporter entry.
func NewPrometheusConfig() ProviderCfg {
	return ProviderCfg{Kind: PrometheusExporter}
}

// NewOTLPConfig returns a push-based OTLP/gRPC exporter entry.
func NewOTLPConfig(endpoint string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Kind:     OTLPExporter,
		Endpoint: endpoint,
		Headers:  headers,
		Insecure: insecure,
	}
}

// Config aggregates exporter entries and resource attributes.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
}

// OptionFn mutates the metrics config.
type OptionFn func(config Config) Config

// WithProviderConfig appends an exporter entry.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, provider)
		return config
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}
