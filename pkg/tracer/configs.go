package tracer

// Config holds configuration for the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName identifies this service in exported traces.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is the deployment environment, e.g. "production" or "development".
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport controls whether spans are exported over OTLP HTTP.
	// The exporter endpoint is taken from the standard OTEL_EXPORTER_OTLP_*
	// environment variables.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
