package exporter

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"image_thumbnailer/config"
)

// New selects the configured span exporter. An OTLP collector endpoint
// takes precedence; otherwise spans go to the Jaeger collector.
func New(cfg config.OTEL) (sdktrace.SpanExporter, error) {
	if cfg.OTLPEndpoint != "" {
		return NewOTLP(cfg.OTLPEndpoint), nil
	}
	return NewJaeger(cfg.JaegerEndpoint)
}
