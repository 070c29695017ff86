package trace

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// CloseFunc flushes and stops a provider.
type CloseFunc func(ctx context.Context) error

type traceProviderBuilder struct {
	name     string
	exporter sdktrace.SpanExporter
}

func NewTraceProviderBuilder(name string) *traceProviderBuilder {
	return &traceProviderBuilder{name: name}
}

func (b *traceProviderBuilder) SetExporter(exp sdktrace.SpanExporter) *traceProviderBuilder {
	b.exporter = exp
	return b
}

func (b *traceProviderBuilder) Build() (*sdktrace.TracerProvider, CloseFunc, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(b.name),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(b.exporter),
		sdktrace.WithResource(res),
	)

	closeFn := func(ctx context.Context) error {
		if err := provider.ForceFlush(ctx); err != nil {
			return err
		}
		return provider.Shutdown(ctx)
	}

	return provider, closeFn, nil
}
