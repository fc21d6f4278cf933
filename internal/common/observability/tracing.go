package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Tracing struct {
	provider *sdktrace.TracerProvider
}

func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// EnableTracing exports spans to a Jaeger collector endpoint, sampling
// root traces at ratio.
func (o *Observability) EnableTracing(serviceName, endpoint string, ratio float64) error {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return fmt.Errorf("create jaeger exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(provider)

	o.tracing = &Tracing{provider: provider}
	o.tracer = provider.Tracer(serviceName)
	return nil
}

// UseTracerProvider replaces the tracer, typically with an in-memory
// recorder in tests.
func (o *Observability) UseTracerProvider(tp trace.TracerProvider, serviceName string) {
	o.tracer = tp.Tracer(serviceName)
}
