// Package trace exports run telemetry to an OTLP endpoint when one is
// configured. With no endpoint the exporter is nil and every call is a
// no-op.
package trace

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Exporter sends run spans to an OTLP endpoint.
type Exporter struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

// NewExporter creates an OTLP exporter if OTEL_EXPORTER_OTLP_ENDPOINT is
// set. Returns nil if endpoint not configured (disabled).
func NewExporter(ctx context.Context) (*Exporter, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, nil // Disabled
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // For local dev
	)
	if err != nil {
		return nil, err
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "ralph"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return &Exporter{
		provider: provider,
		tracer:   provider.Tracer("ralph/engine"),
	}, nil
}

// TraceRun opens a span for one loop run. The returned closer records the
// final status and iteration count and ends the span; it matches the
// engine's trace hook signature.
func (e *Exporter) TraceRun(projectID, cli string) func(status string, iterations int) {
	if e == nil {
		return func(string, int) {}
	}

	_, span := e.tracer.Start(context.Background(), "ralph.run",
		oteltrace.WithTimestamp(time.Now()),
		oteltrace.WithAttributes(
			attribute.String("ralph.project.id", projectID),
			attribute.String("ralph.cli", cli),
		),
	)

	return func(status string, iterations int) {
		span.SetAttributes(
			attribute.String("ralph.status", status),
			attribute.Int("ralph.iterations", iterations),
		)
		span.End(oteltrace.WithTimestamp(time.Now()))
	}
}

// Shutdown flushes and closes the exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}
