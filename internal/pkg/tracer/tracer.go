// Package tracer wires up OpenTelemetry tracing with an OTLP/HTTP
// exporter, following the teacher's observability setup.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Init configures the global TracerProvider, falling back to a provider
// with no exporter if the OTLP exporter cannot be created. Creating the
// exporter does not contact the collector, so an unreachable collector does
// not trigger the fallback. Returns a shutdown func.
func Init(serviceName, otlpEndpoint string) (func(context.Context) error, error) {
	res := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	var tp *sdktrace.TracerProvider
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("tracer: failed to create OTLP exporter, using no-op: %v", err)
		tp = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	} else {
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exporter),
		)
	}

	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("tracer provider shutdown: %w", err)
		}
		return nil
	}
	return shutdown, nil
}
