// Package tracing configures OpenTelemetry span export.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/heartmarshall/streamlog-backend/internal/config"
)

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

// Setup registers a global tracer provider exporting over OTLP/HTTP.
// With no endpoint configured it registers nothing and returns a no-op
// shutdown, leaving the default no-op tracer in place.
func Setup(ctx context.Context, cfg config.TracingConfig, version string) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, exporterOptions(cfg)...)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// exporterOptions accepts either a full URL or a bare host:port endpoint.
func exporterOptions(cfg config.TracingConfig) []otlptracehttp.Option {
	if strings.Contains(cfg.Endpoint, "://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}
