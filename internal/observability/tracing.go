// Package observability wires OpenTelemetry trace export for openl-mcp.
//
// Traces are pushed to an OTLP HTTP collector endpoint (an OpenTelemetry
// Collector, a vendor agent, anything speaking OTLP/HTTP). The outbound
// OpenL HTTP calls are instrumented via otelhttp in the API client; this
// package only owns the exporter and provider lifecycle.
//
// Tracing is opt-in: with no endpoint configured, Setup is a no-op and the
// global provider stays at its default, so spans cost nothing.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/openl-tablets/openl-mcp/internal/config"
	"github.com/openl-tablets/openl-mcp/internal/log"
)

// DefaultServiceName identifies this process in trace backends when no
// service name is configured.
const DefaultServiceName = "openl-mcp"

// Setup installs the global tracer provider from the Otel configuration
// and returns a shutdown function that flushes pending spans. When no
// endpoint is configured the returned shutdown is a no-op.
func Setup(ctx context.Context, cfg config.OtelConfig, logger log.Logger) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(provider)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", serviceName,
		"environment", cfg.Environment)

	return provider.Shutdown, nil
}
