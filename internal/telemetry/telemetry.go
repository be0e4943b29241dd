// Package telemetry provides OpenTelemetry tracing for encounters.
package telemetry

import (
	"context"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "repbattle"
	serviceVersion = "0.2.0"
)

// Options tune the exporter. Zero values defer to the standard OTEL_*
// environment variables.
type Options struct {
	// EndpointURL overrides OTEL_EXPORTER_OTLP_ENDPOINT, e.g.
	// "https://api.honeycomb.io".
	EndpointURL string
	// Headers are sent with every export request.
	Headers map[string]string
	// Mode is recorded as a resource attribute ("interactive" or "sim").
	Mode string
}

// Setup installs a global tracer provider exporting over OTLP HTTP.
// Returns a shutdown function that flushes pending spans; call it on exit.
func Setup(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	var exporterOpts []otlptracehttp.Option
	if opts.EndpointURL != "" {
		exporterOpts = append(exporterOpts, otlptracehttp.WithEndpointURL(opts.EndpointURL))
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracehttp.WithHeaders(opts.Headers))
	}

	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Built without resource.Default() to avoid schema URL conflicts.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("repbattle.mode", opts.Mode),
			attribute.String("host.name", hostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.name", "go"),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// NoopTracer returns a tracer that records nothing, for when telemetry is
// disabled.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
