// Package telemetry installs the OpenTelemetry tracer provider the render,
// build, and server packages report spans to.
//
// Tracing is opt-in: without BITESIZED_OTEL_ENDPOINT, or with
// BITESIZED_OTEL_ENABLED=false, Setup installs nothing and every span is a
// no-op.
package telemetry

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config is read from the environment by ConfigFromEnv.
type Config struct {
	Enabled     bool   `env:"BITESIZED_OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"BITESIZED_OTEL_ENDPOINT"`
	ServiceName string `env:"BITESIZED_OTEL_SERVICE_NAME" envDefault:"bitesized"`
}

// ConfigFromEnv parses Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing telemetry environment: %w", err)
	}
	return cfg, nil
}

// Active reports whether Setup would install a tracer provider.
func (c Config) Active() bool {
	return c.Enabled && c.Endpoint != ""
}

// Setup installs a tracer provider exporting to cfg.Endpoint over OTLP/HTTP.
// The returned function flushes pending spans and must be called before the
// process exits; it's a no-op when nothing was installed.
func Setup(ctx context.Context, cfg Config, version string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("error creating trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("error creating trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
