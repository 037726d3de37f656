// Package tracing installs an OpenTelemetry tracer provider that exports
// dispatch spans over OTLP/gRPC.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds tracing configuration.
type Config struct {
	ServiceName string
	Environment string
	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint string
	Insecure bool
	// SampleRatio is the fraction of new traces recorded, 0 to 1.
	// Remote parents decide for their children.
	SampleRatio float64
}

// Provider wraps the SDK tracer provider. A nil *Provider is valid: it
// hands out tracers from the global provider and shuts down nothing.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// New creates an OTLP/gRPC exporter for cfg.Endpoint and a provider that
// batches spans to it. The exporter connects lazily.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("tracing: create exporter: %w", err)
	}
	return NewWithExporter(cfg, exporter)
}

// NewWithExporter creates a provider over an existing exporter. Spans are
// batched unless extra options are given; they are applied after the
// defaults, so tests pass sdktrace.WithSyncer to see spans as they end.
func NewWithExporter(cfg Config, exporter sdktrace.SpanExporter, extra ...sdktrace.TracerProviderOption) (*Provider, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing: create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if len(extra) == 0 {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	opts = append(opts, extra...)

	return &Provider{tp: sdktrace.NewTracerProvider(opts...)}, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

// Install makes p the global tracer provider and sets the W3C trace
// context and baggage propagators.
func (p *Provider) Install() {
	if p == nil {
		return
	}
	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Tracer returns a named tracer.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p == nil {
		return otel.Tracer(name)
	}
	return p.tp.Tracer(name)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
