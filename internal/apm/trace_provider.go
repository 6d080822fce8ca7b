// Package apm configures OpenTelemetry tracing for the swap run.
package apm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/uniswap-swapper/internal/logger"
)

type Provider string

const (
	ConsoleProvider  Provider = "console"
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlpgrpc"
	OTLPHTTPProvider Provider = "otlphttp"
	EmptyProvider    Provider = "empty"
)

// ParseProvider maps a config value to a Provider. Unknown values map to
// EmptyProvider.
func ParseProvider(s string) Provider {
	switch p := Provider(strings.ToLower(s)); p {
	case ConsoleProvider, ZipkinProvider, OTLPGRPCProvider, OTLPHTTPProvider:
		return p
	default:
		return EmptyProvider
	}
}

type TraceProvider interface {
	Stop() error
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

// TracerOptions holds exporter selection for NewTraceProvider.
type TracerOptions struct {
	provider    Provider
	serviceName string
	endpoint    string
	headers     map[string]string
	console     io.Writer
}

type TracerOption func(*TracerOptions)

// WithProvider selects the span exporter.
func WithProvider(provider Provider) TracerOption {
	return func(o *TracerOptions) {
		o.provider = provider
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) TracerOption {
	return func(o *TracerOptions) {
		o.serviceName = name
	}
}

// WithEndpoint sets the collector endpoint URL for zipkin and OTLP exporters.
func WithEndpoint(endpoint string) TracerOption {
	return func(o *TracerOptions) {
		o.endpoint = endpoint
	}
}

// WithHeaders sets OTLP exporter headers.
func WithHeaders(headers map[string]string) TracerOption {
	return func(o *TracerOptions) {
		o.headers = headers
	}
}

// WithConsoleWriter redirects the console exporter, which defaults to stdout.
func WithConsoleWriter(w io.Writer) TracerOption {
	return func(o *TracerOptions) {
		o.console = w
	}
}

func newExporter(ctx context.Context, opts *TracerOptions) (sdktrace.SpanExporter, error) {
	switch opts.provider {
	case ConsoleProvider:
		return stdouttrace.New(stdouttrace.WithWriter(opts.console), stdouttrace.WithPrettyPrint())
	case ZipkinProvider:
		return zipkin.New(opts.endpoint)
	case OTLPGRPCProvider:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(opts.endpoint),
			otlptracegrpc.WithHeaders(opts.headers),
		)
	case OTLPHTTPProvider:
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(opts.endpoint),
			otlptracehttp.WithHeaders(opts.headers),
		)
	default:
		return nil, fmt.Errorf("unknown trace provider %q", opts.provider)
	}
}

// NewTraceProvider installs a global tracer provider. EmptyProvider leaves the
// global no-op provider in place.
func NewTraceProvider(ctx context.Context, log logger.LoggerInterface, options ...TracerOption) (TraceProvider, error) {
	opts := &TracerOptions{
		provider: EmptyProvider,
		console:  os.Stdout,
	}
	for _, opt := range options {
		opt(opts)
	}

	if opts.provider == EmptyProvider {
		return emptyTraceProvider{}, nil
	}

	exp, err := newExporter(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", opts.provider, err)
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", string(opts.provider)),
		))
	if err != nil {
		log.Warn(ctx, "Merging trace resource failed, using default", "error", err)
		rsrc = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Debug(ctx, "Tracing enabled", "provider", opts.provider, "endpoint", opts.endpoint)

	return &traceProvider{tp}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}

// TraceIDFromContext returns the active span's trace id, or "" without one.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
