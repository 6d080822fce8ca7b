// Package metrics configures the OpenTelemetry meter provider and ships the
// run's metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	// Push sends the collected metrics to the Pushgateway, if one is configured.
	Push(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type meterProvider struct {
	*sdkmetric.MeterProvider
	registry       *promclient.Registry
	pushgatewayURL string
	job            string
}

func newReaders(ctx context.Context, cfg Config, registry *promclient.Registry) ([]sdkmetric.Reader, string, error) {
	var (
		readers        []sdkmetric.Reader
		pushgatewayURL string
	)

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
			if err != nil {
				return nil, "", fmt.Errorf("prometheus exporter: %w", err)
			}
			readers = append(readers, promExporter)
			pushgatewayURL = provider.Endpoint
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}
			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, "", fmt.Errorf("otlp metric exporter: %w", err)
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	return readers, pushgatewayURL, nil
}

// NewMetricProvider builds a meter provider from the given readers and
// installs it globally.
func NewMetricProvider(ctx context.Context, options ...OptionFn) (MetricProvider, error) {
	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	registry := promclient.NewRegistry()

	readers, pushgatewayURL, err := newReaders(ctx, cfg, registry)
	if err != nil {
		return nil, err
	}

	metricsOps := []sdkmetric.Option{
		sdkmetric.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName))),
	}
	for _, reader := range readers {
		metricsOps = append(metricsOps, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(metricsOps...)
	otel.SetMeterProvider(mp)

	job := cfg.ServiceName
	if job == "" {
		job = "uniswap-swapper"
	}

	return &meterProvider{
		MeterProvider:  mp,
		registry:       registry,
		pushgatewayURL: pushgatewayURL,
		job:            job,
	}, nil
}

// Gatherer exposes the Prometheus registry backing the exporter.
func (m *meterProvider) Gatherer() promclient.Gatherer {
	return m.registry
}

func (m *meterProvider) Push(ctx context.Context) error {
	if m.pushgatewayURL == "" {
		return nil
	}

	err := push.New(m.pushgatewayURL, m.job).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func (m *meterProvider) Shutdown(ctx context.Context) error {
	return errors.Join(m.MeterProvider.ForceFlush(ctx), m.MeterProvider.Shutdown(ctx))
}
