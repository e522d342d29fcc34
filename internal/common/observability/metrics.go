package observability

import (
	"context"
	"errors"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OTel meter and tracer providers and the command
// instruments. A zero value is safe to use and records nothing.
type Observability struct {
	meterProvider   *metric.MeterProvider
	tracerProvider  *sdktrace.TracerProvider
	tracer          trace.Tracer
	commandCounter  otelmetric.Int64Counter
	commandDuration otelmetric.Float64Histogram
}

type options struct {
	registerer   promclient.Registerer
	spanExporter sdktrace.SpanExporter
}

type Option func(*options)

// WithRegisterer registers the Prometheus exporter somewhere other than the
// default registry.
func WithRegisterer(r promclient.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithSpanExporter exports finished spans synchronously to e.
func WithSpanExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) { o.spanExporter = e }
}

// New installs global meter and tracer providers for serviceName. Metrics are
// exposed through a Prometheus exporter.
func New(serviceName string, opts ...Option) (*Observability, error) {
	cfg := options{registerer: promclient.DefaultRegisterer}
	for _, opt := range opts {
		opt(&cfg)
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(cfg.registerer))
	if err != nil {
		return &Observability{}, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.spanExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithSyncer(cfg.spanExporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)

	meter := provider.Meter(serviceName)

	commandCounter, err := meter.Int64Counter(
		"commands.processed",
		otelmetric.WithDescription("Number of text commands processed"),
	)
	if err != nil {
		return &Observability{}, err
	}

	commandDuration, err := meter.Float64Histogram(
		"commands.duration",
		otelmetric.WithDescription("Text command processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{}, err
	}

	return &Observability{
		meterProvider:   provider,
		tracerProvider:  tracerProvider,
		tracer:          tracerProvider.Tracer(serviceName),
		commandCounter:  commandCounter,
		commandDuration: commandDuration,
	}, nil
}

// StartSpan starts a span on the owned tracer, falling back to the global
// provider for a zero value.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("inventory-assistant")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordCommand(ctx context.Context, intent, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	)
	if o.commandCounter != nil {
		o.commandCounter.Add(ctx, 1, attrs)
	}
	if o.commandDuration != nil {
		o.commandDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// Shutdown flushes both providers.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
