package observability

import (
	"context"
	"fmt"
	"time"

	"card-submitter/internal/common/config"
	"card-submitter/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Options configures New.
type Options struct {
	ServiceName string
	// Registerer receives the otel Prometheus exporter; nil uses the default registry.
	Registerer prometheus.Registerer
	Tracing    config.TracingConfig
	// SpanProcessor is attached in addition to any exporter; used by tests.
	SpanProcessor sdktrace.SpanProcessor
	Logger        logger.Logger
}

type Observability struct {
	meterProvider      *metric.MeterProvider
	tracerProvider     *sdktrace.TracerProvider
	meter              otelmetric.Meter
	tracer             trace.Tracer
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
	logger             logger.Logger
}

// New wires the otel meter and tracer providers and installs them globally.
// Exporter failures degrade to a provider without that exporter.
func New(opts Options) *Observability {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "card-submitter"
	}

	o := &Observability{logger: log}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	meterOpts := []metric.Option{metric.WithResource(res)}
	promOpts := []otelprom.Option{}
	if opts.Registerer != nil {
		promOpts = append(promOpts, otelprom.WithRegisterer(opts.Registerer))
	}
	if exporter, err := otelprom.New(promOpts...); err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
	} else {
		meterOpts = append(meterOpts, metric.WithReader(exporter))
	}
	o.meterProvider = metric.NewMeterProvider(meterOpts...)
	otel.SetMeterProvider(o.meterProvider)

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if opts.Tracing.Enabled {
		exporter, err := newJaegerExporter(opts.Tracing.JaegerEndpoint)
		if err != nil {
			log.Warn("Failed to create Jaeger exporter", map[string]interface{}{"error": err.Error()})
		} else {
			traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
		}
	}
	if opts.SpanProcessor != nil {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(opts.SpanProcessor))
	}
	o.tracerProvider = sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(o.tracerProvider)

	o.meter = o.meterProvider.Meter(serviceName)
	o.tracer = o.tracerProvider.Tracer(serviceName)

	o.submissionCounter, _ = o.meter.Int64Counter(
		"submissions.processed",
		otelmetric.WithDescription("Number of card submissions processed"),
	)
	o.submissionDuration, _ = o.meter.Float64Histogram(
		"submissions.duration",
		otelmetric.WithDescription("Card submission duration"),
		otelmetric.WithUnit("ms"),
	)

	return o
}

func newJaegerExporter(endpoint string) (*jaeger.Exporter, error) {
	if endpoint == "" {
		return jaeger.New(jaeger.WithCollectorEndpoint())
	}
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
}

// Tracer returns the tracer spans should be started from.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return otel.Tracer("card-submitter")
	}
	return o.tracer
}

// StartSpan starts a span named name carrying attrs.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordSubmission(ctx context.Context, result string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("result", result))
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, attrs)
	}
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// Shutdown flushes pending spans and metrics.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("tracer provider shutdown: %w", err)
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("meter provider shutdown: %w", err)
		}
	}
	return firstErr
}
