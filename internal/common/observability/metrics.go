package observability

import (
	"context"
	"time"

	"marketpulse/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider shutdowner
	meter          otelmetric.Meter
	opCounter      otelmetric.Int64Counter
	opDuration     otelmetric.Float64Histogram
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// New sets up the global meter provider (Prometheus exporter) and, when
// jaegerEndpoint is non-empty, a global tracer provider exporting to Jaeger.
// Setup failures are logged and leave the corresponding half disabled.
func New(serviceName, jaegerEndpoint string, log logger.Logger) *Observability {
	o := &Observability{}

	if jaegerEndpoint != "" {
		tp, err := newTracerProvider(serviceName, jaegerEndpoint)
		if err != nil {
			log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			otel.SetTracerProvider(tp)
			o.tracerProvider = tp
		}
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	opCounter, _ := meter.Int64Counter(
		"operations.processed",
		otelmetric.WithDescription("Number of search and reset operations processed"),
	)

	opDuration, _ := meter.Float64Histogram(
		"operations.duration",
		otelmetric.WithDescription("Operation processing duration"),
		otelmetric.WithUnit("ms"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.opCounter = opCounter
	o.opDuration = opDuration
	return o
}

// RecordOperation counts one finished operation and its duration.
func (o *Observability) RecordOperation(ctx context.Context, operation, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.opCounter != nil {
		o.opCounter.Add(ctx, 1, attrs)
	}
	if o.opDuration != nil {
		o.opDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
