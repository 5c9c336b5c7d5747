package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	eventCounter     otelmetric.Int64Counter
	dispatchDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	eventCounter, _ := meter.Int64Counter(
		"events.processed",
		otelmetric.WithDescription("Number of events processed"),
	)

	dispatchDuration, _ := meter.Float64Histogram(
		"dispatch.duration",
		otelmetric.WithDescription("Notification dispatch duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		eventCounter:     eventCounter,
		dispatchDuration: dispatchDuration,
	}
}

func (o *Observability) RecordEventProcessed(ctx context.Context, topic, status string) {
	if o.eventCounter != nil {
		o.eventCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("topic", topic),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordDispatchDuration(ctx context.Context, duration time.Duration, category string) {
	if o.dispatchDuration != nil {
		o.dispatchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("category", category),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
