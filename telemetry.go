package docmigrate

import (
	"context"
	"time"

	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

const (
	serviceName = "docmigrate"

	metricsExportInterval = 15 * time.Second
)

func telemetryResource() *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(BuildRevision),
	)
}

// initTelemetry installs global trace and meter providers that export to the
// configured collector. Without a collector endpoint the no-op globals stay
// in place.
func (e *envState) initTelemetry(ctx context.Context) error {
	endpoint := e.settings.TraceCollectorEndpoint
	if endpoint == "" {
		return nil
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(endpoint)}
	if e.settings.TraceCollectorInsecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(traceOpts...))
	if err != nil {
		return errors.Wrap(err, "initializing otel trace exporter")
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		grip.Warning(errors.Wrap(traceExporter.Shutdown(ctx), "shutting down trace exporter"))
		return errors.Wrap(err, "initializing otel metric exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(telemetryResource()),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(telemetryResource()),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricsExportInterval))),
	)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		grip.Error(errors.Wrap(err, "otel error"))
	}))

	e.RegisterCloser("telemetry", func(ctx context.Context) error {
		catcher := grip.NewBasicCatcher()
		catcher.Wrap(tp.Shutdown(ctx), "trace provider shutdown")
		catcher.Wrap(mp.Shutdown(ctx), "meter provider shutdown")
		return catcher.Resolve()
	})

	return nil
}
