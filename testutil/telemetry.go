package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var (
	telemetryOnce sync.Once
	spanExporter  *tracetest.InMemoryExporter
	metricReader  *sdkmetric.ManualReader
)

// Telemetry gives tests access to the spans and metrics recorded through the
// global otel providers.
type Telemetry struct {
	t *testing.T
}

// CaptureTelemetry installs in-memory global trace and meter providers the
// first time it is called and clears previously recorded spans. Instruments
// created from the globals before installation are delegated to the new
// providers, so package-level tracers and meters are captured too. Tests that
// use it must not run in parallel with each other.
func CaptureTelemetry(t *testing.T) *Telemetry {
	telemetryOnce.Do(func() {
		spanExporter = tracetest.NewInMemoryExporter()
		metricReader = sdkmetric.NewManualReader()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter)))
		otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader)))
	})

	spanExporter.Reset()

	return &Telemetry{t: t}
}

// Spans returns the ended spans recorded since CaptureTelemetry.
func (tm *Telemetry) Spans() tracetest.SpanStubs {
	return spanExporter.GetSpans()
}

// SpanNamed returns the most recently ended span with the given name.
func (tm *Telemetry) SpanNamed(name string) (tracetest.SpanStub, bool) {
	spans := tm.Spans()
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].Name == name {
			return spans[i], true
		}
	}
	return tracetest.SpanStub{}, false
}

// Sum returns the cumulative value of an int64 counter for the data point
// whose attributes include the given key and value.
func (tm *Telemetry) Sum(instrument, attrKey, attrValue string) int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(tm.t, metricReader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != instrument {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(attrKey)); ok && v.AsString() == attrValue {
					total += dp.Value
				}
			}
		}
	}
	return total
}
