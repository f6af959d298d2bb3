package migrations

import (
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	packageName = "github.com/evergreen-ci/docmigrate/migrations"

	recordsMigratedInstrument = "docmigrate.records.migrated"
	stepFailuresInstrument    = "docmigrate.step.failures"
	stepDurationInstrument    = "docmigrate.step.duration"

	stepAttribute      = "migrations.step"
	errorKindAttribute = "migrations.error_kind"
)

var (
	tracer = otel.GetTracerProvider().Tracer(packageName)
	meter  = otel.GetMeterProvider().Meter(packageName)

	recordsMigrated metric.Int64Counter     = noop.Int64Counter{}
	stepFailures    metric.Int64Counter     = noop.Int64Counter{}
	stepDuration    metric.Float64Histogram = noop.Float64Histogram{}
)

func init() {
	var err error
	catcher := grip.NewBasicCatcher()

	if recordsMigrated, err = meter.Int64Counter(recordsMigratedInstrument,
		metric.WithUnit("{record}"),
		metric.WithDescription("Records inserted into a destination collection."),
	); err != nil {
		recordsMigrated = noop.Int64Counter{}
		catcher.Wrap(err, recordsMigratedInstrument)
	}
	if stepFailures, err = meter.Int64Counter(stepFailuresInstrument,
		metric.WithUnit("{step}"),
		metric.WithDescription("Migration steps that stopped on an error."),
	); err != nil {
		stepFailures = noop.Int64Counter{}
		catcher.Wrap(err, stepFailuresInstrument)
	}
	if stepDuration, err = meter.Float64Histogram(stepDurationInstrument,
		metric.WithUnit("s"),
		metric.WithDescription("Wall time of a migration step."),
	); err != nil {
		stepDuration = noop.Float64Histogram{}
		catcher.Wrap(err, stepDurationInstrument)
	}

	grip.Error(errors.Wrap(catcher.Resolve(), "creating migration instruments"))
}
