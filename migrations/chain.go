package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/evergreen-ci/docmigrate/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Chain is an ordered list of migrations. The order must follow schema
// version succession; steps are never reordered or skipped.
type Chain []Migration

// Validate checks that the chain is non-empty, that step names are unique
// and that no step writes into its own source collection.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return errors.New("migration chain is empty")
	}

	catcher := grip.NewBasicCatcher()
	seen := map[string]bool{}
	for idx, m := range c {
		if m == nil {
			catcher.Errorf("step %d is nil", idx)
			continue
		}
		catcher.ErrorfWhen(m.Name() == "", "step %d has no name", idx)
		catcher.ErrorfWhen(seen[m.Name()], "duplicate step name '%s'", m.Name())
		catcher.ErrorfWhen(m.Source() == m.Destination(), "step '%s' reads and writes collection '%s'", m.Name(), m.Source())
		seen[m.Name()] = true
	}

	return catcher.Resolve()
}

// Names returns the step names in chain order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, m := range c {
		names = append(names, m.Name())
	}
	return names
}

// Migrate runs every step of the chain in order. The first failing step
// ends the run; later steps are not attempted.
func Migrate(ctx context.Context, store db.Store, chain Chain) error {
	if err := chain.Validate(); err != nil {
		return errors.Wrap(err, "invalid migration chain")
	}

	ctx, span := tracer.Start(ctx, "migrate", trace.WithAttributes(
		attribute.StringSlice("migrations.steps", chain.Names()),
	))
	defer span.End()

	for _, m := range chain {
		if _, err := RunStep(ctx, store, m); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "migration step failed")
			return err
		}
	}

	return nil
}

// RunStep runs a single migration and logs its start and completion.
func RunStep(ctx context.Context, store db.Store, m Migration) (int, error) {
	ctx, span := tracer.Start(ctx, m.Name(), trace.WithAttributes(
		attribute.String("migrations.source", m.Source()),
		attribute.String("migrations.destination", m.Destination()),
	))
	defer span.End()

	grip.Info(message.Fields{
		"message":     "running migration",
		"step":        m.Name(),
		"collection":  m.Source(),
		"destination": m.Destination(),
	})

	start := time.Now()
	count, err := m.Run(ctx, store)

	stepAttr := metric.WithAttributes(attribute.String(stepAttribute, m.Name()))
	recordsMigrated.Add(ctx, int64(count), stepAttr)
	stepDuration.Record(ctx, time.Since(start).Seconds(), stepAttr)
	span.SetAttributes(attribute.Int("migrations.records", count))
	if err != nil {
		stepFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String(stepAttribute, m.Name()),
			attribute.String(errorKindAttribute, errorKind(err)),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, "migration step failed")
		return count, err
	}

	grip.Info(message.Fields{
		"message":     fmt.Sprintf("migrated %s records", humanize.Comma(int64(count))),
		"step":        m.Name(),
		"collection":  m.Source(),
		"destination": m.Destination(),
		"records":     count,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return count, nil
}
