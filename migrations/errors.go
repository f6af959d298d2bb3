package migrations

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrorKind classifies the store operation that aborted a migration step.
type ErrorKind string

const (
	// FindError means the source cursor could not be opened.
	FindError ErrorKind = "find"
	// CursorDecodeError means a source record could not be fetched from the
	// cursor or decoded into its source shape.
	CursorDecodeError ErrorKind = "cursor-decode"
	// InsertError means a converted record could not be written to the
	// destination collection.
	InsertError ErrorKind = "insert"
)

// StepError is returned by a migration step that stopped on a store error.
// Records inserted before the failure are left in place.
type StepError struct {
	Kind       ErrorKind
	Step       string
	Collection string
	// RecordID is the key of the record being processed, if it was decoded.
	RecordID primitive.ObjectID
	// Migrated is the number of records inserted before the failure.
	Migrated int
	Err      error
}

func (e *StepError) Error() string {
	switch e.Kind {
	case FindError:
		return fmt.Sprintf("step '%s': opening cursor on collection '%s': %s", e.Step, e.Collection, e.Err)
	case CursorDecodeError:
		return fmt.Sprintf("step '%s': reading next record from collection '%s' after %d records: %s", e.Step, e.Collection, e.Migrated, e.Err)
	case InsertError:
		return fmt.Sprintf("step '%s': inserting record '%s' into collection '%s': %s", e.Step, e.RecordID.Hex(), e.Collection, e.Err)
	default:
		return fmt.Sprintf("step '%s': %s", e.Step, e.Err)
	}
}

func (e *StepError) Cause() error  { return e.Err }
func (e *StepError) Unwrap() error { return e.Err }

// errorKind labels a step failure for metrics.
func errorKind(err error) string {
	var stepErr *StepError
	switch {
	case errors.As(err, &stepErr):
		return string(stepErr.Kind)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "interrupted"
	default:
		return "other"
	}
}
