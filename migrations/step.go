package migrations

import (
	"context"

	"github.com/evergreen-ci/docmigrate/db"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultIDLogKey = "id"

// Record is a document shape keyed by a store-assigned id.
type Record interface {
	RecordID() primitive.ObjectID
}

// Migration is a single schema version transition that copies every record
// of a source collection into a destination collection.
type Migration interface {
	Name() string
	Source() string
	Destination() string
	// Run migrates the records and returns how many were inserted. It
	// stops at the first error.
	Run(ctx context.Context, store db.Store) (int, error)
}

// Step is a Migration from records of shape S to records of shape T. The
// conversion must be a pure function of its input and must preserve the
// record id.
type Step[S Record, T Record] struct {
	name        string
	source      string
	destination string
	idKey       string
	convert     func(S) T
}

// NewStep returns a migration step that converts each record of the source
// collection with convert and inserts the result into destination.
func NewStep[S Record, T Record](name, source, destination string, convert func(S) T) *Step[S, T] {
	return &Step[S, T]{
		name:        name,
		source:      source,
		destination: destination,
		idKey:       defaultIDLogKey,
		convert:     convert,
	}
}

// WithIDKey sets the document key under which record ids are logged.
func (s *Step[S, T]) WithIDKey(key string) *Step[S, T] {
	if key != "" {
		s.idKey = key
	}
	return s
}

func (s *Step[S, T]) Name() string        { return s.name }
func (s *Step[S, T]) Source() string      { return s.source }
func (s *Step[S, T]) Destination() string { return s.destination }

// Convert applies the step's conversion to a single record.
func (s *Step[S, T]) Convert(record S) T { return s.convert(record) }

// Run streams the source collection in cursor order. Records are processed
// one at a time: decode, convert, insert. The context is checked before each
// record so that no new record is started once it is cancelled.
func (s *Step[S, T]) Run(ctx context.Context, store db.Store) (int, error) {
	src := store.Collection(s.source)
	dst := store.Collection(s.destination)

	cursor, err := src.Find(ctx, db.MatchAll)
	if err != nil {
		grip.Error(message.WrapError(err, message.Fields{
			"message":    "unable to open cursor on source collection",
			"step":       s.name,
			"collection": s.source,
		}))
		return 0, &StepError{Kind: FindError, Step: s.name, Collection: s.source, Err: err}
	}
	defer func() {
		if closeErr := cursor.Close(context.WithoutCancel(ctx)); closeErr != nil {
			grip.Debug(message.WrapError(closeErr, message.Fields{
				"message":    "problem closing cursor",
				"step":       s.name,
				"collection": s.source,
			}))
		}
	}()

	count := 0
	for {
		if err = ctx.Err(); err != nil {
			return count, errors.Wrapf(err, "step '%s' interrupted after %d records", s.name, count)
		}
		if !cursor.Next(ctx) {
			break
		}

		var record S
		if err = cursor.Decode(&record); err != nil {
			grip.Error(message.WrapError(err, message.Fields{
				"message":    "unable to get next record from cursor",
				"step":       s.name,
				"collection": s.source,
				"migrated":   count,
			}))
			return count, &StepError{Kind: CursorDecodeError, Step: s.name, Collection: s.source, Migrated: count, Err: err}
		}

		id := record.RecordID()
		grip.Debug(message.Fields{
			"message":    "migrating record",
			"step":       s.name,
			"collection": s.source,
			s.idKey:      id.Hex(),
			"ordinal":    count + 1,
		})

		if err = dst.Insert(ctx, s.convert(record)); err != nil {
			if ctx.Err() != nil {
				return count, errors.Wrapf(ctx.Err(), "step '%s' interrupted while inserting record '%s'", s.name, id.Hex())
			}
			grip.Error(message.WrapError(err, message.Fields{
				"message":            "unable to insert record",
				"step":               s.name,
				"collection":         s.destination,
				s.idKey:              id.Hex(),
				"duplicate_key":      db.IsDuplicateKey(err),
				"document_too_large": db.IsDocumentLimit(err),
			}))
			return count, &StepError{Kind: InsertError, Step: s.name, Collection: s.destination, RecordID: id, Migrated: count, Err: err}
		}
		count++
	}

	if err = cursor.Err(); err != nil {
		if ctx.Err() != nil {
			return count, errors.Wrapf(ctx.Err(), "step '%s' interrupted after %d records", s.name, count)
		}
		grip.Error(message.WrapError(err, message.Fields{
			"message":    "cursor failed",
			"step":       s.name,
			"collection": s.source,
			"migrated":   count,
		}))
		return count, &StepError{Kind: CursorDecodeError, Step: s.name, Collection: s.source, Migrated: count, Err: err}
	}

	return count, nil
}
