package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// MatchAll is the unrestricted filter used to read every document in a
// collection.
var MatchAll = bson.M{}

// Store yields collection handles by name.
type Store interface {
	Collection(name string) Collection
}

// Collection is the subset of collection operations used by migrations.
type Collection interface {
	Name() string
	// Find opens a lazy cursor over the documents matching filter. The
	// cursor is not resumable: a failed or abandoned cursor must be
	// reopened from the start.
	Find(ctx context.Context, filter any) (Cursor, error)
	// Insert writes a single new document. Inserting a document whose _id
	// already exists is an error; there is no upsert.
	Insert(ctx context.Context, doc any) error
	Count(ctx context.Context, filter any) (int64, error)
}

// Cursor iterates over query results one document at a time. Its method
// set matches *mongo.Cursor.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}
