package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/evergreen-ci/docmigrate/db"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateKeyCode = 11000

// compile-time checks that the mocks satisfy the db interfaces
var (
	_ db.Store      = &Store{}
	_ db.Collection = &Collection{}
	_ db.Cursor     = &Cursor{}
)

// Store is an in-memory db.Store. Collections are created on first use and
// keep documents in insertion order, which is also the order cursors
// deliver them in.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

func NewStore() *Store {
	return &Store{collections: map[string]*Collection{}}
}

func (s *Store) Collection(name string) db.Collection { return s.C(name) }

// C returns the concrete mock collection with the given name.
func (s *Store) C(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c
	}

	c := &Collection{name: name, ids: map[string]struct{}{}}
	s.collections[name] = c
	return c
}

// Collection is an in-memory collection. The hook fields may be set by tests
// before a migration runs.
type Collection struct {
	// FindError, if set, is returned by Find.
	FindError error
	// OnInsert, if set, runs before every Insert. A non-nil return aborts
	// the insert with that error.
	OnInsert func(ctx context.Context, doc bson.Raw) error

	name    string
	mu      sync.Mutex
	docs    []bson.Raw
	ids     map[string]struct{}
	inserts int
}

func (c *Collection) Name() string { return c.name }

// Seed stores documents directly, bypassing OnInsert. Documents without an
// _id are accepted so that tests can plant malformed records.
func (c *Collection) Seed(docs ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "marshalling seed document")
		}
		if id, err := bson.Raw(raw).LookupErr("_id"); err == nil {
			c.ids[id.String()] = struct{}{}
		}
		c.docs = append(c.docs, raw)
	}

	return nil
}

func (c *Collection) Find(ctx context.Context, _ any) (db.Cursor, error) {
	if c.FindError != nil {
		return nil, c.FindError
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]bson.Raw, len(c.docs))
	copy(snapshot, c.docs)

	return &Cursor{docs: snapshot, pos: -1}, nil
}

func (c *Collection) Insert(ctx context.Context, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshalling document")
	}

	if c.OnInsert != nil {
		if err = c.OnInsert(ctx, raw); err != nil {
			return err
		}
	}
	if err = ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	id, err := bson.Raw(raw).LookupErr("_id")
	if err != nil {
		return errors.New("document has no _id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := id.String()
	if _, ok := c.ids[key]; ok {
		return mongo.WriteException{
			WriteErrors: mongo.WriteErrors{{
				Index:   0,
				Code:    duplicateKeyCode,
				Message: fmt.Sprintf("E11000 duplicate key error collection: %s index: _id_ dup key: { _id: %s }", c.name, key),
			}},
		}
	}

	c.ids[key] = struct{}{}
	c.docs = append(c.docs, raw)
	c.inserts++

	return nil
}

func (c *Collection) Count(ctx context.Context, _ any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}

	return int64(c.Len()), nil
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.docs)
}

// Inserts returns the number of successful calls to Insert.
func (c *Collection) Inserts() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inserts
}

// Documents returns the stored documents in insertion order.
func (c *Collection) Documents() []bson.Raw {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]bson.Raw, len(c.docs))
	copy(out, c.docs)
	return out
}

// Cursor iterates over a snapshot of a mock collection.
type Cursor struct {
	docs   []bson.Raw
	pos    int
	err    error
	closed bool
}

func (c *Cursor) Next(ctx context.Context) bool {
	if c.closed || c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = errors.WithStack(err)
		return false
	}
	if c.pos+1 >= len(c.docs) {
		return false
	}

	c.pos++
	return true
}

func (c *Cursor) Decode(val any) error {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return errors.New("cursor is not positioned on a document")
	}

	return errors.Wrap(bson.Unmarshal(c.docs[c.pos], val), "decoding document")
}

func (c *Cursor) Err() error { return c.err }

func (c *Cursor) Close(_ context.Context) error {
	if c.closed {
		return errors.New("cursor already closed")
	}
	c.closed = true

	return nil
}
