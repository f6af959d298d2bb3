package db

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoStore struct {
	db *mongo.Database
}

// NewStore returns a Store backed by the given database.
func NewStore(database *mongo.Database) Store {
	return &mongoStore{db: database}
}

func (s *mongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string { return c.coll.Name() }

func (c *mongoCollection) Find(ctx context.Context, filter any) (Cursor, error) {
	cur, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "finding documents in collection '%s'", c.Name())
	}

	return cur, nil
}

func (c *mongoCollection) Insert(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return errors.Wrapf(errors.WithStack(err), "inserting document into collection '%s'", c.Name())
}

func (c *mongoCollection) Count(ctx context.Context, filter any) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "counting documents in collection '%s'", c.Name())
	}

	return n, nil
}
