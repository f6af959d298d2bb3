package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/evergreen-ci/docmigrate/db"
	"github.com/evergreen-ci/docmigrate/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoStore(t *testing.T) {
	store, _ := testutil.NewIntegrationStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := store.Collection("records")
	assert.Equal(t, "records", c.Name())

	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	for idx, id := range ids {
		require.NoError(t, c.Insert(ctx, bson.M{"_id": id, "ordinal": idx}))
	}

	err := c.Insert(ctx, bson.M{"_id": ids[0]})
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err))

	n, err := c.Count(ctx, db.MatchAll)
	require.NoError(t, err)
	assert.EqualValues(t, len(ids), n)

	cur, err := c.Find(ctx, db.MatchAll)
	require.NoError(t, err)
	var seen []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		require.NoError(t, cur.Decode(&doc))
		seen = append(seen, doc.ID)
	}
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close(ctx))
	assert.ElementsMatch(t, ids, seen)
}
