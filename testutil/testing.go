package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/evergreen-ci/docmigrate/db"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnvTestStoreURI names the store used by integration tests.
const EnvTestStoreURI = "DOCMIGRATE_TEST_STORE_URI"

// NewIntegrationStore connects to the store named by EnvTestStoreURI and
// returns a Store over a fresh database that is dropped when the test ends.
// The test is skipped when no store is configured or when
// SKIP_INTEGRATION_TESTS is set.
func NewIntegrationStore(t *testing.T) (db.Store, *mongo.Database) {
	if skip, _ := strconv.ParseBool(os.Getenv("SKIP_INTEGRATION_TESTS")); skip {
		t.Skip("SKIP_INTEGRATION_TESTS is set, skipping integration test")
	}
	uri := os.Getenv(EnvTestStoreURI)
	if uri == "" {
		t.Skipf("%s is not set, skipping integration test", EnvTestStoreURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(5*time.Second))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil), "integration store is not reachable")

	database := client.Database(fmt.Sprintf("docmigrate_test_%s", primitive.NewObjectID().Hex()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		require.NoError(t, database.Drop(ctx))
		require.NoError(t, client.Disconnect(ctx))
	})

	return db.NewStore(database), database
}
