package mongodb

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/ArowuTest/memebox-backend/internal/repositories/repotest"
	mongoclient "github.com/ArowuTest/memebox-backend/pkg/mongodb"
	"github.com/stretchr/testify/require"
)

// MONGODB_TEST_URI points the tests at a disposable server. Each subtest gets
// its own database, dropped afterwards.
func TestConformance(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	client, err := mongoclient.NewClient(context.Background(), uri, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	open := func(t *testing.T) *repositories.Store {
		ctx := context.Background()
		db := client.Database(fmt.Sprintf("memebox_test_%d", time.Now().UnixNano()))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })
		require.NoError(t, EnsureIndexes(ctx, db))
		return NewStore(db, func(context.Context) error { return nil })
	}
	repotest.RunConformance(t, repotest.Backend{Open: open, MaxBalance: math.MaxInt64})
}
