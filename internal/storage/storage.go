// Package storage opens the repository backend selected by configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/config"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/ArowuTest/memebox-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/memebox-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/memebox-backend/internal/repositories/sqlite"
	"github.com/ArowuTest/memebox-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

// Open connects to the configured backend. The returned store's Close
// releases it.
func Open(ctx context.Context, sc config.StorageConfig, mc config.MongoDBConfig) (*repositories.Store, error) {
	switch sc.Driver {
	case config.DriverMongoDB:
		timeout := time.Duration(mc.ConnectTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client, err := mongodb.NewClient(ctx, mc.URI, timeout)
		if err != nil {
			return nil, err
		}
		db := client.Database(mc.Database)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		slog.Info("Connected to MongoDB", "database", mc.Database)
		return mongorepo.NewStore(db, client.Disconnect), nil

	case config.DriverSQLite:
		store, err := sqlite.Open(sc.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("Opened SQLite database", "path", sc.SQLitePath)
		return store, nil

	case config.DriverMemory:
		slog.Warn("Using in-memory storage, state is lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}
