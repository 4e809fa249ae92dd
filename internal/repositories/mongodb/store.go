package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewStore wires every MongoDB repository on db.
func NewStore(db *mongo.Database, closeFn func(ctx context.Context) error) *repositories.Store {
	return &repositories.Store{
		Games:       NewGameRepository(db),
		Accounts:    NewAccountRepository(db),
		Transfers:   NewTransferRepository(db),
		Settlements: NewSettlementRepository(db),
		Users:       NewUserRepository(db),
		Close:       closeFn,
	}
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness
// and lookups.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"accounts": {{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "asset", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		"users": {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		"transfers": {
			{Keys: bson.D{{Key: "from", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "gameId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		"settlements": {
			{Keys: bson.D{{Key: "gameId", Value: 1}, {Key: "settledAt", Value: 1}}},
			{Keys: bson.D{{Key: "claimant", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
