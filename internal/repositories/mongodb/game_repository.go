package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure GameRepository implements the interface
var _ repositories.GameRepository = (*GameRepository)(nil)

// GameRepository stores one document per game aggregate
type GameRepository struct {
	collection *mongo.Collection
}

// NewGameRepository creates a new GameRepository
func NewGameRepository(db *mongo.Database) *GameRepository {
	return &GameRepository{
		collection: db.Collection("games"),
	}
}

// Create inserts a new game at version 1
func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	g.Version = 1
	_, err := r.collection.InsertOne(ctx, g)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
	}
	return nil
}

// FindByID finds a game by its identity
func (r *GameRepository) FindByID(ctx context.Context, id string) (*game.Game, error) {
	var g game.Game
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game %s: %w", id, err)
	}
	return &g, nil
}

// Update replaces the game if nobody wrote it since it was read
func (r *GameRepository) Update(ctx context.Context, g *game.Game) error {
	expected := g.Version
	next := g.Clone()
	next.Version = expected + 1

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": expected}, next)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", g.ID, err)
	}
	if res.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": g.ID})
		if err != nil {
			return fmt.Errorf("failed to check game %s: %w", g.ID, err)
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrVersionConflict
	}
	g.Version = next.Version
	return nil
}

// FindAll returns every game, newest first
func (r *GameRepository) FindAll(ctx context.Context) ([]*game.Game, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer cursor.Close(ctx)

	var games []*game.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	if games == nil {
		games = []*game.Game{}
	}
	return games, nil
}
