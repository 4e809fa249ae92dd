package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure SettlementRepository implements the interface
var _ repositories.SettlementRepository = (*SettlementRepository)(nil)

// SettlementRepository implements the repositories.SettlementRepository interface
type SettlementRepository struct {
	collection *mongo.Collection
}

// NewSettlementRepository creates a new SettlementRepository
func NewSettlementRepository(db *mongo.Database) *SettlementRepository {
	return &SettlementRepository{
		collection: db.Collection("settlements"),
	}
}

// Create records a settlement
func (r *SettlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, settlement); err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	return nil
}

// FindByGameID finds a game's settlements, oldest first
func (r *SettlementRepository) FindByGameID(ctx context.Context, gameID string) ([]*models.Settlement, error) {
	return r.find(ctx, bson.M{"gameId": gameID})
}

// FindByClaimant finds a claimant's settlements across games
func (r *SettlementRepository) FindByClaimant(ctx context.Context, claimant string) ([]*models.Settlement, error) {
	return r.find(ctx, bson.M{"claimant": claimant})
}

func (r *SettlementRepository) find(ctx context.Context, filter bson.M) ([]*models.Settlement, error) {
	opts := options.Find().SetSort(bson.M{"settledAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find settlements: %w", err)
	}
	defer cursor.Close(ctx)

	var settlements []*models.Settlement
	if err := cursor.All(ctx, &settlements); err != nil {
		return nil, fmt.Errorf("failed to decode settlements: %w", err)
	}
	if settlements == nil {
		settlements = []*models.Settlement{}
	}
	return settlements, nil
}
