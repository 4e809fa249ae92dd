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

// Compile-time check to ensure TransferRepository implements the interface
var _ repositories.TransferRepository = (*TransferRepository)(nil)

// TransferRepository handles MongoDB operations for the transfer journal
type TransferRepository struct {
	collection *mongo.Collection
}

// NewTransferRepository creates a new TransferRepository
func NewTransferRepository(db *mongo.Database) *TransferRepository {
	return &TransferRepository{
		collection: db.Collection("transfers"),
	}
}

// Create appends a transfer to the journal
func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, transfer); err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}

// FindByOwner finds transfers from or to owner, newest first
func (r *TransferRepository) FindByOwner(ctx context.Context, owner string, limit int) ([]*models.Transfer, error) {
	filter := bson.M{"$or": []bson.M{{"from": owner}, {"to": owner}}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

// FindByGameID finds a game's transfers in journal order
func (r *TransferRepository) FindByGameID(ctx context.Context, gameID string) ([]*models.Transfer, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	return r.find(ctx, bson.M{"gameId": gameID}, opts)
}

func (r *TransferRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Transfer, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}
	defer cursor.Close(ctx)

	var transfers []*models.Transfer
	if err := cursor.All(ctx, &transfers); err != nil {
		return nil, fmt.Errorf("failed to decode transfers: %w", err)
	}
	if transfers == nil {
		transfers = []*models.Transfer{}
	}
	return transfers, nil
}
