package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure AccountRepository implements the interface
var _ repositories.AccountRepository = (*AccountRepository)(nil)

// AccountRepository keeps one document per (owner, asset). Balances are stored
// as int64, so a single account is bounded by math.MaxInt64.
type AccountRepository struct {
	collection *mongo.Collection
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		collection: db.Collection("accounts"),
	}
}

// FindByOwner finds the owner's account for asset
func (r *AccountRepository) FindByOwner(ctx context.Context, owner, asset string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"owner": owner, "asset": asset}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s/%s: %w", owner, asset, err)
	}
	return &account, nil
}

// FindAllByOwner lists the owner's accounts across assets
func (r *AccountRepository) FindAllByOwner(ctx context.Context, owner string) ([]*models.Account, error) {
	opts := options.Find().SetSort(bson.M{"asset": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for %s: %w", owner, err)
	}
	defer cursor.Close(ctx)

	var accounts []*models.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts for %s: %w", owner, err)
	}
	if accounts == nil {
		accounts = []*models.Account{}
	}
	return accounts, nil
}

// Credit atomically increments a balance, creating the account if needed.
// A credit that would take the balance past math.MaxInt64 fails with
// repositories.ErrBalanceOverflow and leaves the balance unchanged.
func (r *AccountRepository) Credit(ctx context.Context, owner, asset string, amount uint64) error {
	if amount > math.MaxInt64 {
		return repositories.ErrBalanceOverflow
	}
	delta := int64(amount)
	now := time.Now().UTC()
	filter := bson.M{
		"owner":   owner,
		"asset":   asset,
		"balance": bson.M{"$lte": math.MaxInt64 - delta},
	}
	update := bson.M{
		"$inc": bson.M{"balance": delta},
		"$set": bson.M{"updatedAt": now},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to credit %s/%s: %w", owner, asset, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Either the account does not exist yet or it is too full to take amount.
	count, err := r.collection.CountDocuments(ctx, bson.M{"owner": owner, "asset": asset})
	if err != nil {
		return fmt.Errorf("failed to check account %s/%s: %w", owner, asset, err)
	}
	if count > 0 {
		return repositories.ErrBalanceOverflow
	}
	_, err = r.collection.InsertOne(ctx, models.Account{Owner: owner, Asset: asset, Balance: amount, UpdatedAt: now})
	if mongo.IsDuplicateKeyError(err) {
		// Created concurrently; the unique (owner, asset) index makes the retry
		// land on the existing document.
		return r.Credit(ctx, owner, asset, amount)
	}
	if err != nil {
		return fmt.Errorf("failed to create account %s/%s: %w", owner, asset, err)
	}
	return nil
}

// Debit atomically decrements a balance if it covers amount
func (r *AccountRepository) Debit(ctx context.Context, owner, asset string, amount uint64) error {
	if amount > math.MaxInt64 {
		return repositories.ErrInsufficientBalance
	}
	filter := bson.M{
		"owner":   owner,
		"asset":   asset,
		"balance": bson.M{"$gte": int64(amount)},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -int64(amount)},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to debit %s/%s: %w", owner, asset, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrInsufficientBalance
	}
	return nil
}
