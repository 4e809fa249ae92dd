package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/models"
)

// Errors shared by every repository implementation.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrVersionConflict     = errors.New("record was modified concurrently")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// GameRepository stores game aggregates. Update succeeds only when the stored
// version equals g.Version, and then increments it.
type GameRepository interface {
	Create(ctx context.Context, g *game.Game) error
	FindByID(ctx context.Context, id string) (*game.Game, error)
	Update(ctx context.Context, g *game.Game) error
	FindAll(ctx context.Context) ([]*game.Game, error)
}

// AccountRepository keeps balances. Debit must be atomic with its balance
// check and fail with ErrInsufficientBalance.
type AccountRepository interface {
	FindByOwner(ctx context.Context, owner, asset string) (*models.Account, error)
	FindAllByOwner(ctx context.Context, owner string) ([]*models.Account, error)
	Credit(ctx context.Context, owner, asset string, amount uint64) error
	Debit(ctx context.Context, owner, asset string, amount uint64) error
}

// TransferRepository is the append-only transfer journal.
type TransferRepository interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	FindByOwner(ctx context.Context, owner string, limit int) ([]*models.Transfer, error)
	FindByGameID(ctx context.Context, gameID string) ([]*models.Transfer, error)
}

// SettlementRepository stores payouts.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *models.Settlement) error
	FindByGameID(ctx context.Context, gameID string) ([]*models.Settlement, error)
	FindByClaimant(ctx context.Context, claimant string) ([]*models.Settlement, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// Store groups the repositories of one storage backend.
type Store struct {
	Games       GameRepository
	Accounts    AccountRepository
	Transfers   TransferRepository
	Settlements SettlementRepository
	Users       UserRepository
	Close       func(ctx context.Context) error
}
