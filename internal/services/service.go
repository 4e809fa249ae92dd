package services

import (
	"context"
	"errors"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/ArowuTest/memebox-backend/pkg/exchange"
)

var (
	// ErrInsufficientBalance is returned when a transfer source cannot cover
	// the amount.
	ErrInsufficientBalance = repositories.ErrInsufficientBalance

	ErrInvalidDeposit     = errors.New("invalid deposit")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrExchangeRequired   = errors.New("game pays out in another asset but no exchange is configured")
)

// TransferRequest moves Amount of Asset between two owners.
type TransferRequest struct {
	Kind      models.TransferKind
	Asset     string
	From      string
	To        string
	Amount    uint64
	GameID    string
	BoxIndex  *int
	Reference string
}

// ValueTransfer moves value between accounts. Move fails with
// ErrInsufficientBalance and leaves both accounts untouched on any failure.
type ValueTransfer interface {
	Move(ctx context.Context, req TransferRequest) error
	Reverse(ctx context.Context, req TransferRequest) error
}

// ExchangeVenue converts settlement shares into the payout asset.
type ExchangeVenue interface {
	Swap(ctx context.Context, req exchange.SwapRequest) (uint64, error)
	SettlementAccount() string
}

// GameService defines the interface for game operations
type GameService interface {
	// InitializeGame creates a game with every box seeded by seedPerBox, paid
	// by initializer. An empty gameID gets a generated one.
	InitializeGame(ctx context.Context, gameID, initializer string, seedPerBox uint64) (*game.Game, error)

	// Contribute stakes amount behind label on a box
	Contribute(ctx context.Context, gameID string, boxIndex int, label string, amount uint64, contributor string) (game.ContributionResult, error)

	// Claim settles the claimant's share of a box once its cooldown elapsed
	Claim(ctx context.Context, gameID string, boxIndex int, expectedLabel, claimant string) (*models.Settlement, error)

	// ClaimableShare previews a claim without settling it
	ClaimableShare(ctx context.Context, gameID string, boxIndex int, claimant string) (game.Quote, error)

	GetGame(ctx context.Context, gameID string) (*game.Game, error)
	GetBox(ctx context.Context, gameID string, boxIndex int) (game.Box, error)
	ListGames(ctx context.Context) ([]*game.Game, error)
	ListSettlements(ctx context.Context, gameID string) ([]*models.Settlement, error)
}

// AccountService defines the interface for balance operations
type AccountService interface {
	Deposit(ctx context.Context, owner, asset string, amount uint64) (*models.Transfer, error)
	Balance(ctx context.Context, owner, asset string) (uint64, error)
	Balances(ctx context.Context, owner string) ([]*models.Account, error)
	History(ctx context.Context, owner string, limit int) ([]*models.Transfer, error)
	Settlements(ctx context.Context, owner string) ([]*models.Settlement, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}
