package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AccountServiceImpl implements AccountService
var _ AccountService = (*AccountServiceImpl)(nil)

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 50

// AccountServiceImpl handles balances, deposits and account history
type AccountServiceImpl struct {
	accounts    repositories.AccountRepository
	transfers   repositories.TransferRepository
	settlements repositories.SettlementRepository
	clock       game.Clock
}

// NewAccountService creates a new AccountServiceImpl
func NewAccountService(
	accounts repositories.AccountRepository,
	transfers repositories.TransferRepository,
	settlements repositories.SettlementRepository,
	clock game.Clock,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accounts:    accounts,
		transfers:   transfers,
		settlements: settlements,
		clock:       clock,
	}
}

// Deposit credits owner with amount of asset brought in from outside the game
func (s *AccountServiceImpl) Deposit(ctx context.Context, owner, asset string, amount uint64) (*models.Transfer, error) {
	if owner == "" || asset == "" {
		return nil, fmt.Errorf("%w: owner and asset are required", ErrInvalidDeposit)
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidDeposit)
	}
	if owner == models.ExternalOwner {
		return nil, fmt.Errorf("%w: cannot deposit to %s", ErrInvalidDeposit, owner)
	}

	if err := s.accounts.Credit(ctx, owner, asset, amount); err != nil {
		if errors.Is(err, repositories.ErrBalanceOverflow) {
			return nil, fmt.Errorf("%w: %v", game.ErrAmountOverflow, err)
		}
		return nil, err
	}

	transfer := &models.Transfer{
		Kind:      models.TransferKindDeposit,
		Asset:     asset,
		From:      models.ExternalOwner,
		To:        owner,
		Amount:    amount,
		CreatedAt: s.clock.Now(),
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		slog.Error("Failed to journal deposit", "error", err, "owner", owner, "asset", asset, "amount", amount)
	}
	slog.Info("Deposit credited", "owner", owner, "asset", asset, "amount", amount)
	return transfer, nil
}

// Balance returns the owner's balance of asset, 0 when it has no account
func (s *AccountServiceImpl) Balance(ctx context.Context, owner, asset string) (uint64, error) {
	account, err := s.accounts.FindByOwner(ctx, owner, asset)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Balances lists the owner's accounts
func (s *AccountServiceImpl) Balances(ctx context.Context, owner string) ([]*models.Account, error) {
	return s.accounts.FindAllByOwner(ctx, owner)
}

// History lists the owner's most recent transfers
func (s *AccountServiceImpl) History(ctx context.Context, owner string, limit int) ([]*models.Transfer, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.transfers.FindByOwner(ctx, owner, limit)
}

// Settlements lists the owner's payouts across games
func (s *AccountServiceImpl) Settlements(ctx context.Context, owner string) ([]*models.Settlement, error) {
	return s.settlements.FindByClaimant(ctx, owner)
}
