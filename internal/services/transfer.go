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

// Compile-time check to ensure LedgerTransfer implements ValueTransfer
var _ ValueTransfer = (*LedgerTransfer)(nil)

// LedgerTransfer moves value between accounts held by an AccountRepository
// and journals every movement.
type LedgerTransfer struct {
	accounts  repositories.AccountRepository
	transfers repositories.TransferRepository
	clock     game.Clock
}

// NewLedgerTransfer creates a new LedgerTransfer
func NewLedgerTransfer(accounts repositories.AccountRepository, transfers repositories.TransferRepository, clock game.Clock) *LedgerTransfer {
	return &LedgerTransfer{
		accounts:  accounts,
		transfers: transfers,
		clock:     clock,
	}
}

// Move debits the source, credits the destination and journals the transfer.
// A failed credit is compensated by crediting the source back.
func (t *LedgerTransfer) Move(ctx context.Context, req TransferRequest) error {
	if req.Amount == 0 {
		return fmt.Errorf("%w: transfer of zero", game.ErrInvalidAmount)
	}
	if req.From == req.To {
		return fmt.Errorf("%w: source and destination are both %s", game.ErrInvalidContributor, req.From)
	}

	if err := t.accounts.Debit(ctx, req.From, req.Asset, req.Amount); err != nil {
		if errors.Is(err, repositories.ErrInsufficientBalance) {
			return fmt.Errorf("%w: %s cannot cover %d %s", ErrInsufficientBalance, req.From, req.Amount, req.Asset)
		}
		return fmt.Errorf("failed to debit %s: %w", req.From, err)
	}
	if err := t.accounts.Credit(ctx, req.To, req.Asset, req.Amount); err != nil {
		if restoreErr := t.accounts.Credit(ctx, req.From, req.Asset, req.Amount); restoreErr != nil {
			slog.Error("CRITICAL: failed to restore debited balance", "error", restoreErr,
				"owner", req.From, "asset", req.Asset, "amount", req.Amount)
		}
		return fmt.Errorf("failed to credit %s: %w", req.To, err)
	}

	t.journal(ctx, req)
	return nil
}

// Reverse moves req back from its destination to its source.
func (t *LedgerTransfer) Reverse(ctx context.Context, req TransferRequest) error {
	reversal := req
	reversal.Kind = models.TransferKindReversal
	reversal.From, reversal.To = req.To, req.From
	reversal.Reference = string(req.Kind)
	if err := t.Move(ctx, reversal); err != nil {
		slog.Error("CRITICAL: failed to reverse transfer", "error", err,
			"kind", req.Kind, "from", req.From, "to", req.To, "asset", req.Asset, "amount", req.Amount)
		return err
	}
	return nil
}

// journal records a completed transfer. The balances have already moved, so
// a journal failure is logged rather than returned.
func (t *LedgerTransfer) journal(ctx context.Context, req TransferRequest) {
	record := &models.Transfer{
		Kind:      req.Kind,
		Asset:     req.Asset,
		From:      req.From,
		To:        req.To,
		Amount:    req.Amount,
		GameID:    req.GameID,
		BoxIndex:  req.BoxIndex,
		Reference: req.Reference,
		CreatedAt: t.clock.Now(),
	}
	if err := t.transfers.Create(ctx, record); err != nil {
		slog.Error("Failed to journal transfer", "error", err, "kind", req.Kind, "from", req.From, "to", req.To, "amount", req.Amount)
	}
}
