package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
)

var _ repositories.AccountRepository = (*AccountRepository)(nil)

// AccountRepository keeps balances in INTEGER columns, so a single account
// is bounded by math.MaxInt64.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByOwner(ctx context.Context, owner, asset string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner, asset, balance, updated_at FROM accounts WHERE owner = ? AND asset = ?`, owner, asset)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s/%s: %w", owner, asset, err)
	}
	return account, nil
}

func (r *AccountRepository) FindAllByOwner(ctx context.Context, owner string) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT owner, asset, balance, updated_at FROM accounts WHERE owner = ? ORDER BY asset`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for %s: %w", owner, err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Credit upserts the account; the conditional update refuses to push the
// balance past math.MaxInt64.
func (r *AccountRepository) Credit(ctx context.Context, owner, asset string, amount uint64) error {
	if amount > math.MaxInt64 {
		return repositories.ErrBalanceOverflow
	}
	delta := int64(amount)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (owner, asset, balance, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (owner, asset) DO UPDATE
		SET balance = balance + excluded.balance, updated_at = excluded.updated_at
		WHERE balance <= ?`,
		owner, asset, delta, unixNano(time.Now()), int64(math.MaxInt64)-delta)
	if err != nil {
		return fmt.Errorf("failed to credit %s/%s: %w", owner, asset, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to credit %s/%s: %w", owner, asset, err)
	}
	if n == 0 {
		return repositories.ErrBalanceOverflow
	}
	return nil
}

func (r *AccountRepository) Debit(ctx context.Context, owner, asset string, amount uint64) error {
	if amount > math.MaxInt64 {
		return repositories.ErrInsufficientBalance
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - ?, updated_at = ?
		WHERE owner = ? AND asset = ? AND balance >= ?`,
		int64(amount), unixNano(time.Now()), owner, asset, int64(amount))
	if err != nil {
		return fmt.Errorf("failed to debit %s/%s: %w", owner, asset, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to debit %s/%s: %w", owner, asset, err)
	}
	if n == 0 {
		return repositories.ErrInsufficientBalance
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	var (
		account   models.Account
		balance   int64
		updatedAt int64
	)
	if err := s.Scan(&account.Owner, &account.Asset, &balance, &updatedAt); err != nil {
		return nil, err
	}
	account.Balance = uint64(balance)
	account.UpdatedAt = fromUnixNano(updatedAt)
	return &account, nil
}
