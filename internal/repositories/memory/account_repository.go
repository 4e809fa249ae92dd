package memory

import (
	"context"
	"math/bits"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
)

var _ repositories.AccountRepository = (*AccountRepository)(nil)

type accountKey struct{ owner, asset string }

// AccountRepository keeps balances in memory.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[accountKey]*models.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: map[accountKey]*models.Account{}}
}

func (r *AccountRepository) FindByOwner(ctx context.Context, owner, asset string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey{owner, asset}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (r *AccountRepository) FindAllByOwner(ctx context.Context, owner string) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Account{}
	for key, acc := range r.accounts {
		if key.owner == owner {
			cp := *acc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out, nil
}

func (r *AccountRepository) Credit(ctx context.Context, owner, asset string, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := accountKey{owner, asset}
	acc, ok := r.accounts[key]
	if !ok {
		acc = &models.Account{Owner: owner, Asset: asset}
		r.accounts[key] = acc
	}
	sum, carry := bits.Add64(acc.Balance, amount, 0)
	if carry != 0 {
		return repositories.ErrBalanceOverflow
	}
	acc.Balance = sum
	acc.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *AccountRepository) Debit(ctx context.Context, owner, asset string, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey{owner, asset}]
	if !ok || acc.Balance < amount {
		return repositories.ErrInsufficientBalance
	}
	acc.Balance -= amount
	acc.UpdatedAt = time.Now().UTC()
	return nil
}
