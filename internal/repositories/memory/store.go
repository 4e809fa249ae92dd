// Package memory implements the repositories in process memory. It backs the
// "memory" storage driver and the service tests.
package memory

import (
	"context"

	"github.com/ArowuTest/memebox-backend/internal/repositories"
)

// NewStore returns an empty in-memory store.
func NewStore() *repositories.Store {
	return &repositories.Store{
		Games:       NewGameRepository(),
		Accounts:    NewAccountRepository(),
		Transfers:   NewTransferRepository(),
		Settlements: NewSettlementRepository(),
		Users:       NewUserRepository(),
		Close:       func(context.Context) error { return nil },
	}
}
