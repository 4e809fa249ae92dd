package memory

import (
	"context"
	"sync"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/google/uuid"
)

var _ repositories.TransferRepository = (*TransferRepository)(nil)

// TransferRepository is an in-memory journal, newest last.
type TransferRepository struct {
	mu        sync.RWMutex
	transfers []models.Transfer
}

func NewTransferRepository() *TransferRepository {
	return &TransferRepository{}
}

func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.transfers = append(r.transfers, *transfer)
	r.mu.Unlock()
	return nil
}

// FindByOwner returns transfers touching owner, newest first.
func (r *TransferRepository) FindByOwner(ctx context.Context, owner string, limit int) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Transfer{}
	for i := len(r.transfers) - 1; i >= 0; i-- {
		t := r.transfers[i]
		if t.From != owner && t.To != owner {
			continue
		}
		out = append(out, &t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// FindByGameID returns a game's transfers in journal order.
func (r *TransferRepository) FindByGameID(ctx context.Context, gameID string) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Transfer{}
	for _, t := range r.transfers {
		if t.GameID == gameID {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}
