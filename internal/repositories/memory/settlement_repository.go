package memory

import (
	"context"
	"sync"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/google/uuid"
)

var _ repositories.SettlementRepository = (*SettlementRepository)(nil)

type SettlementRepository struct {
	mu          sync.RWMutex
	settlements []models.Settlement
}

func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{}
}

func (r *SettlementRepository) Create(ctx context.Context, s *models.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.settlements = append(r.settlements, *s)
	r.mu.Unlock()
	return nil
}

func (r *SettlementRepository) FindByGameID(ctx context.Context, gameID string) ([]*models.Settlement, error) {
	return r.filter(func(s *models.Settlement) bool { return s.GameID == gameID }), nil
}

func (r *SettlementRepository) FindByClaimant(ctx context.Context, claimant string) ([]*models.Settlement, error) {
	return r.filter(func(s *models.Settlement) bool { return s.Claimant == claimant }), nil
}

func (r *SettlementRepository) filter(keep func(*models.Settlement) bool) []*models.Settlement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Settlement{}
	for _, s := range r.settlements {
		s := s
		if keep(&s) {
			out = append(out, &s)
		}
	}
	return out
}
