package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
)

var _ repositories.GameRepository = (*GameRepository)(nil)

// GameRepository keeps games in memory. Stored values are cloned on the way
// in and out so callers never share state with the store.
type GameRepository struct {
	mu    sync.RWMutex
	games map[string]*game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{games: map[string]*game.Game{}}
}

func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[g.ID]; ok {
		return repositories.ErrDuplicate
	}
	g.Version = 1
	r.games[g.ID] = g.Clone()
	return nil
}

func (r *GameRepository) FindByID(ctx context.Context, id string) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return g.Clone(), nil
}

func (r *GameRepository) Update(ctx context.Context, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.games[g.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.Version != g.Version {
		return repositories.ErrVersionConflict
	}
	g.Version++
	r.games[g.ID] = g.Clone()
	return nil
}

func (r *GameRepository) FindAll(ctx context.Context) ([]*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
