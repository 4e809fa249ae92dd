package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
)

var _ repositories.GameRepository = (*GameRepository)(nil)

// GameRepository stores each game as a JSON document keyed by its id.
type GameRepository struct {
	db *sql.DB
}

func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	stored := g.Clone()
	stored.Version = 1
	body, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode game %s: %w", g.ID, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO games (game_id, version, created_at, body) VALUES (?, ?, ?, ?)`,
		g.ID, stored.Version, unixNano(g.CreatedAt), string(body))
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
	}
	g.Version = stored.Version
	return nil
}

func (r *GameRepository) FindByID(ctx context.Context, id string) (*game.Game, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM games WHERE game_id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game %s: %w", id, err)
	}
	return decodeGame(body)
}

func (r *GameRepository) Update(ctx context.Context, g *game.Game) error {
	expected := g.Version
	next := g.Clone()
	next.Version = expected + 1
	body, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode game %s: %w", g.ID, err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET version = ?, body = ? WHERE game_id = ? AND version = ?`,
		next.Version, string(body), g.ID, expected)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", g.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", g.ID, err)
	}
	if n == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE game_id = ?`, g.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check game %s: %w", g.ID, err)
		}
		if exists == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrVersionConflict
	}
	g.Version = next.Version
	return nil
}

func (r *GameRepository) FindAll(ctx context.Context) ([]*game.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body FROM games ORDER BY created_at DESC, game_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []*game.Game{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g, err := decodeGame(body)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func decodeGame(body string) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal([]byte(body), &g); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	for i := range g.Boxes {
		if g.Boxes[i].Contributions == nil {
			g.Boxes[i].Contributions = game.Ledger{}
		}
	}
	return &g, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
