package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/google/uuid"
)

var _ repositories.TransferRepository = (*TransferRepository)(nil)

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferColumns = `id, kind, asset, from_owner, to_owner, amount, game_id, box_index, reference, created_at`

func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	var boxIndex sql.NullInt64
	if transfer.BoxIndex != nil {
		boxIndex = sql.NullInt64{Int64: int64(*transfer.BoxIndex), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transfer.ID, string(transfer.Kind), transfer.Asset, transfer.From, transfer.To,
		int64(transfer.Amount), transfer.GameID, boxIndex, transfer.Reference, unixNano(transfer.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}

func (r *TransferRepository) FindByOwner(ctx context.Context, owner string, limit int) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE from_owner = ? OR to_owner = ?
		ORDER BY created_at DESC, rowid DESC`
	args := []any{owner, owner}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *TransferRepository) FindByGameID(ctx context.Context, gameID string) ([]*models.Transfer, error) {
	return r.query(ctx, `SELECT `+transferColumns+` FROM transfers
		WHERE game_id = ? ORDER BY created_at, rowid`, gameID)
}

func (r *TransferRepository) query(ctx context.Context, query string, args ...any) ([]*models.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}
	defer rows.Close()

	transfers := []*models.Transfer{}
	for rows.Next() {
		var (
			t         models.Transfer
			kind      string
			amount    int64
			boxIndex  sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &kind, &t.Asset, &t.From, &t.To, &amount, &t.GameID, &boxIndex, &t.Reference, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		t.Kind = models.TransferKind(kind)
		t.Amount = uint64(amount)
		if boxIndex.Valid {
			idx := int(boxIndex.Int64)
			t.BoxIndex = &idx
		}
		t.CreatedAt = fromUnixNano(createdAt)
		transfers = append(transfers, &t)
	}
	return transfers, rows.Err()
}
