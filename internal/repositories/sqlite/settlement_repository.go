package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/google/uuid"
)

var _ repositories.SettlementRepository = (*SettlementRepository)(nil)

type SettlementRepository struct {
	db *sql.DB
}

func NewSettlementRepository(db *sql.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

const settlementColumns = `id, game_id, box_index, label, claimant, contributor_amount, share,
	pool_asset, payout_asset, payout_amount, swapped, box_drained, status, swap_reference, settled_at`

func (r *SettlementRepository) Create(ctx context.Context, s *models.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	status := s.Status
	if status == "" {
		status = models.SettlementStatusCompleted
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.GameID, s.BoxIndex, s.Label, s.Claimant, int64(s.ContributorAmount), int64(s.Share),
		s.PoolAsset, s.PayoutAsset, int64(s.PayoutAmount), s.Swapped, s.BoxDrained, string(status),
		s.SwapReference, unixNano(s.SettledAt))
	if err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	return nil
}

func (r *SettlementRepository) FindByGameID(ctx context.Context, gameID string) ([]*models.Settlement, error) {
	return r.query(ctx, `SELECT `+settlementColumns+` FROM settlements
		WHERE game_id = ? ORDER BY settled_at, rowid`, gameID)
}

func (r *SettlementRepository) FindByClaimant(ctx context.Context, claimant string) ([]*models.Settlement, error) {
	return r.query(ctx, `SELECT `+settlementColumns+` FROM settlements
		WHERE claimant = ? ORDER BY settled_at, rowid`, claimant)
}

func (r *SettlementRepository) query(ctx context.Context, query string, args ...any) ([]*models.Settlement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find settlements: %w", err)
	}
	defer rows.Close()

	settlements := []*models.Settlement{}
	for rows.Next() {
		var (
			s                                models.Settlement
			contributorAmount, share, payout int64
			settledAt                        int64
			status                           string
		)
		err := rows.Scan(&s.ID, &s.GameID, &s.BoxIndex, &s.Label, &s.Claimant, &contributorAmount, &share,
			&s.PoolAsset, &s.PayoutAsset, &payout, &s.Swapped, &s.BoxDrained, &status, &s.SwapReference, &settledAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		s.ContributorAmount = uint64(contributorAmount)
		s.Share = uint64(share)
		s.PayoutAmount = uint64(payout)
		s.Status = models.SettlementStatus(status)
		s.SettledAt = fromUnixNano(settledAt)
		settlements = append(settlements, &s)
	}
	return settlements, rows.Err()
}
