package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/ArowuTest/memebox-backend/pkg/exchange"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure GameServiceImpl implements GameService
var _ GameService = (*GameServiceImpl)(nil)

// GameSettings are applied to every game the service initializes.
type GameSettings struct {
	Rules       game.Rules
	PoolAsset   string
	PayoutAsset string
}

// GameServiceImpl runs game operations against stored aggregates. Every
// mutation of a game holds that game's lock from load to persist and works on
// a copy, so a failed step leaves the stored game untouched.
type GameServiceImpl struct {
	games       repositories.GameRepository
	accounts    repositories.AccountRepository
	settlements repositories.SettlementRepository
	transfers   ValueTransfer
	venue       ExchangeVenue
	clock       game.Clock
	settings    GameSettings

	mu    sync.Mutex
	locks map[string]*gameLock
}

// gameLock is dropped from the lock table once nobody holds or waits on it.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// NewGameService creates a new GameServiceImpl. venue may be nil when games
// pay out in their pool asset.
func NewGameService(
	games repositories.GameRepository,
	accounts repositories.AccountRepository,
	settlements repositories.SettlementRepository,
	transfers ValueTransfer,
	venue ExchangeVenue,
	clock game.Clock,
	settings GameSettings,
) *GameServiceImpl {
	return &GameServiceImpl{
		games:       games,
		accounts:    accounts,
		settlements: settlements,
		transfers:   transfers,
		venue:       venue,
		clock:       clock,
		settings:    settings,
		locks:       make(map[string]*gameLock),
	}
}

func (s *GameServiceImpl) lock(gameID string) func() {
	s.mu.Lock()
	l, ok := s.locks[gameID]
	if !ok {
		l = &gameLock{}
		s.locks[gameID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, gameID)
		}
		s.mu.Unlock()
	}
}

func (s *GameServiceImpl) load(ctx context.Context, gameID string) (*game.Game, error) {
	g, err := s.games.FindByID(ctx, gameID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// InitializeGame seeds a new game from the initializer's balance
func (s *GameServiceImpl) InitializeGame(ctx context.Context, gameID, initializer string, seedPerBox uint64) (*game.Game, error) {
	if initializer == "" {
		return nil, fmt.Errorf("%w: missing initializer", game.ErrInvalidContributor)
	}
	if gameID == "" {
		gameID = uuid.NewString()
	}
	defer s.lock(gameID)()

	if _, err := s.games.FindByID(ctx, gameID); err == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrGameExists, gameID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	var available uint64
	account, err := s.accounts.FindByOwner(ctx, initializer, s.settings.PoolAsset)
	switch {
	case err == nil:
		available = account.Balance
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	g, err := game.Initialize(gameID, s.settings.PoolAsset, s.settings.PayoutAsset, s.settings.Rules, seedPerBox, available, s.clock.Now())
	if err != nil {
		return nil, err
	}

	var seed *TransferRequest
	if g.PrizePool > 0 {
		seed = &TransferRequest{
			Kind:   models.TransferKindSeed,
			Asset:  g.PoolAsset,
			From:   initializer,
			To:     models.VaultOwner(g.ID),
			Amount: g.PrizePool,
			GameID: g.ID,
		}
		if err := s.transfers.Move(ctx, *seed); err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				return nil, fmt.Errorf("%w: %v", game.ErrInsufficientFunds, err)
			}
			return nil, err
		}
	}

	if err := s.games.Create(ctx, g); err != nil {
		if seed != nil {
			_ = s.transfers.Reverse(ctx, *seed)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", game.ErrGameExists, gameID)
		}
		return nil, err
	}

	slog.Info("Game initialized", "gameId", g.ID, "initializer", initializer, "boxes", g.Rules.BoxCount,
		"seedPerBox", seedPerBox, "prizePool", g.PrizePool, "poolAsset", g.PoolAsset, "payoutAsset", g.PayoutAsset)
	return g, nil
}

// Contribute applies a stake to a box and moves it into the game's vault
func (s *GameServiceImpl) Contribute(ctx context.Context, gameID string, boxIndex int, label string, amount uint64, contributor string) (game.ContributionResult, error) {
	defer s.lock(gameID)()

	current, err := s.load(ctx, gameID)
	if err != nil {
		return game.ContributionResult{}, err
	}
	next := current.Clone()
	result, err := next.Contribute(boxIndex, label, amount, contributor, s.clock.Now())
	if err != nil {
		return game.ContributionResult{}, err
	}
	if err := next.CheckInvariants(); err != nil {
		slog.Error("Contribution would break game invariants", "error", err, "gameId", gameID, "box", boxIndex)
		return game.ContributionResult{}, err
	}

	stake := TransferRequest{
		Kind:      models.TransferKindContribution,
		Asset:     next.PoolAsset,
		From:      contributor,
		To:        models.VaultOwner(next.ID),
		Amount:    amount,
		GameID:    next.ID,
		BoxIndex:  &boxIndex,
		Reference: label,
	}
	if err := s.transfers.Move(ctx, stake); err != nil {
		return game.ContributionResult{}, err
	}
	if err := s.games.Update(ctx, next); err != nil {
		_ = s.transfers.Reverse(ctx, stake)
		slog.Error("Failed to persist contribution, stake returned", "error", err, "gameId", gameID, "box", boxIndex, "contributor", contributor)
		return game.ContributionResult{}, err
	}

	slog.Info("Contribution applied", "gameId", gameID, "box", boxIndex, "label", label, "amount", amount,
		"contributor", contributor, "outcome", result.Outcome, "boxAmount", result.Box.Amount, "prizePool", result.PrizePool)
	return result, nil
}

// Claim settles the claimant's share. When the game pays out in another asset
// the share is routed through the exchange venue, see claimWithSwap.
func (s *GameServiceImpl) Claim(ctx context.Context, gameID string, boxIndex int, expectedLabel, claimant string) (*models.Settlement, error) {
	defer s.lock(gameID)()

	current, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	now := s.clock.Now()

	plan, err := next.PlanClaim(boxIndex, expectedLabel, claimant, now)
	if err != nil {
		return nil, err
	}
	if err := next.ApplyClaim(plan, now); err != nil {
		return nil, err
	}
	if err := next.CheckInvariants(); err != nil {
		slog.Error("Claim would break game invariants", "error", err, "gameId", gameID, "box", boxIndex)
		return nil, err
	}

	settlement := &models.Settlement{
		GameID:            next.ID,
		BoxIndex:          boxIndex,
		Label:             plan.Label,
		Claimant:          claimant,
		ContributorAmount: plan.ContributorAmount,
		Share:             plan.Share,
		PoolAsset:         next.PoolAsset,
		PayoutAsset:       next.PoolAsset,
		PayoutAmount:      plan.Share,
		BoxDrained:        plan.Drains,
		Status:            models.SettlementStatusCompleted,
		SettledAt:         now,
	}

	if next.RequiresSwap() {
		if err := s.claimWithSwap(ctx, current, next, plan, settlement); err != nil {
			return nil, err
		}
	} else {
		payout := outgoing(next, plan, models.TransferKindPayout, claimant)
		if err := s.transfers.Move(ctx, payout); err != nil {
			return nil, err
		}
		if err := s.games.Update(ctx, next); err != nil {
			_ = s.transfers.Reverse(context.WithoutCancel(ctx), payout)
			slog.Error("Failed to persist claim, payout returned", "error", err, "gameId", gameID, "box", boxIndex, "claimant", claimant)
			return nil, err
		}
	}
	s.record(ctx, settlement)

	slog.Info("Claim settled", "gameId", gameID, "box", boxIndex, "label", plan.Label, "claimant", claimant,
		"share", plan.Share, "payoutAsset", settlement.PayoutAsset, "payoutAmount", settlement.PayoutAmount, "drained", plan.Drains)
	return settlement, nil
}

// claimWithSwap moves the share to the venue and stores the drained game
// before the swap is requested, so a stored game never still owes a share the
// venue has paid. A rejected swap writes current back and returns the share
// to the vault. A swap with an unknown outcome keeps the claim and records a
// pending settlement for reconciliation under its swap reference.
func (s *GameServiceImpl) claimWithSwap(ctx context.Context, current, next *game.Game, plan game.ClaimPlan, settlement *models.Settlement) error {
	if s.venue == nil {
		return ErrExchangeRequired
	}
	input := outgoing(next, plan, models.TransferKindSwapInput, s.venue.SettlementAccount())
	if err := s.transfers.Move(ctx, input); err != nil {
		return err
	}
	if err := s.games.Update(ctx, next); err != nil {
		_ = s.transfers.Reverse(context.WithoutCancel(ctx), input)
		slog.Error("Failed to persist claim, swap input returned", "error", err, "gameId", next.ID, "box", plan.BoxIndex, "claimant", plan.Claimant)
		return err
	}

	settlement.ID = uuid.NewString()
	settlement.SwapReference = settlement.ID
	settlement.PayoutAsset = next.PayoutAsset
	settlement.PayoutAmount = 0

	amount, err := s.venue.Swap(ctx, exchange.SwapRequest{
		InputAsset:  next.PoolAsset,
		InputAmount: plan.Share,
		OutputAsset: next.PayoutAsset,
		Recipient:   plan.Claimant,
		Reference:   settlement.SwapReference,
	})
	if err == nil {
		settlement.PayoutAmount = amount
		settlement.Swapped = true
		return nil
	}

	// The claim is already stored; compensation must not depend on the
	// caller's context staying alive.
	ctx = context.WithoutCancel(ctx)
	if errors.Is(err, exchange.ErrSwapOutcomeUnknown) {
		settlement.Status = models.SettlementStatusPending
		s.record(ctx, settlement)
		slog.Error("Swap outcome unknown, claim kept as pending", "error", err, "gameId", next.ID, "box", plan.BoxIndex,
			"claimant", plan.Claimant, "share", plan.Share, "swapReference", settlement.SwapReference)
		return fmt.Errorf("failed to swap share: %w", err)
	}

	restore := current.Clone()
	restore.Version = next.Version
	if uerr := s.games.Update(ctx, restore); uerr != nil {
		settlement.Status = models.SettlementStatusFailed
		s.record(ctx, settlement)
		slog.Error("CRITICAL: swap rejected and claim could not be rolled back", "error", uerr, "swapError", err,
			"gameId", next.ID, "box", plan.BoxIndex, "claimant", plan.Claimant, "share", plan.Share, "swapReference", settlement.SwapReference)
		return fmt.Errorf("failed to swap share: %w", err)
	}
	_ = s.transfers.Reverse(ctx, input)
	slog.Warn("Swap failed, claim rolled back", "error", err, "gameId", next.ID, "box", plan.BoxIndex, "claimant", plan.Claimant, "share", plan.Share)
	return fmt.Errorf("failed to swap share: %w", err)
}

// outgoing builds the transfer that takes the claimed share out of the vault.
func outgoing(g *game.Game, plan game.ClaimPlan, kind models.TransferKind, to string) TransferRequest {
	boxIndex := plan.BoxIndex
	return TransferRequest{
		Kind:      kind,
		Asset:     g.PoolAsset,
		From:      models.VaultOwner(g.ID),
		To:        to,
		Amount:    plan.Share,
		GameID:    g.ID,
		BoxIndex:  &boxIndex,
		Reference: plan.Label,
	}
}

func (s *GameServiceImpl) record(ctx context.Context, settlement *models.Settlement) {
	if err := s.settlements.Create(ctx, settlement); err != nil {
		slog.Error("Failed to record settlement", "error", err, "gameId", settlement.GameID, "box", settlement.BoxIndex,
			"claimant", settlement.Claimant, "status", settlement.Status)
	}
}

// ClaimableShare previews the claimant's share
func (s *GameServiceImpl) ClaimableShare(ctx context.Context, gameID string, boxIndex int, claimant string) (game.Quote, error) {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return game.Quote{}, err
	}
	return g.QuoteClaim(boxIndex, claimant, s.clock.Now())
}

// GetGame retrieves a game by its ID
func (s *GameServiceImpl) GetGame(ctx context.Context, gameID string) (*game.Game, error) {
	return s.load(ctx, gameID)
}

// GetBox retrieves one box of a game
func (s *GameServiceImpl) GetBox(ctx context.Context, gameID string, boxIndex int) (game.Box, error) {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return game.Box{}, err
	}
	return g.Box(boxIndex)
}

// ListGames retrieves every game, newest first
func (s *GameServiceImpl) ListGames(ctx context.Context) ([]*game.Game, error) {
	return s.games.FindAll(ctx)
}

// ListSettlements retrieves a game's settlements in the order they happened
func (s *GameServiceImpl) ListSettlements(ctx context.Context, gameID string) ([]*models.Settlement, error) {
	if _, err := s.load(ctx, gameID); err != nil {
		return nil, err
	}
	return s.settlements.FindByGameID(ctx, gameID)
}
