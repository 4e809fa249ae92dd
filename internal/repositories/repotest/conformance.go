// Package repotest checks that a storage backend honours the repository
// contracts. Every backend test opens a fresh store and hands it to
// RunConformance.
package repotest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/game"
	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend describes the store under test.
type Backend struct {
	// Open returns an empty store. It is called once per subtest.
	Open func(t *testing.T) *repositories.Store
	// MaxBalance is the largest balance a single account can hold.
	MaxBalance uint64
}

// RunConformance runs every repository contract against the backend.
func RunConformance(t *testing.T, b Backend) {
	t.Helper()
	t.Run("games", func(t *testing.T) { testGames(t, b.Open(t)) })
	t.Run("accounts", func(t *testing.T) { testAccounts(t, b.Open(t), b.MaxBalance) })
	t.Run("transfers", func(t *testing.T) { testTransfers(t, b.Open(t)) })
	t.Run("settlements", func(t *testing.T) { testSettlements(t, b.Open(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, b.Open(t)) })
}

func testGames(t *testing.T, store *repositories.Store) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	g, err := game.Initialize("g1", "MEME", "", game.DefaultRules(), 10, 90, now)
	require.NoError(t, err)
	require.NoError(t, store.Games.Create(ctx, g))
	assert.Equal(t, int64(1), g.Version)
	assert.ErrorIs(t, store.Games.Create(ctx, g), repositories.ErrDuplicate)

	loaded, err := store.Games.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(90), loaded.PrizePool)
	assert.Len(t, loaded.Boxes, game.DefaultBoxCount)

	stale := loaded.Clone()
	_, err = loaded.Contribute(0, "DOGE", 50, "alice", now)
	require.NoError(t, err)
	require.NoError(t, store.Games.Update(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	_, err = stale.Contribute(0, "SHIB", 70, "bob", now)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Games.Update(ctx, stale), repositories.ErrVersionConflict)
	assert.Equal(t, int64(1), stale.Version, "a rejected update keeps the caller's version")

	reloaded, err := store.Games.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.Version)
	assert.Equal(t, "DOGE", reloaded.Boxes[0].LeadingLabel)
	assert.Equal(t, uint64(50), reloaded.Boxes[0].Contributions.Get("alice"))
	assert.Equal(t, uint64(140), reloaded.PrizePool)
	assert.NoError(t, reloaded.CheckInvariants())

	// Writing an earlier state back at the current version succeeds.
	g1, err := game.Initialize("g1", "MEME", "", game.DefaultRules(), 10, 90, now)
	require.NoError(t, err)
	g1.Version = reloaded.Version
	require.NoError(t, store.Games.Update(ctx, g1))
	restored, err := store.Games.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(90), restored.PrizePool)
	assert.False(t, restored.Boxes[0].Active())

	_, err = store.Games.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	missing := restored.Clone()
	missing.ID = "missing"
	assert.ErrorIs(t, store.Games.Update(ctx, missing), repositories.ErrNotFound)

	later, err := game.Initialize("g2", "MEME", "", game.DefaultRules(), 0, 0, now.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, store.Games.Create(ctx, later))
	all, err := store.Games.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "g2", all[0].ID, "newest first")
}

func testAccounts(t *testing.T, store *repositories.Store, maxBalance uint64) {
	ctx := context.Background()

	_, err := store.Accounts.FindByOwner(ctx, "alice", "MEME")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, store.Accounts.Debit(ctx, "alice", "MEME", 1), repositories.ErrInsufficientBalance)

	require.NoError(t, store.Accounts.Credit(ctx, "alice", "MEME", 100))
	require.NoError(t, store.Accounts.Credit(ctx, "alice", "MEME", 20))
	require.NoError(t, store.Accounts.Credit(ctx, "alice", "USDC", 5))
	require.NoError(t, store.Accounts.Debit(ctx, "alice", "MEME", 70))
	assert.ErrorIs(t, store.Accounts.Debit(ctx, "alice", "MEME", 51), repositories.ErrInsufficientBalance)

	account, err := store.Accounts.FindByOwner(ctx, "alice", "MEME")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), account.Balance)

	accounts, err := store.Accounts.FindAllByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "MEME", accounts[0].Asset)
	assert.Equal(t, "USDC", accounts[1].Asset)

	none, err := store.Accounts.FindAllByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.ErrorIs(t, store.Accounts.Credit(ctx, "alice", "MEME", math.MaxUint64), repositories.ErrBalanceOverflow)

	require.NoError(t, store.Accounts.Credit(ctx, "bob", "MEME", maxBalance-10))
	require.NoError(t, store.Accounts.Credit(ctx, "bob", "MEME", 10))
	assert.ErrorIs(t, store.Accounts.Credit(ctx, "bob", "MEME", 1), repositories.ErrBalanceOverflow)
	full, err := store.Accounts.FindByOwner(ctx, "bob", "MEME")
	require.NoError(t, err)
	assert.Equal(t, maxBalance, full.Balance, "overflowing credit leaves the balance unchanged")
	require.NoError(t, store.Accounts.Debit(ctx, "bob", "MEME", maxBalance))
}

func testTransfers(t *testing.T, store *repositories.Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	box := 3

	require.NoError(t, store.Transfers.Create(ctx, &models.Transfer{
		Kind: models.TransferKindDeposit, Asset: "MEME", From: models.ExternalOwner, To: "alice", Amount: 100, CreatedAt: base,
	}))
	contribution := &models.Transfer{
		Kind: models.TransferKindContribution, Asset: "MEME", From: "alice", To: models.VaultOwner("g1"),
		Amount: 40, GameID: "g1", BoxIndex: &box, Reference: "DOGE", CreatedAt: base.Add(time.Second),
	}
	require.NoError(t, store.Transfers.Create(ctx, contribution))
	assert.NotEmpty(t, contribution.ID)

	history, err := store.Transfers.FindByOwner(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransferKindContribution, history[0].Kind)
	require.NotNil(t, history[0].BoxIndex)
	assert.Equal(t, 3, *history[0].BoxIndex)
	assert.Nil(t, history[1].BoxIndex)

	limited, err := store.Transfers.FindByOwner(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byGame, err := store.Transfers.FindByGameID(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, byGame, 1)
	assert.Equal(t, uint64(40), byGame[0].Amount)
	assert.Equal(t, "DOGE", byGame[0].Reference)
}

func testSettlements(t *testing.T, store *repositories.Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Settlements.Create(ctx, &models.Settlement{
		GameID: "g1", BoxIndex: 3, Label: "DOGE", Claimant: "alice", ContributorAmount: 40,
		Share: 60, PoolAsset: "MEME", PayoutAsset: "MEME", PayoutAmount: 60, BoxDrained: true,
		Status: models.SettlementStatusCompleted, SettledAt: base,
	}))
	require.NoError(t, store.Settlements.Create(ctx, &models.Settlement{
		ID: "s-pending", GameID: "g1", BoxIndex: 4, Label: "PEPE", Claimant: "bob", ContributorAmount: 10,
		Share: 15, PoolAsset: "MEME", PayoutAsset: "USDC", Status: models.SettlementStatusPending,
		SwapReference: "s-pending", SettledAt: base.Add(time.Second),
	}))

	settlements, err := store.Settlements.FindByGameID(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.True(t, settlements[0].BoxDrained)
	assert.False(t, settlements[0].Swapped)
	assert.Equal(t, uint64(60), settlements[0].Share)
	assert.Equal(t, models.SettlementStatusCompleted, settlements[0].Status)
	assert.Equal(t, "s-pending", settlements[1].ID)
	assert.Equal(t, models.SettlementStatusPending, settlements[1].Status)
	assert.Equal(t, "s-pending", settlements[1].SwapReference)

	mine, err := store.Settlements.FindByClaimant(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func testUsers(t *testing.T, store *repositories.Store) {
	ctx := context.Background()

	user := &models.User{Email: "Alice@Example.com", DisplayName: "alice", Password: "hash", Role: models.RolePlayer}
	require.NoError(t, store.Users.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	dup := &models.User{Email: "alice@example.com", DisplayName: "other", Password: "hash", Role: models.RolePlayer}
	assert.ErrorIs(t, store.Users.Create(ctx, dup), repositories.ErrDuplicate)

	found, err := store.Users.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := store.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.DisplayName)

	_, err = store.Users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	n, err := store.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
