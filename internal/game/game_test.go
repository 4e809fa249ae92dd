package game

import (
	"errors"
	"math"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newSeededGame(t *testing.T, seed uint64) *Game {
	t.Helper()
	g, err := Initialize("game-1", "SOL", "", DefaultRules(), seed, seed*DefaultBoxCount, t0)
	require.NoError(t, err)
	return g
}

func TestInitialize_SeedsEveryBox(t *testing.T) {
	g := newSeededGame(t, 100)

	assert.Equal(t, uint64(900), g.PrizePool)
	require.Len(t, g.Boxes, 9)
	for i, b := range g.Boxes {
		assert.Equal(t, uint64(100), b.Amount, "box %d", i)
		assert.Empty(t, b.LeadingLabel, "box %d", i)
		assert.Equal(t, 0, b.Contributions.Len(), "box %d", i)
	}
	assert.Equal(t, "SOL", g.PayoutAsset)
	assert.False(t, g.RequiresSwap())
	require.NoError(t, g.CheckInvariants())
}

func TestInitialize_InsufficientFunds(t *testing.T) {
	_, err := Initialize("game-1", "SOL", "", DefaultRules(), 100, 899, t0)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestInitialize_SeedOverflow(t *testing.T) {
	_, err := Initialize("game-1", "SOL", "", DefaultRules(), math.MaxUint64, math.MaxUint64, t0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestInitialize_RejectsBadRules(t *testing.T) {
	rules := DefaultRules()
	rules.BoxCount = 0
	_, err := Initialize("game-1", "SOL", "", rules, 1, 1, t0)
	assert.ErrorIs(t, err, ErrInvalidRules)

	_, err = Initialize("", "SOL", "", DefaultRules(), 1, 100, t0)
	assert.ErrorIs(t, err, ErrInvalidRules)
}

// playScenario runs the contribution sequence B, C, D on box 0.
func playScenario(t *testing.T) *Game {
	t.Helper()
	g := newSeededGame(t, 100)

	res, err := g.Contribute(0, "DOGE", 50, "P1", t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLeaderChanged, res.Outcome)
	assert.Equal(t, "DOGE", g.Boxes[0].LeadingLabel)
	assert.Equal(t, uint64(150), g.Boxes[0].Amount)
	assert.Equal(t, Ledger{"P1": 50}, g.Boxes[0].Contributions)

	res, err = g.Contribute(0, "DOGE", 30, "P2", t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccumulated, res.Outcome)
	assert.Equal(t, uint64(180), g.Boxes[0].Amount)
	assert.Equal(t, Ledger{"P1": 50, "P2": 30}, g.Boxes[0].Contributions)
	assert.Equal(t, t0, g.Boxes[0].LastLeaderChangeTime)

	res, err = g.Contribute(0, "SHIB", 40, "P3", t0.Add(20*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbsorbed, res.Outcome)
	assert.Equal(t, "DOGE", g.Boxes[0].LeadingLabel)
	assert.Equal(t, uint64(220), g.Boxes[0].Amount)
	assert.Equal(t, Ledger{"P1": 50, "P2": 30}, g.Boxes[0].Contributions)
	assert.Equal(t, uint64(1020), g.PrizePool)
	require.NoError(t, g.CheckInvariants())
	return g
}

func TestContribute_Scenario(t *testing.T) {
	playScenario(t)
}

func TestClaim_ProRataWithDustToLastClaimant(t *testing.T) {
	g := playScenario(t)
	unlock := t0.Add(time.Hour)

	plan, err := g.Claim(0, "DOGE", "P1", unlock)
	require.NoError(t, err)
	assert.Equal(t, uint64(137), plan.Share)
	assert.Equal(t, uint64(50), plan.ContributorAmount)
	assert.Equal(t, uint64(80), plan.LedgerTotal)
	assert.False(t, plan.Drains)
	assert.Equal(t, Ledger{"P2": 30}, g.Boxes[0].Contributions)
	assert.Equal(t, uint64(83), g.Boxes[0].Amount)
	assert.Equal(t, uint64(883), g.PrizePool)
	require.NoError(t, g.CheckInvariants())

	plan, err = g.Claim(0, "DOGE", "P2", unlock)
	require.NoError(t, err)
	assert.Equal(t, uint64(83), plan.Share)
	assert.True(t, plan.Drains)

	b := g.Boxes[0]
	assert.False(t, b.Active())
	assert.Zero(t, b.Amount)
	assert.True(t, b.LastLeaderChangeTime.IsZero())
	assert.Equal(t, 0, b.Contributions.Len())
	assert.Equal(t, uint64(800), g.PrizePool)
	require.NoError(t, g.CheckInvariants())
}

func TestClaim_SecondClaimHasNoContribution(t *testing.T) {
	g := playScenario(t)
	unlock := t0.Add(time.Hour)

	_, err := g.Claim(0, "DOGE", "P1", unlock)
	require.NoError(t, err)

	_, err = g.Claim(0, "DOGE", "P1", unlock)
	assert.ErrorIs(t, err, ErrNoContribution)
}

func TestClaim_AbsorbedBackerHasNoClaim(t *testing.T) {
	g := playScenario(t)
	_, err := g.Claim(0, "DOGE", "P3", t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNoContribution)
}

func TestClaim_TimeLock(t *testing.T) {
	g := playScenario(t)

	_, err := g.Claim(0, "DOGE", "P1", t0.Add(59*time.Minute))
	assert.ErrorIs(t, err, ErrTimeLockNotElapsed)

	// Same-label contributions never move the lock.
	_, err = g.Contribute(0, "DOGE", 5, "P4", t0.Add(59*time.Minute))
	require.NoError(t, err)
	_, err = g.Claim(0, "DOGE", "P1", t0.Add(time.Hour))
	assert.NoError(t, err)
}

func TestClaim_WrongLabel(t *testing.T) {
	g := playScenario(t)

	_, err := g.Claim(0, "SHIB", "P1", t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotLeadingLabel)

	_, err = g.Claim(1, "", "P1", t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotLeadingLabel, "empty box has no leader to claim against")
}

func TestPlanClaim_DoesNotMutate(t *testing.T) {
	g := playScenario(t)
	before := g.Clone()

	_, err := g.PlanClaim(0, "DOGE", "P1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, before, g)
}

func TestApplyClaim_RejectsStalePlan(t *testing.T) {
	g := playScenario(t)
	plan, err := g.PlanClaim(0, "DOGE", "P1", t0.Add(time.Hour))
	require.NoError(t, err)

	_, err = g.Contribute(0, "DOGE", 1, "P1", t0.Add(time.Hour))
	require.NoError(t, err)

	assert.ErrorIs(t, g.ApplyClaim(plan, t0.Add(time.Hour)), ErrInvariantViolated)
}

func TestContribute_TieNeverChangesLeader(t *testing.T) {
	g := playScenario(t)

	res, err := g.Contribute(0, "SHIB", 220, "P4", t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbsorbed, res.Outcome)
	assert.Equal(t, "DOGE", g.Boxes[0].LeadingLabel)
	assert.Equal(t, uint64(440), g.Boxes[0].Amount)
	assert.Equal(t, t0, g.Boxes[0].LastLeaderChangeTime)
}

func TestContribute_ChallengerTakesLeadAndWipesLedger(t *testing.T) {
	g := playScenario(t)
	at := t0.Add(30 * time.Minute)

	res, err := g.Contribute(0, "PEPE", 221, "P5", at)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLeaderChanged, res.Outcome)
	assert.Equal(t, "DOGE", res.DisplacedLabel)

	b := g.Boxes[0]
	assert.Equal(t, "PEPE", b.LeadingLabel)
	assert.Equal(t, uint64(441), b.Amount)
	assert.Equal(t, Ledger{"P5": 221}, b.Contributions)
	assert.Equal(t, at, b.StartTime)
	assert.Equal(t, at, b.LastLeaderChangeTime)
	require.Len(t, b.PreviousLeaders, 1)
	assert.Equal(t, LeaderRecord{Label: "DOGE", Amount: 220, DisplacedAt: at}, b.PreviousLeaders[0])

	// The new leader's backers inherit everything.
	plan, err := g.Claim(0, "PEPE", "P5", at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(441), plan.Share)
	require.NoError(t, g.CheckInvariants())
}

func TestContribute_HistoryIsBounded(t *testing.T) {
	rules := DefaultRules()
	rules.BoxCount = 1
	rules.MaxLeaderHistory = 2
	g, err := Initialize("g", "SOL", "", rules, 0, 0, t0)
	require.NoError(t, err)

	stake := uint64(1)
	for _, label := range []string{"A", "B", "C", "D"} {
		_, err := g.Contribute(0, label, stake, "P", t0)
		require.NoError(t, err)
		stake = g.Boxes[0].Amount + 1
	}
	history := g.Boxes[0].PreviousLeaders
	require.Len(t, history, 2)
	assert.Equal(t, "B", history[0].Label)
	assert.Equal(t, "C", history[1].Label)
}

func TestContribute_Validation(t *testing.T) {
	g := newSeededGame(t, 100)
	before := g.Clone()

	_, err := g.Contribute(9, "DOGE", 1, "P1", t0)
	assert.ErrorIs(t, err, ErrInvalidBoxNumber)
	_, err = g.Contribute(-1, "DOGE", 1, "P1", t0)
	assert.ErrorIs(t, err, ErrInvalidBoxNumber)
	_, err = g.Contribute(0, "DOGE", 0, "P1", t0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = g.Contribute(0, "", 1, "P1", t0)
	assert.ErrorIs(t, err, ErrInvalidLabel)
	_, err = g.Contribute(0, "DOGE", 1, "", t0)
	assert.ErrorIs(t, err, ErrInvalidContributor)

	assert.Equal(t, before, g)
}

func TestContribute_LedgerFull(t *testing.T) {
	rules := DefaultRules()
	rules.MaxContributorsPerBox = 2
	g, err := Initialize("g", "SOL", "", rules, 0, 0, t0)
	require.NoError(t, err)

	_, err = g.Contribute(0, "DOGE", 10, "P1", t0)
	require.NoError(t, err)
	_, err = g.Contribute(0, "DOGE", 10, "P2", t0)
	require.NoError(t, err)
	_, err = g.Contribute(0, "DOGE", 10, "P3", t0)
	assert.ErrorIs(t, err, ErrLedgerFull)

	// Existing backers can still top up.
	_, err = g.Contribute(0, "DOGE", 10, "P1", t0)
	assert.NoError(t, err)
}

func TestContribute_OverflowIsRejected(t *testing.T) {
	rules := DefaultRules()
	rules.BoxCount = 1
	g, err := Initialize("g", "SOL", "", rules, 0, 0, t0)
	require.NoError(t, err)

	_, err = g.Contribute(0, "DOGE", math.MaxUint64, "P1", t0)
	require.NoError(t, err)
	before := g.Clone()

	_, err = g.Contribute(0, "DOGE", 1, "P1", t0)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	_, err = g.Contribute(0, "SHIB", 1, "P2", t0)
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Equal(t, before, g)
}

func TestClaim_WideArithmetic(t *testing.T) {
	rules := DefaultRules()
	rules.BoxCount = 1
	seed := uint64(math.MaxUint64 - 1000)
	g, err := Initialize("g", "SOL", "", rules, seed, seed, t0)
	require.NoError(t, err)

	_, err = g.Contribute(0, "DOGE", 600, "P1", t0)
	require.NoError(t, err)
	_, err = g.Contribute(0, "DOGE", 400, "P2", t0)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), g.Boxes[0].Amount)

	want := new(big.Int).Mul(big.NewInt(600), new(big.Int).SetUint64(math.MaxUint64))
	want.Div(want, big.NewInt(1000))

	plan, err := g.Claim(0, "DOGE", "P1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, want.Uint64(), plan.Share)

	plan, err = g.Claim(0, "DOGE", "P2", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64)-want.Uint64(), plan.Share)
	assert.Zero(t, g.PrizePool)
}

func TestQuoteClaim(t *testing.T) {
	g := playScenario(t)

	q, err := g.QuoteClaim(0, "P1", t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, uint64(137), q.Share)
	assert.False(t, q.Unlocked)
	assert.Equal(t, t0.Add(time.Hour), q.UnlocksAt)

	_, err = g.QuoteClaim(0, "P3", t0)
	assert.ErrorIs(t, err, ErrNoContribution)
}

// TestRandomPlay_ConservesValue drives random contributions and claims and
// checks that value is neither created nor destroyed.
func TestRandomPlay_ConservesValue(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rules := DefaultRules()
	rules.BoxCount = 3
	g, err := Initialize("g", "SOL", "", rules, 1000, 3000, t0)
	require.NoError(t, err)

	labels := []string{"DOGE", "SHIB", "PEPE"}
	players := []string{"P1", "P2", "P3", "P4", "P5"}
	deposited := uint64(3000)
	var paid uint64
	now := t0

	for step := 0; step < 2000; step++ {
		now = now.Add(time.Duration(rng.Intn(40)) * time.Minute)
		box := rng.Intn(rules.BoxCount)
		player := players[rng.Intn(len(players))]

		if rng.Intn(3) == 0 {
			label := g.Boxes[box].LeadingLabel
			plan, err := g.Claim(box, label, player, now)
			if err == nil {
				paid += plan.Share
			} else {
				assert.True(t,
					errors.Is(err, ErrNoContribution) ||
						errors.Is(err, ErrTimeLockNotElapsed) ||
						errors.Is(err, ErrNotLeadingLabel), "step %d: %v", step, err)
			}
		} else {
			amount := uint64(rng.Intn(500) + 1)
			_, err := g.Contribute(box, labels[rng.Intn(len(labels))], amount, player, now)
			require.NoError(t, err)
			deposited += amount
		}

		require.NoError(t, g.CheckInvariants(), "step %d", step)
		require.Equal(t, deposited, paid+g.PrizePool, "step %d", step)
	}
}
