package game

import (
	"fmt"
	"time"
)

// ClaimPlan is a settlement computed against a game without mutating it.
// ApplyClaim commits it.
type ClaimPlan struct {
	BoxIndex          int    `json:"boxIndex"`
	Label             string `json:"label"`
	Claimant          string `json:"claimant"`
	ContributorAmount uint64 `json:"contributorAmount"`
	LedgerTotal       uint64 `json:"ledgerTotal"`
	BoxAmount         uint64 `json:"boxAmount"`
	Share             uint64 `json:"share"`
	// Drains is set when the claimant holds the last ledger entry; the share
	// is then the whole remaining box amount and the box resets.
	Drains bool `json:"drains"`
}

// Quote is a preview of what a claimant would receive now.
type Quote struct {
	BoxIndex          int       `json:"boxIndex"`
	Label             string    `json:"label"`
	ContributorAmount uint64    `json:"contributorAmount"`
	Share             uint64    `json:"share"`
	UnlocksAt         time.Time `json:"unlocksAt"`
	Unlocked          bool      `json:"unlocked"`
}

// share is floor(contributor * boxAmount / ledgerTotal). The unattributed
// part of the pool is spread over the leader's backers pro rata and the
// rounding dust stays in the box until the last backer drains it.
func share(contributor, boxAmount, ledgerTotal uint64) (uint64, error) {
	if contributor == 0 || ledgerTotal == 0 {
		return 0, ErrNoContribution
	}
	if contributor == ledgerTotal {
		return boxAmount, nil
	}
	return mulDiv(contributor, boxAmount, ledgerTotal)
}

// PlanClaim validates a claim by claimant on the box at index and computes its
// share. It fails with ErrNotLeadingLabel when the box is not led by
// expectedLabel and with ErrTimeLockNotElapsed before the cooldown since the
// last leadership change has passed.
func (g *Game) PlanClaim(index int, expectedLabel, claimant string, now time.Time) (ClaimPlan, error) {
	if err := g.checkIndex(index); err != nil {
		return ClaimPlan{}, err
	}
	b := &g.Boxes[index]
	if !b.Active() || b.LeadingLabel != expectedLabel {
		return ClaimPlan{}, fmt.Errorf("%w: box %d is led by %q", ErrNotLeadingLabel, index, b.LeadingLabel)
	}
	if now.Before(b.UnlocksAt(g.Rules.Cooldown())) {
		return ClaimPlan{}, ErrTimeLockNotElapsed
	}

	contributed := b.Contributions.Get(claimant)
	total := b.Contributions.Total()
	amount, err := share(contributed, b.Amount, total)
	if err != nil {
		return ClaimPlan{}, err
	}
	if amount == 0 {
		return ClaimPlan{}, ErrNoContribution
	}
	return ClaimPlan{
		BoxIndex:          index,
		Label:             b.LeadingLabel,
		Claimant:          claimant,
		ContributorAmount: contributed,
		LedgerTotal:       total,
		BoxAmount:         b.Amount,
		Share:             amount,
		Drains:            contributed == total,
	}, nil
}

// ApplyClaim commits a plan produced by PlanClaim on the same game state.
// The box resets once its ledger is empty.
func (g *Game) ApplyClaim(plan ClaimPlan, now time.Time) error {
	if err := g.checkIndex(plan.BoxIndex); err != nil {
		return err
	}
	b := &g.Boxes[plan.BoxIndex]
	if b.LeadingLabel != plan.Label || b.Amount != plan.BoxAmount || b.Contributions.Get(plan.Claimant) != plan.ContributorAmount {
		return fmt.Errorf("%w: claim plan is stale", ErrInvariantViolated)
	}
	if plan.Share > b.Amount || plan.Share > g.PrizePool {
		return fmt.Errorf("%w: share exceeds the pool", ErrInvariantViolated)
	}

	b.Amount -= plan.Share
	g.PrizePool -= plan.Share
	b.Contributions.remove(plan.Claimant)
	if b.Contributions.Len() == 0 {
		b.reset()
	}
	g.UpdatedAt = now
	return nil
}

// Claim plans and applies a settlement in one step.
func (g *Game) Claim(index int, expectedLabel, claimant string, now time.Time) (ClaimPlan, error) {
	plan, err := g.PlanClaim(index, expectedLabel, claimant, now)
	if err != nil {
		return ClaimPlan{}, err
	}
	if err := g.ApplyClaim(plan, now); err != nil {
		return ClaimPlan{}, err
	}
	return plan, nil
}

// QuoteClaim previews the claimant's share on the box at index, ignoring the
// time lock but reporting when it lifts.
func (g *Game) QuoteClaim(index int, claimant string, now time.Time) (Quote, error) {
	if err := g.checkIndex(index); err != nil {
		return Quote{}, err
	}
	b := &g.Boxes[index]
	if !b.Active() {
		return Quote{}, fmt.Errorf("%w: box %d has no round in progress", ErrNotLeadingLabel, index)
	}
	contributed := b.Contributions.Get(claimant)
	amount, err := share(contributed, b.Amount, b.Contributions.Total())
	if err != nil {
		return Quote{}, err
	}
	unlocksAt := b.UnlocksAt(g.Rules.Cooldown())
	return Quote{
		BoxIndex:          index,
		Label:             b.LeadingLabel,
		ContributorAmount: contributed,
		Share:             amount,
		UnlocksAt:         unlocksAt,
		Unlocked:          !now.Before(unlocksAt),
	}, nil
}
