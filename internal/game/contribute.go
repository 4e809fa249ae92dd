package game

import (
	"fmt"
	"time"
)

// Outcome describes what a contribution did to its box.
type Outcome string

const (
	// OutcomeAccumulated means the stake backed the current leader.
	OutcomeAccumulated Outcome = "ACCUMULATED"
	// OutcomeLeaderChanged means the stake put its label in the lead and
	// replaced the ledger.
	OutcomeLeaderChanged Outcome = "LEADER_CHANGED"
	// OutcomeAbsorbed means a challenger did not overtake the leader; the
	// stake joined the pool without a ledger entry.
	OutcomeAbsorbed Outcome = "ABSORBED"
)

// ContributionResult reports the effect of Contribute.
type ContributionResult struct {
	BoxIndex       int     `json:"boxIndex"`
	Outcome        Outcome `json:"outcome"`
	DisplacedLabel string  `json:"displacedLabel,omitempty"`
	Box            Box     `json:"box"`
	PrizePool      uint64  `json:"prizePool"`
	Amount         uint64  `json:"amount"`
}

// Contribute applies a stake of amount behind label to the box at index.
//
// A stake for the leading label accumulates into the contributor's entry and
// leaves the timer alone. A stake for another label takes the lead only if the
// box is empty or the stake is strictly greater than the box amount; taking
// the lead wipes the ledger, so displaced backers keep no individual claim
// although their stake stays in the pool. A challenger that does not overtake
// is absorbed. All validation happens before any field is written.
func (g *Game) Contribute(index int, label string, amount uint64, contributor string, now time.Time) (ContributionResult, error) {
	if err := g.checkIndex(index); err != nil {
		return ContributionResult{}, err
	}
	if amount == 0 {
		return ContributionResult{}, fmt.Errorf("%w: contribution must be positive", ErrInvalidAmount)
	}
	if label == "" {
		return ContributionResult{}, ErrInvalidLabel
	}
	if contributor == "" {
		return ContributionResult{}, ErrInvalidContributor
	}

	b := &g.Boxes[index]
	nextAmount, err := addAmount(b.Amount, amount)
	if err != nil {
		return ContributionResult{}, err
	}
	nextPool, err := addAmount(g.PrizePool, amount)
	if err != nil {
		return ContributionResult{}, err
	}

	result := ContributionResult{BoxIndex: index, Amount: amount}
	switch {
	case b.Active() && label == b.LeadingLabel:
		limit := g.Rules.MaxContributorsPerBox
		if limit > 0 && !b.Contributions.Has(contributor) && b.Contributions.Len() >= limit {
			return ContributionResult{}, ErrLedgerFull
		}
		if b.Contributions == nil {
			b.Contributions = Ledger{}
		}
		if err := b.Contributions.add(contributor, amount); err != nil {
			return ContributionResult{}, err
		}
		result.Outcome = OutcomeAccumulated

	case !b.Active() || amount > b.Amount:
		if b.Active() {
			result.DisplacedLabel = b.LeadingLabel
			b.recordLeader(now, g.Rules.MaxLeaderHistory)
		}
		b.LeadingLabel = label
		b.StartTime = now
		b.LastLeaderChangeTime = now
		b.Contributions = Ledger{contributor: amount}
		result.Outcome = OutcomeLeaderChanged

	default:
		result.Outcome = OutcomeAbsorbed
	}

	b.Amount = nextAmount
	g.PrizePool = nextPool
	g.UpdatedAt = now

	result.Box = b.clone()
	result.PrizePool = g.PrizePool
	return result, nil
}
