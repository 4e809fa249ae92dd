package game

import (
	"fmt"
	"math/bits"
	"time"
)

const (
	// DefaultBoxCount is the number of boxes in a standard game.
	DefaultBoxCount = 9
	// DefaultCooldown is the quiet period after a leadership change before a
	// box can be settled.
	DefaultCooldown = time.Hour
	// DefaultLeaderHistory bounds the per-box history of displaced leaders.
	DefaultLeaderHistory = 16
)

// Rules are fixed at initialization and travel with the game.
type Rules struct {
	BoxCount              int   `bson:"boxCount" json:"boxCount"`
	CooldownSeconds       int64 `bson:"cooldownSeconds" json:"cooldownSeconds"`
	MaxContributorsPerBox int   `bson:"maxContributorsPerBox" json:"maxContributorsPerBox"` // 0 means unlimited
	MaxLeaderHistory      int   `bson:"maxLeaderHistory" json:"maxLeaderHistory"`
}

// DefaultRules returns the rules of a standard game.
func DefaultRules() Rules {
	return Rules{
		BoxCount:         DefaultBoxCount,
		CooldownSeconds:  int64(DefaultCooldown / time.Second),
		MaxLeaderHistory: DefaultLeaderHistory,
	}
}

// Cooldown returns the settlement time lock as a duration.
func (r Rules) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// Validate checks that the rules can describe a playable game.
func (r Rules) Validate() error {
	if r.BoxCount <= 0 {
		return fmt.Errorf("%w: box count must be positive", ErrInvalidRules)
	}
	if r.CooldownSeconds < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", ErrInvalidRules)
	}
	if r.MaxContributorsPerBox < 0 || r.MaxLeaderHistory < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidRules)
	}
	return nil
}

// Game is the aggregate: a fixed set of boxes and the prize pool they share.
// Every operation on a game must be serialized by the caller.
type Game struct {
	ID          string    `bson:"_id" json:"id"`
	PoolAsset   string    `bson:"poolAsset" json:"poolAsset"`
	PayoutAsset string    `bson:"payoutAsset" json:"payoutAsset"`
	Rules       Rules     `bson:"rules" json:"rules"`
	Boxes       []Box     `bson:"boxes" json:"boxes"`
	PrizePool   uint64    `bson:"prizePool" json:"prizePool"`
	Version     int64     `bson:"version" json:"version"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SeedTotal returns seedPerBox times the box count, failing on overflow.
func SeedTotal(rules Rules, seedPerBox uint64) (uint64, error) {
	hi, total := bits.Mul64(seedPerBox, uint64(rules.BoxCount))
	if hi != 0 {
		return 0, fmt.Errorf("%w: seed total overflows", ErrInvalidAmount)
	}
	return total, nil
}

// Initialize builds a new game with every box seeded by seedPerBox. available
// is the initializer's spendable balance; the caller moves SeedTotal into the
// custodial pool once Initialize succeeds.
func Initialize(id, poolAsset, payoutAsset string, rules Rules, seedPerBox, available uint64, now time.Time) (*Game, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing game id", ErrInvalidRules)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	total, err := SeedTotal(rules, seedPerBox)
	if err != nil {
		return nil, err
	}
	if available < total {
		return nil, ErrInsufficientFunds
	}
	if payoutAsset == "" {
		payoutAsset = poolAsset
	}

	boxes := make([]Box, rules.BoxCount)
	for i := range boxes {
		boxes[i] = Box{Amount: seedPerBox, Contributions: Ledger{}}
	}
	return &Game{
		ID:          id,
		PoolAsset:   poolAsset,
		PayoutAsset: payoutAsset,
		Rules:       rules,
		Boxes:       boxes,
		PrizePool:   total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Box returns a copy of the box at index.
func (g *Game) Box(index int) (Box, error) {
	if err := g.checkIndex(index); err != nil {
		return Box{}, err
	}
	return g.Boxes[index].clone(), nil
}

// RequiresSwap reports whether payouts must be converted out of the pool asset.
func (g *Game) RequiresSwap() bool {
	return g.PayoutAsset != "" && g.PayoutAsset != g.PoolAsset
}

// Clone returns a deep copy that can be mutated without affecting g.
func (g *Game) Clone() *Game {
	out := *g
	out.Boxes = make([]Box, len(g.Boxes))
	for i := range g.Boxes {
		out.Boxes[i] = g.Boxes[i].clone()
	}
	return &out
}

// CheckInvariants verifies the conservation rules that must hold between
// operations.
func (g *Game) CheckInvariants() error {
	if len(g.Boxes) != g.Rules.BoxCount {
		return fmt.Errorf("%w: %d boxes, rules say %d", ErrInvariantViolated, len(g.Boxes), g.Rules.BoxCount)
	}
	var sum uint64
	for i := range g.Boxes {
		b := &g.Boxes[i]
		var err error
		if sum, err = addAmount(sum, b.Amount); err != nil {
			return fmt.Errorf("%w: box amounts overflow", ErrInvariantViolated)
		}
		if !b.Active() {
			if b.Contributions.Len() != 0 {
				return fmt.Errorf("%w: empty box %d has ledger entries", ErrInvariantViolated, i)
			}
			continue
		}
		if b.Contributions.Len() == 0 {
			return fmt.Errorf("%w: active box %d has an empty ledger", ErrInvariantViolated, i)
		}
		if b.Contributions.Total() > b.Amount {
			return fmt.Errorf("%w: box %d ledger exceeds its amount", ErrInvariantViolated, i)
		}
	}
	if sum != g.PrizePool {
		return fmt.Errorf("%w: prize pool %d, boxes hold %d", ErrInvariantViolated, g.PrizePool, sum)
	}
	return nil
}

func (g *Game) checkIndex(index int) error {
	if index < 0 || index >= len(g.Boxes) {
		return fmt.Errorf("%w: %d (game has %d boxes)", ErrInvalidBoxNumber, index, len(g.Boxes))
	}
	return nil
}
