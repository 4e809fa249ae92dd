package game

import "time"

// LeaderRecord is a label that was displaced from the lead, with the pooled
// amount the box held at that moment.
type LeaderRecord struct {
	Label       string    `bson:"label" json:"label"`
	Amount      uint64    `bson:"amount" json:"amount"`
	DisplacedAt time.Time `bson:"displacedAt" json:"displacedAt"`
}

// Box is one auction slot.
type Box struct {
	LeadingLabel         string         `bson:"leadingLabel" json:"leadingLabel"`
	Amount               uint64         `bson:"amount" json:"amount"`
	StartTime            time.Time      `bson:"startTime,omitempty" json:"startTime,omitempty"`
	LastLeaderChangeTime time.Time      `bson:"lastLeaderChangeTime,omitempty" json:"lastLeaderChangeTime,omitempty"`
	Contributions        Ledger         `bson:"contributions" json:"contributions"`
	PreviousLeaders      []LeaderRecord `bson:"previousLeaders,omitempty" json:"previousLeaders,omitempty"`
}

// Active reports whether a round is in progress.
func (b *Box) Active() bool {
	return b.LeadingLabel != ""
}

// Unattributed is the part of the pool no ledger entry accounts for: the
// initial seed, stakes of displaced backers and absorbed challenger stakes.
func (b *Box) Unattributed() uint64 {
	total := b.Contributions.Total()
	if total >= b.Amount {
		return 0
	}
	return b.Amount - total
}

// UnlocksAt is the earliest time a claim is allowed.
func (b *Box) UnlocksAt(cooldown time.Duration) time.Time {
	return b.LastLeaderChangeTime.Add(cooldown)
}

func (b *Box) clone() Box {
	out := *b
	out.Contributions = b.Contributions.Clone()
	if b.PreviousLeaders != nil {
		out.PreviousLeaders = append([]LeaderRecord(nil), b.PreviousLeaders...)
	}
	return out
}

func (b *Box) recordLeader(at time.Time, limit int) {
	if limit <= 0 {
		return
	}
	b.PreviousLeaders = append(b.PreviousLeaders, LeaderRecord{
		Label:       b.LeadingLabel,
		Amount:      b.Amount,
		DisplacedAt: at,
	})
	if over := len(b.PreviousLeaders) - limit; over > 0 {
		b.PreviousLeaders = append([]LeaderRecord(nil), b.PreviousLeaders[over:]...)
	}
}

// reset returns the box to its empty state. History is kept.
func (b *Box) reset() {
	b.LeadingLabel = ""
	b.Amount = 0
	b.StartTime = time.Time{}
	b.LastLeaderChangeTime = time.Time{}
	b.Contributions = Ledger{}
}
