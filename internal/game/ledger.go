package game

import "sort"

// Contribution is one backer's accumulated stake behind a box's leading label.
type Contribution struct {
	Contributor string `bson:"contributor" json:"contributor"`
	Amount      uint64 `bson:"amount" json:"amount"`
}

// Ledger maps a contributor identity to the stake it has attributed to the
// current leading label of its box. Entries never hold a zero amount.
type Ledger map[string]uint64

// Get returns the contributor's attributed stake, or 0.
func (l Ledger) Get(contributor string) uint64 {
	return l[contributor]
}

// Has reports whether the contributor has an entry.
func (l Ledger) Has(contributor string) bool {
	_, ok := l[contributor]
	return ok
}

// Len returns the number of contributors.
func (l Ledger) Len() int {
	return len(l)
}

// Total sums all entries. Entries are bounded by the box amount, so the sum
// cannot exceed 64 bits for a consistent box.
func (l Ledger) Total() uint64 {
	var total uint64
	for _, amount := range l {
		total += amount
	}
	return total
}

// Entries returns the ledger as contributions sorted by contributor.
func (l Ledger) Entries() []Contribution {
	entries := make([]Contribution, 0, len(l))
	for contributor, amount := range l {
		entries = append(entries, Contribution{Contributor: contributor, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Contributor < entries[j].Contributor
	})
	return entries
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	for contributor, amount := range l {
		out[contributor] = amount
	}
	return out
}

func (l Ledger) add(contributor string, amount uint64) error {
	next, err := addAmount(l[contributor], amount)
	if err != nil {
		return err
	}
	l[contributor] = next
	return nil
}

func (l Ledger) remove(contributor string) {
	delete(l, contributor)
}
