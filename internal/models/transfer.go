package models

import "time"

// TransferKind classifies a journal entry
type TransferKind string

const (
	TransferKindSeed         TransferKind = "SEED"
	TransferKindContribution TransferKind = "CONTRIBUTION"
	TransferKindPayout       TransferKind = "PAYOUT"
	TransferKindSwapInput    TransferKind = "SWAP_INPUT"
	TransferKindDeposit      TransferKind = "DEPOSIT"
	TransferKindReversal     TransferKind = "REVERSAL"
)

// Transfer records value moved between two accounts.
type Transfer struct {
	ID        string       `bson:"_id" json:"id"`
	Kind      TransferKind `bson:"kind" json:"kind"`
	Asset     string       `bson:"asset" json:"asset"`
	From      string       `bson:"from" json:"from"`
	To        string       `bson:"to" json:"to"`
	Amount    uint64       `bson:"amount" json:"amount"`
	GameID    string       `bson:"gameId,omitempty" json:"gameId,omitempty"`
	BoxIndex  *int         `bson:"boxIndex,omitempty" json:"boxIndex,omitempty"`
	Reference string       `bson:"reference,omitempty" json:"reference,omitempty"` // e.g. the label or the reversed transfer
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
}
