package models

import "time"

// SettlementStatus tracks whether the payout reached the claimant.
type SettlementStatus string

const (
	SettlementStatusCompleted SettlementStatus = "COMPLETED"
	// SettlementStatusPending means the venue may or may not have executed the
	// swap. The share sits in the venue settlement account until reconciled.
	SettlementStatusPending SettlementStatus = "PENDING"
	// SettlementStatusFailed means the swap was rejected after the claim was
	// stored and the claim could not be rolled back. The share sits in the
	// venue settlement account and is owed to the claimant.
	SettlementStatusFailed SettlementStatus = "FAILED"
)

// Settlement records one claimant's payout from a box.
type Settlement struct {
	ID                string           `bson:"_id" json:"id"`
	GameID            string           `bson:"gameId" json:"gameId"`
	BoxIndex          int              `bson:"boxIndex" json:"boxIndex"`
	Label             string           `bson:"label" json:"label"`
	Claimant          string           `bson:"claimant" json:"claimant"`
	ContributorAmount uint64           `bson:"contributorAmount" json:"contributorAmount"`
	Share             uint64           `bson:"share" json:"share"`
	PoolAsset         string           `bson:"poolAsset" json:"poolAsset"`
	PayoutAsset       string           `bson:"payoutAsset" json:"payoutAsset"`
	PayoutAmount      uint64           `bson:"payoutAmount" json:"payoutAmount"`
	Swapped           bool             `bson:"swapped" json:"swapped"`
	BoxDrained        bool             `bson:"boxDrained" json:"boxDrained"`
	Status            SettlementStatus `bson:"status" json:"status"`
	SwapReference     string           `bson:"swapReference,omitempty" json:"swapReference,omitempty"` // idempotency key sent to the venue
	SettledAt         time.Time        `bson:"settledAt" json:"settledAt"`
}
