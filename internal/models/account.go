package models

import "time"

// Account holds one owner's balance of one asset.
type Account struct {
	Owner     string    `bson:"owner" json:"owner"`
	Asset     string    `bson:"asset" json:"asset"`
	Balance   uint64    `bson:"balance" json:"balance"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExternalOwner is the counterparty of deposits minted into the system.
const ExternalOwner = "external"

// VaultOwner returns the owner id of a game's custodial pool.
func VaultOwner(gameID string) string {
	return "vault:" + gameID
}
