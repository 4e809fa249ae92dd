package models

import "time"

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// User is an account holder. Its ID is the identity used in box ledgers.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Password    string    `bson:"password" json:"-"` // bcrypt hash
	Role        string    `bson:"role" json:"role"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
