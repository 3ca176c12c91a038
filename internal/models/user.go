package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WelcomeBonusPoints is the point balance granted to every new account.
const WelcomeBonusPoints = 500

// User represents a marketplace member and owns the point balance.
// Points never go negative; the balance is only changed through the
// repository's atomic increment/debit operations.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username    string             `bson:"username" json:"username"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password    string             `bson:"password" json:"-"`
	Points      int                `bson:"points" json:"points"`
	MemberSince time.Time          `bson:"memberSince" json:"memberSince"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
