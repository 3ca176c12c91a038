package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Voucher categories. Every voucher belongs to exactly one.
const (
	CategoryFoodDining    = "Food & Dining"
	CategoryShopping      = "Shopping"
	CategoryTravel        = "Travel"
	CategoryEntertainment = "Entertainment"
	CategoryOther         = "Other"
)

// VoucherCategories lists all valid voucher categories
var VoucherCategories = []string{
	CategoryFoodDining,
	CategoryShopping,
	CategoryTravel,
	CategoryEntertainment,
	CategoryOther,
}

// ValidCategory reports whether category is one of the known categories
func ValidCategory(category string) bool {
	for _, c := range VoucherCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Voucher is a catalog item priced in points. Points is the current list
// price; settled redemptions carry their own price snapshot and are not
// affected by later edits here.
type Voucher struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name               string             `bson:"name" json:"name"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	Points             int                `bson:"points" json:"points"`
	Category           string             `bson:"category" json:"category"`
	ImageURL           string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ValidUntil         time.Time          `bson:"validUntil,omitempty" json:"validUntil,omitempty"`
	TermsAndConditions string             `bson:"termsAndConditions,omitempty" json:"termsAndConditions,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
