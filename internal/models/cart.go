package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one (voucher, quantity) line in a cart. Voucher is filled
// in at read time from the catalog and never stored with the cart.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	VoucherID primitive.ObjectID `bson:"voucher" json:"voucherId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Voucher   *Voucher           `bson:"-" json:"voucher,omitempty"`
}

// Cart holds a user's pending voucher selection. One cart per user; a
// voucher appears in at most one item.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
