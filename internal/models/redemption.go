package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Redemption statuses. A status never changes once the record is written.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Redemption is one settled claim on a voucher. Records are append-only:
// PointsSpent snapshots the price paid and Code is unique across all
// redemptions.
type Redemption struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID `bson:"user" json:"userId"`
	VoucherID      primitive.ObjectID `bson:"voucher" json:"voucherId"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	PointsSpent    int                `bson:"pointsSpent" json:"pointsSpent"`
	Code           string             `bson:"code" json:"code"`
	RedemptionDate time.Time          `bson:"redemptionDate" json:"redemptionDate"`
	Status         string             `bson:"status" json:"status"`
	Voucher        *Voucher           `bson:"-" json:"voucher,omitempty"`
}
