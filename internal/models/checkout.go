package models

// CheckoutResult is the settlement receipt returned by cart checkout.
type CheckoutResult struct {
	Redemptions     []*Redemption `json:"redemptions"`
	PointsSpent     int           `json:"pointsSpent"`
	RemainingPoints int           `json:"remainingPoints"`
}

// RedeemResult is the settlement receipt for a direct single-voucher
// redemption.
type RedeemResult struct {
	Redemption      *Redemption `json:"redemption"`
	PointsSpent     int         `json:"pointsSpent"`
	RemainingPoints int         `json:"remainingPoints"`
}
