package services

import (
	"errors"
	"fmt"
)

// Service-level errors. These are the recoverable, user-actionable
// failures; anything else bubbling out of a service is treated as an
// internal error by the handlers.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrCartItemNotFound   = errors.New("item not found in cart")
	ErrRedemptionNotFound = errors.New("redemption not found")
	ErrInvalidQuantity    = errors.New("quantity must be at least 0")
	ErrInvalidVoucher     = errors.New("invalid voucher")
	ErrEmptyCart          = errors.New("cart is empty")
)

// InsufficientPointsError reports a failed affordability check with the
// amounts the caller needs to act on.
type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("not enough points: required %d, available %d", e.Required, e.Available)
}

// IsInsufficientPoints reports whether err is an InsufficientPointsError
// and returns it when it is.
func IsInsufficientPoints(err error) (*InsufficientPointsError, bool) {
	var ipe *InsufficientPointsError
	if errors.As(err, &ipe) {
		return ipe, true
	}
	return nil, false
}
