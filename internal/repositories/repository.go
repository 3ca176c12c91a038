package repositories

import (
	"context"
	"errors"

	"github.com/rewardsy/rewards-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage-level sentinel errors. Services translate these into their own
// user-facing taxonomy.
var (
	// ErrInsufficientPoints is returned by DebitPoints when the conditional
	// decrement did not match because the balance was below the amount.
	ErrInsufficientPoints = errors.New("insufficient points for debit")

	// ErrDuplicateCode is returned when a redemption insert violates the
	// unique index on the code field. Callers regenerate and retry.
	ErrDuplicateCode = errors.New("redemption code already exists")

	// ErrDuplicateUser is returned when a user insert violates the unique
	// index on email or username.
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository defines the interface for user data operations.
// IncrementPoints and DebitPoints are the only ways a balance changes;
// both are single atomic updates at the storage layer.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateUser when the email
	// or username is already taken.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	// IncrementPoints atomically adds points to the user's balance.
	IncrementPoints(ctx context.Context, id primitive.ObjectID, points int) error
	// DebitPoints atomically subtracts amount from the user's balance,
	// but only when the current balance is at least amount, and returns
	// the post-debit balance. Returns ErrInsufficientPoints when the
	// balance is too low (balance left unchanged) and
	// mongo.ErrNoDocuments when the user does not exist.
	DebitPoints(ctx context.Context, id primitive.ObjectID, amount int) (int, error)
	Count(ctx context.Context) (int64, error)
}

// VoucherRepository defines the interface for voucher catalog operations.
type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	CreateMany(ctx context.Context, vouchers []*models.Voucher) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Voucher, error)
	FindAll(ctx context.Context) ([]*models.Voucher, error)
	FindByCategory(ctx context.Context, category string) ([]*models.Voucher, error)
	Count(ctx context.Context) (int64, error)
}

// CartRepository defines the interface for cart data operations.
// Mutations are individually atomic so concurrent adds never lose an
// increment; every mutation touches the cart's updatedAt.
type CartRepository interface {
	// FindOrCreateByUser returns the user's cart, creating an empty one
	// on first access.
	FindOrCreateByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// AddItem increments the quantity of an existing (user, voucher) item
	// or inserts a new item, as a storage-level atomic operation.
	AddItem(ctx context.Context, userID, voucherID primitive.ObjectID, quantity int) error
	// SetItemQuantity sets the quantity of an item in the user's cart.
	// Returns mongo.ErrNoDocuments when the item is not in the cart.
	SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error
	// RemoveItem deletes an item from the user's cart. Returns
	// mongo.ErrNoDocuments when the item is not in the cart.
	RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error
	// Clear removes all items; safe to call on an already-empty cart.
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// RedemptionRepository defines the interface for the append-only
// redemption ledger.
type RedemptionRepository interface {
	// Create appends a redemption. Returns ErrDuplicateCode when the
	// generated code collides with an existing record.
	Create(ctx context.Context, redemption *models.Redemption) error
	// Delete removes a redemption by ID. Only used to compensate a
	// partially persisted settlement; redemptions are otherwise immutable.
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Redemption, error)
	// FindByUserID returns the user's redemptions newest-first.
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Redemption, error)
}
