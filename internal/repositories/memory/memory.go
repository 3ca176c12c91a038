// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They honor the same atomicity contracts as the
// MongoDB implementations (conditional debit, increment-or-insert adds)
// and back the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time interface checks
var (
	_ repositories.UserRepository       = (*UserRepository)(nil)
	_ repositories.VoucherRepository    = (*VoucherRepository)(nil)
	_ repositories.CartRepository       = (*CartRepository)(nil)
	_ repositories.RedemptionRepository = (*RedemptionRepository)(nil)
)

// UserRepository is an in-memory UserRepository
type UserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrDuplicateUser
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.MemberSince.IsZero() {
		user.MemberSince = now
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *user
	return &clone, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email || user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *UserRepository) IncrementPoints(ctx context.Context, id primitive.ObjectID, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Points += points
	user.UpdatedAt = time.Now()
	return nil
}

// DebitPoints checks and decrements under the same lock, mirroring the
// conditional update of the MongoDB implementation, and returns the
// post-debit balance.
func (r *UserRepository) DebitPoints(ctx context.Context, id primitive.ObjectID, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	if user.Points < amount {
		return 0, repositories.ErrInsufficientPoints
	}
	user.Points -= amount
	user.UpdatedAt = time.Now()
	return user.Points, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// VoucherRepository is an in-memory VoucherRepository
type VoucherRepository struct {
	mu       sync.Mutex
	vouchers map[primitive.ObjectID]*models.Voucher
}

// NewVoucherRepository creates an empty in-memory voucher repository
func NewVoucherRepository() *VoucherRepository {
	return &VoucherRepository{vouchers: make(map[primitive.ObjectID]*models.Voucher)}
}

func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if voucher.ID.IsZero() {
		voucher.ID = primitive.NewObjectID()
	}
	clone := *voucher
	r.vouchers[voucher.ID] = &clone
	return nil
}

func (r *VoucherRepository) CreateMany(ctx context.Context, vouchers []*models.Voucher) error {
	for _, v := range vouchers {
		if err := r.Create(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *VoucherRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	voucher, ok := r.vouchers[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *voucher
	return &clone, nil
}

func (r *VoucherRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[primitive.ObjectID]*models.Voucher, len(ids))
	for _, id := range ids {
		if voucher, ok := r.vouchers[id]; ok {
			clone := *voucher
			result[id] = &clone
		}
	}
	return result, nil
}

func (r *VoucherRepository) FindAll(ctx context.Context) ([]*models.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vouchers := make([]*models.Voucher, 0, len(r.vouchers))
	for _, v := range r.vouchers {
		clone := *v
		vouchers = append(vouchers, &clone)
	}
	sort.Slice(vouchers, func(i, j int) bool {
		return vouchers[i].ID.Hex() < vouchers[j].ID.Hex()
	})
	return vouchers, nil
}

func (r *VoucherRepository) FindByCategory(ctx context.Context, category string) ([]*models.Voucher, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*models.Voucher, 0, len(all))
	for _, v := range all {
		if v.Category == category {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

func (r *VoucherRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.vouchers)), nil
}

// CartRepository is an in-memory CartRepository
type CartRepository struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart // keyed by user ID
}

// NewCartRepository creates an empty in-memory cart repository
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (r *CartRepository) cartLocked(userID primitive.ObjectID) *models.Cart {
	cart, ok := r.carts[userID]
	if !ok {
		cart = &models.Cart{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Items:     []models.CartItem{},
			UpdatedAt: time.Now(),
		}
		r.carts[userID] = cart
	}
	return cart
}

func cloneCart(cart *models.Cart) *models.Cart {
	clone := *cart
	clone.Items = make([]models.CartItem, len(cart.Items))
	copy(clone.Items, cart.Items)
	return &clone
}

func (r *CartRepository) FindOrCreateByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneCart(r.cartLocked(userID)), nil
}

func (r *CartRepository) AddItem(ctx context.Context, userID, voucherID primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.cartLocked(userID)
	for i := range cart.Items {
		if cart.Items[i].VoucherID == voucherID {
			cart.Items[i].Quantity += quantity
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	cart.Items = append(cart.Items, models.CartItem{
		ID:        primitive.NewObjectID(),
		VoucherID: voucherID,
		Quantity:  quantity,
	})
	cart.UpdatedAt = time.Now()
	return nil
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *CartRepository) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *CartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return nil
	}
	cart.Items = []models.CartItem{}
	cart.UpdatedAt = time.Now()
	return nil
}

// RedemptionRepository is an in-memory RedemptionRepository
type RedemptionRepository struct {
	mu          sync.Mutex
	redemptions map[primitive.ObjectID]*models.Redemption
	codes       map[string]struct{}
}

// NewRedemptionRepository creates an empty in-memory redemption repository
func NewRedemptionRepository() *RedemptionRepository {
	return &RedemptionRepository{
		redemptions: make(map[primitive.ObjectID]*models.Redemption),
		codes:       make(map[string]struct{}),
	}
}

func (r *RedemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codes[redemption.Code]; exists {
		return repositories.ErrDuplicateCode
	}
	redemption.ID = primitive.NewObjectID()
	if redemption.RedemptionDate.IsZero() {
		redemption.RedemptionDate = time.Now()
	}
	clone := *redemption
	r.redemptions[redemption.ID] = &clone
	r.codes[redemption.Code] = struct{}{}
	return nil
}

func (r *RedemptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if redemption, ok := r.redemptions[id]; ok {
		delete(r.codes, redemption.Code)
		delete(r.redemptions, id)
	}
	return nil
}

func (r *RedemptionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemption, ok := r.redemptions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *redemption
	return &clone, nil
}

func (r *RedemptionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemptions := make([]*models.Redemption, 0)
	for _, redemption := range r.redemptions {
		if redemption.UserID == userID {
			clone := *redemption
			redemptions = append(redemptions, &clone)
		}
	}
	sort.Slice(redemptions, func(i, j int) bool {
		return redemptions[i].RedemptionDate.After(redemptions[j].RedemptionDate)
	})
	return redemptions, nil
}
