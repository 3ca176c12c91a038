package services

import (
	"context"
	"errors"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CartService handles the pre-checkout staging area. Carts hold no point
// reservation; affordability is checked only at settlement time.
type CartService struct {
	cartRepo    repositories.CartRepository
	voucherRepo repositories.VoucherRepository
}

// NewCartService creates a new CartService
func NewCartService(cartRepo repositories.CartRepository, voucherRepo repositories.VoucherRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		voucherRepo: voucherRepo,
	}
}

// GetCart returns the user's cart with voucher details embedded, creating
// an empty cart on first access.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.cartRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.populateVouchers(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of a voucher to the cart. A voucher already in
// the cart has its quantity incremented rather than a second row added.
func (s *CartService) AddItem(ctx context.Context, userID, voucherID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.voucherRepo.FindByID(ctx, voucherID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	if err := s.cartRepo.AddItem(ctx, userID, voucherID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem sets a cart item's quantity. Quantity 0 removes the item;
// negative quantities are rejected before any mutation.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var err error
	if quantity == 0 {
		err = s.cartRepo.RemoveItem(ctx, userID, itemID)
	} else {
		err = s.cartRepo.SetItemQuantity(ctx, userID, itemID, quantity)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a cart item.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// ClearCart empties the cart; safe on an already-empty cart.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// populateVouchers embeds catalog details into the cart items. Items
// whose voucher has disappeared from the catalog keep a nil Voucher.
func (s *CartService) populateVouchers(ctx context.Context, cart *models.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.VoucherID)
	}
	vouchers, err := s.voucherRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		cart.Items[i].Voucher = vouchers[cart.Items[i].VoucherID]
	}
	return nil
}
