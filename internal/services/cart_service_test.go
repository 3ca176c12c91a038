package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCartFixture(t *testing.T) (*CartService, *models.Voucher, primitive.ObjectID) {
	t.Helper()
	vouchers := memory.NewVoucherRepository()
	carts := memory.NewCartRepository()
	voucher := &models.Voucher{
		Name:       "Movie Night Pass",
		Points:     750,
		Category:   models.CategoryEntertainment,
		ValidUntil: time.Now().AddDate(1, 0, 0),
	}
	if err := vouchers.Create(context.Background(), voucher); err != nil {
		t.Fatalf("creating voucher: %v", err)
	}
	return NewCartService(carts, vouchers), voucher, primitive.NewObjectID()
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	svc, _, userID := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("new cart should be empty, has %d items", len(cart.Items))
	}
	if cart.UserID != userID {
		t.Errorf("cart userID = %v, want %v", cart.UserID, userID)
	}

	// Second access returns the same cart, not another one.
	again, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("GetCart again: %v", err)
	}
	if again.ID != cart.ID {
		t.Errorf("expected one cart per user, got %v then %v", cart.ID, again.ID)
	}
}

func TestAddSameVoucherMergesQuantity(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, userID, voucher.ID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(ctx, userID, voucher.ID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", cart.Items[0].Quantity)
	}
	if cart.Items[0].Voucher == nil || cart.Items[0].Voucher.Points != 750 {
		t.Error("cart item should embed the voucher details")
	}
}

func TestAddUnknownVoucher(t *testing.T) {
	svc, _, userID := newCartFixture(t)
	_, err := svc.AddItem(context.Background(), userID, primitive.NewObjectID(), 1)
	if !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound, got %v", err)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	if _, err := svc.AddItem(context.Background(), userID, voucher.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestUpdateQuantityZeroRemovesItem(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, userID, voucher.ID, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(ctx, userID, itemID, 0)
	if err != nil {
		t.Fatalf("quantity 0 must not be an error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("item should be removed, cart has %d items", len(cart.Items))
	}
}

func TestUpdateQuantity(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, userID, voucher.ID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(ctx, userID, itemID, 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Items[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", cart.Items[0].Quantity)
	}

	if _, err := svc.UpdateItem(ctx, userID, itemID, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for negative quantity, got %v", err)
	}
	if _, err := svc.UpdateItem(ctx, userID, primitive.NewObjectID(), 2); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestUpdateForeignCartItem(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, userID, voucher.ID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Another user cannot touch this item through their own cart.
	otherUser := primitive.NewObjectID()
	if _, err := svc.UpdateItem(ctx, otherUser, cart.Items[0].ID, 3); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound for foreign item, got %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, userID, voucher.ID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := cart.Items[0].ID

	cart, err = svc.RemoveItem(ctx, userID, itemID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("cart should be empty, has %d items", len(cart.Items))
	}

	if _, err := svc.RemoveItem(ctx, userID, itemID); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound on second remove, got %v", err)
	}
}

func TestClearCartIsSafeWhenEmpty(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	if _, err := svc.ClearCart(ctx, userID); err != nil {
		t.Fatalf("clearing an absent cart: %v", err)
	}

	if _, err := svc.AddItem(ctx, userID, voucher.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.ClearCart(ctx, userID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("cart should be empty after clear, has %d items", len(cart.Items))
	}
}

// Concurrent adds of the same voucher must end up as one cart with one
// merged line; no increment may be lost to a racing add.
func TestConcurrentAddsMergeIntoOneItem(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddItem(ctx, userID, voucher.ID, 1); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	cart, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 8 {
		t.Errorf("quantity = %d, want 8", cart.Items[0].Quantity)
	}
}

func TestMutationsTouchUpdatedAt(t *testing.T) {
	svc, voucher, userID := newCartFixture(t)
	ctx := context.Background()

	before, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	after, err := svc.AddItem(ctx, userID, voucher.ID, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Error("add should advance the cart's updatedAt")
	}
}
