package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"github.com/rewardsy/rewards-backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type settlementFixture struct {
	users       *memory.UserRepository
	vouchers    *memory.VoucherRepository
	carts       *memory.CartRepository
	redemptions *memory.RedemptionRepository
	cartService *CartService
	checkout    *CheckoutService
}

func newSettlementFixture() *settlementFixture {
	users := memory.NewUserRepository()
	vouchers := memory.NewVoucherRepository()
	carts := memory.NewCartRepository()
	redemptions := memory.NewRedemptionRepository()
	return &settlementFixture{
		users:       users,
		vouchers:    vouchers,
		carts:       carts,
		redemptions: redemptions,
		cartService: NewCartService(carts, vouchers),
		checkout:    NewCheckoutService(users, carts, vouchers, redemptions, nil),
	}
}

func (f *settlementFixture) addUser(t *testing.T, points int) *models.User {
	t.Helper()
	user := &models.User{Username: "alice", Email: "alice@example.com", Points: points}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return user
}

func (f *settlementFixture) addVoucher(t *testing.T, points int) *models.Voucher {
	t.Helper()
	voucher := &models.Voucher{
		Name:       "Coffee Shop Voucher",
		Points:     points,
		Category:   models.CategoryFoodDining,
		ValidUntil: time.Now().AddDate(1, 0, 0),
	}
	if err := f.vouchers.Create(context.Background(), voucher); err != nil {
		t.Fatalf("creating voucher: %v", err)
	}
	return voucher
}

func TestCheckoutSettlesCartExactly(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 500)
	voucher := f.addVoucher(t, 500)

	if _, err := f.cartService.AddItem(ctx, user.ID, voucher.ID, 1); err != nil {
		t.Fatalf("adding to cart: %v", err)
	}

	result, err := f.checkout.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.Redemptions) != 1 {
		t.Fatalf("expected 1 redemption, got %d", len(result.Redemptions))
	}
	if result.PointsSpent != 500 {
		t.Errorf("pointsSpent = %d, want 500", result.PointsSpent)
	}
	if result.RemainingPoints != 0 {
		t.Errorf("remainingPoints = %d, want 0", result.RemainingPoints)
	}
	if got := result.Redemptions[0].Status; got != models.StatusCompleted {
		t.Errorf("status = %q, want %q", got, models.StatusCompleted)
	}
	if got := len(result.Redemptions[0].Code); got != 8 {
		t.Errorf("code length = %d, want 8", got)
	}

	fresh, err := f.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if fresh.Points != 0 {
		t.Errorf("balance = %d, want 0", fresh.Points)
	}

	cart, err := f.cartService.GetCart(ctx, user.ID)
	if err != nil {
		t.Fatalf("reloading cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("cart should be empty after checkout, has %d items", len(cart.Items))
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 500)

	_, err := f.checkout.Checkout(ctx, user.ID)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	redemptions, _ := f.redemptions.FindByUserID(ctx, user.ID)
	if len(redemptions) != 0 {
		t.Errorf("no redemption should exist, found %d", len(redemptions))
	}
}

func TestDirectRedeemInsufficientPoints(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 400)
	voucher := f.addVoucher(t, 500)

	_, err := f.checkout.RedeemDirect(ctx, user.ID, voucher.ID, 1)
	ipe, ok := IsInsufficientPoints(err)
	if !ok {
		t.Fatalf("expected InsufficientPointsError, got %v", err)
	}
	if ipe.Required != 500 || ipe.Available != 400 {
		t.Errorf("got required=%d available=%d, want 500/400", ipe.Required, ipe.Available)
	}

	fresh, _ := f.users.FindByID(ctx, user.ID)
	if fresh.Points != 400 {
		t.Errorf("balance changed on failed redeem: %d", fresh.Points)
	}
	redemptions, _ := f.redemptions.FindByUserID(ctx, user.ID)
	if len(redemptions) != 0 {
		t.Errorf("no redemption should exist, found %d", len(redemptions))
	}
}

func TestDirectRedeemQuantityAndUnknownVoucher(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 1000)
	voucher := f.addVoucher(t, 250)

	result, err := f.checkout.RedeemDirect(ctx, user.ID, voucher.ID, 3)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.PointsSpent != 750 {
		t.Errorf("pointsSpent = %d, want 750", result.PointsSpent)
	}
	if result.Redemption.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", result.Redemption.Quantity)
	}
	if result.RemainingPoints != 250 {
		t.Errorf("remainingPoints = %d, want 250", result.RemainingPoints)
	}

	if _, err := f.checkout.RedeemDirect(ctx, user.ID, primitive.NewObjectID(), 1); !errors.Is(err, ErrVoucherNotFound) {
		t.Errorf("expected ErrVoucherNotFound, got %v", err)
	}
	if _, err := f.checkout.RedeemDirect(ctx, user.ID, voucher.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

// Two concurrent redemptions each costing the full balance: exactly one
// may win and the final balance is 0, never negative.
func TestConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 500)
	voucher := f.addVoucher(t, 500)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.checkout.RedeemDirect(ctx, user.ID, voucher.ID, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if _, ok := IsInsufficientPoints(err); !ok {
			t.Errorf("loser should fail with InsufficientPointsError, got %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("exactly one redemption should succeed, got %d", successes)
	}

	fresh, _ := f.users.FindByID(ctx, user.ID)
	if fresh.Points != 0 {
		t.Errorf("final balance = %d, want 0", fresh.Points)
	}
	redemptions, _ := f.redemptions.FindByUserID(ctx, user.ID)
	if len(redemptions) != 1 {
		t.Errorf("exactly one redemption record should exist, found %d", len(redemptions))
	}
}

func TestPointsSpentSnapshotSurvivesPriceChange(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 1000)
	voucher := f.addVoucher(t, 300)

	result, err := f.checkout.RedeemDirect(ctx, user.ID, voucher.ID, 2)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.Redemption.PointsSpent != 600 {
		t.Fatalf("pointsSpent = %d, want 600", result.Redemption.PointsSpent)
	}

	// Reprice the voucher after the fact.
	voucher.Points = 9000
	if err := f.vouchers.Create(ctx, voucher); err != nil {
		t.Fatalf("repricing voucher: %v", err)
	}

	stored, err := f.redemptions.FindByID(ctx, result.Redemption.ID)
	if err != nil {
		t.Fatalf("reloading redemption: %v", err)
	}
	if stored.PointsSpent != 600 {
		t.Errorf("stored pointsSpent = %d after reprice, want 600", stored.PointsSpent)
	}
}

// staleBalanceUserRepo inflates the balance on reads while the embedded
// repository keeps the real one, standing in for a concurrent balance
// change between the affordability read and the debit.
type staleBalanceUserRepo struct {
	*memory.UserRepository
	drift int
}

func (r *staleBalanceUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := r.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Points += r.drift
	return user, nil
}

func TestRemainingPointsReflectSettledBalance(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 500)
	voucher := f.addVoucher(t, 300)

	checkout := NewCheckoutService(&staleBalanceUserRepo{UserRepository: f.users, drift: 300},
		f.carts, f.vouchers, f.redemptions, nil)

	result, err := checkout.RedeemDirect(ctx, user.ID, voucher.ID, 1)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.RemainingPoints != 200 {
		t.Errorf("remainingPoints = %d, want the post-debit balance 200", result.RemainingPoints)
	}
}

// failingRedemptionRepo fails every Create to exercise the unwind path.
type failingRedemptionRepo struct {
	repositories.RedemptionRepository
}

func (r *failingRedemptionRepo) Create(ctx context.Context, redemption *models.Redemption) error {
	return errors.New("write failed")
}

func TestFailedRedemptionWriteRefundsDebit(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 500)
	voucher := f.addVoucher(t, 500)

	checkout := NewCheckoutService(f.users, f.carts, f.vouchers,
		&failingRedemptionRepo{f.redemptions}, nil)

	if _, err := checkout.RedeemDirect(ctx, user.ID, voucher.ID, 1); err == nil {
		t.Fatal("expected redeem to fail")
	}

	fresh, _ := f.users.FindByID(ctx, user.ID)
	if fresh.Points != 500 {
		t.Errorf("debit was not refunded: balance = %d, want 500", fresh.Points)
	}
	redemptions, _ := f.redemptions.FindByUserID(ctx, user.ID)
	if len(redemptions) != 0 {
		t.Errorf("no redemption should exist, found %d", len(redemptions))
	}
}

// collidingRedemptionRepo reports a code collision a fixed number of
// times before accepting the insert.
type collidingRedemptionRepo struct {
	repositories.RedemptionRepository
	collisions int
}

func (r *collidingRedemptionRepo) Create(ctx context.Context, redemption *models.Redemption) error {
	if r.collisions > 0 {
		r.collisions--
		return repositories.ErrDuplicateCode
	}
	return r.RedemptionRepository.Create(ctx, redemption)
}

func TestCodeCollisionIsRetriedNotSurfaced(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 500)
	voucher := f.addVoucher(t, 100)

	checkout := NewCheckoutService(f.users, f.carts, f.vouchers,
		&collidingRedemptionRepo{RedemptionRepository: f.redemptions, collisions: 2}, nil)

	result, err := checkout.RedeemDirect(ctx, user.ID, voucher.ID, 1)
	if err != nil {
		t.Fatalf("redeem should retry through collisions: %v", err)
	}
	if result.Redemption.Code == "" {
		t.Error("redemption should carry a code")
	}
}

func TestCheckoutMultipleLines(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()
	user := f.addUser(t, 1000)
	coffee := f.addVoucher(t, 250)
	movie := f.addVoucher(t, 500)

	if _, err := f.cartService.AddItem(ctx, user.ID, coffee.ID, 2); err != nil {
		t.Fatalf("adding coffee: %v", err)
	}
	if _, err := f.cartService.AddItem(ctx, user.ID, movie.ID, 1); err != nil {
		t.Fatalf("adding movie: %v", err)
	}

	result, err := f.checkout.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(result.Redemptions) != 2 {
		t.Fatalf("expected 2 redemptions, got %d", len(result.Redemptions))
	}
	if result.PointsSpent != 1000 {
		t.Errorf("pointsSpent = %d, want 1000", result.PointsSpent)
	}
	if result.RemainingPoints != 0 {
		t.Errorf("remainingPoints = %d, want 0", result.RemainingPoints)
	}

	// Codes must be unique across the settlement.
	codes := map[string]bool{}
	for _, r := range result.Redemptions {
		if codes[r.Code] {
			t.Errorf("duplicate code %q", r.Code)
		}
		codes[r.Code] = true
	}
}
