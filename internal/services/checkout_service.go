package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"github.com/rewardsy/rewards-backend/internal/utils"
	"github.com/rewardsy/rewards-backend/pkg/mailer"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// maxCodeAttempts bounds how many fresh codes are tried when a generated
// redemption code collides with an existing record.
const maxCodeAttempts = 5

// CheckoutService is the settlement engine. It converts a selection of
// (voucher, quantity) pairs into permanent redemption records plus a
// balance debit, atomically: a redemption is never persisted without a
// successful debit, and a failed settlement leaves no state behind.
type CheckoutService struct {
	userRepo       repositories.UserRepository
	cartRepo       repositories.CartRepository
	voucherRepo    repositories.VoucherRepository
	redemptionRepo repositories.RedemptionRepository
	mailer         mailer.Mailer
}

// NewCheckoutService creates a new CheckoutService. mailer may be nil, in
// which case no confirmation emails are sent.
func NewCheckoutService(
	userRepo repositories.UserRepository,
	cartRepo repositories.CartRepository,
	voucherRepo repositories.VoucherRepository,
	redemptionRepo repositories.RedemptionRepository,
	m mailer.Mailer,
) *CheckoutService {
	return &CheckoutService{
		userRepo:       userRepo,
		cartRepo:       cartRepo,
		voucherRepo:    voucherRepo,
		redemptionRepo: redemptionRepo,
		mailer:         m,
	}
}

// settlementLine is one (voucher, quantity) pair to settle. The voucher
// carries the price snapshot taken when the line was resolved.
type settlementLine struct {
	voucher  *models.Voucher
	quantity int
}

// Checkout settles the whole cart: debits the total, creates one
// redemption per cart line and empties the cart. Fails with ErrEmptyCart
// when there is nothing to settle.
func (s *CheckoutService) Checkout(ctx context.Context, userID primitive.ObjectID) (*models.CheckoutResult, error) {
	cart, err := s.cartRepo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]settlementLine, 0, len(cart.Items))
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.VoucherID)
	}
	vouchers, err := s.voucherRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range cart.Items {
		voucher, ok := vouchers[item.VoucherID]
		if !ok {
			return nil, ErrVoucherNotFound
		}
		lines = append(lines, settlementLine{voucher: voucher, quantity: item.Quantity})
	}

	redemptions, total, remaining, err := s.settle(ctx, userID, lines, true)
	if err != nil {
		return nil, err
	}
	return &models.CheckoutResult{
		Redemptions:     redemptions,
		PointsSpent:     total,
		RemainingPoints: remaining,
	}, nil
}

// RedeemDirect settles a single voucher immediately, bypassing the cart.
func (s *CheckoutService) RedeemDirect(ctx context.Context, userID, voucherID primitive.ObjectID, quantity int) (*models.RedeemResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	voucher, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}

	lines := []settlementLine{{voucher: voucher, quantity: quantity}}
	redemptions, total, remaining, err := s.settle(ctx, userID, lines, false)
	if err != nil {
		return nil, err
	}
	return &models.RedeemResult{
		Redemption:      redemptions[0],
		PointsSpent:     total,
		RemainingPoints: remaining,
	}, nil
}

// settle runs the shared settlement procedure: price the lines, debit the
// balance with the storage layer's conditional update, then persist the
// redemption records and (for the cart path) empty the cart. The debit
// comes first so a lost race against a concurrent settlement can never
// leave a redemption without a matching debit; any later failure unwinds
// the records already written and credits the debit back.
func (s *CheckoutService) settle(ctx context.Context, userID primitive.ObjectID, lines []settlementLine, fromCart bool) ([]*models.Redemption, int, int, error) {
	totalPoints := 0
	for _, line := range lines {
		totalPoints += line.voucher.Points * line.quantity
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, 0, ErrUserNotFound
		}
		return nil, 0, 0, err
	}
	if user.Points < totalPoints {
		return nil, 0, 0, &InsufficientPointsError{Required: totalPoints, Available: user.Points}
	}

	// The conditional debit re-validates affordability at the storage
	// layer, closing the window between the read above and this write.
	// The balance it returns is the settled one, so the receipt never
	// reports a remainder another writer has already changed.
	balance, err := s.userRepo.DebitPoints(ctx, userID, totalPoints)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInsufficientPoints):
			// Lost the race against a concurrent settlement.
			available := user.Points
			if fresh, ferr := s.userRepo.FindByID(ctx, userID); ferr == nil {
				available = fresh.Points
			}
			return nil, 0, 0, &InsufficientPointsError{Required: totalPoints, Available: available}
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, 0, 0, ErrUserNotFound
		default:
			return nil, 0, 0, err
		}
	}

	redemptions := make([]*models.Redemption, 0, len(lines))
	for _, line := range lines {
		redemption, err := s.createRedemption(ctx, userID, line)
		if err != nil {
			s.unwind(ctx, userID, totalPoints, redemptions)
			return nil, 0, 0, fmt.Errorf("persisting redemption: %w", err)
		}
		redemptions = append(redemptions, redemption)
	}

	if fromCart {
		if err := s.cartRepo.Clear(ctx, userID); err != nil {
			s.unwind(ctx, userID, totalPoints, redemptions)
			return nil, 0, 0, fmt.Errorf("clearing cart: %w", err)
		}
	}

	s.sendConfirmation(ctx, user, redemptions, totalPoints)

	return redemptions, totalPoints, balance, nil
}

// createRedemption persists one settlement line, regenerating the code on
// a unique-index collision. Collisions are a storage concern and never
// surface to the caller as a user error.
func (s *CheckoutService) createRedemption(ctx context.Context, userID primitive.ObjectID, line settlementLine) (*models.Redemption, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		redemption := &models.Redemption{
			UserID:      userID,
			VoucherID:   line.voucher.ID,
			Quantity:    line.quantity,
			PointsSpent: line.voucher.Points * line.quantity,
			Code:        utils.GenerateRedemptionCode(),
			Status:      models.StatusCompleted,
			Voucher:     line.voucher,
		}
		err := s.redemptionRepo.Create(ctx, redemption)
		if err == nil {
			return redemption, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateCode) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not generate a unique redemption code after %d attempts", maxCodeAttempts)
}

// unwind reverses a partially persisted settlement: it deletes the
// redemption records written so far and credits the debited points back.
// Failures here are logged; the caller still reports the settlement as
// failed.
func (s *CheckoutService) unwind(ctx context.Context, userID primitive.ObjectID, totalPoints int, redemptions []*models.Redemption) {
	for _, redemption := range redemptions {
		if err := s.redemptionRepo.Delete(ctx, redemption.ID); err != nil {
			log.Printf("[ERROR] settlement unwind: deleting redemption %s: %v", redemption.ID.Hex(), err)
		}
	}
	if err := s.userRepo.IncrementPoints(ctx, userID, totalPoints); err != nil {
		log.Printf("[ERROR] settlement unwind: refunding %d points to user %s: %v", totalPoints, userID.Hex(), err)
	}
}

// sendConfirmation emails the settlement receipt. Best effort: a mail
// failure never fails the settlement.
func (s *CheckoutService) sendConfirmation(ctx context.Context, user *models.User, redemptions []*models.Redemption, totalPoints int) {
	if s.mailer == nil || user.Email == "" {
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Hi %s,</p><p>Your redemption of %d point(s) is confirmed.</p><ul>", user.Username, totalPoints)
	for _, r := range redemptions {
		name := "voucher"
		if r.Voucher != nil {
			name = r.Voucher.Name
		}
		fmt.Fprintf(&body, "<li>%s x%d, code <strong>%s</strong></li>", name, r.Quantity, r.Code)
	}
	body.WriteString("</ul>")

	if _, err := s.mailer.Send(ctx, user.Email, "Your redemption confirmation", body.String()); err != nil {
		log.Printf("[WARN] sending redemption confirmation to %s: %v", user.Email, err)
	}
}
