package services

import (
	"context"
	"errors"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RedemptionService reads the append-only redemption ledger. Every read
// is scoped to the requesting user; a redemption owned by someone else is
// reported as not found rather than leaking its existence.
type RedemptionService struct {
	redemptionRepo repositories.RedemptionRepository
	voucherRepo    repositories.VoucherRepository
}

// NewRedemptionService creates a new RedemptionService
func NewRedemptionService(redemptionRepo repositories.RedemptionRepository, voucherRepo repositories.VoucherRepository) *RedemptionService {
	return &RedemptionService{
		redemptionRepo: redemptionRepo,
		voucherRepo:    voucherRepo,
	}
}

// ListByUser returns the user's redemptions newest-first with voucher
// details embedded.
func (s *RedemptionService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Redemption, error) {
	redemptions, err := s.redemptionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.populateVouchers(ctx, redemptions); err != nil {
		return nil, err
	}
	return redemptions, nil
}

// GetByID returns a single redemption owned by the requesting user.
func (s *RedemptionService) GetByID(ctx context.Context, userID, redemptionID primitive.ObjectID) (*models.Redemption, error) {
	redemption, err := s.redemptionRepo.FindByID(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	if redemption.UserID != userID {
		return nil, ErrRedemptionNotFound
	}
	if err := s.populateVouchers(ctx, []*models.Redemption{redemption}); err != nil {
		return nil, err
	}
	return redemption, nil
}

func (s *RedemptionService) populateVouchers(ctx context.Context, redemptions []*models.Redemption) error {
	if len(redemptions) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(redemptions))
	for _, r := range redemptions {
		ids = append(ids, r.VoucherID)
	}
	vouchers, err := s.voucherRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range redemptions {
		r.Voucher = vouchers[r.VoucherID]
	}
	return nil
}
