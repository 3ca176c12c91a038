package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VoucherService handles voucher catalog business logic. The settlement
// core only reads from it.
type VoucherService struct {
	voucherRepo repositories.VoucherRepository
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(voucherRepo repositories.VoucherRepository) *VoucherService {
	return &VoucherService{voucherRepo: voucherRepo}
}

// GetVoucherByID retrieves a voucher by ID
func (s *VoucherService) GetVoucherByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVoucherNotFound
		}
		return nil, err
	}
	return voucher, nil
}

// GetVouchers retrieves the catalog, optionally filtered by category
func (s *VoucherService) GetVouchers(ctx context.Context, category string) ([]*models.Voucher, error) {
	if category != "" {
		return s.voucherRepo.FindByCategory(ctx, category)
	}
	return s.voucherRepo.FindAll(ctx)
}

// CreateVoucher adds a voucher to the catalog
func (s *VoucherService) CreateVoucher(ctx context.Context, voucher *models.Voucher) error {
	if voucher.Points <= 0 {
		return fmt.Errorf("%w: price must be positive, got %d", ErrInvalidVoucher, voucher.Points)
	}
	if !models.ValidCategory(voucher.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidVoucher, voucher.Category)
	}
	return s.voucherRepo.Create(ctx, voucher)
}

// SeedVouchers inserts the given vouchers when the catalog is empty and
// returns the number inserted. A non-empty catalog is left untouched.
func (s *VoucherService) SeedVouchers(ctx context.Context, vouchers []*models.Voucher) (int, error) {
	count, err := s.voucherRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	if err := s.voucherRepo.CreateMany(ctx, vouchers); err != nil {
		return 0, err
	}
	return len(vouchers), nil
}
