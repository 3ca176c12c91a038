package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoucherHandler handles voucher catalog HTTP requests
type VoucherHandler struct {
	voucherService *services.VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService *services.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

// GetVouchers handles GET /vouchers
func (h *VoucherHandler) GetVouchers(c *gin.Context) {
	category := c.Query("category")
	vouchers, err := h.voucherService.GetVouchers(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vouchers)
}

// GetVoucherByID handles GET /vouchers/:id
func (h *VoucherHandler) GetVoucherByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: "Invalid voucher ID format",
		})
		return
	}

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

// CreateVoucher handles POST /vouchers
func (h *VoucherHandler) CreateVoucher(c *gin.Context) {
	var voucher models.Voucher
	if err := c.ShouldBindJSON(&voucher); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: "Invalid voucher payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.voucherService.CreateVoucher(c.Request.Context(), &voucher); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voucher)
}

// SeedVouchers handles POST /vouchers/seed. It populates an empty
// catalog with a starter set and is a no-op otherwise.
func (h *VoucherHandler) SeedVouchers(c *gin.Context) {
	inserted, err := h.voucherService.SeedVouchers(c.Request.Context(), starterVouchers())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

func starterVouchers() []*models.Voucher {
	validUntil := time.Now().AddDate(1, 0, 0)
	return []*models.Voucher{
		{
			Name:        "Coffee Shop Voucher",
			Description: "Enjoy a free coffee and pastry at any participating cafe",
			Points:      250,
			Category:    models.CategoryFoodDining,
			ValidUntil:  validUntil,
		},
		{
			Name:        "Online Store Discount",
			Description: "500 off your next purchase at partner online stores",
			Points:      500,
			Category:    models.CategoryShopping,
			ValidUntil:  validUntil,
		},
		{
			Name:        "Movie Night Pass",
			Description: "Two tickets for any standard screening",
			Points:      750,
			Category:    models.CategoryEntertainment,
			ValidUntil:  validUntil,
		},
		{
			Name:        "Weekend Getaway Discount",
			Description: "10% off a two-night stay at partner hotels",
			Points:      1500,
			Category:    models.CategoryTravel,
			ValidUntil:  validUntil,
		},
		{
			Name:               "Charity Donation",
			Description:        "Convert your points into a donation",
			Points:             100,
			Category:           models.CategoryOther,
			ValidUntil:         validUntil,
			TermsAndConditions: "The full point value is donated. No cash alternative.",
		},
	}
}
