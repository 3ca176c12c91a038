package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckoutHandler exposes the settlement engine over HTTP
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles POST /checkout: settle everything in the cart.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RedeemDirect handles POST /redeem/direct: settle a single voucher
// immediately, bypassing the cart.
func (h *CheckoutHandler) RedeemDirect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		VoucherID string `json:"voucherId" binding:"required"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: "Voucher ID is required",
			Details: err.Error(),
		})
		return
	}

	voucherID, err := primitive.ObjectIDFromHex(req.VoucherID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: "Invalid voucher ID format",
		})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	result, err := h.checkoutService.RedeemDirect(c.Request.Context(), userID, voucherID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
