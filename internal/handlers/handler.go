package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rewardsy/rewards-backend/internal/middleware"
	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stable error kinds returned in ErrorResponse.Error.
const (
	kindInvalidInput       = "INVALID_INPUT"
	kindInvalidQuantity    = "INVALID_QUANTITY"
	kindNotFound           = "NOT_FOUND"
	kindEmptyCart          = "EMPTY_CART"
	kindInsufficientPoints = "INSUFFICIENT_POINTS"
	kindUserExists         = "USER_EXISTS"
	kindUnauthorized       = "UNAUTHORIZED"
	kindInternal           = "INTERNAL_ERROR"
)

// currentUserID extracts the authenticated user's ObjectID set by the
// JWT middleware. A missing or malformed ID means the request never went
// through auth and is rejected.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   kindUnauthorized,
			Message: "Authentication required",
		})
		return primitive.NilObjectID, false
	}
	hex, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   kindUnauthorized,
			Message: "Authentication required",
		})
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   kindUnauthorized,
			Message: "Invalid user identity in token",
		})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondError translates service-layer errors into the stable HTTP
// error contract. Unknown errors are logged and reported generically so
// no partial state or internals leak to the caller.
func respondError(c *gin.Context, err error) {
	if ipe, ok := services.IsInsufficientPoints(err); ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInsufficientPoints,
			Message: "Not enough points",
			Details: gin.H{"required": ipe.Required, "available": ipe.Available},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindEmptyCart,
			Message: "Cart is empty",
		})
	case errors.Is(err, services.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidQuantity,
			Message: "Invalid quantity",
		})
	case errors.Is(err, services.ErrInvalidVoucher):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrVoucherNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   kindNotFound,
			Message: "Voucher not found",
		})
	case errors.Is(err, services.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   kindNotFound,
			Message: "Item not found in cart",
		})
	case errors.Is(err, services.ErrRedemptionNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   kindNotFound,
			Message: "Redemption not found",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   kindNotFound,
			Message: "User not found",
		})
	case errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   kindUserExists,
			Message: "User with this email or username already exists",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   kindUnauthorized,
			Message: "Invalid email or password",
		})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   kindInternal,
			Message: "Internal server error",
		})
	}
}
