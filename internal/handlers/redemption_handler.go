package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/services"
	"github.com/rewardsy/rewards-backend/pkg/pdfgen"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedemptionHandler handles redemption history HTTP requests
type RedemptionHandler struct {
	redemptionService *services.RedemptionService
	authService       *services.AuthService
}

// NewRedemptionHandler creates a new RedemptionHandler
func NewRedemptionHandler(redemptionService *services.RedemptionService, authService *services.AuthService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
		authService:       authService,
	}
}

// ListRedemptions handles GET /redemptions
func (h *RedemptionHandler) ListRedemptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptions, err := h.redemptionService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemptions)
}

// GetRedemption handles GET /redemptions/:id
func (h *RedemptionHandler) GetRedemption(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: "Invalid redemption ID format",
		})
		return
	}

	redemption, err := h.redemptionService.GetByID(c.Request.Context(), userID, redemptionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemption)
}

// DownloadRedemptionPDF handles GET /redemptions/:id/pdf. Ownership is
// checked by the service before anything is rendered.
func (h *RedemptionHandler) DownloadRedemptionPDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   kindInvalidInput,
			Message: "Invalid redemption ID format",
		})
		return
	}

	redemption, err := h.redemptionService.GetByID(c.Request.Context(), userID, redemptionID)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := pdfgen.RedemptionPDF(redemption, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=redemption-%s.pdf", redemption.Code))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
