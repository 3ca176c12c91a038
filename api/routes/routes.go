package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rewardsy/rewards-backend/internal/config"
	"github.com/rewardsy/rewards-backend/internal/handlers"
	"github.com/rewardsy/rewards-backend/internal/middleware"
	"github.com/rewardsy/rewards-backend/pkg/jwt"
)

// HandlerDependencies bundles the handlers wired in cmd/api/main.go
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	VoucherHandler    *handlers.VoucherHandler
	CartHandler       *handlers.CartHandler
	CheckoutHandler   *handlers.CheckoutHandler
	RedemptionHandler *handlers.RedemptionHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, tokenService *jwt.TokenService, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/signup", deps.AuthHandler.Signup)
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// The catalog is browsable without a session.
		vouchers := public.Group("/vouchers")
		{
			vouchers.GET("", deps.VoucherHandler.GetVouchers)
			vouchers.GET("/:id", deps.VoucherHandler.GetVoucherByID)
		}
	}

	// Protected routes: authentication is checked before any core logic.
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokenService))
	{
		protected.GET("/users/me", deps.AuthHandler.GetMe)

		protected.POST("/vouchers", deps.VoucherHandler.CreateVoucher)
		protected.POST("/vouchers/seed", deps.VoucherHandler.SeedVouchers)

		cart := protected.Group("/cart")
		{
			cart.GET("", deps.CartHandler.GetCart)
			cart.POST("", deps.CartHandler.AddItem)
			cart.PUT("", deps.CartHandler.UpdateItem)
			cart.DELETE("", deps.CartHandler.ClearCart)
			cart.DELETE("/items/:itemId", deps.CartHandler.RemoveItem)
		}

		protected.POST("/checkout", deps.CheckoutHandler.Checkout)
		protected.POST("/redeem/direct", deps.CheckoutHandler.RedeemDirect)

		redemptions := protected.Group("/redemptions")
		{
			redemptions.GET("", deps.RedemptionHandler.ListRedemptions)
			redemptions.GET("/:id", deps.RedemptionHandler.GetRedemption)
			redemptions.GET("/:id/pdf", deps.RedemptionHandler.DownloadRedemptionPDF)
		}
	}

	return router
}
