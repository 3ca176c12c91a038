package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rewardsy/rewards-backend/api/routes"
	"github.com/rewardsy/rewards-backend/internal/config"
	"github.com/rewardsy/rewards-backend/internal/handlers"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	mongorepo "github.com/rewardsy/rewards-backend/internal/repositories/mongodb"
	"github.com/rewardsy/rewards-backend/internal/services"
	"github.com/rewardsy/rewards-backend/pkg/jwt"
	"github.com/rewardsy/rewards-backend/pkg/mailer"
	"github.com/rewardsy/rewards-backend/pkg/mongodb"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to MongoDB
	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	// Session tokens
	tokenService, err := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// Mail gateway (mock by default)
	var mail mailer.Mailer
	if cfg.Mail.MockMailer || cfg.Mail.APIKey == "" {
		mail = mailer.NewMockMailer()
	} else {
		mail = mailer.NewResendMailer(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.From)
	}

	// Initialize repositories, assigning to interface types
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var voucherRepo repositories.VoucherRepository = mongorepo.NewVoucherRepository(db)
	var cartRepo repositories.CartRepository = mongorepo.NewCartRepository(db)
	var redemptionRepo repositories.RedemptionRepository = mongorepo.NewRedemptionRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenService, cfg.Rewards.WelcomeBonus)
	voucherService := services.NewVoucherService(voucherRepo)
	cartService := services.NewCartService(cartRepo, voucherRepo)
	checkoutService := services.NewCheckoutService(userRepo, cartRepo, voucherRepo, redemptionRepo, mail)
	redemptionService := services.NewRedemptionService(redemptionRepo, voucherRepo)

	// Initialize handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService),
		VoucherHandler:    handlers.NewVoucherHandler(voucherService),
		CartHandler:       handlers.NewCartHandler(cartService),
		CheckoutHandler:   handlers.NewCheckoutHandler(checkoutService),
		RedemptionHandler: handlers.NewRedemptionHandler(redemptionService, authService),
	}

	router := routes.SetupRouter(cfg, tokenService, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	// Run server in a goroutine so that it doesn't block
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
