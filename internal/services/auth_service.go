package services

import (
	"context"
	"errors"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"github.com/rewardsy/rewards-backend/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login. Sessions are stateless JWTs
// carrying the user's ObjectID; the rest of the system only ever consumes
// that ID as an opaque identity.
type AuthService struct {
	userRepo     repositories.UserRepository
	tokenService *jwt.TokenService
	welcomeBonus int
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, tokenService *jwt.TokenService, welcomeBonus int) *AuthService {
	if welcomeBonus <= 0 {
		welcomeBonus = models.WelcomeBonusPoints
	}
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		welcomeBonus: welcomeBonus,
	}
}

// Register creates a new account with a hashed password and the welcome
// bonus balance. Fails with ErrUserExists on a duplicate email or
// username.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	_, err := s.userRepo.FindByEmailOrUsername(ctx, req.Email, req.Username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    string(hashed),
		Points:      s.welcomeBonus,
		MemberSince: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique indexes catch a signup that raced past the read above.
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

// GetUser returns the account for an authenticated user ID.
func (s *AuthService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
