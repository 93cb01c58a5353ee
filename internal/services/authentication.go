package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnauthorized       = errors.New("unauthorized access")
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// authenticationService implements AuthenticationService
type authenticationService struct {
	logger    *logger.Logger
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthenticationService creates a new authentication service
func NewAuthenticationService(log *logger.Logger, userRepo repositories.UserRepository, cfg *config.Config) AuthenticationService {
	ttlHours := cfg.Auth.TokenTTLHours
	if ttlHours <= 0 {
		ttlHours = 24
	}

	return &authenticationService{
		logger:    log,
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		tokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

// Login verifies a username and password and issues a JWT
func (s *authenticationService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.WithField("username", username).Warn("Login attempt for unknown user")
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WithUser(user.ID).Warn("Login attempt with invalid password")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.WithUser(user.ID).WithField("username", user.Username).Info("User logged in")
	return user, token, nil
}

// GenerateJWT generates a JWT token for a user
func (s *authenticationService) GenerateJWT(ctx context.Context, user *models.User) (string, error) {
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "salasar-policy-reader",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.WithUser(user.ID).WithError(err).Error("Failed to sign JWT token")
		return "", err
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user
func (s *authenticationService) ValidateJWT(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	// Parse token
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to parse JWT token")
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	// Get user from database to ensure they still exist and are active
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		s.logger.WithField("user_id", claims.UserID).
			WithError(err).Warn("User not found for JWT token")
		return nil, ErrUserNotFound
	}

	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// HashPassword hashes a password using bcrypt
func (s *authenticationService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
