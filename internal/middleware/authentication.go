package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"
)

// AuthenticationMiddleware provides authentication middleware
type AuthenticationMiddleware struct {
	logger  *logger.Logger
	authSvc services.AuthenticationService
}

// NewAuthenticationMiddleware creates a new authentication middleware
func NewAuthenticationMiddleware(
	logger *logger.Logger,
	authSvc services.AuthenticationService,
) *AuthenticationMiddleware {
	return &AuthenticationMiddleware{
		logger:  logger,
		authSvc: authSvc,
	}
}

// RequireJWT middleware that requires JWT authentication
func (m *AuthenticationMiddleware) RequireJWT() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Extract JWT token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Check for Bearer token
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				http.Error(w, "Bearer token required", http.StatusUnauthorized)
				return
			}

			token := authHeader[len(bearerPrefix):]
			user, err := m.authSvc.ValidateJWT(ctx, token)
			if err != nil {
				m.logger.WithError(err).Warn("JWT validation failed")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			// Add user to context
			ctx = context.WithValue(ctx, UserContextKey, user)
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole middleware that requires a specific role
func (m *AuthenticationMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if user.Role != role {
				m.logger.WithUser(user.ID).
					WithField("required_role", role).
					Warn("Role access denied")
				http.Error(w, "Insufficient privileges", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware that requires the admin role
func (m *AuthenticationMiddleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.RequireRole(models.RoleAdmin)
}

// GetUserFromContext extracts the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
