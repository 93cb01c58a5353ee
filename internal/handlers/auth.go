package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	logger  *logger.Logger
	authSvc services.AuthenticationService
	authMw  *middleware.AuthenticationMiddleware
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(logger *logger.Logger, authSvc services.AuthenticationService, authMw *middleware.AuthenticationMiddleware) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
		authMw:  authMw,
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/login", h.Login).Methods("POST")

	protected := v1.PathPrefix("/auth").Subrouter()
	protected.Use(h.authMw.RequireJWT())
	protected.HandleFunc("/me", h.Me).Methods("GET")
}

// LoginRequest is the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Username == "" || req.Password == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	user, token, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.logger.WithField("username", req.Username).Warn("Login failed")
			h.writeErrorResponse(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	h.logger.WithUser(user.ID).WithField("username", user.Username).Info("User logged in")
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, user)
}

// Helper methods

func (h *AuthHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AuthHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]interface{}{
		"error":     message,
		"status":    statusCode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err != nil {
		h.logger.WithError(err).Error(message)
		response["details"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
