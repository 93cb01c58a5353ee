package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// ValidationHandler handles readiness report and validation rule endpoints
type ValidationHandler struct {
	logger        *logger.Logger
	validationSvc services.SaibaValidationService
	validator     *models.ValidationService
	authMw        *middleware.AuthenticationMiddleware
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(logger *logger.Logger, validationSvc services.SaibaValidationService, validator *models.ValidationService, authMw *middleware.AuthenticationMiddleware) *ValidationHandler {
	return &ValidationHandler{
		logger:        logger,
		validationSvc: validationSvc,
		validator:     validator,
		authMw:        authMw,
	}
}

// RegisterRoutes registers validation routes. Rule administration is
// restricted to admins.
func (h *ValidationHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.authMw.RequireJWT())

	v1.HandleFunc("/validation/{policyType}/{id}", h.ValidatePolicy).Methods("GET")
	v1.HandleFunc("/validation-rules/{policyType}", h.ListRules).Methods("GET")

	admin := v1.NewRoute().Subrouter()
	admin.Use(h.authMw.RequireAdmin())
	admin.HandleFunc("/validation-rules", h.CreateRule).Methods("POST")
	admin.HandleFunc("/validation-rules/{id}", h.UpdateRule).Methods("PUT")
	admin.HandleFunc("/validation-rules/{id}", h.DeleteRule).Methods("DELETE")
	admin.HandleFunc("/validation-rules/{policyType}/reset", h.ResetRules).Methods("POST")
}

// ValidatePolicy handles GET /api/v1/validation/{policyType}/{id}
func (h *ValidationHandler) ValidatePolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	report, err := h.validationSvc.ValidatePolicy(r.Context(), vars["policyType"], vars["id"])
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedPolicyType) {
			h.writeError(w, http.StatusBadRequest, "Policy type must be Motor or Health")
			return
		}
		h.logger.WithError(err).Error("Failed to build validation report")
		h.writeError(w, http.StatusNotFound, "Policy not found")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// ListRules handles GET /api/v1/validation-rules/{policyType}
func (h *ValidationHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	rules, err := h.validationSvc.ListRules(r.Context(), policyType)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedPolicyType) {
			h.writeError(w, http.StatusBadRequest, "Policy type must be Motor or Health")
			return
		}
		h.logger.WithError(err).Error("Failed to list validation rules")
		h.writeError(w, http.StatusInternalServerError, "Failed to list validation rules")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// CreateRule handles POST /api/v1/validation-rules
func (h *ValidationHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.ValidationRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.ValidateStruct(&rule); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validationSvc.CreateRule(r.Context(), &rule); err != nil {
		if errors.Is(err, services.ErrDuplicateRule) {
			h.writeError(w, http.StatusConflict, "A rule for this field pair already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to create validation rule")
		h.writeError(w, http.StatusInternalServerError, "Failed to create validation rule")
		return
	}

	h.writeJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/v1/validation-rules/{id}
func (h *ValidationHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var rule models.ValidationRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rule.ID = id

	if err := h.validator.ValidateStruct(&rule); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validationSvc.UpdateRule(r.Context(), &rule); err != nil {
		if errors.Is(err, services.ErrDuplicateRule) {
			h.writeError(w, http.StatusConflict, "A rule for this field pair already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to update validation rule")
		h.writeError(w, http.StatusInternalServerError, "Failed to update validation rule")
		return
	}

	h.writeJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/v1/validation-rules/{id}
func (h *ValidationHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.validationSvc.DeleteRule(r.Context(), id); err != nil {
		h.logger.WithError(err).Error("Failed to delete validation rule")
		h.writeError(w, http.StatusNotFound, "Validation rule not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ResetRules handles POST /api/v1/validation-rules/{policyType}/reset
func (h *ValidationHandler) ResetRules(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	created, err := h.validationSvc.ResetDefaultRules(r.Context(), policyType)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedPolicyType) {
			h.writeError(w, http.StatusBadRequest, "Policy type must be Motor or Health")
			return
		}
		h.logger.WithError(err).Error("Failed to reset validation rules")
		h.writeError(w, http.StatusInternalServerError, "Failed to reset validation rules")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reset",
		"created": created,
	})
}

// Helper methods

func (h *ValidationHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ValidationHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
