package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// PolicyHandler handles policy record endpoints
type PolicyHandler struct {
	logger    *logger.Logger
	policySvc services.PolicyService
	authMw    *middleware.AuthenticationMiddleware

	creationCounter *prometheus.CounterVec
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(logger *logger.Logger, policySvc services.PolicyService, authMw *middleware.AuthenticationMiddleware) *PolicyHandler {
	// Create a new registry for tests to avoid conflicts
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PolicyHandler{
		logger:    logger,
		policySvc: policySvc,
		authMw:    authMw,
		creationCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_creations_total",
			Help: "Total number of policy creation attempts",
		}, []string{"policy_type", "status"}),
	}
}

// RegisterRoutes registers policy routes
func (h *PolicyHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.authMw.RequireJWT())

	v1.HandleFunc("/documents/{id}/policy", h.CreatePolicy).Methods("POST")

	v1.HandleFunc("/policies/motor", h.ListMotorPolicies).Methods("GET")
	v1.HandleFunc("/policies/motor/{id}", h.GetMotorPolicy).Methods("GET")
	v1.HandleFunc("/policies/motor/{id}", h.UpdateMotorPolicy).Methods("PATCH")

	v1.HandleFunc("/policies/health", h.ListHealthPolicies).Methods("GET")
	v1.HandleFunc("/policies/health/{id}", h.GetHealthPolicy).Methods("GET")
	v1.HandleFunc("/policies/health/{id}", h.UpdateHealthPolicy).Methods("PATCH")
}

// CreatePolicy handles POST /api/v1/documents/{id}/policy
func (h *PolicyHandler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]

	actorID, actorUsername := "", ""
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		actorID = user.ID
		actorUsername = user.Username
	}

	result, err := h.policySvc.CreateFromDocument(r.Context(), documentID, actorID, actorUsername)
	if err != nil {
		h.creationCounter.WithLabelValues("unknown", "error").Inc()
		switch {
		case errors.Is(err, services.ErrNoExtractedFields):
			h.writeErrorResponse(w, http.StatusConflict, "Document has no extracted fields", nil)
		case errors.Is(err, services.ErrPolicyTypeNotSet):
			h.writeErrorResponse(w, http.StatusBadRequest, "Policy type is not set on the document", nil)
		case errors.Is(err, services.ErrUnsupportedPolicyType):
			h.writeErrorResponse(w, http.StatusBadRequest, "Policy type must be Motor or Health", nil)
		case errors.Is(err, services.ErrPolicyExists):
			h.writeErrorResponse(w, http.StatusConflict, "A policy already exists for this document", nil)
		case errors.Is(err, services.ErrEmptyMapping):
			h.writeErrorResponse(w, http.StatusUnprocessableEntity, "No extracted fields could be mapped", nil)
		case errors.Is(err, models.ErrPolicyDateOrder), errors.Is(err, models.ErrRenewableNeedsControlNo):
			h.writeErrorResponse(w, http.StatusUnprocessableEntity, "Policy failed validation", err)
		default:
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to create policy", err)
		}
		return
	}

	h.creationCounter.WithLabelValues(result.PolicyType, "ok").Inc()
	h.writeJSONResponse(w, http.StatusCreated, result)
}

// ListMotorPolicies handles GET /api/v1/policies/motor
func (h *PolicyHandler) ListMotorPolicies(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.parsePaginationParams(r)
	syncStatus := r.URL.Query().Get("sync_status")

	policies, err := h.policySvc.ListMotorPolicies(r.Context(), syncStatus, limit, offset)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list motor policies", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
		"limit":    limit,
		"offset":   offset,
	})
}

// GetMotorPolicy handles GET /api/v1/policies/motor/{id}
func (h *PolicyHandler) GetMotorPolicy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	policy, err := h.policySvc.GetMotorPolicy(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Motor policy not found", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, policy)
}

// UpdateMotorPolicy handles PATCH /api/v1/policies/motor/{id}
func (h *PolicyHandler) UpdateMotorPolicy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := h.policySvc.UpdateMotorPolicy(r.Context(), id, fields, h.actorID(r))
	if err != nil {
		h.writePolicyUpdateError(w, err, "Failed to update motor policy")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, policy)
}

// ListHealthPolicies handles GET /api/v1/policies/health
func (h *PolicyHandler) ListHealthPolicies(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.parsePaginationParams(r)
	syncStatus := r.URL.Query().Get("sync_status")

	policies, err := h.policySvc.ListHealthPolicies(r.Context(), syncStatus, limit, offset)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list health policies", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
		"limit":    limit,
		"offset":   offset,
	})
}

// GetHealthPolicy handles GET /api/v1/policies/health/{id}
func (h *PolicyHandler) GetHealthPolicy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	policy, err := h.policySvc.GetHealthPolicy(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Health policy not found", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, policy)
}

// UpdateHealthPolicy handles PATCH /api/v1/policies/health/{id}
func (h *PolicyHandler) UpdateHealthPolicy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := h.policySvc.UpdateHealthPolicy(r.Context(), id, fields, h.actorID(r))
	if err != nil {
		h.writePolicyUpdateError(w, err, "Failed to update health policy")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, policy)
}

// Helper methods

func (h *PolicyHandler) writePolicyUpdateError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrUnknownField):
		h.writeErrorResponse(w, http.StatusBadRequest, "Unknown policy field", err)
	case errors.Is(err, models.ErrFieldTypeValue):
		h.writeErrorResponse(w, http.StatusBadRequest, "Field value does not match its type", err)
	case errors.Is(err, models.ErrPolicyDateOrder), errors.Is(err, models.ErrRenewableNeedsControlNo):
		h.writeErrorResponse(w, http.StatusUnprocessableEntity, "Policy failed validation", err)
	default:
		h.writeErrorResponse(w, http.StatusInternalServerError, fallback, err)
	}
}

func (h *PolicyHandler) actorID(r *http.Request) string {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

func (h *PolicyHandler) parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = 50 // default limit
	offset = 0 // default offset

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	return limit, offset
}

func (h *PolicyHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *PolicyHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
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
