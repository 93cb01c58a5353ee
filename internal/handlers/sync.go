package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// SyncHandler handles SAIBA sync endpoints
type SyncHandler struct {
	logger    *logger.Logger
	syncSvc   services.SaibaSyncService
	policySvc services.PolicyService
	jobs      services.JobQueue
	authMw    *middleware.AuthenticationMiddleware

	syncCounter *prometheus.CounterVec
}

// NewSyncHandler creates a new SAIBA sync handler
func NewSyncHandler(logger *logger.Logger, syncSvc services.SaibaSyncService, policySvc services.PolicyService, jobs services.JobQueue, authMw *middleware.AuthenticationMiddleware) *SyncHandler {
	// Create a new registry for tests to avoid conflicts
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &SyncHandler{
		logger:    logger,
		syncSvc:   syncSvc,
		policySvc: policySvc,
		jobs:      jobs,
		authMw:    authMw,
		syncCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "saiba_sync_requests_total",
			Help: "Total number of SAIBA sync requests",
		}, []string{"policy_type", "status"}),
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.authMw.RequireJWT())

	v1.HandleFunc("/sync/test", h.TestConnection).Methods("POST")
	v1.HandleFunc("/sync/retry-failed", h.RetryFailed).Methods("POST")
	v1.HandleFunc("/sync/{policyType}/{id}", h.SyncPolicy).Methods("POST")
}

// SyncPolicy handles POST /api/v1/sync/{policyType}/{id}
func (h *SyncHandler) SyncPolicy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	policyType := vars["policyType"]
	policyID := vars["id"]

	result, err := h.syncSvc.SyncPolicy(r.Context(), policyType, policyID)
	if err != nil {
		h.syncCounter.WithLabelValues(policyType, "error").Inc()
		switch {
		case errors.Is(err, services.ErrUnsupportedPolicyType):
			h.writeErrorResponse(w, http.StatusBadRequest, "Policy type must be Motor or Health", nil)
		case errors.Is(err, services.ErrSaibaDisabled):
			h.writeErrorResponse(w, http.StatusConflict, "SAIBA sync is disabled in settings", nil)
		case errors.Is(err, services.ErrSaibaNotConfigured):
			h.writeErrorResponse(w, http.StatusConflict, "SAIBA credentials are not configured", nil)
		default:
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to sync policy", err)
		}
		return
	}

	h.syncCounter.WithLabelValues(policyType, result.Status).Inc()
	if !result.Success {
		// The outcome is recorded on the policy row either way
		h.writeJSONResponse(w, http.StatusBadGateway, result)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, result)
}

// TestConnection handles POST /api/v1/sync/test
func (h *SyncHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.syncSvc.TestConnection(r.Context()); err != nil {
		switch {
		case errors.Is(err, services.ErrSaibaDisabled):
			h.writeErrorResponse(w, http.StatusConflict, "SAIBA sync is disabled in settings", nil)
		case errors.Is(err, services.ErrSaibaNotConfigured):
			h.writeErrorResponse(w, http.StatusConflict, "SAIBA credentials are not configured", nil)
		default:
			h.writeErrorResponse(w, http.StatusBadGateway, "SAIBA connection test failed", err)
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "connected"})
}

// RetryFailed handles POST /api/v1/sync/retry-failed. Failed policies are
// re-queued as background sync jobs rather than synced inline.
func (h *SyncHandler) RetryFailed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requested := r.URL.Query().Get("policy_type")

	types := []string{models.PolicyTypeMotor, models.PolicyTypeHealth}
	if requested != "" {
		canonicalType, ok := models.CanonicalPolicyType(requested)
		if !ok {
			h.writeErrorResponse(w, http.StatusBadRequest, "Policy type must be Motor or Health", nil)
			return
		}
		types = []string{canonicalType}
	}

	queued := map[string]int{}
	for _, policyType := range types {
		ids, err := h.failedPolicyIDs(ctx, policyType)
		if err != nil {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list failed policies", err)
			return
		}

		for _, id := range ids {
			job := &services.BackgroundJob{
				Type: services.JobTypeSaibaSync,
				Data: map[string]interface{}{
					"policy_type": policyType,
					"policy_id":   id,
				},
			}
			if err := h.jobs.EnqueueJob(ctx, job); err != nil {
				h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to enqueue sync job", err)
				return
			}
			queued[policyType]++
		}
	}

	total := 0
	for _, n := range queued {
		total += n
	}
	h.logger.WithField("queued", total).Info("Failed policies queued for sync retry")
	h.writeJSONResponse(w, http.StatusAccepted, map[string]interface{}{
		"status": "queued",
		"queued": queued,
		"total":  total,
	})
}

// failedPolicyIDs collects IDs of policies whose last sync failed, one batch
// of up to 100 per call
func (h *SyncHandler) failedPolicyIDs(ctx context.Context, policyType string) ([]string, error) {
	if policyType == models.PolicyTypeMotor {
		policies, err := h.policySvc.ListMotorPolicies(ctx, models.SyncStatusFailed, 100, 0)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(policies))
		for _, p := range policies {
			ids = append(ids, p.ID)
		}
		return ids, nil
	}

	policies, err := h.policySvc.ListHealthPolicies(ctx, models.SyncStatusFailed, 100, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(policies))
	for _, p := range policies {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// Helper methods

func (h *SyncHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *SyncHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
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
