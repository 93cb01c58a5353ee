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

// SettingsHandler handles reader settings and dashboard endpoints
type SettingsHandler struct {
	logger        *logger.Logger
	settingsSvc   services.SettingsService
	monitoringSvc services.MonitoringService
	authMw        *middleware.AuthenticationMiddleware
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(logger *logger.Logger, settingsSvc services.SettingsService, monitoringSvc services.MonitoringService, authMw *middleware.AuthenticationMiddleware) *SettingsHandler {
	return &SettingsHandler{
		logger:        logger,
		settingsSvc:   settingsSvc,
		monitoringSvc: monitoringSvc,
		authMw:        authMw,
	}
}

// RegisterRoutes registers settings routes. Settings changes carry API
// credentials, so both read and write are admin-only.
func (h *SettingsHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.authMw.RequireJWT())

	v1.HandleFunc("/dashboard/stats", h.DashboardStats).Methods("GET")

	admin := v1.NewRoute().Subrouter()
	admin.Use(h.authMw.RequireAdmin())
	admin.HandleFunc("/settings", h.GetSettings).Methods("GET")
	admin.HandleFunc("/settings", h.UpdateSettings).Methods("PUT")
}

// GetSettings handles GET /api/v1/settings. Secrets are stripped by the
// model's JSON tags.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsSvc.Get(r.Context())
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input services.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	actorID := ""
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		actorID = user.ID
	}

	settings, err := h.settingsSvc.Update(r.Context(), &input, actorID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSettings) {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to update settings", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, settings)
}

// DashboardStats handles GET /api/v1/dashboard/stats
func (h *SettingsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.monitoringSvc.GetDashboardStats(r.Context())
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to load dashboard stats", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, stats)
}

// Helper methods

func (h *SettingsHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *SettingsHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
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
