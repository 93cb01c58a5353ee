package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	monitoringService services.MonitoringService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(monitoringService services.MonitoringService) *HealthHandler {
	return &HealthHandler{
		monitoringService: monitoringService,
	}
}

// HandleHealthCheck handles the main health check endpoint
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.monitoringService.GetSystemHealth(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status, ok := health["overall_status"].(string); ok && status != services.HealthStatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// HandleLivenessProbe handles Kubernetes liveness probe
func (h *HealthHandler) HandleLivenessProbe(w http.ResponseWriter, r *http.Request) {
	// Simple liveness check - just return 200 if the service is running
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleReadinessProbe handles Kubernetes readiness probe
func (h *HealthHandler) HandleReadinessProbe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check critical components only
	criticalComponents := []string{"database", "redis"}
	for _, component := range criticalComponents {
		check := h.monitoringService.PerformHealthCheck(ctx, component)
		if check.Status == services.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Service Unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// HandleComponentHealth handles health check for a specific component
func (h *HealthHandler) HandleComponentHealth(w http.ResponseWriter, r *http.Request) {
	component := r.URL.Query().Get("component")
	if component == "" {
		http.Error(w, "Component parameter is required", http.StatusBadRequest)
		return
	}

	check := h.monitoringService.PerformHealthCheck(r.Context(), component)

	w.Header().Set("Content-Type", "application/json")
	if check.Status == services.HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(check)
}
