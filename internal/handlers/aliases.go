package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// AliasHandler handles field alias administration endpoints
type AliasHandler struct {
	logger    *logger.Logger
	registry  services.AliasRegistryService
	promptSvc services.PromptBuilderService
	authMw    *middleware.AuthenticationMiddleware
}

// NewAliasHandler creates a new alias administration handler
func NewAliasHandler(logger *logger.Logger, registry services.AliasRegistryService, promptSvc services.PromptBuilderService, authMw *middleware.AuthenticationMiddleware) *AliasHandler {
	return &AliasHandler{
		logger:    logger,
		registry:  registry,
		promptSvc: promptSvc,
		authMw:    authMw,
	}
}

// RegisterRoutes registers alias routes. Rebuilding defaults wipes operator
// additions, so it is admin-only.
func (h *AliasHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.authMw.RequireJWT())

	v1.HandleFunc("/aliases/{policyType}", h.ListAliases).Methods("GET")
	v1.HandleFunc("/aliases/{policyType}", h.AddAlias).Methods("POST")
	v1.HandleFunc("/aliases/{policyType}/bulk", h.BulkAddAliases).Methods("POST")
	v1.HandleFunc("/fields/{policyType}", h.ListFields).Methods("GET")
	v1.HandleFunc("/prompt/{policyType}", h.PreviewPrompt).Methods("GET")

	admin := v1.NewRoute().Subrouter()
	admin.Use(h.authMw.RequireAdmin())
	admin.HandleFunc("/aliases/{policyType}/rebuild", h.RebuildDefaults).Methods("POST")
}

// ListAliases handles GET /api/v1/aliases/{policyType}
func (h *AliasHandler) ListAliases(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	aliases, err := h.registry.ListAliases(r.Context(), policyType)
	if err != nil {
		h.writeAliasError(w, err, "Failed to list aliases")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"aliases": aliases,
		"count":   len(aliases),
	})
}

// AddAliasRequest is the add-alias request body
type AddAliasRequest struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}

// AddAlias handles POST /api/v1/aliases/{policyType}
func (h *AliasHandler) AddAlias(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	var req AddAliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Alias == "" || req.Canonical == "" {
		h.writeError(w, http.StatusBadRequest, "Alias and canonical field are required")
		return
	}

	if err := h.registry.AddAlias(r.Context(), policyType, req.Alias, req.Canonical); err != nil {
		h.writeAliasError(w, err, "Failed to add alias")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{
		"alias":     req.Alias,
		"canonical": req.Canonical,
	})
}

// BulkAddAliases handles POST /api/v1/aliases/{policyType}/bulk. The body is
// a JSON object in either alias->canonical or canonical->[aliases] shape.
func (h *AliasHandler) BulkAddAliases(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	added, err := h.registry.BulkAddAliases(r.Context(), policyType, payload)
	if err != nil {
		h.writeAliasError(w, err, "Failed to add aliases")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"added": added,
	})
}

// RebuildDefaults handles POST /api/v1/aliases/{policyType}/rebuild
func (h *AliasHandler) RebuildDefaults(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	mapping, err := h.registry.RebuildDefaults(r.Context(), policyType)
	if err != nil {
		h.writeAliasError(w, err, "Failed to rebuild default aliases")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "rebuilt",
		"aliases": len(mapping),
	})
}

// ListFields handles GET /api/v1/fields/{policyType}
func (h *AliasHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	fields, err := h.registry.CanonicalFields(r.Context(), policyType)
	if err != nil {
		h.writeAliasError(w, err, "Failed to list fields")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": fields,
		"count":  len(fields),
	})
}

// PreviewPrompt handles GET /api/v1/prompt/{policyType}. The returned prompt
// is the one extraction would send, without any document text attached.
func (h *AliasHandler) PreviewPrompt(w http.ResponseWriter, r *http.Request) {
	policyType := mux.Vars(r)["policyType"]

	prompt := h.promptSvc.BuildExtractionPrompt(r.Context(), policyType, "")
	h.writeJSON(w, http.StatusOK, map[string]string{
		"policy_type": policyType,
		"prompt":      prompt,
	})
}

// Helper methods

func (h *AliasHandler) writeAliasError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedPolicyType):
		h.writeError(w, http.StatusBadRequest, "Policy type must be Motor or Health")
	case errors.Is(err, services.ErrUnknownCanonicalField):
		h.writeError(w, http.StatusBadRequest, "Unknown canonical field")
	case errors.Is(err, services.ErrMalformedAliasPayload):
		h.writeError(w, http.StatusBadRequest, "Malformed alias payload")
	default:
		h.logger.WithError(err).Error(fallback)
		h.writeError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *AliasHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AliasHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
