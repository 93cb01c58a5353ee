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
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// DocumentHandler handles policy document endpoints
type DocumentHandler struct {
	logger      *logger.Logger
	documentSvc services.DocumentProcessingService
	authMw      *middleware.AuthenticationMiddleware

	uploadCounter     *prometheus.CounterVec
	extractionCounter *prometheus.CounterVec
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(logger *logger.Logger, documentSvc services.DocumentProcessingService, authMw *middleware.AuthenticationMiddleware) *DocumentHandler {
	// Create a new registry for tests to avoid conflicts
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &DocumentHandler{
		logger:      logger,
		documentSvc: documentSvc,
		authMw:      authMw,
		uploadCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_document_uploads_total",
			Help: "Total number of policy document uploads",
		}, []string{"status"}),
		extractionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "policy_document_extraction_requests_total",
			Help: "Total number of extraction queue and retry requests",
		}, []string{"operation", "status"}),
	}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.authMw.RequireJWT())

	v1.HandleFunc("/documents", h.UploadDocument).Methods("POST")
	v1.HandleFunc("/documents", h.ListDocuments).Methods("GET")
	v1.HandleFunc("/documents/{id}", h.GetDocument).Methods("GET")
	v1.HandleFunc("/documents/{id}", h.UpdateDocument).Methods("PATCH")
	v1.HandleFunc("/documents/{id}", h.DeleteDocument).Methods("DELETE")
	v1.HandleFunc("/documents/{id}/queue", h.QueueExtraction).Methods("POST")
	v1.HandleFunc("/documents/{id}/retry", h.RetryExtraction).Methods("POST")
	v1.HandleFunc("/documents/{id}/status", h.GetStatus).Methods("GET")
}

// UploadDocument handles POST /api/v1/documents as a multipart upload
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "A PDF file is required", err)
		return
	}
	defer file.Close()

	upload := &services.DocumentUpload{
		Title:                  r.FormValue("title"),
		PolicyType:             r.FormValue("policy_type"),
		FileName:               header.Filename,
		File:                   file,
		Size:                   header.Size,
		CustomerName:           r.FormValue("customer_name"),
		CustomerGroupName:      r.FormValue("customer_group_name"),
		InsuranceCompanyBranch: r.FormValue("insurance_company_branch"),
		InsurerName:            r.FormValue("insurer_name"),
		InsurerCity:            r.FormValue("insurer_city"),
		InsurerBranch:          r.FormValue("insurer_branch"),
	}
	if v := r.FormValue("customer_code"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			upload.CustomerCode = code
		}
	}
	if v := r.FormValue("insurer_branch_code"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			upload.InsurerBranchCode = code
		}
	}

	doc, err := h.documentSvc.UploadDocument(r.Context(), upload)
	if err != nil {
		h.uploadCounter.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, services.ErrUnsupportedFileType):
			h.writeErrorResponse(w, http.StatusBadRequest, "Only PDF documents are supported", nil)
		case errors.Is(err, services.ErrFileTooLarge):
			h.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit", nil)
		case errors.Is(err, services.ErrUnsupportedPolicyType):
			h.writeErrorResponse(w, http.StatusBadRequest, "Policy type must be Motor or Health", nil)
		default:
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to upload document", err)
		}
		return
	}

	h.uploadCounter.WithLabelValues("ok").Inc()
	h.writeJSONResponse(w, http.StatusCreated, doc)
}

// ListDocuments handles GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.parsePaginationParams(r)
	status := r.URL.Query().Get("status")

	docs, err := h.documentSvc.ListDocuments(r.Context(), status, limit, offset)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list documents", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
		"limit":     limit,
		"offset":    offset,
	})
}

// GetDocument handles GET /api/v1/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.documentSvc.GetDocument(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Document not found", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, doc)
}

// UpdateDocument handles PATCH /api/v1/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var details services.DocumentDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := h.documentSvc.UpdateDetails(r.Context(), id, &details, h.actorID(r))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedPolicyType):
			h.writeErrorResponse(w, http.StatusBadRequest, "Policy type must be Motor or Health", nil)
		case errors.Is(err, services.ErrPolicyExists):
			h.writeErrorResponse(w, http.StatusConflict, "Policy type cannot change once a policy exists", nil)
		default:
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to update document", err)
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/v1/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.documentSvc.DeleteDocument(r.Context(), id, h.actorID(r)); err != nil {
		if errors.Is(err, services.ErrDocumentProcessing) {
			h.writeErrorResponse(w, http.StatusConflict, "Document is currently being processed", nil)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete document", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// QueueExtraction handles POST /api/v1/documents/{id}/queue
func (h *DocumentHandler) QueueExtraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.documentSvc.QueueExtraction(r.Context(), id); err != nil {
		h.extractionCounter.WithLabelValues("queue", "error").Inc()
		if errors.Is(err, services.ErrDocumentNotQueueable) {
			h.writeErrorResponse(w, http.StatusConflict, "Document cannot be queued in its current status", nil)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to queue extraction", err)
		return
	}

	h.extractionCounter.WithLabelValues("queue", "ok").Inc()
	h.writeJSONResponse(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// RetryExtraction handles POST /api/v1/documents/{id}/retry
func (h *DocumentHandler) RetryExtraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.documentSvc.RetryDocument(r.Context(), id); err != nil {
		h.extractionCounter.WithLabelValues("retry", "error").Inc()
		if errors.Is(err, services.ErrDocumentNotQueueable) {
			h.writeErrorResponse(w, http.StatusConflict, "Document cannot be retried in its current status", nil)
			return
		}
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retry extraction", err)
		return
	}

	h.extractionCounter.WithLabelValues("retry", "ok").Inc()
	h.writeJSONResponse(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// GetStatus handles GET /api/v1/documents/{id}/status
func (h *DocumentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, err := h.documentSvc.GetStatus(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Document not found", err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, status)
}

// Helper methods

func (h *DocumentHandler) actorID(r *http.Request) string {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

func (h *DocumentHandler) parsePaginationParams(r *http.Request) (limit, offset int) {
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

func (h *DocumentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *DocumentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
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
