package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

// MockAuthenticationService is a mock implementation of services.AuthenticationService
type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthenticationService) GenerateJWT(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticationService) ValidateJWT(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthenticationService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// MockDocumentProcessingService is a mock implementation of services.DocumentProcessingService
type MockDocumentProcessingService struct {
	mock.Mock
}

func (m *MockDocumentProcessingService) UploadDocument(ctx context.Context, upload *services.DocumentUpload) (*models.PolicyDocument, error) {
	args := m.Called(ctx, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PolicyDocument), args.Error(1)
}

func (m *MockDocumentProcessingService) GetDocument(ctx context.Context, documentID string) (*models.PolicyDocument, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PolicyDocument), args.Error(1)
}

func (m *MockDocumentProcessingService) ListDocuments(ctx context.Context, status string, limit, offset int) ([]*models.PolicyDocument, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PolicyDocument), args.Error(1)
}

func (m *MockDocumentProcessingService) UpdateDetails(ctx context.Context, documentID string, details *services.DocumentDetails, actorID string) (*models.PolicyDocument, error) {
	args := m.Called(ctx, documentID, details, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PolicyDocument), args.Error(1)
}

func (m *MockDocumentProcessingService) DeleteDocument(ctx context.Context, documentID string, actorID string) error {
	args := m.Called(ctx, documentID, actorID)
	return args.Error(0)
}

func (m *MockDocumentProcessingService) QueueExtraction(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentProcessingService) ProcessDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentProcessingService) RetryDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentProcessingService) RequeueStuck(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockDocumentProcessingService) GetStatus(ctx context.Context, documentID string) (*services.DocumentStatus, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DocumentStatus), args.Error(1)
}

// Shared test helpers for the handlers package

func createTestLogger() *logger.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &logger.Logger{Logger: log}
}

func createTestOperator() *models.User {
	return &models.User{
		ID:       "user-1",
		Username: "ops",
		Email:    "ops@salasar.com",
		Role:     models.RoleOperator,
		IsActive: true,
	}
}

func createTestAdmin() *models.User {
	return &models.User{
		ID:       "admin-1",
		Username: "admin",
		Email:    "admin@salasar.com",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
}

// grantAccess wires the middleware's token check to the given user.
func grantAccess(authSvc *MockAuthenticationService, user *models.User) {
	authSvc.On("ValidateJWT", mock.Anything, "valid-token").Return(user, nil)
}

func newAuthedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer valid-token")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func setupDocumentHandler() (*mux.Router, *MockDocumentProcessingService, *MockAuthenticationService) {
	docSvc := &MockDocumentProcessingService{}
	authSvc := &MockAuthenticationService{}
	authMw := middleware.NewAuthenticationMiddleware(createTestLogger(), authSvc)

	router := mux.NewRouter()
	NewDocumentHandler(createTestLogger(), docSvc, authMw).RegisterRoutes(router)
	return router, docSvc, authSvc
}

func newUploadRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer valid-token")
	return req
}

func TestDocumentRoutesRequireAuthentication(t *testing.T) {
	router, docSvc, _ := setupDocumentHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	docSvc.AssertNotCalled(t, "ListDocuments")
}

func TestUploadDocument(t *testing.T) {
	pdfContent := []byte("%PDF-1.4 test policy")

	t.Run("creates a draft document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		created := &models.PolicyDocument{
			ID:           "doc-1",
			Title:        "Tata AIG motor policy",
			PolicyType:   models.PolicyTypeMotor,
			Status:       models.DocumentStatusDraft,
			CustomerName: "Sharma Transport",
			CustomerCode: 2041,
		}
		docSvc.On("UploadDocument", mock.Anything, mock.MatchedBy(func(u *services.DocumentUpload) bool {
			return u.Title == "Tata AIG motor policy" &&
				u.PolicyType == models.PolicyTypeMotor &&
				u.FileName == "policy.pdf" &&
				u.Size == int64(len(pdfContent)) &&
				u.CustomerName == "Sharma Transport" &&
				u.CustomerCode == 2041
		})).Return(created, nil)

		req := newUploadRequest(t, map[string]string{
			"title":         "Tata AIG motor policy",
			"policy_type":   "Motor",
			"customer_name": "Sharma Transport",
			"customer_code": "2041",
		}, "policy.pdf", pdfContent)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var doc models.PolicyDocument
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, models.DocumentStatusDraft, doc.Status)
		docSvc.AssertExpectations(t)
	})

	t.Run("rejects requests without a file", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		req := newUploadRequest(t, map[string]string{"title": "No file"}, "", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "A PDF file is required")
		docSvc.AssertNotCalled(t, "UploadDocument")
	})

	t.Run("rejects non-pdf uploads", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("UploadDocument", mock.Anything, mock.Anything).Return(nil, services.ErrUnsupportedFileType)

		req := newUploadRequest(t, map[string]string{"title": "Scan"}, "policy.docx", []byte("word doc"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Only PDF documents are supported")
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("UploadDocument", mock.Anything, mock.Anything).Return(nil, services.ErrFileTooLarge)

		req := newUploadRequest(t, map[string]string{"title": "Huge"}, "policy.pdf", pdfContent)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Contains(t, rr.Body.String(), "File exceeds the upload size limit")
	})

	t.Run("rejects unknown policy types", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("UploadDocument", mock.Anything, mock.Anything).Return(nil, services.ErrUnsupportedPolicyType)

		req := newUploadRequest(t, map[string]string{"title": "Marine", "policy_type": "Marine"}, "policy.pdf", pdfContent)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Policy type must be Motor or Health")
	})
}

func TestListDocuments(t *testing.T) {
	t.Run("returns a paginated envelope", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docs := []*models.PolicyDocument{
			{ID: "doc-1", Title: "Motor policy", Status: models.DocumentStatusCompleted},
			{ID: "doc-2", Title: "Health policy", Status: models.DocumentStatusCompleted},
		}
		docSvc.On("ListDocuments", mock.Anything, models.DocumentStatusCompleted, 10, 5).Return(docs, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/documents?status=Completed&limit=10&offset=5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, float64(2), response["count"])
		assert.Equal(t, float64(10), response["limit"])
		assert.Equal(t, float64(5), response["offset"])
		assert.Len(t, response["documents"], 2)
		docSvc.AssertExpectations(t)
	})

	t.Run("falls back to defaults for an out-of-range limit", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("ListDocuments", mock.Anything, "", 50, 0).Return([]*models.PolicyDocument{}, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/documents?limit=500", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		docSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	t.Run("returns the document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		doc := &models.PolicyDocument{
			ID:     "doc-1",
			Title:  "Motor policy",
			Status: models.DocumentStatusCompleted,
			ExtractedFields: models.JSONMap{
				"policy_no": "MOT/2024/001",
			},
		}
		docSvc.On("GetDocument", mock.Anything, "doc-1").Return(doc, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/documents/doc-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.PolicyDocument
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "doc-1", got.ID)
		assert.Equal(t, "MOT/2024/001", got.ExtractedFields["policy_no"])
	})

	t.Run("returns 404 for a missing document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("GetDocument", mock.Anything, "missing").Return(nil, assert.AnError)

		req := newAuthedRequest(http.MethodGet, "/api/v1/documents/missing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Document not found")
	})
}

func TestUpdateDocument(t *testing.T) {
	t.Run("applies partial details with the actor recorded", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		updated := &models.PolicyDocument{ID: "doc-1", Title: "Renamed", PolicyType: models.PolicyTypeHealth}
		docSvc.On("UpdateDetails", mock.Anything, "doc-1", mock.MatchedBy(func(d *services.DocumentDetails) bool {
			return d.Title != nil && *d.Title == "Renamed" &&
				d.PolicyType != nil && *d.PolicyType == models.PolicyTypeHealth
		}), "user-1").Return(updated, nil)

		body := strings.NewReader(`{"title": "Renamed", "policy_type": "Health"}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/documents/doc-1", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		docSvc.AssertExpectations(t)
	})

	t.Run("blocks a type change after policy creation", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("UpdateDetails", mock.Anything, "doc-1", mock.Anything, "user-1").Return(nil, services.ErrPolicyExists)

		body := strings.NewReader(`{"policy_type": "Health"}`)
		req := newAuthedRequest(http.MethodPatch, "/api/v1/documents/doc-1", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Policy type cannot change once a policy exists")
	})
}

func TestDeleteDocument(t *testing.T) {
	t.Run("deletes an idle document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("DeleteDocument", mock.Anything, "doc-1", "user-1").Return(nil)

		req := newAuthedRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"deleted"`)
		docSvc.AssertExpectations(t)
	})

	t.Run("refuses to delete while processing", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("DeleteDocument", mock.Anything, "doc-1", "user-1").Return(services.ErrDocumentProcessing)

		req := newAuthedRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Document is currently being processed")
	})
}

func TestQueueExtraction(t *testing.T) {
	t.Run("queues a draft document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("QueueExtraction", mock.Anything, "doc-1").Return(nil)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/queue", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.Contains(t, rr.Body.String(), `"queued"`)
	})

	t.Run("rejects a document that is not queueable", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("QueueExtraction", mock.Anything, "doc-1").Return(services.ErrDocumentNotQueueable)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/queue", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Document cannot be queued in its current status")
	})
}

func TestRetryExtraction(t *testing.T) {
	t.Run("requeues a failed document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("RetryDocument", mock.Anything, "doc-1").Return(nil)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/retry", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("rejects retry for a non-terminal document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("RetryDocument", mock.Anything, "doc-1").Return(services.ErrDocumentNotQueueable)

		req := newAuthedRequest(http.MethodPost, "/api/v1/documents/doc-1/retry", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Document cannot be retried in its current status")
	})
}

func TestGetDocumentStatus(t *testing.T) {
	t.Run("returns the extraction status view", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		status := &services.DocumentStatus{
			ID:         "doc-1",
			Status:     models.DocumentStatusCompleted,
			FieldCount: 34,
			TokensUsed: 1820,
			HasPolicy:  true,
		}
		docSvc.On("GetStatus", mock.Anything, "doc-1").Return(status, nil)

		req := newAuthedRequest(http.MethodGet, "/api/v1/documents/doc-1/status", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got services.DocumentStatus
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, models.DocumentStatusCompleted, got.Status)
		assert.Equal(t, 34, got.FieldCount)
		assert.True(t, got.HasPolicy)
	})

	t.Run("returns 404 for an unknown document", func(t *testing.T) {
		router, docSvc, authSvc := setupDocumentHandler()
		grantAccess(authSvc, createTestOperator())

		docSvc.On("GetStatus", mock.Anything, "missing").Return(nil, assert.AnError)

		req := newAuthedRequest(http.MethodGet, "/api/v1/documents/missing/status", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
