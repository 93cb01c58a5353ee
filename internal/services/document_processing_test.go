package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// MockExtractionService is a mock implementation of ExtractionService for testing
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractFields(ctx context.Context, pdfPath, policyType string) (*ExtractionResult, error) {
	args := m.Called(ctx, pdfPath, policyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExtractionResult), args.Error(1)
}

// MockJobQueue is a mock implementation of JobQueue for testing
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueJob(ctx context.Context, job *BackgroundJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// Uses MockPolicyDocumentRepository and MockAuditLogRepository from policy_test.go

func newTestDocumentService(t *testing.T, docRepo *MockPolicyDocumentRepository, auditRepo *MockAuditLogRepository, extraction *MockExtractionService, jobs *MockJobQueue) (DocumentProcessingService, string) {
	t.Helper()
	uploadDir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{UploadDir: uploadDir, MaxUploadMB: 10},
		Extraction: config.ExtractionConfig{
			MaxRetries:          3,
			StuckRequeueMinutes: 10,
			StuckFailMinutes:    30,
		},
	}
	return NewDocumentProcessingService(docRepo, auditRepo, extraction, jobs, nil, createTestLogger(), cfg), uploadDir
}

func TestDocumentProcessingService_UploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the PDF and creates a draft record", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, uploadDir := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("Create", ctx, mock.MatchedBy(func(doc *models.PolicyDocument) bool {
			return doc.Status == models.DocumentStatusDraft &&
				doc.PolicyType == models.PolicyTypeMotor &&
				doc.CustomerName == "Rajesh Kumar" &&
				strings.HasSuffix(doc.PolicyFile, ".pdf")
		})).Return(nil)

		doc, err := svc.UploadDocument(ctx, &DocumentUpload{
			PolicyType:   "motor",
			FileName:     "renewal-pack.PDF",
			File:         strings.NewReader("%PDF-1.4 sample policy"),
			Size:         22,
			CustomerCode: 1043,
			CustomerName: "Rajesh Kumar",
		})
		assert.NoError(t, err)
		assert.Equal(t, "renewal-pack.PDF", doc.Title)

		entries, err := os.ReadDir(uploadDir)
		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		docRepo.AssertExpectations(t)
	})

	t.Run("explicit title wins over the file name", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("Create", ctx, mock.Anything).Return(nil)

		doc, err := svc.UploadDocument(ctx, &DocumentUpload{
			Title:    "  March Renewals  ",
			FileName: "scan001.pdf",
			File:     strings.NewReader("%PDF-1.4"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "March Renewals", doc.Title)
	})

	t.Run("non-PDF uploads are rejected", func(t *testing.T) {
		svc, _ := newTestDocumentService(t, &MockPolicyDocumentRepository{}, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		_, err := svc.UploadDocument(ctx, &DocumentUpload{
			FileName: "notes.txt",
			File:     strings.NewReader("plain text"),
		})
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("declared size over the limit is rejected before writing", func(t *testing.T) {
		svc, uploadDir := newTestDocumentService(t, &MockPolicyDocumentRepository{}, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		_, err := svc.UploadDocument(ctx, &DocumentUpload{
			FileName: "huge.pdf",
			File:     strings.NewReader("%PDF-1.4"),
			Size:     int64(11) << 20,
		})
		assert.ErrorIs(t, err, ErrFileTooLarge)

		entries, _ := os.ReadDir(uploadDir)
		assert.Empty(t, entries)
	})

	t.Run("stream longer than the limit is removed again", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		uploadDir := t.TempDir()
		cfg := &config.Config{
			Storage:    config.StorageConfig{UploadDir: uploadDir, MaxUploadMB: 1},
			Extraction: config.ExtractionConfig{MaxRetries: 3},
		}
		svc := NewDocumentProcessingService(docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{}, nil, createTestLogger(), cfg)

		oversized := bytes.Repeat([]byte("x"), (1<<20)+16)
		_, err := svc.UploadDocument(ctx, &DocumentUpload{
			FileName: "huge.pdf",
			File:     bytes.NewReader(oversized),
		})
		assert.ErrorIs(t, err, ErrFileTooLarge)

		entries, _ := os.ReadDir(uploadDir)
		assert.Empty(t, entries)
	})

	t.Run("unsupported policy type is rejected", func(t *testing.T) {
		svc, _ := newTestDocumentService(t, &MockPolicyDocumentRepository{}, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		_, err := svc.UploadDocument(ctx, &DocumentUpload{
			PolicyType: "Travel",
			FileName:   "policy.pdf",
			File:       strings.NewReader("%PDF-1.4"),
		})
		assert.ErrorIs(t, err, ErrUnsupportedPolicyType)
	})

	t.Run("record failure removes the stored file", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, uploadDir := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("connection refused"))

		_, err := svc.UploadDocument(ctx, &DocumentUpload{
			FileName: "policy.pdf",
			File:     strings.NewReader("%PDF-1.4"),
		})
		assert.Error(t, err)

		entries, _ := os.ReadDir(uploadDir)
		assert.Empty(t, entries)
	})
}

func TestDocumentProcessingService_QueueExtraction(t *testing.T) {
	ctx := context.Background()

	t.Run("draft document is queued with an extraction job", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		jobs := &MockJobQueue{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, jobs)

		doc := &models.PolicyDocument{ID: "doc-1", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusDraft}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Update", ctx, doc).Return(nil)
		jobs.On("EnqueueJob", ctx, mock.MatchedBy(func(job *BackgroundJob) bool {
			return job.Type == JobTypeDocumentExtraction &&
				job.Data["document_id"] == "doc-1" &&
				job.MaxRetries == 3
		})).Return(nil)

		err := svc.QueueExtraction(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, models.DocumentStatusQueued, doc.Status)
		jobs.AssertExpectations(t)
	})

	t.Run("document without a policy type cannot be queued", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{ID: "doc-1", Status: models.DocumentStatusDraft}, nil)

		err := svc.QueueExtraction(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrPolicyTypeNotSet)
	})

	t.Run("completed document cannot be queued", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{
			ID: "doc-1", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusCompleted,
		}, nil)

		err := svc.QueueExtraction(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrDocumentNotQueueable)
	})

	t.Run("enqueue failure restores the previous status", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		jobs := &MockJobQueue{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, jobs)

		doc := &models.PolicyDocument{ID: "doc-1", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusDraft}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Update", ctx, doc).Return(nil)
		jobs.On("EnqueueJob", ctx, mock.Anything).Return(fmt.Errorf("redis unavailable"))

		err := svc.QueueExtraction(ctx, "doc-1")
		assert.Error(t, err)
		assert.Equal(t, models.DocumentStatusDraft, doc.Status)
		docRepo.AssertNumberOfCalls(t, "Update", 2)
	})
}

func TestDocumentProcessingService_ProcessDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("successful extraction completes the document", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		auditRepo := &MockAuditLogRepository{}
		extraction := &MockExtractionService{}
		svc, uploadDir := newTestDocumentService(t, docRepo, auditRepo, extraction, &MockJobQueue{})

		doc := &models.PolicyDocument{
			ID:         "doc-1",
			PolicyFile: "doc-1.pdf",
			PolicyType: models.PolicyTypeMotor,
			Status:     models.DocumentStatusQueued,
		}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Update", ctx, doc).Return(nil)
		extraction.On("ExtractFields", ctx, filepath.Join(uploadDir, "doc-1.pdf"), models.PolicyTypeMotor).Return(&ExtractionResult{
			Fields:     map[string]interface{}{"Policy Number": "MOT-2024-001", "IDV": "₹4,50,000"},
			TokensUsed: 1500,
			Model:      "claude-3-5-sonnet-20241022",
		}, nil)
		auditRepo.On("Create", ctx, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Action == models.AuditActionExtract && entry.ResourceID == "doc-1"
		})).Return(nil)

		err := svc.ProcessDocument(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, models.DocumentStatusCompleted, doc.Status)
		assert.Equal(t, "MOT-2024-001", doc.ExtractedFields["Policy Number"])
		assert.Equal(t, 1500, doc.TokensUsed)
		assert.NotNil(t, doc.CompletedAt)
		auditRepo.AssertExpectations(t)
	})

	t.Run("extraction failure marks the document failed", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		auditRepo := &MockAuditLogRepository{}
		extraction := &MockExtractionService{}
		svc, _ := newTestDocumentService(t, docRepo, auditRepo, extraction, &MockJobQueue{})

		doc := &models.PolicyDocument{
			ID:         "doc-1",
			PolicyFile: "doc-1.pdf",
			PolicyType: models.PolicyTypeMotor,
			Status:     models.DocumentStatusQueued,
		}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Update", ctx, doc).Return(nil)
		extraction.On("ExtractFields", ctx, mock.Anything, models.PolicyTypeMotor).Return(nil, fmt.Errorf("claude API returned HTTP 529"))
		auditRepo.On("Create", ctx, mock.Anything).Return(nil)

		err := svc.ProcessDocument(ctx, "doc-1")
		assert.Error(t, err)
		assert.Equal(t, models.DocumentStatusFailed, doc.Status)
		assert.Contains(t, doc.ErrorMessage, "HTTP 529")
	})

	t.Run("already completed document is skipped", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		extraction := &MockExtractionService{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, extraction, &MockJobQueue{})

		docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{
			ID: "doc-1", Status: models.DocumentStatusCompleted,
		}, nil)

		err := svc.ProcessDocument(ctx, "doc-1")
		assert.NoError(t, err)
		extraction.AssertNotCalled(t, "ExtractFields", mock.Anything, mock.Anything, mock.Anything)
		docRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})
}

func TestDocumentProcessingService_RetryDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("failed document goes back on the queue with a bumped retry count", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		jobs := &MockJobQueue{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, jobs)

		doc := &models.PolicyDocument{
			ID:           "doc-1",
			PolicyType:   models.PolicyTypeMotor,
			Status:       models.DocumentStatusFailed,
			ErrorMessage: "extraction timed out",
			RetryCount:   1,
		}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Update", ctx, doc).Return(nil)
		jobs.On("EnqueueJob", ctx, mock.Anything).Return(nil)

		err := svc.RetryDocument(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, 2, doc.RetryCount)
		assert.Equal(t, models.DocumentStatusQueued, doc.Status)
		assert.Empty(t, doc.ErrorMessage)
	})

	t.Run("only failed documents can be retried", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{
			ID: "doc-1", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusDraft,
		}, nil)

		err := svc.RetryDocument(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrDocumentNotQueueable)
	})
}

func TestDocumentProcessingService_RequeueStuck(t *testing.T) {
	ctx := context.Background()

	docRepo := &MockPolicyDocumentRepository{}
	jobs := &MockJobQueue{}
	svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, jobs)

	now := time.Now()
	longAgo := now.Add(-40 * time.Minute)
	recently := now.Add(-15 * time.Minute)

	expired := &models.PolicyDocument{ID: "doc-expired", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusProcessing, ProcessingStartedAt: &longAgo}
	exhausted := &models.PolicyDocument{ID: "doc-exhausted", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusProcessing, ProcessingStartedAt: &recently, RetryCount: 3}
	alive := &models.PolicyDocument{ID: "doc-alive", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusProcessing, ProcessingStartedAt: &recently, RetryCount: 1}

	docRepo.On("GetProcessingSince", ctx, mock.AnythingOfType("time.Time")).Return([]*models.PolicyDocument{expired, exhausted, alive}, nil)
	docRepo.On("Update", ctx, mock.Anything).Return(nil)
	jobs.On("EnqueueJob", ctx, mock.Anything).Return(nil)

	requeued, failed, err := svc.RequeueStuck(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, requeued)
	assert.Equal(t, 2, failed)

	assert.Equal(t, models.DocumentStatusFailed, expired.Status)
	assert.Equal(t, "extraction timed out", expired.ErrorMessage)
	assert.Equal(t, models.DocumentStatusFailed, exhausted.Status)
	assert.Equal(t, "extraction retries exhausted", exhausted.ErrorMessage)
	assert.Equal(t, models.DocumentStatusQueued, alive.Status)
	assert.Equal(t, 2, alive.RetryCount)
	jobs.AssertNumberOfCalls(t, "EnqueueJob", 1)
}

func TestDocumentProcessingService_DeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the record and the stored file", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc, uploadDir := newTestDocumentService(t, docRepo, auditRepo, &MockExtractionService{}, &MockJobQueue{})

		filePath := filepath.Join(uploadDir, "doc-1.pdf")
		assert.NoError(t, os.WriteFile(filePath, []byte("%PDF-1.4"), 0o644))

		doc := &models.PolicyDocument{ID: "doc-1", Title: "March Renewals", PolicyFile: "doc-1.pdf", Status: models.DocumentStatusCompleted}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Delete", ctx, "doc-1").Return(nil)
		auditRepo.On("Create", ctx, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.Action == models.AuditActionDelete &&
				entry.UserID != nil && *entry.UserID == "user-1" &&
				entry.OldValues["title"] == "March Renewals"
		})).Return(nil)

		err := svc.DeleteDocument(ctx, "doc-1", "user-1")
		assert.NoError(t, err)

		_, statErr := os.Stat(filePath)
		assert.True(t, os.IsNotExist(statErr))
		auditRepo.AssertExpectations(t)
	})

	t.Run("documents mid-extraction cannot be deleted", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{
			ID: "doc-1", Status: models.DocumentStatusProcessing,
		}, nil)

		err := svc.DeleteDocument(ctx, "doc-1", "user-1")
		assert.ErrorIs(t, err, ErrDocumentProcessing)
		docRepo.AssertNotCalled(t, "Delete", ctx, "doc-1")
	})
}

func TestDocumentProcessingService_UpdateDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("nil pointers leave stored values untouched", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc, _ := newTestDocumentService(t, docRepo, auditRepo, &MockExtractionService{}, &MockJobQueue{})

		doc := &models.PolicyDocument{
			ID:           "doc-1",
			Title:        "Old Title",
			Status:       models.DocumentStatusDraft,
			CustomerCode: 1043,
			CustomerName: "Rajesh Kumar",
		}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)
		docRepo.On("Update", ctx, doc).Return(nil)
		auditRepo.On("Create", ctx, mock.MatchedBy(func(entry *models.AuditLog) bool {
			_, titleChanged := entry.NewValues["title"]
			_, codeChanged := entry.NewValues["customer_code"]
			_, nameChanged := entry.NewValues["customer_name"]
			return titleChanged && codeChanged && !nameChanged
		})).Return(nil)

		updated, err := svc.UpdateDetails(ctx, "doc-1", &DocumentDetails{
			Title:        strPtr("  Renewal Pack  "),
			CustomerCode: intPtr(2044),
		}, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, "Renewal Pack", updated.Title)
		assert.Equal(t, 2044, updated.CustomerCode)
		assert.Equal(t, "Rajesh Kumar", updated.CustomerName)
		auditRepo.AssertExpectations(t)
	})

	t.Run("policy type is locked once a policy exists", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		motorID := "motor-1"
		docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{
			ID:            "doc-1",
			PolicyType:    models.PolicyTypeMotor,
			Status:        models.DocumentStatusCompleted,
			MotorPolicyID: &motorID,
		}, nil)

		_, err := svc.UpdateDetails(ctx, "doc-1", &DocumentDetails{PolicyType: strPtr("Health")}, "user-1")
		assert.ErrorIs(t, err, ErrPolicyExists)
	})

	t.Run("no effective change skips the update", func(t *testing.T) {
		docRepo := &MockPolicyDocumentRepository{}
		svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

		doc := &models.PolicyDocument{ID: "doc-1", Title: "March Renewals", PolicyType: models.PolicyTypeMotor, Status: models.DocumentStatusDraft}
		docRepo.On("GetByID", ctx, "doc-1").Return(doc, nil)

		updated, err := svc.UpdateDetails(ctx, "doc-1", &DocumentDetails{PolicyType: strPtr("motor")}, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, doc, updated)
		docRepo.AssertNotCalled(t, "Update", ctx, doc)
	})
}

func TestDocumentProcessingService_GetStatus(t *testing.T) {
	ctx := context.Background()

	docRepo := &MockPolicyDocumentRepository{}
	svc, _ := newTestDocumentService(t, docRepo, &MockAuditLogRepository{}, &MockExtractionService{}, &MockJobQueue{})

	motorID := "motor-1"
	docRepo.On("GetByID", ctx, "doc-1").Return(&models.PolicyDocument{
		ID:              "doc-1",
		Status:          models.DocumentStatusCompleted,
		PolicyType:      models.PolicyTypeMotor,
		RetryCount:      1,
		ProcessingTime:  12.5,
		TokensUsed:      1500,
		ExtractedFields: models.JSONMap{"Policy Number": "MOT-2024-001", "IDV": "₹4,50,000"},
		MotorPolicyID:   &motorID,
	}, nil)

	status, err := svc.GetStatus(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCompleted, status.Status)
	assert.Equal(t, 2, status.FieldCount)
	assert.Equal(t, 1500, status.TokensUsed)
	assert.True(t, status.HasPolicy)
}
