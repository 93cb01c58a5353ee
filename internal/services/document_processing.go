package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// Expected document pipeline failures
var (
	ErrUnsupportedFileType  = fmt.Errorf("only PDF documents are supported")
	ErrFileTooLarge         = fmt.Errorf("file exceeds the upload size limit")
	ErrDocumentNotQueueable = fmt.Errorf("document cannot be queued for extraction in its current status")
	ErrDocumentProcessing   = fmt.Errorf("document is currently being processed")
)

// Status polls are cheap to serve stale for a moment
const documentStatusTTL = 5 * time.Second

// DocumentUpload carries a new policy PDF and its operator-entered customer
// and insurer details
type DocumentUpload struct {
	Title      string
	PolicyType string
	FileName   string
	File       io.Reader
	Size       int64

	CustomerCode           int
	CustomerName           string
	CustomerGroupName      string
	InsuranceCompanyBranch string
	InsurerName            string
	InsurerCity            string
	InsurerBranch          string
	InsurerBranchCode      int
}

// DocumentDetails carries a partial update of the operator-entered document
// fields. Nil pointers leave the stored value untouched.
type DocumentDetails struct {
	Title      *string `json:"title,omitempty"`
	PolicyType *string `json:"policy_type,omitempty"`

	CustomerCode           *int    `json:"customer_code,omitempty"`
	CustomerName           *string `json:"customer_name,omitempty"`
	CustomerGroupName      *string `json:"customer_group_name,omitempty"`
	InsuranceCompanyBranch *string `json:"insurance_company_branch,omitempty"`
	InsurerName            *string `json:"insurer_name,omitempty"`
	InsurerCity            *string `json:"insurer_city,omitempty"`
	InsurerBranch          *string `json:"insurer_branch,omitempty"`
	InsurerBranchCode      *int    `json:"insurer_branch_code,omitempty"`
}

// DocumentStatus is the lightweight polling view of a document's extraction
// run
type DocumentStatus struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	RetryCount     int     `json:"retry_count"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	TokensUsed     int     `json:"tokens_used,omitempty"`
	FieldCount     int     `json:"field_count"`
	HasPolicy      bool    `json:"has_policy"`
}

type documentProcessingService struct {
	documentRepo  repositories.PolicyDocumentRepository
	auditRepo     repositories.AuditLogRepository
	extraction    ExtractionService
	jobs          JobQueue
	cache         *CacheService
	logger        *logger.Logger
	storageCfg    config.StorageConfig
	extractionCfg config.ExtractionConfig
}

// NewDocumentProcessingService creates the upload and extraction pipeline
// service
func NewDocumentProcessingService(documentRepo repositories.PolicyDocumentRepository, auditRepo repositories.AuditLogRepository, extraction ExtractionService, jobs JobQueue, cache *CacheService, log *logger.Logger, cfg *config.Config) DocumentProcessingService {
	return &documentProcessingService{
		documentRepo:  documentRepo,
		auditRepo:     auditRepo,
		extraction:    extraction,
		jobs:          jobs,
		cache:         cache,
		logger:        log,
		storageCfg:    cfg.Storage,
		extractionCfg: cfg.Extraction,
	}
}

// UploadDocument stores the PDF under the upload directory and creates the
// document record in Draft
func (s *documentProcessingService) UploadDocument(ctx context.Context, upload *DocumentUpload) (*models.PolicyDocument, error) {
	if !strings.EqualFold(filepath.Ext(upload.FileName), ".pdf") {
		return nil, ErrUnsupportedFileType
	}

	maxBytes := int64(s.storageCfg.MaxUploadMB) << 20
	if upload.Size > 0 && upload.Size > maxBytes {
		return nil, fmt.Errorf("%w: %dMB maximum", ErrFileTooLarge, s.storageCfg.MaxUploadMB)
	}

	policyType := ""
	if upload.PolicyType != "" {
		canonicalType, ok := models.CanonicalPolicyType(upload.PolicyType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, upload.PolicyType)
		}
		policyType = canonicalType
	}

	if err := os.MkdirAll(s.storageCfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	fileName := uuid.New().String() + ".pdf"
	fullPath := filepath.Join(s.storageCfg.UploadDir, fileName)

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(upload.File, maxBytes+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if written > maxBytes {
		os.Remove(fullPath)
		return nil, fmt.Errorf("%w: %dMB maximum", ErrFileTooLarge, s.storageCfg.MaxUploadMB)
	}

	title := strings.TrimSpace(upload.Title)
	if title == "" {
		title = upload.FileName
	}

	doc := &models.PolicyDocument{
		Title:      title,
		PolicyFile: fileName,
		PolicyType: policyType,
		Status:     models.DocumentStatusDraft,

		CustomerCode:           upload.CustomerCode,
		CustomerName:           upload.CustomerName,
		CustomerGroupName:      upload.CustomerGroupName,
		InsuranceCompanyBranch: upload.InsuranceCompanyBranch,
		InsurerName:            upload.InsurerName,
		InsurerCity:            upload.InsurerCity,
		InsurerBranch:          upload.InsurerBranch,
		InsurerBranchCode:      upload.InsurerBranchCode,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logger.WithDocument(doc.ID).
		WithField("file", fileName).
		WithField("size_bytes", written).
		Info("Document uploaded")
	return doc, nil
}

// GetDocument retrieves a single policy document
func (s *documentProcessingService) GetDocument(ctx context.Context, documentID string) (*models.PolicyDocument, error) {
	return s.documentRepo.GetByID(ctx, documentID)
}

// ListDocuments retrieves documents, optionally filtered by status
func (s *documentProcessingService) ListDocuments(ctx context.Context, status string, limit, offset int) ([]*models.PolicyDocument, error) {
	if status != "" {
		return s.documentRepo.GetByStatus(ctx, status, limit, offset)
	}
	return s.documentRepo.GetAll(ctx, limit, offset)
}

// UpdateDetails applies a partial update of the operator-entered fields.
// The policy type is locked once a policy has been created from the document.
func (s *documentProcessingService) UpdateDetails(ctx context.Context, documentID string, details *DocumentDetails, actorID string) (*models.PolicyDocument, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	changed := models.JSONMap{}
	if details.Title != nil && strings.TrimSpace(*details.Title) != "" {
		doc.Title = strings.TrimSpace(*details.Title)
		changed["title"] = doc.Title
	}
	if details.PolicyType != nil {
		canonicalType, ok := models.CanonicalPolicyType(*details.PolicyType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, *details.PolicyType)
		}
		if canonicalType != doc.PolicyType {
			if doc.HasPolicy() {
				return nil, fmt.Errorf("policy type %w", ErrPolicyExists)
			}
			doc.PolicyType = canonicalType
			changed["policy_type"] = canonicalType
		}
	}
	if details.CustomerCode != nil {
		doc.CustomerCode = *details.CustomerCode
		changed["customer_code"] = doc.CustomerCode
	}
	if details.CustomerName != nil {
		doc.CustomerName = *details.CustomerName
		changed["customer_name"] = doc.CustomerName
	}
	if details.CustomerGroupName != nil {
		doc.CustomerGroupName = *details.CustomerGroupName
		changed["customer_group_name"] = doc.CustomerGroupName
	}
	if details.InsuranceCompanyBranch != nil {
		doc.InsuranceCompanyBranch = *details.InsuranceCompanyBranch
		changed["insurance_company_branch"] = doc.InsuranceCompanyBranch
	}
	if details.InsurerName != nil {
		doc.InsurerName = *details.InsurerName
		changed["insurer_name"] = doc.InsurerName
	}
	if details.InsurerCity != nil {
		doc.InsurerCity = *details.InsurerCity
		changed["insurer_city"] = doc.InsurerCity
	}
	if details.InsurerBranch != nil {
		doc.InsurerBranch = *details.InsurerBranch
		changed["insurer_branch"] = doc.InsurerBranch
	}
	if details.InsurerBranchCode != nil {
		doc.InsurerBranchCode = *details.InsurerBranchCode
		changed["insurer_branch_code"] = doc.InsurerBranchCode
	}

	if len(changed) == 0 {
		return doc, nil
	}
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	entry := &models.AuditLog{
		Action:       models.AuditActionUpdate,
		ResourceType: "policy_document",
		ResourceID:   doc.ID,
		NewValues:    changed,
		Timestamp:    time.Now(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write document update audit entry")
	}

	s.logger.WithDocument(doc.ID).WithField("fields", len(changed)).Info("Document details updated")
	return doc, nil
}

// DeleteDocument removes the document record and its stored PDF. Documents
// mid-extraction cannot be deleted.
func (s *documentProcessingService) DeleteDocument(ctx context.Context, documentID string, actorID string) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc.Status == models.DocumentStatusProcessing || doc.Status == models.DocumentStatusQueued {
		return ErrDocumentProcessing
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.invalidateStatus(ctx, doc.ID)

	if doc.PolicyFile != "" {
		if err := os.Remove(filepath.Join(s.storageCfg.UploadDir, doc.PolicyFile)); err != nil && !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Failed to remove document file")
		}
	}

	entry := &models.AuditLog{
		Action:       models.AuditActionDelete,
		ResourceType: "policy_document",
		ResourceID:   doc.ID,
		OldValues:    models.JSONMap{"title": doc.Title, "status": doc.Status},
		Timestamp:    time.Now(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write document delete audit entry")
	}

	s.logger.WithDocument(doc.ID).Info("Document deleted")
	return nil
}

// QueueExtraction moves a Draft or Failed document onto the extraction queue
func (s *documentProcessingService) QueueExtraction(ctx context.Context, documentID string) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc.PolicyType == "" {
		return ErrPolicyTypeNotSet
	}
	if !doc.CanQueue() {
		return fmt.Errorf("%w: %s", ErrDocumentNotQueueable, doc.Status)
	}
	return s.queueDocument(ctx, doc)
}

// ProcessDocument runs one extraction attempt for a queued document. Called
// by the extraction job handler.
func (s *documentProcessingService) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc.Status == models.DocumentStatusCompleted {
		s.logger.WithDocument(doc.ID).Info("Document already processed, skipping")
		return nil
	}

	started := time.Now()
	doc.Status = models.DocumentStatusProcessing
	doc.ProcessingStartedAt = &started
	doc.ErrorMessage = ""
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to mark document processing: %w", err)
	}
	s.invalidateStatus(ctx, doc.ID)

	pdfPath := filepath.Join(s.storageCfg.UploadDir, doc.PolicyFile)
	result, extractErr := s.extraction.ExtractFields(ctx, pdfPath, doc.PolicyType)
	doc.ProcessingTime = time.Since(started).Seconds()

	if extractErr != nil {
		doc.Status = models.DocumentStatusFailed
		doc.ErrorMessage = extractErr.Error()
		if err := s.documentRepo.Update(ctx, doc); err != nil {
			s.logger.WithError(err).WithField("document_id", doc.ID).Error("Failed to record extraction failure")
		}
		s.invalidateStatus(ctx, doc.ID)
		s.auditExtraction(ctx, doc, models.JSONMap{
			"status": doc.Status,
			"error":  doc.ErrorMessage,
		})
		s.logger.WithError(extractErr).WithField("document_id", doc.ID).Error("Extraction failed")
		return extractErr
	}

	completed := time.Now()
	doc.Status = models.DocumentStatusCompleted
	doc.CompletedAt = &completed
	doc.ExtractedFields = models.JSONMap(result.Fields)
	doc.TokensUsed = result.TokensUsed
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to store extraction result: %w", err)
	}
	s.invalidateStatus(ctx, doc.ID)

	s.auditExtraction(ctx, doc, models.JSONMap{
		"status":      doc.Status,
		"fields":      len(result.Fields),
		"tokens_used": result.TokensUsed,
		"model":       result.Model,
	})
	s.logger.WithDocument(doc.ID).WithField("policy_type", doc.PolicyType).
		WithField("fields", len(result.Fields)).
		WithField("processing_seconds", doc.ProcessingTime).
		Info("Document processed")
	return nil
}

// RetryDocument requeues a Failed document for another extraction attempt
func (s *documentProcessingService) RetryDocument(ctx context.Context, documentID string) error {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc.Status != models.DocumentStatusFailed {
		return fmt.Errorf("%w: %s", ErrDocumentNotQueueable, doc.Status)
	}
	if doc.PolicyType == "" {
		return ErrPolicyTypeNotSet
	}
	doc.RetryCount++
	return s.queueDocument(ctx, doc)
}

// RequeueStuck recovers documents stuck in Processing. Documents past the
// requeue threshold go back on the queue until the retry limit, and past the
// fail threshold they are marked Failed. Returns requeued and failed counts.
func (s *documentProcessingService) RequeueStuck(ctx context.Context) (int, int, error) {
	now := time.Now()
	requeueCutoff := now.Add(-time.Duration(s.extractionCfg.StuckRequeueMinutes) * time.Minute)
	failCutoff := now.Add(-time.Duration(s.extractionCfg.StuckFailMinutes) * time.Minute)

	stuck, err := s.documentRepo.GetProcessingSince(ctx, requeueCutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list stuck documents: %w", err)
	}

	requeued, failed := 0, 0
	for _, doc := range stuck {
		expired := doc.ProcessingStartedAt != nil && doc.ProcessingStartedAt.Before(failCutoff)
		exhausted := doc.RetryCount >= s.extractionCfg.MaxRetries

		if expired || exhausted {
			doc.Status = models.DocumentStatusFailed
			if expired {
				doc.ErrorMessage = "extraction timed out"
			} else {
				doc.ErrorMessage = "extraction retries exhausted"
			}
			if err := s.documentRepo.Update(ctx, doc); err != nil {
				s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Failed to fail stuck document")
				continue
			}
			s.invalidateStatus(ctx, doc.ID)
			failed++
			s.logger.WithDocument(doc.ID).
				WithField("retry_count", doc.RetryCount).
				Warn("Stuck document marked failed")
			continue
		}

		doc.RetryCount++
		if err := s.queueDocument(ctx, doc); err != nil {
			s.logger.WithError(err).WithField("document_id", doc.ID).Warn("Failed to requeue stuck document")
			continue
		}
		requeued++
	}
	return requeued, failed, nil
}

// GetStatus returns the polling view of a document, cached briefly to absorb
// UI polling
func (s *documentProcessingService) GetStatus(ctx context.Context, documentID string) (*DocumentStatus, error) {
	cacheKey := BuildDocumentStatusKey(documentID)
	if s.cache != nil {
		var cached DocumentStatus
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	status := &DocumentStatus{
		ID:             doc.ID,
		Status:         doc.Status,
		ErrorMessage:   doc.ErrorMessage,
		RetryCount:     doc.RetryCount,
		ProcessingTime: doc.ProcessingTime,
		TokensUsed:     doc.TokensUsed,
		FieldCount:     len(doc.ExtractedFields),
		HasPolicy:      doc.HasPolicy(),
	}
	if s.cache != nil {
		if err := s.cache.SetWithTags(ctx, cacheKey, status, documentStatusTTL, []string{TagDocuments}); err != nil {
			s.logger.WithError(err).Debug("Failed to cache document status")
		}
	}
	return status, nil
}

// queueDocument flips the document to Queued and enqueues the extraction
// job, restoring the previous status if the enqueue fails
func (s *documentProcessingService) queueDocument(ctx context.Context, doc *models.PolicyDocument) error {
	previous := doc.Status
	doc.Status = models.DocumentStatusQueued
	doc.ErrorMessage = ""
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to queue document: %w", err)
	}
	s.invalidateStatus(ctx, doc.ID)

	job := &BackgroundJob{
		Type:       JobTypeDocumentExtraction,
		Data:       map[string]interface{}{"document_id": doc.ID},
		MaxRetries: s.extractionCfg.MaxRetries,
	}
	if err := s.jobs.EnqueueJob(ctx, job); err != nil {
		doc.Status = previous
		if updateErr := s.documentRepo.Update(ctx, doc); updateErr != nil {
			s.logger.WithError(updateErr).WithField("document_id", doc.ID).
				Warn("Failed to restore document status after enqueue failure")
		}
		s.invalidateStatus(ctx, doc.ID)
		return fmt.Errorf("failed to enqueue extraction job: %w", err)
	}

	s.logger.WithDocument(doc.ID).WithField("policy_type", doc.PolicyType).Info("Document queued for extraction")
	return nil
}

func (s *documentProcessingService) invalidateStatus(ctx context.Context, documentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, BuildDocumentStatusKey(documentID)); err != nil {
		s.logger.WithError(err).Debug("Failed to invalidate document status cache")
	}
}

func (s *documentProcessingService) auditExtraction(ctx context.Context, doc *models.PolicyDocument, values models.JSONMap) {
	entry := &models.AuditLog{
		Action:       models.AuditActionExtract,
		ResourceType: "policy_document",
		ResourceID:   doc.ID,
		NewValues:    values,
		Timestamp:    time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write extraction audit entry")
	}
}
