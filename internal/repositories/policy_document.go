package repositories

import (
	"context"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// policyDocumentRepository implements PolicyDocumentRepository
type policyDocumentRepository struct {
	db *database.Connection
}

// NewPolicyDocumentRepository creates a new policy document repository
func NewPolicyDocumentRepository(db *database.Connection) PolicyDocumentRepository {
	return &policyDocumentRepository{db: db}
}

// Create creates a new policy document
func (r *policyDocumentRepository) Create(ctx context.Context, doc *models.PolicyDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByID retrieves a policy document by ID with its created policies
func (r *policyDocumentRepository) GetByID(ctx context.Context, id string) (*models.PolicyDocument, error) {
	var doc models.PolicyDocument
	err := r.db.WithContext(ctx).
		Preload("MotorPolicy").
		Preload("HealthPolicy").
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetAll retrieves policy documents ordered by most recent first
func (r *policyDocumentRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.PolicyDocument, error) {
	var docs []*models.PolicyDocument
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&docs).Error
	return docs, err
}

// GetByStatus retrieves policy documents in a given lifecycle status
func (r *policyDocumentRepository) GetByStatus(ctx context.Context, status string, limit, offset int) ([]*models.PolicyDocument, error) {
	var docs []*models.PolicyDocument
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&docs).Error
	return docs, err
}

// GetProcessingSince retrieves documents stuck in Processing whose run started
// before the cutoff. Used by the stuck document monitor.
func (r *policyDocumentRepository) GetProcessingSince(ctx context.Context, before time.Time) ([]*models.PolicyDocument, error) {
	var docs []*models.PolicyDocument
	err := r.db.WithContext(ctx).
		Where("status = ? AND processing_started_at IS NOT NULL AND processing_started_at < ?",
			models.DocumentStatusProcessing, before).
		Find(&docs).Error
	return docs, err
}

// CountByStatus returns document counts grouped by lifecycle status
func (r *policyDocumentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.PolicyDocument{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Update updates an existing policy document
func (r *policyDocumentRepository) Update(ctx context.Context, doc *models.PolicyDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// Delete soft deletes a policy document
func (r *policyDocumentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.PolicyDocument{}, "id = ?", id).Error
}
