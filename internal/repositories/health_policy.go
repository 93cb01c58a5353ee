package repositories

import (
	"context"

	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/models"

	"gorm.io/gorm"
)

// healthPolicyRepository implements HealthPolicyRepository
type healthPolicyRepository struct {
	db *database.Connection
}

// NewHealthPolicyRepository creates a new health policy repository
func NewHealthPolicyRepository(db *database.Connection) HealthPolicyRepository {
	return &healthPolicyRepository{db: db}
}

// CreateForDocument inserts the policy and links it back to its source
// document in a single transaction, so a failed link never leaves an
// orphaned policy behind.
func (r *healthPolicyRepository) CreateForDocument(ctx context.Context, policy *models.HealthPolicy, doc *models.PolicyDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(policy).Error; err != nil {
			return err
		}

		doc.HealthPolicyID = &policy.ID
		return tx.Model(&models.PolicyDocument{}).
			Where("id = ?", doc.ID).
			Update("health_policy_id", policy.ID).Error
	})
}

// GetByID retrieves a health policy by ID
func (r *healthPolicyRepository) GetByID(ctx context.Context, id string) (*models.HealthPolicy, error) {
	var policy models.HealthPolicy
	err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByDocument retrieves the health policy created from a document
func (r *healthPolicyRepository) GetByDocument(ctx context.Context, documentID string) (*models.HealthPolicy, error) {
	var policy models.HealthPolicy
	err := r.db.WithContext(ctx).First(&policy, "policy_document_id = ?", documentID).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetAll retrieves health policies ordered by most recent first
func (r *healthPolicyRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.HealthPolicy, error) {
	var policies []*models.HealthPolicy
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&policies).Error
	return policies, err
}

// GetBySyncStatus retrieves health policies in a given SAIBA sync status
func (r *healthPolicyRepository) GetBySyncStatus(ctx context.Context, status string, limit, offset int) ([]*models.HealthPolicy, error) {
	var policies []*models.HealthPolicy
	err := r.db.WithContext(ctx).
		Where("saiba_sync_status = ?", status).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&policies).Error
	return policies, err
}

// CountBySyncStatus returns health policy counts grouped by SAIBA sync status
func (r *healthPolicyRepository) CountBySyncStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.HealthPolicy{}).
		Select("saiba_sync_status as status, count(*) as count").
		Group("saiba_sync_status").
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

// Update updates an existing health policy
func (r *healthPolicyRepository) Update(ctx context.Context, policy *models.HealthPolicy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}

// Delete soft deletes a health policy
func (r *healthPolicyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.HealthPolicy{}, "id = ?", id).Error
}
