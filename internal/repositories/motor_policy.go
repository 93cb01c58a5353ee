package repositories

import (
	"context"

	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/models"

	"gorm.io/gorm"
)

// motorPolicyRepository implements MotorPolicyRepository
type motorPolicyRepository struct {
	db *database.Connection
}

// NewMotorPolicyRepository creates a new motor policy repository
func NewMotorPolicyRepository(db *database.Connection) MotorPolicyRepository {
	return &motorPolicyRepository{db: db}
}

// CreateForDocument inserts the policy and links it back to its source
// document in a single transaction, so a failed link never leaves an
// orphaned policy behind.
func (r *motorPolicyRepository) CreateForDocument(ctx context.Context, policy *models.MotorPolicy, doc *models.PolicyDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(policy).Error; err != nil {
			return err
		}

		doc.MotorPolicyID = &policy.ID
		return tx.Model(&models.PolicyDocument{}).
			Where("id = ?", doc.ID).
			Update("motor_policy_id", policy.ID).Error
	})
}

// GetByID retrieves a motor policy by ID
func (r *motorPolicyRepository) GetByID(ctx context.Context, id string) (*models.MotorPolicy, error) {
	var policy models.MotorPolicy
	err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByDocument retrieves the motor policy created from a document
func (r *motorPolicyRepository) GetByDocument(ctx context.Context, documentID string) (*models.MotorPolicy, error) {
	var policy models.MotorPolicy
	err := r.db.WithContext(ctx).First(&policy, "policy_document_id = ?", documentID).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetAll retrieves motor policies ordered by most recent first
func (r *motorPolicyRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.MotorPolicy, error) {
	var policies []*models.MotorPolicy
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&policies).Error
	return policies, err
}

// GetBySyncStatus retrieves motor policies in a given SAIBA sync status
func (r *motorPolicyRepository) GetBySyncStatus(ctx context.Context, status string, limit, offset int) ([]*models.MotorPolicy, error) {
	var policies []*models.MotorPolicy
	err := r.db.WithContext(ctx).
		Where("saiba_sync_status = ?", status).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&policies).Error
	return policies, err
}

// CountBySyncStatus returns motor policy counts grouped by SAIBA sync status
func (r *motorPolicyRepository) CountBySyncStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.MotorPolicy{}).
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

// Update updates an existing motor policy
func (r *motorPolicyRepository) Update(ctx context.Context, policy *models.MotorPolicy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}

// Delete soft deletes a motor policy
func (r *motorPolicyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.MotorPolicy{}, "id = ?", id).Error
}
