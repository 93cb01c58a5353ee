package repositories

import (
	"context"

	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// validationRuleRepository implements ValidationRuleRepository
type validationRuleRepository struct {
	db *database.Connection
}

// NewValidationRuleRepository creates a new validation rule repository
func NewValidationRuleRepository(db *database.Connection) ValidationRuleRepository {
	return &validationRuleRepository{db: db}
}

// Create creates a new validation rule
func (r *validationRuleRepository) Create(ctx context.Context, rule *models.ValidationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// BulkCreate inserts a batch of validation rules
func (r *validationRuleRepository) BulkCreate(ctx context.Context, rules []*models.ValidationRule) error {
	if len(rules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rules).Error
}

// GetByID retrieves a validation rule by ID
func (r *validationRuleRepository) GetByID(ctx context.Context, id string) (*models.ValidationRule, error) {
	var rule models.ValidationRule
	err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetByPolicyType retrieves all rules for a policy type in declared order
func (r *validationRuleRepository) GetByPolicyType(ctx context.Context, policyType string) ([]*models.ValidationRule, error) {
	var rules []*models.ValidationRule
	err := r.db.WithContext(ctx).
		Where("policy_type = ?", policyType).
		Order("position ASC, saiba_field ASC").
		Find(&rules).Error
	return rules, err
}

// GetRequiredByPolicyType retrieves the required rules for a policy type in
// declared order
func (r *validationRuleRepository) GetRequiredByPolicyType(ctx context.Context, policyType string) ([]*models.ValidationRule, error) {
	var rules []*models.ValidationRule
	err := r.db.WithContext(ctx).
		Where("policy_type = ? AND is_required = ?", policyType, true).
		Order("position ASC, saiba_field ASC").
		Find(&rules).Error
	return rules, err
}

// Exists checks whether a rule already covers the (saiba field, policy field)
// pair for a policy type
func (r *validationRuleRepository) Exists(ctx context.Context, policyType, saibaField, policyField string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ValidationRule{}).
		Where("policy_type = ? AND saiba_field = ? AND policy_field = ?", policyType, saibaField, policyField).
		Count(&count).Error
	return count > 0, err
}

// Update updates an existing validation rule
func (r *validationRuleRepository) Update(ctx context.Context, rule *models.ValidationRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete removes a validation rule
func (r *validationRuleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.ValidationRule{}, "id = ?", id).Error
}

// DeleteByPolicyType removes all rules for a policy type. Used when reseeding
// defaults.
func (r *validationRuleRepository) DeleteByPolicyType(ctx context.Context, policyType string) error {
	return r.db.WithContext(ctx).
		Where("policy_type = ?", policyType).
		Delete(&models.ValidationRule{}).Error
}
