package repositories

import (
	"context"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// PolicyDocumentRepository defines the interface for policy document data operations
type PolicyDocumentRepository interface {
	Create(ctx context.Context, doc *models.PolicyDocument) error
	GetByID(ctx context.Context, id string) (*models.PolicyDocument, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.PolicyDocument, error)
	GetByStatus(ctx context.Context, status string, limit, offset int) ([]*models.PolicyDocument, error)
	GetProcessingSince(ctx context.Context, before time.Time) ([]*models.PolicyDocument, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, doc *models.PolicyDocument) error
	Delete(ctx context.Context, id string) error
}

// MotorPolicyRepository defines the interface for motor policy data operations
type MotorPolicyRepository interface {
	CreateForDocument(ctx context.Context, policy *models.MotorPolicy, doc *models.PolicyDocument) error
	GetByID(ctx context.Context, id string) (*models.MotorPolicy, error)
	GetByDocument(ctx context.Context, documentID string) (*models.MotorPolicy, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.MotorPolicy, error)
	GetBySyncStatus(ctx context.Context, status string, limit, offset int) ([]*models.MotorPolicy, error)
	CountBySyncStatus(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, policy *models.MotorPolicy) error
	Delete(ctx context.Context, id string) error
}

// HealthPolicyRepository defines the interface for health policy data operations
type HealthPolicyRepository interface {
	CreateForDocument(ctx context.Context, policy *models.HealthPolicy, doc *models.PolicyDocument) error
	GetByID(ctx context.Context, id string) (*models.HealthPolicy, error)
	GetByDocument(ctx context.Context, documentID string) (*models.HealthPolicy, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.HealthPolicy, error)
	GetBySyncStatus(ctx context.Context, status string, limit, offset int) ([]*models.HealthPolicy, error)
	CountBySyncStatus(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, policy *models.HealthPolicy) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepository defines the interface for the reader settings singleton
type SettingsRepository interface {
	Get(ctx context.Context) (*models.ReaderSettings, error)
	Update(ctx context.Context, settings *models.ReaderSettings) error
	UpdateToken(ctx context.Context, token string, expiry *time.Time) error
	UpdateAliasMap(ctx context.Context, policyType string, mapping models.AliasMap) error
}

// ValidationRuleRepository defines the interface for SAIBA validation rule data operations
type ValidationRuleRepository interface {
	Create(ctx context.Context, rule *models.ValidationRule) error
	BulkCreate(ctx context.Context, rules []*models.ValidationRule) error
	GetByID(ctx context.Context, id string) (*models.ValidationRule, error)
	GetByPolicyType(ctx context.Context, policyType string) ([]*models.ValidationRule, error)
	GetRequiredByPolicyType(ctx context.Context, policyType string) ([]*models.ValidationRule, error)
	Exists(ctx context.Context, policyType, saibaField, policyField string) (bool, error)
	Update(ctx context.Context, rule *models.ValidationRule) error
	Delete(ctx context.Context, id string) error
	DeleteByPolicyType(ctx context.Context, policyType string) error
}

// AuditLogRepository defines the interface for audit log data operations
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByID(ctx context.Context, id string) (*models.AuditLog, error)
	GetByResource(ctx context.Context, resourceType, resourceID string, limit, offset int) ([]*models.AuditLog, error)
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]*models.AuditLog, error)
	GetRecent(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
