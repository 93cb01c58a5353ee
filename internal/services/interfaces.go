package services

import (
	"context"

	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// DocumentProcessingService defines the interface for the policy document lifecycle
type DocumentProcessingService interface {
	UploadDocument(ctx context.Context, upload *DocumentUpload) (*models.PolicyDocument, error)
	GetDocument(ctx context.Context, documentID string) (*models.PolicyDocument, error)
	ListDocuments(ctx context.Context, status string, limit, offset int) ([]*models.PolicyDocument, error)
	UpdateDetails(ctx context.Context, documentID string, details *DocumentDetails, actorID string) (*models.PolicyDocument, error)
	DeleteDocument(ctx context.Context, documentID string, actorID string) error

	// Extraction pipeline
	QueueExtraction(ctx context.Context, documentID string) error
	ProcessDocument(ctx context.Context, documentID string) error
	RetryDocument(ctx context.Context, documentID string) error
	RequeueStuck(ctx context.Context) (int, int, error)
	GetStatus(ctx context.Context, documentID string) (*DocumentStatus, error)
}

// ExtractionService defines the interface for AI field extraction from policy PDFs
type ExtractionService interface {
	ExtractFields(ctx context.Context, pdfPath, policyType string) (*ExtractionResult, error)
}

// PromptBuilderService defines the interface for building extraction prompts
type PromptBuilderService interface {
	BuildExtractionPrompt(ctx context.Context, policyType, text string) string
	BuildVisionPrompt(ctx context.Context, policyType string) string
}

// AliasRegistryService defines the interface for field alias map operations
type AliasRegistryService interface {
	GetAliasMap(ctx context.Context, policyType string) (models.AliasMap, error)
	Resolve(ctx context.Context, policyType, rawKey string) (string, bool, error)
	CanonicalFields(ctx context.Context, policyType string) ([]string, error)

	// Alias management
	AddAlias(ctx context.Context, policyType, alias, canonical string) error
	BulkAddAliases(ctx context.Context, policyType string, payload map[string]interface{}) (int, error)
	ListAliases(ctx context.Context, policyType string) (map[string][]string, error)
	RebuildDefaults(ctx context.Context, policyType string) (models.AliasMap, error)
	InvalidateCache(ctx context.Context, policyType string) error
}

// FieldMappingService defines the interface for mapping extracted fields onto policy records
type FieldMappingService interface {
	MapFields(ctx context.Context, record models.PolicyRecord, extracted map[string]interface{}) (*FieldMappingResult, error)
}

// PolicyService defines the interface for policy record operations
type PolicyService interface {
	CreateFromDocument(ctx context.Context, documentID, actorID, actorUsername string) (*PolicyCreationResult, error)

	// Motor policies
	GetMotorPolicy(ctx context.Context, id string) (*models.MotorPolicy, error)
	ListMotorPolicies(ctx context.Context, syncStatus string, limit, offset int) ([]*models.MotorPolicy, error)
	UpdateMotorPolicy(ctx context.Context, id string, fields map[string]interface{}, actorID string) (*models.MotorPolicy, error)

	// Health policies
	GetHealthPolicy(ctx context.Context, id string) (*models.HealthPolicy, error)
	ListHealthPolicies(ctx context.Context, syncStatus string, limit, offset int) ([]*models.HealthPolicy, error)
	UpdateHealthPolicy(ctx context.Context, id string, fields map[string]interface{}, actorID string) (*models.HealthPolicy, error)
}

// SaibaClientService defines the interface for SAIBA ERP API calls
type SaibaClientService interface {
	GetToken(ctx context.Context) (string, error)
	PostPolicy(ctx context.Context, path string, payload map[string]interface{}) (*SaibaResponse, error)
	TestConnection(ctx context.Context) error
	InvalidateToken(ctx context.Context) error
}

// SaibaSyncService defines the interface for pushing policies to SAIBA
type SaibaSyncService interface {
	SyncPolicy(ctx context.Context, policyType, policyID string) (*SyncResult, error)
	SyncMotorPolicy(ctx context.Context, policyID string) (*SyncResult, error)
	SyncHealthPolicy(ctx context.Context, policyID string) (*SyncResult, error)
	TestConnection(ctx context.Context) error
}

// SaibaValidationService defines the interface for pre-sync validation operations
type SaibaValidationService interface {
	ValidatePolicy(ctx context.Context, policyType, policyID string) (*ValidationReport, error)

	// Rule management
	CreateRule(ctx context.Context, rule *models.ValidationRule) error
	UpdateRule(ctx context.Context, rule *models.ValidationRule) error
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context, policyType string) ([]*models.ValidationRule, error)
	SeedDefaultRules(ctx context.Context, policyType string) (int, error)
	ResetDefaultRules(ctx context.Context, policyType string) (int, error)
}

// SettingsService defines the interface for reader settings management
type SettingsService interface {
	Get(ctx context.Context) (*models.ReaderSettings, error)
	Update(ctx context.Context, input *SettingsUpdate, actorID string) (*models.ReaderSettings, error)
}

// AuthenticationService defines the interface for authentication operations
type AuthenticationService interface {
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	GenerateJWT(ctx context.Context, user *models.User) (string, error)
	ValidateJWT(ctx context.Context, token string) (*models.User, error)
	HashPassword(password string) (string, error)
}

// MonitoringService defines the interface for health checks and dashboard statistics
type MonitoringService interface {
	RegisterHealthCheck(component string, checkFunc func(ctx context.Context) error)
	PerformHealthCheck(ctx context.Context, component string) *ComponentHealth
	GetSystemHealth(ctx context.Context) map[string]interface{}
	GetDashboardStats(ctx context.Context) (map[string]interface{}, error)
}
