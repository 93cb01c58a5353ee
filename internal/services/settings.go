package services

import (
	"context"
	"fmt"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// ErrInvalidSettings marks a settings change rejected by validation
var ErrInvalidSettings = fmt.Errorf("invalid settings")

// SettingsUpdate carries a partial settings change. Nil fields are left
// untouched so callers only send what they want to change.
type SettingsUpdate struct {
	ClaudeAPIKey        *string  `json:"claude_api_key,omitempty"`
	ClaudeModel         *string  `json:"claude_model,omitempty"`
	MaxPages            *int     `json:"max_pages,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	ExtractionTimeout   *int     `json:"extraction_timeout,omitempty"`

	SaibaEnabled          *bool   `json:"saiba_enabled,omitempty"`
	SaibaBaseURL          *string `json:"saiba_base_url,omitempty"`
	SaibaUsername         *string `json:"saiba_username,omitempty"`
	SaibaPassword         *string `json:"saiba_password,omitempty"`
	SaibaSyncRequiredOnly *bool   `json:"saiba_sync_required_only,omitempty"`
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	auditRepo    repositories.AuditLogRepository
	cache        *CacheService
	validation   *models.ValidationService
	logger       *logger.Logger
}

// NewSettingsService creates the service managing the reader settings row
func NewSettingsService(settingsRepo repositories.SettingsRepository, auditRepo repositories.AuditLogRepository, cache *CacheService, validation *models.ValidationService, log *logger.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		validation:   validation,
		logger:       log,
	}
}

// Get returns the singleton settings row
func (s *settingsService) Get(ctx context.Context) (*models.ReaderSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// Update applies a partial settings change. Changing any SAIBA credential
// drops the cached SAIBA token so the next sync authenticates fresh.
func (s *settingsService) Update(ctx context.Context, input *SettingsUpdate, actorID string) (*models.ReaderSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	changed := models.JSONMap{}
	saibaChanged := false

	if input.ClaudeAPIKey != nil {
		settings.ClaudeAPIKey = *input.ClaudeAPIKey
		changed["claude_api_key"] = "(redacted)"
	}
	if input.ClaudeModel != nil {
		settings.ClaudeModel = *input.ClaudeModel
		changed["claude_model"] = *input.ClaudeModel
	}
	if input.MaxPages != nil {
		settings.MaxPages = *input.MaxPages
		changed["max_pages"] = *input.MaxPages
	}
	if input.ConfidenceThreshold != nil {
		settings.ConfidenceThreshold = *input.ConfidenceThreshold
		changed["confidence_threshold"] = *input.ConfidenceThreshold
	}
	if input.ExtractionTimeout != nil {
		settings.ExtractionTimeout = *input.ExtractionTimeout
		changed["extraction_timeout"] = *input.ExtractionTimeout
	}
	if input.SaibaEnabled != nil {
		settings.SaibaEnabled = *input.SaibaEnabled
		changed["saiba_enabled"] = *input.SaibaEnabled
	}
	if input.SaibaBaseURL != nil {
		settings.SaibaBaseURL = *input.SaibaBaseURL
		changed["saiba_base_url"] = *input.SaibaBaseURL
		saibaChanged = true
	}
	if input.SaibaUsername != nil {
		settings.SaibaUsername = *input.SaibaUsername
		changed["saiba_username"] = *input.SaibaUsername
		saibaChanged = true
	}
	if input.SaibaPassword != nil {
		settings.SaibaPassword = *input.SaibaPassword
		changed["saiba_password"] = "(redacted)"
		saibaChanged = true
	}
	if input.SaibaSyncRequiredOnly != nil {
		settings.SaibaSyncRequiredOnly = *input.SaibaSyncRequiredOnly
		changed["saiba_sync_required_only"] = *input.SaibaSyncRequiredOnly
	}

	if len(changed) == 0 {
		return settings, nil
	}

	if saibaChanged {
		settings.SaibaToken = ""
		settings.SaibaTokenExpiry = nil
	}

	if err := s.validation.ValidateStruct(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	if saibaChanged && s.cache != nil {
		if err := s.cache.Delete(ctx, BuildSaibaTokenKey()); err != nil {
			s.logger.WithError(err).Warn("Failed to drop cached SAIBA token after settings change")
		}
	}

	s.auditUpdate(ctx, actorID, settings.ID, changed)
	s.logger.WithField("fields", len(changed)).Info("Reader settings updated")
	return settings, nil
}

func (s *settingsService) auditUpdate(ctx context.Context, actorID, settingsID string, changed models.JSONMap) {
	entry := &models.AuditLog{
		Action:       models.AuditActionUpdate,
		ResourceType: "reader_settings",
		ResourceID:   settingsID,
		NewValues:    changed,
		Timestamp:    time.Now(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write settings audit entry")
	}
}
