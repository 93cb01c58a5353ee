package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BusinessThatWorks/Salasar/internal/models"
)

func boolPtr(b bool) *bool { return &b }

// Uses strPtr and intPtr from document_processing_test.go

func newTestSettingsService(settingsRepo *MockSettingsRepository, auditRepo *MockAuditLogRepository) SettingsService {
	return NewSettingsService(settingsRepo, auditRepo, nil, models.NewValidationService(), createTestLogger())
}

func storedSettings() *models.ReaderSettings {
	expiry := time.Now().Add(2 * time.Hour)
	return &models.ReaderSettings{
		ID:                  "settings-1",
		ClaudeAPIKey:        "sk-ant-old-key",
		ClaudeModel:         "claude-3-5-sonnet-20241022",
		MaxPages:            5,
		ConfidenceThreshold: 0.7,
		ExtractionTimeout:   180,
		SaibaEnabled:        true,
		SaibaBaseURL:        "https://saiba.example.com",
		SaibaUsername:       "salasar-api",
		SaibaPassword:       "secret",
		SaibaToken:          "stale-token",
		SaibaTokenExpiry:    &expiry,
	}
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("nil fields are left untouched", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc := newTestSettingsService(settingsRepo, auditRepo)

		settings := storedSettings()
		settingsRepo.On("Get", ctx).Return(settings, nil)
		settingsRepo.On("Update", ctx, settings).Return(nil)
		auditRepo.On("Create", ctx, mock.Anything).Return(nil)

		updated, err := svc.Update(ctx, &SettingsUpdate{
			ClaudeModel: strPtr("claude-3-7-sonnet-20250219"),
			MaxPages:    intPtr(8),
		}, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, "claude-3-7-sonnet-20250219", updated.ClaudeModel)
		assert.Equal(t, 8, updated.MaxPages)
		assert.Equal(t, "sk-ant-old-key", updated.ClaudeAPIKey)
		assert.Equal(t, 180, updated.ExtractionTimeout)
	})

	t.Run("secrets are redacted in the audit trail", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc := newTestSettingsService(settingsRepo, auditRepo)

		settingsRepo.On("Get", ctx).Return(storedSettings(), nil)
		settingsRepo.On("Update", ctx, mock.Anything).Return(nil)
		auditRepo.On("Create", ctx, mock.MatchedBy(func(entry *models.AuditLog) bool {
			return entry.ResourceType == "reader_settings" &&
				entry.NewValues["claude_api_key"] == "(redacted)" &&
				entry.NewValues["saiba_password"] == "(redacted)"
		})).Return(nil)

		_, err := svc.Update(ctx, &SettingsUpdate{
			ClaudeAPIKey:  strPtr("sk-ant-new-key"),
			SaibaPassword: strPtr("new-secret"),
		}, "user-1")
		assert.NoError(t, err)
		auditRepo.AssertExpectations(t)
	})

	t.Run("changing a SAIBA credential drops the stored token", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc := newTestSettingsService(settingsRepo, auditRepo)

		settingsRepo.On("Get", ctx).Return(storedSettings(), nil)
		settingsRepo.On("Update", ctx, mock.MatchedBy(func(settings *models.ReaderSettings) bool {
			return settings.SaibaToken == "" && settings.SaibaTokenExpiry == nil
		})).Return(nil)
		auditRepo.On("Create", ctx, mock.Anything).Return(nil)

		updated, err := svc.Update(ctx, &SettingsUpdate{SaibaUsername: strPtr("salasar-uat")}, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, "salasar-uat", updated.SaibaUsername)
		assert.Empty(t, updated.SaibaToken)
		settingsRepo.AssertExpectations(t)
	})

	t.Run("non-credential change keeps the stored token", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc := newTestSettingsService(settingsRepo, auditRepo)

		settingsRepo.On("Get", ctx).Return(storedSettings(), nil)
		settingsRepo.On("Update", ctx, mock.Anything).Return(nil)
		auditRepo.On("Create", ctx, mock.Anything).Return(nil)

		updated, err := svc.Update(ctx, &SettingsUpdate{SaibaSyncRequiredOnly: boolPtr(true)}, "user-1")
		assert.NoError(t, err)
		assert.True(t, updated.SaibaSyncRequiredOnly)
		assert.Equal(t, "stale-token", updated.SaibaToken)
		assert.NotNil(t, updated.SaibaTokenExpiry)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		auditRepo := &MockAuditLogRepository{}
		svc := newTestSettingsService(settingsRepo, auditRepo)

		settings := storedSettings()
		settingsRepo.On("Get", ctx).Return(settings, nil)

		updated, err := svc.Update(ctx, &SettingsUpdate{}, "user-1")
		assert.NoError(t, err)
		assert.Equal(t, settings, updated)
		settingsRepo.AssertNotCalled(t, "Update", ctx, settings)
		auditRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
	})

	t.Run("out-of-range values are rejected", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		svc := newTestSettingsService(settingsRepo, &MockAuditLogRepository{})

		settingsRepo.On("Get", ctx).Return(storedSettings(), nil)

		_, err := svc.Update(ctx, &SettingsUpdate{MaxPages: intPtr(50)}, "user-1")
		assert.ErrorIs(t, err, ErrInvalidSettings)
		settingsRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})

	t.Run("malformed SAIBA URL is rejected", func(t *testing.T) {
		settingsRepo := &MockSettingsRepository{}
		svc := newTestSettingsService(settingsRepo, &MockAuditLogRepository{})

		settingsRepo.On("Get", ctx).Return(storedSettings(), nil)

		_, err := svc.Update(ctx, &SettingsUpdate{SaibaBaseURL: strPtr("not a url")}, "user-1")
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})
}

func TestSettingsService_Get(t *testing.T) {
	ctx := context.Background()

	settingsRepo := &MockSettingsRepository{}
	svc := newTestSettingsService(settingsRepo, &MockAuditLogRepository{})

	settings := storedSettings()
	settingsRepo.On("Get", ctx).Return(settings, nil)

	got, err := svc.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, settings, got)
}
