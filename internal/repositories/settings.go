package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/models"

	"gorm.io/gorm"
)

// settingsRepository implements SettingsRepository against a single
// reader_settings row. Get creates the row on first access so callers never
// see a missing-settings state.
type settingsRepository struct {
	db *database.Connection
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.Connection) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves the settings singleton, creating it with defaults when absent
func (r *settingsRepository) Get(ctx context.Context) (*models.ReaderSettings, error) {
	var settings models.ReaderSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.ReaderSettings{
		MaxPages:            5,
		ConfidenceThreshold: 0.7,
		ExtractionTimeout:   180,
	}
	if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create reader settings: %w", err)
	}
	return &settings, nil
}

// Update saves the settings singleton
func (r *settingsRepository) Update(ctx context.Context, settings *models.ReaderSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// UpdateToken writes the cached SAIBA token and its expiry without touching
// the rest of the row. An empty token clears both columns.
func (r *settingsRepository) UpdateToken(ctx context.Context, token string, expiry *time.Time) error {
	settings, err := r.Get(ctx)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"saiba_token":        token,
		"saiba_token_expiry": expiry,
	}
	if token == "" {
		updates["saiba_token_expiry"] = nil
	}

	return r.db.WithContext(ctx).
		Model(&models.ReaderSettings{}).
		Where("id = ?", settings.ID).
		Updates(updates).Error
}

// UpdateAliasMap writes the alias map column for a policy type and stamps the
// last field sync time
func (r *settingsRepository) UpdateAliasMap(ctx context.Context, policyType string, mapping models.AliasMap) error {
	settings, err := r.Get(ctx)
	if err != nil {
		return err
	}

	var column string
	switch policyType {
	case models.PolicyTypeMotor:
		column = "motor_policy_fields"
	case models.PolicyTypeHealth:
		column = "health_policy_fields"
	default:
		return fmt.Errorf("unsupported policy type: %s", policyType)
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.ReaderSettings{}).
		Where("id = ?", settings.ID).
		Updates(map[string]interface{}{
			column:            mapping,
			"last_field_sync": now,
		}).Error
}
