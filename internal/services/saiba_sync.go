package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// controlNumberPattern finds the SAIBA control number inside a success
// message like "Policy Saved Successfully Control No : 398254"
var controlNumberPattern = regexp.MustCompile(`(?i)Control No\s*:\s*(\d+)`)

// SyncResult is the outcome of one sync attempt. Rejections from SAIBA are
// reported here rather than as errors; the error return of the sync methods
// is reserved for local failures.
type SyncResult struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	ControlNumber string `json:"control_number,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

type saibaSyncService struct {
	client       SaibaClientService
	settingsRepo repositories.SettingsRepository
	motorRepo    repositories.MotorPolicyRepository
	healthRepo   repositories.HealthPolicyRepository
	ruleRepo     repositories.ValidationRuleRepository
	auditRepo    repositories.AuditLogRepository
	logger       *logger.Logger
}

// NewSaibaSyncService creates a new SAIBA sync orchestrator
func NewSaibaSyncService(client SaibaClientService, settingsRepo repositories.SettingsRepository, motorRepo repositories.MotorPolicyRepository, healthRepo repositories.HealthPolicyRepository, ruleRepo repositories.ValidationRuleRepository, auditRepo repositories.AuditLogRepository, log *logger.Logger) SaibaSyncService {
	return &saibaSyncService{
		client:       client,
		settingsRepo: settingsRepo,
		motorRepo:    motorRepo,
		healthRepo:   healthRepo,
		ruleRepo:     ruleRepo,
		auditRepo:    auditRepo,
		logger:       log,
	}
}

// SyncPolicy dispatches a sync by policy type
func (s *saibaSyncService) SyncPolicy(ctx context.Context, policyType, policyID string) (*SyncResult, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}
	if canonicalType == models.PolicyTypeMotor {
		return s.SyncMotorPolicy(ctx, policyID)
	}
	return s.SyncHealthPolicy(ctx, policyID)
}

// SyncMotorPolicy pushes one motor policy to the MotorPolicyEntryS endpoint
// and records the outcome on the policy row
func (s *saibaSyncService) SyncMotorPolicy(ctx context.Context, policyID string) (*SyncResult, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reader settings: %w", err)
	}
	if !settings.SaibaEnabled {
		return nil, ErrSaibaDisabled
	}

	policy, err := s.motorRepo.GetByID(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load motor policy: %w", err)
	}

	log := s.logger.WithPolicy(policy.ID).WithField("policy_type", models.PolicyTypeMotor)
	if err := s.markMotorPending(ctx, policy); err != nil {
		return nil, err
	}

	payload := BuildMotorSaibaPayload(policy)
	payload, err = s.applyRequiredOnlyFilter(ctx, settings, models.PolicyTypeMotor, payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.PostPolicy(ctx, saibaMotorEntryPath, payload)
	if err != nil {
		log.WithError(err).Error("SAIBA sync request failed")
		result := &SyncResult{Status: models.SyncStatusFailed, Error: err.Error()}
		if updateErr := s.recordMotorOutcome(ctx, policy, result, payload, nil); updateErr != nil {
			return nil, updateErr
		}
		return result, nil
	}

	result := classifySaibaResponse(resp)
	if err := s.recordMotorOutcome(ctx, policy, result, payload, resp); err != nil {
		return nil, err
	}

	if result.Success {
		log.WithField("control_number", result.ControlNumber).Info("Motor policy synced to SAIBA")
	} else {
		log.WithField("sync_error", result.Error).Warn("SAIBA rejected motor policy")
	}
	return result, nil
}

// SyncHealthPolicy pushes one health policy to the HealthPolicyEntryS
// endpoint and records the outcome on the policy row
func (s *saibaSyncService) SyncHealthPolicy(ctx context.Context, policyID string) (*SyncResult, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reader settings: %w", err)
	}
	if !settings.SaibaEnabled {
		return nil, ErrSaibaDisabled
	}

	policy, err := s.healthRepo.GetByID(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load health policy: %w", err)
	}

	log := s.logger.WithPolicy(policy.ID).WithField("policy_type", models.PolicyTypeHealth)
	if err := s.markHealthPending(ctx, policy); err != nil {
		return nil, err
	}

	payload := BuildHealthSaibaPayload(policy)
	payload, err = s.applyRequiredOnlyFilter(ctx, settings, models.PolicyTypeHealth, payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.PostPolicy(ctx, saibaHealthEntryPath, payload)
	if err != nil {
		log.WithError(err).Error("SAIBA sync request failed")
		result := &SyncResult{Status: models.SyncStatusFailed, Error: err.Error()}
		if updateErr := s.recordHealthOutcome(ctx, policy, result, payload, nil); updateErr != nil {
			return nil, updateErr
		}
		return result, nil
	}

	result := classifySaibaResponse(resp)
	if err := s.recordHealthOutcome(ctx, policy, result, payload, resp); err != nil {
		return nil, err
	}

	if result.Success {
		log.WithField("control_number", result.ControlNumber).Info("Health policy synced to SAIBA")
	} else {
		log.WithField("sync_error", result.Error).Warn("SAIBA rejected health policy")
	}
	return result, nil
}

// TestConnection verifies SAIBA connectivity by acquiring a token
func (s *saibaSyncService) TestConnection(ctx context.Context) error {
	return s.client.TestConnection(ctx)
}

// applyRequiredOnlyFilter trims the payload to required fields when the
// required-only setting is on. With no rules defined the full payload goes
// out unchanged.
func (s *saibaSyncService) applyRequiredOnlyFilter(ctx context.Context, settings *models.ReaderSettings, policyType string, payload map[string]interface{}) (map[string]interface{}, error) {
	if !settings.SaibaSyncRequiredOnly {
		return payload, nil
	}
	rules, err := s.ruleRepo.GetRequiredByPolicyType(ctx, policyType)
	if err != nil {
		return nil, fmt.Errorf("failed to load validation rules: %w", err)
	}
	return FilterPayloadToRequired(payload, rules), nil
}

func (s *saibaSyncService) markMotorPending(ctx context.Context, policy *models.MotorPolicy) error {
	now := time.Now()
	policy.SaibaSyncStatus = models.SyncStatusPending
	policy.SaibaSyncDatetime = &now
	if err := s.motorRepo.Update(ctx, policy); err != nil {
		return fmt.Errorf("failed to mark policy pending: %w", err)
	}
	return nil
}

func (s *saibaSyncService) markHealthPending(ctx context.Context, policy *models.HealthPolicy) error {
	now := time.Now()
	policy.SaibaSyncStatus = models.SyncStatusPending
	policy.SaibaSyncDatetime = &now
	if err := s.healthRepo.Update(ctx, policy); err != nil {
		return fmt.Errorf("failed to mark policy pending: %w", err)
	}
	return nil
}

func (s *saibaSyncService) recordMotorOutcome(ctx context.Context, policy *models.MotorPolicy, result *SyncResult, payload map[string]interface{}, resp *SaibaResponse) error {
	now := time.Now()
	policy.SaibaSyncStatus = result.Status
	policy.SaibaSyncDatetime = &now
	policy.SaibaControlNumber = result.ControlNumber
	policy.SaibaSyncError = result.Error
	policy.SaibaSyncResponse = buildSyncResponseRecord(payload, resp)
	if err := s.motorRepo.Update(ctx, policy); err != nil {
		return fmt.Errorf("failed to record sync outcome: %w", err)
	}
	s.auditSync(ctx, "motor_policy", policy.ID, result)
	return nil
}

func (s *saibaSyncService) recordHealthOutcome(ctx context.Context, policy *models.HealthPolicy, result *SyncResult, payload map[string]interface{}, resp *SaibaResponse) error {
	now := time.Now()
	policy.SaibaSyncStatus = result.Status
	policy.SaibaSyncDatetime = &now
	policy.SaibaControlNumber = result.ControlNumber
	policy.SaibaSyncError = result.Error
	policy.SaibaSyncResponse = buildSyncResponseRecord(payload, resp)
	if err := s.healthRepo.Update(ctx, policy); err != nil {
		return fmt.Errorf("failed to record sync outcome: %w", err)
	}
	s.auditSync(ctx, "health_policy", policy.ID, result)
	return nil
}

func (s *saibaSyncService) auditSync(ctx context.Context, resourceType, resourceID string, result *SyncResult) {
	entry := &models.AuditLog{
		Action:       models.AuditActionSync,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues: models.JSONMap{
			"saiba_sync_status":    result.Status,
			"saiba_control_number": result.ControlNumber,
			"saiba_sync_error":     result.Error,
		},
		Timestamp: time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write sync audit entry")
	}
}

// classifySaibaResponse decides the sync outcome from a SAIBA response: HTTP
// 200 with body status "Success" means synced, anything else carries an error
// pulled from the usual body fields
func classifySaibaResponse(resp *SaibaResponse) *SyncResult {
	status, _ := resp.Body["status"].(string)
	if resp.StatusCode == http.StatusOK && status == "Success" {
		message := firstSaibaString(resp.Body, "result", "message")
		if message == "" {
			message = resp.Raw
		}
		return &SyncResult{
			Success:       true,
			Status:        models.SyncStatusSynced,
			ControlNumber: extractControlNumber(message),
			Message:       message,
		}
	}
	return &SyncResult{
		Status: models.SyncStatusFailed,
		Error:  extractSaibaError(resp),
	}
}

// extractControlNumber pulls the control number out of a SAIBA success
// message, empty when the message carries none
func extractControlNumber(message string) string {
	if match := controlNumberPattern.FindStringSubmatch(message); len(match) == 2 {
		return match[1]
	}
	return ""
}

// extractSaibaError assembles the failure reason from a rejection response
func extractSaibaError(resp *SaibaResponse) string {
	if msg := firstSaibaString(resp.Body, "error"); msg != "" {
		return msg
	}
	if validations, ok := resp.Body["validations"]; ok && validations != nil {
		if msg, ok := validations.(string); ok && msg != "" {
			return msg
		}
		if encoded, err := json.Marshal(validations); err == nil {
			return string(encoded)
		}
	}
	if msg := firstSaibaString(resp.Body, "message"); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

func firstSaibaString(body map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// buildSyncResponseRecord is the request/response snapshot stored on the
// policy row for troubleshooting
func buildSyncResponseRecord(payload map[string]interface{}, resp *SaibaResponse) models.JSONMap {
	record := models.JSONMap{"request": payload}
	if resp == nil {
		record["response"] = nil
		return record
	}
	if resp.Body != nil {
		record["response"] = resp.Body
	} else {
		record["response"] = resp.Raw
	}
	record["status_code"] = resp.StatusCode
	return record
}
