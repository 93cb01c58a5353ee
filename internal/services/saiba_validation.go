package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// ErrDuplicateRule rejects a second rule for the same (policy type, saiba
// field, policy field) triple
var ErrDuplicateRule = fmt.Errorf("validation rule already exists for this field pair")

// categoryOrder fixes the section order of validation reports
var categoryOrder = []string{
	models.CategoryPolicyInfo,
	models.CategoryCustomerInsurer,
	models.CategoryVehicle,
	models.CategoryInsuredPersons,
	models.CategoryFinancial,
	models.CategoryDates,
}

// notSetDisplay is shown for fields that carry no value yet
const notSetDisplay = "Not Set"

// FieldValidation is one rule evaluated against the current policy value
type FieldValidation struct {
	SaibaField     string `json:"saiba_field"`
	PolicyField    string `json:"policy_field"`
	Label          string `json:"label"`
	ValidationType string `json:"validation_type"`
	Value          string `json:"value"`
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
}

// CategoryReport groups evaluated fields under a display category
type CategoryReport struct {
	Category string            `json:"category"`
	Fields   []FieldValidation `json:"fields"`
}

// ValidationSummary totals a report. ReadyToSync flips to true only when no
// required field is invalid.
type ValidationSummary struct {
	TotalRequired int  `json:"total_required"`
	Valid         int  `json:"valid"`
	Invalid       int  `json:"invalid"`
	ReadyToSync   bool `json:"ready_to_sync"`
}

// ValidationReport is the full readiness report for one policy
type ValidationReport struct {
	PolicyType string            `json:"policy_type"`
	PolicyID   string            `json:"policy_id"`
	Categories []CategoryReport  `json:"categories"`
	Summary    ValidationSummary `json:"summary"`
}

type saibaValidationService struct {
	ruleRepo   repositories.ValidationRuleRepository
	motorRepo  repositories.MotorPolicyRepository
	healthRepo repositories.HealthPolicyRepository
	auditRepo  repositories.AuditLogRepository
	cache      *CacheService
	logger     *logger.Logger
}

// NewSaibaValidationService creates a new SAIBA readiness validation service
func NewSaibaValidationService(ruleRepo repositories.ValidationRuleRepository, motorRepo repositories.MotorPolicyRepository, healthRepo repositories.HealthPolicyRepository, auditRepo repositories.AuditLogRepository, cache *CacheService, log *logger.Logger) SaibaValidationService {
	return &saibaValidationService{
		ruleRepo:   ruleRepo,
		motorRepo:  motorRepo,
		healthRepo: healthRepo,
		auditRepo:  auditRepo,
		cache:      cache,
		logger:     log,
	}
}

// validationReportTTL keeps report reads cheap while operators poll a policy
const validationReportTTL = 5 * time.Second

// ValidatePolicy evaluates every required rule for the policy type against
// the stored policy and reports per-category results. The policy row is
// never modified.
func (s *saibaValidationService) ValidatePolicy(ctx context.Context, policyType, policyID string) (*ValidationReport, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}

	cacheKey := BuildValidationReportKey(canonicalType, policyID)
	if s.cache != nil {
		var cached ValidationReport
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var record models.PolicyRecord
	switch canonicalType {
	case models.PolicyTypeMotor:
		policy, err := s.motorRepo.GetByID(ctx, policyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load motor policy: %w", err)
		}
		record = policy
	case models.PolicyTypeHealth:
		policy, err := s.healthRepo.GetByID(ctx, policyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load health policy: %w", err)
		}
		record = policy
	}

	rules, err := s.ruleRepo.GetRequiredByPolicyType(ctx, canonicalType)
	if err != nil {
		return nil, fmt.Errorf("failed to load validation rules: %w", err)
	}

	report := buildValidationReport(record, rules)
	report.PolicyID = policyID

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, validationReportTTL); err != nil {
			s.logger.WithError(err).Debug("Failed to cache validation report")
		}
	}
	return report, nil
}

// CreateRule adds a readiness rule, rejecting duplicates of an existing
// (saiba field, policy field) pair
func (s *saibaValidationService) CreateRule(ctx context.Context, rule *models.ValidationRule) error {
	canonicalType, ok := models.CanonicalPolicyType(rule.PolicyType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, rule.PolicyType)
	}
	rule.PolicyType = canonicalType

	exists, err := s.ruleRepo.Exists(ctx, rule.PolicyType, rule.SaibaField, rule.PolicyField)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate rule: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateRule, rule.SaibaField, rule.PolicyField)
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return fmt.Errorf("failed to create validation rule: %w", err)
	}
	s.auditRule(ctx, models.AuditActionCreate, rule)
	return nil
}

// UpdateRule saves rule changes, keeping the duplicate check when the field
// pair moved
func (s *saibaValidationService) UpdateRule(ctx context.Context, rule *models.ValidationRule) error {
	existing, err := s.ruleRepo.GetByID(ctx, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to load validation rule: %w", err)
	}

	pairChanged := existing.PolicyType != rule.PolicyType ||
		existing.SaibaField != rule.SaibaField ||
		existing.PolicyField != rule.PolicyField
	if pairChanged {
		exists, err := s.ruleRepo.Exists(ctx, rule.PolicyType, rule.SaibaField, rule.PolicyField)
		if err != nil {
			return fmt.Errorf("failed to check for duplicate rule: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateRule, rule.SaibaField, rule.PolicyField)
		}
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return fmt.Errorf("failed to update validation rule: %w", err)
	}
	s.auditRule(ctx, models.AuditActionUpdate, rule)
	return nil
}

// DeleteRule removes a readiness rule
func (s *saibaValidationService) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load validation rule: %w", err)
	}
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete validation rule: %w", err)
	}
	s.auditRule(ctx, models.AuditActionDelete, rule)
	return nil
}

// ListRules returns all rules for a policy type in report order
func (s *saibaValidationService) ListRules(ctx context.Context, policyType string) ([]*models.ValidationRule, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}
	return s.ruleRepo.GetByPolicyType(ctx, canonicalType)
}

// SeedDefaultRules inserts the default rule set for a policy type, skipping
// pairs that already exist. Returns how many rules were created.
func (s *saibaValidationService) SeedDefaultRules(ctx context.Context, policyType string) (int, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}

	created := 0
	for _, seed := range defaultRulesFor(canonicalType) {
		exists, err := s.ruleRepo.Exists(ctx, canonicalType, seed.SaibaField, seed.PolicyField)
		if err != nil {
			return created, fmt.Errorf("failed to check for existing rule: %w", err)
		}
		if exists {
			continue
		}
		rule := seed
		rule.PolicyType = canonicalType
		rule.IsRequired = true
		if err := s.ruleRepo.Create(ctx, &rule); err != nil {
			return created, fmt.Errorf("failed to seed validation rule %s: %w", rule.SaibaField, err)
		}
		created++
	}

	if created > 0 {
		s.logger.WithPolicyType(canonicalType).WithField("rules", created).
			Info("Seeded default validation rules")
	}
	return created, nil
}

// ResetDefaultRules drops every rule for the policy type and reseeds the
// default set
func (s *saibaValidationService) ResetDefaultRules(ctx context.Context, policyType string) (int, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}

	if err := s.ruleRepo.DeleteByPolicyType(ctx, canonicalType); err != nil {
		return 0, fmt.Errorf("failed to clear validation rules: %w", err)
	}

	created, err := s.SeedDefaultRules(ctx, canonicalType)
	if err != nil {
		return created, err
	}

	s.logger.WithPolicyType(canonicalType).WithField("rules", created).
		Info("Validation rules reset to defaults")
	return created, nil
}

func (s *saibaValidationService) auditRule(ctx context.Context, action string, rule *models.ValidationRule) {
	entry := &models.AuditLog{
		Action:       action,
		ResourceType: "validation_rule",
		ResourceID:   rule.ID,
		NewValues: models.JSONMap{
			"policy_type":  rule.PolicyType,
			"saiba_field":  rule.SaibaField,
			"policy_field": rule.PolicyField,
		},
		Timestamp: time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write validation rule audit entry")
	}
}

// buildValidationReport evaluates rules against a record and groups the
// results in the fixed category order
func buildValidationReport(record models.PolicyRecord, rules []*models.ValidationRule) *ValidationReport {
	grouped := make(map[string][]FieldValidation)
	summary := ValidationSummary{}

	for _, rule := range rules {
		value, known := record.FieldValue(rule.PolicyField)
		field := FieldValidation{
			SaibaField:     rule.SaibaField,
			PolicyField:    rule.PolicyField,
			Label:          rule.Label,
			ValidationType: rule.ValidationType,
			Value:          displayFieldValue(value),
		}
		if !known {
			field.Valid = false
			field.Reason = "unknown policy field"
		} else {
			field.Valid, field.Reason = evaluateRule(rule.ValidationType, value)
		}

		summary.TotalRequired++
		if field.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
		grouped[rule.Category] = append(grouped[rule.Category], field)
	}
	summary.ReadyToSync = summary.Invalid == 0

	report := &ValidationReport{
		PolicyType: record.RecordType(),
		Summary:    summary,
	}

	seen := make(map[string]bool)
	for _, category := range categoryOrder {
		if fields, ok := grouped[category]; ok {
			report.Categories = append(report.Categories, CategoryReport{Category: category, Fields: fields})
			seen[category] = true
		}
	}
	var extra []string
	for category := range grouped {
		if !seen[category] {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	for _, category := range extra {
		report.Categories = append(report.Categories, CategoryReport{Category: category, Fields: grouped[category]})
	}
	return report
}

// evaluateRule applies one predicate to a field value
func evaluateRule(validationType string, value interface{}) (bool, string) {
	switch validationType {
	case models.RuleTypeInteger:
		if _, ok := intFromValue(value); !ok {
			return false, "must be a whole number"
		}
		return true, ""

	case models.RuleTypeIntegerNonzero:
		n, ok := intFromValue(value)
		if !ok || n == 0 {
			return false, "must be a non-zero whole number"
		}
		return true, ""

	case models.RuleTypeIntegerPositive:
		n, ok := intFromValue(value)
		if !ok || n <= 0 {
			return false, "must be a positive whole number"
		}
		return true, ""

	case models.RuleTypeDate:
		if _, ok := value.(time.Time); !ok {
			return false, "must be a valid date"
		}
		return true, ""

	case models.RuleTypeYesNo:
		s, _ := value.(string)
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "YES", "NO":
			return true, ""
		}
		return false, "must be YES or NO"

	case models.RuleTypeNewRenew:
		s, _ := value.(string)
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "new", "renew", "renewal":
			return true, ""
		}
		return false, "must be New or Renewal"

	case models.RuleTypeGcvPcvMisc:
		s, _ := value.(string)
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "GCV", "PCV", "MISC", "MISC.", "GSV":
			return true, ""
		}
		return false, "must be GCV, PCV or MISC"

	default:
		// string and any unrecognized predicate: non-empty
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			if value == nil {
				return false, "must not be empty"
			}
			if !ok {
				// non-string values count as set
				return true, ""
			}
			return false, "must not be empty"
		}
		return true, ""
	}
}

// intFromValue coerces a field value to a whole number where possible
func intFromValue(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// displayFieldValue renders a field value for the report, "Not Set" for
// missing values and DD-MM-YYYY for dates
func displayFieldValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return notSetDisplay
	case string:
		if strings.TrimSpace(v) == "" {
			return notSetDisplay
		}
		return v
	case time.Time:
		return v.Format("02-01-2006")
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprintf("%v", value)
}
