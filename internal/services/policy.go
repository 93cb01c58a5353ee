package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// Expected policy creation failures, surfaced to the API as 4xx responses
var (
	ErrNoExtractedFields = fmt.Errorf("no extracted fields found, extract fields first")
	ErrPolicyTypeNotSet  = fmt.Errorf("policy type is not set on the document")
	ErrPolicyExists      = fmt.Errorf("policy already exists for this document")
	ErrEmptyMapping      = fmt.Errorf("no extracted fields could be mapped")
)

// Usernames that never seed the RM code on created health policies
var rmCodeExcludedUsers = map[string]bool{
	"admin":         true,
	"administrator": true,
}

// PolicyCreationResult reports what happened to each extracted field during
// policy creation
type PolicyCreationResult struct {
	PolicyType       string              `json:"policy_type"`
	PolicyID         string              `json:"policy_id"`
	MappedCount      int                 `json:"mapped_count"`
	UnmappedFields   []string            `json:"unmapped_fields,omitempty"`
	Suggestions      map[string][]string `json:"suggestions,omitempty"`
	ProtectedSkipped []string            `json:"protected_skipped,omitempty"`
}

type policyService struct {
	documentRepo repositories.PolicyDocumentRepository
	motorRepo    repositories.MotorPolicyRepository
	healthRepo   repositories.HealthPolicyRepository
	auditRepo    repositories.AuditLogRepository
	fieldMapper  FieldMappingService
	converter    *ValueConverter
	logger       *logger.Logger
}

// NewPolicyService creates the service that turns extracted fields into
// typed policy rows and manages them afterwards
func NewPolicyService(documentRepo repositories.PolicyDocumentRepository, motorRepo repositories.MotorPolicyRepository, healthRepo repositories.HealthPolicyRepository, auditRepo repositories.AuditLogRepository, fieldMapper FieldMappingService, converter *ValueConverter, log *logger.Logger) PolicyService {
	return &policyService{
		documentRepo: documentRepo,
		motorRepo:    motorRepo,
		healthRepo:   healthRepo,
		auditRepo:    auditRepo,
		fieldMapper:  fieldMapper,
		converter:    converter,
		logger:       log,
	}
}

// CreateFromDocument builds a policy from a document's extracted fields.
// Protected customer and insurer details are copied from the document before
// mapping so extracted values can never override them. The policy insert and
// the document link update run in one transaction.
func (s *policyService) CreateFromDocument(ctx context.Context, documentID, actorID, actorUsername string) (*PolicyCreationResult, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if !doc.HasExtractedFields() {
		return nil, ErrNoExtractedFields
	}
	if doc.PolicyType == "" {
		return nil, ErrPolicyTypeNotSet
	}
	canonicalType, ok := models.CanonicalPolicyType(doc.PolicyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, doc.PolicyType)
	}
	if doc.HasPolicy() {
		return nil, fmt.Errorf("%s %w", canonicalType, ErrPolicyExists)
	}

	extracted := flattenExtractedFields(doc.ExtractedFields)
	if len(extracted) == 0 {
		return nil, ErrEmptyMapping
	}

	record, _ := models.NewPolicyRecord(canonicalType)
	record.CopyProtectedFrom(doc)

	mapping, err := s.fieldMapper.MapFields(ctx, record, extracted)
	if err != nil {
		return nil, fmt.Errorf("failed to map extracted fields: %w", err)
	}
	if mapping.MappedCount == 0 {
		return nil, ErrEmptyMapping
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	result := &PolicyCreationResult{
		PolicyType:       canonicalType,
		MappedCount:      mapping.MappedCount,
		UnmappedFields:   mapping.UnmappedFields,
		Suggestions:      mapping.Suggestions,
		ProtectedSkipped: mapping.ProtectedSkipped,
	}

	switch policy := record.(type) {
	case *models.MotorPolicy:
		policy.PolicyDocumentID = doc.ID
		policy.PolicyFile = doc.PolicyFile
		if err := s.motorRepo.CreateForDocument(ctx, policy, doc); err != nil {
			return nil, fmt.Errorf("failed to create motor policy: %w", err)
		}
		result.PolicyID = policy.ID
		s.auditCreation(ctx, actorID, "motor_policy", policy.ID, doc.ID, result)

	case *models.HealthPolicy:
		policy.PolicyDocumentID = doc.ID
		policy.PolicyFile = doc.PolicyFile
		if policy.RmCe1Code == "" && actorUsername != "" && !rmCodeExcludedUsers[strings.ToLower(actorUsername)] {
			policy.RmCe1Code = actorUsername
		}
		if err := s.healthRepo.CreateForDocument(ctx, policy, doc); err != nil {
			return nil, fmt.Errorf("failed to create health policy: %w", err)
		}
		result.PolicyID = policy.ID
		s.auditCreation(ctx, actorID, "health_policy", policy.ID, doc.ID, result)
	}

	s.logger.WithDocument(doc.ID).WithField("policy_id", result.PolicyID).
		WithField("policy_type", canonicalType).
		WithField("mapped", result.MappedCount).
		WithField("unmapped", len(result.UnmappedFields)).
		Info("Policy created from document")

	return result, nil
}

func (s *policyService) auditCreation(ctx context.Context, actorID, resourceType, policyID, documentID string, result *PolicyCreationResult) {
	entry := &models.AuditLog{
		Action:       models.AuditActionCreate,
		ResourceType: resourceType,
		ResourceID:   policyID,
		NewValues: models.JSONMap{
			"policy_document_id": documentID,
			"mapped_count":       result.MappedCount,
			"unmapped_fields":    result.UnmappedFields,
		},
		Timestamp: time.Now(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write policy creation audit entry")
	}
}

// GetMotorPolicy returns a motor policy by ID
func (s *policyService) GetMotorPolicy(ctx context.Context, id string) (*models.MotorPolicy, error) {
	return s.motorRepo.GetByID(ctx, id)
}

// ListMotorPolicies lists motor policies, optionally filtered by sync status
func (s *policyService) ListMotorPolicies(ctx context.Context, syncStatus string, limit, offset int) ([]*models.MotorPolicy, error) {
	if syncStatus == "" {
		return s.motorRepo.GetAll(ctx, limit, offset)
	}
	return s.motorRepo.GetBySyncStatus(ctx, syncStatus, limit, offset)
}

// UpdateMotorPolicy applies operator edits to a motor policy. Values pass
// through the same conversion and set-field dispatch as extraction, so edits
// are bounded to schema fields and arrive typed.
func (s *policyService) UpdateMotorPolicy(ctx context.Context, id string, fields map[string]interface{}, actorID string) (*models.MotorPolicy, error) {
	policy, err := s.motorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load motor policy: %w", err)
	}

	changed, err := s.applyFieldEdits(policy, fields)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return policy, nil
	}

	if err := s.motorRepo.Update(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to update motor policy: %w", err)
	}
	s.auditUpdate(ctx, actorID, "motor_policy", policy.ID, changed)

	s.logger.WithPolicy(policy.ID).WithField("policy_type", models.PolicyTypeMotor).
		WithField("fields", len(changed)).
		Info("Policy updated")
	return policy, nil
}

// GetHealthPolicy returns a health policy by ID
func (s *policyService) GetHealthPolicy(ctx context.Context, id string) (*models.HealthPolicy, error) {
	return s.healthRepo.GetByID(ctx, id)
}

// ListHealthPolicies lists health policies, optionally filtered by sync status
func (s *policyService) ListHealthPolicies(ctx context.Context, syncStatus string, limit, offset int) ([]*models.HealthPolicy, error) {
	if syncStatus == "" {
		return s.healthRepo.GetAll(ctx, limit, offset)
	}
	return s.healthRepo.GetBySyncStatus(ctx, syncStatus, limit, offset)
}

// UpdateHealthPolicy applies operator edits to a health policy
func (s *policyService) UpdateHealthPolicy(ctx context.Context, id string, fields map[string]interface{}, actorID string) (*models.HealthPolicy, error) {
	policy, err := s.healthRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load health policy: %w", err)
	}

	changed, err := s.applyFieldEdits(policy, fields)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return policy, nil
	}

	if err := s.healthRepo.Update(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to update health policy: %w", err)
	}
	s.auditUpdate(ctx, actorID, "health_policy", policy.ID, changed)

	s.logger.WithPolicy(policy.ID).WithField("policy_type", models.PolicyTypeHealth).
		WithField("fields", len(changed)).
		Info("Policy updated")
	return policy, nil
}

// applyFieldEdits converts and sets each input field on the record, then
// validates the result. Unknown field names fail the whole edit.
func (s *policyService) applyFieldEdits(record models.PolicyRecord, fields map[string]interface{}) (models.JSONMap, error) {
	schema := record.Schema()
	changed := models.JSONMap{}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def, ok := schema[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownField, name)
		}
		converted := s.converter.Convert(def, fields[name])
		if err := record.SetField(name, converted); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", name, err)
		}
		changed[name] = converted
	}

	if len(changed) == 0 {
		return changed, nil
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return changed, nil
}

func (s *policyService) auditUpdate(ctx context.Context, actorID, resourceType, policyID string, changed models.JSONMap) {
	entry := &models.AuditLog{
		Action:       models.AuditActionUpdate,
		ResourceType: resourceType,
		ResourceID:   policyID,
		NewValues:    changed,
		Timestamp:    time.Now(),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to write policy update audit entry")
	}
}

// flattenExtractedFields normalizes an extraction payload to a flat field
// map. Payloads arrive in one of two shapes: a flat map of field to value,
// or a map of category names whose values are JSON-encoded field objects.
// Categories that fail to parse are skipped rather than failing the run.
func flattenExtractedFields(fields models.JSONMap) map[string]interface{} {
	if !payloadIsNested(fields) {
		return fields
	}

	flat := make(map[string]interface{})
	for _, value := range fields {
		switch v := value.(type) {
		case map[string]interface{}:
			for name, fieldValue := range v {
				flat[name] = fieldValue
			}
		case string:
			parsed, ok := parseCategoryObject(v)
			if !ok {
				continue
			}
			for name, fieldValue := range parsed {
				flat[name] = fieldValue
			}
		}
	}
	return flat
}

// payloadIsNested decides between the two extraction payload shapes by
// sampling up to five values in key order. Any object value, or any string
// value that looks like a JSON object (with or without an extra layer of
// quoting), marks the payload nested. Otherwise the payload is flat when at
// least 80% of the sampled values are simple scalars.
func payloadIsNested(fields models.JSONMap) bool {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 5 {
		keys = keys[:5]
	}
	if len(keys) == 0 {
		return false
	}

	simple := 0
	for _, k := range keys {
		switch v := fields[k].(type) {
		case map[string]interface{}:
			return true
		case string:
			stripped := stripWrappingQuotes(strings.TrimSpace(v))
			if strings.HasPrefix(stripped, "{") && strings.HasSuffix(stripped, "}") {
				return true
			}
			simple++
		case float64, int, int64, bool, nil:
			simple++
		}
	}
	return float64(simple)/float64(len(keys)) < 0.8
}

// parseCategoryObject parses one category value into its field map, retrying
// once with wrapping quotes stripped
func parseCategoryObject(raw string) (map[string]interface{}, bool) {
	trimmed := strings.TrimSpace(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed, true
	}

	stripped := stripWrappingQuotes(trimmed)
	if stripped != trimmed {
		parsed = nil
		if err := json.Unmarshal([]byte(stripped), &parsed); err == nil {
			return parsed, true
		}
	}
	return nil, false
}

// stripWrappingQuotes removes one layer of matching single or double quotes
func stripWrappingQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
