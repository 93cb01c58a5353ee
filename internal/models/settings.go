package models

import (
	"time"
)

// ReaderSettings is the singleton settings record for the policy reader.
// It carries the Claude extraction credentials, the SAIBA ERP connection
// parameters with the cached bearer token, and the per-type alias maps
// the field mapper and prompt builder resolve against.
type ReaderSettings struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	// Claude extraction
	ClaudeAPIKey        string  `json:"-" gorm:"column:claude_api_key"`
	ClaudeModel         string  `json:"claude_model"`
	MaxPages            int     `json:"max_pages" gorm:"default:5" validate:"omitempty,min=1,max=10"`
	ConfidenceThreshold float64 `json:"confidence_threshold" gorm:"default:0.7" validate:"omitempty,min=0.1,max=1.0"`
	ExtractionTimeout   int     `json:"extraction_timeout" gorm:"default:180" validate:"omitempty,min=60,max=600"`

	// SAIBA ERP connection
	SaibaEnabled          bool       `json:"saiba_enabled" gorm:"default:false"`
	SaibaBaseURL          string     `json:"saiba_base_url" validate:"omitempty,url"`
	SaibaUsername         string     `json:"saiba_username"`
	SaibaPassword         string     `json:"-" gorm:"column:saiba_password"`
	SaibaSyncRequiredOnly bool       `json:"saiba_sync_required_only" gorm:"default:false"`
	SaibaToken            string     `json:"-" gorm:"column:saiba_token"`
	SaibaTokenExpiry      *time.Time `json:"saiba_token_expiry,omitempty"`

	// Alias maps, alias -> canonical field, canonical fields map to themselves
	MotorPolicyFields  AliasMap   `json:"motor_policy_fields,omitempty" gorm:"type:jsonb"`
	HealthPolicyFields AliasMap   `json:"health_policy_fields,omitempty" gorm:"type:jsonb"`
	LastFieldSync      *time.Time `json:"last_field_sync,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for ReaderSettings
func (ReaderSettings) TableName() string {
	return "reader_settings"
}

// AliasMapFor returns the stored alias map for a policy type
func (s *ReaderSettings) AliasMapFor(policyType string) AliasMap {
	switch policyType {
	case PolicyTypeMotor:
		return s.MotorPolicyFields
	case PolicyTypeHealth:
		return s.HealthPolicyFields
	}
	return nil
}

// SetAliasMapFor stores the alias map for a policy type
func (s *ReaderSettings) SetAliasMapFor(policyType string, mapping AliasMap) {
	switch policyType {
	case PolicyTypeMotor:
		s.MotorPolicyFields = mapping
	case PolicyTypeHealth:
		s.HealthPolicyFields = mapping
	}
}

// TokenIsValid checks whether the cached SAIBA token is still usable. Tokens
// within five minutes of expiry are treated as expired so an in-flight sync
// does not race the cutoff.
func (s *ReaderSettings) TokenIsValid(now time.Time) bool {
	if s.SaibaToken == "" || s.SaibaTokenExpiry == nil {
		return false
	}
	return s.SaibaTokenExpiry.After(now.Add(5 * time.Minute))
}

// Validation rule predicate names
const (
	RuleTypeString          = "string"
	RuleTypeInteger         = "integer"
	RuleTypeIntegerNonzero  = "integer_nonzero"
	RuleTypeIntegerPositive = "integer_positive"
	RuleTypeDate            = "date"
	RuleTypeYesNo           = "yes_no"
	RuleTypeNewRenew        = "new_renew"
	RuleTypeGcvPcvMisc      = "gcv_pcv_misc"
)

// Validation rule display categories
const (
	CategoryPolicyInfo      = "Policy Information"
	CategoryCustomerInsurer = "Customer & Insurer"
	CategoryVehicle         = "Vehicle Information"
	CategoryInsuredPersons  = "Insured Persons"
	CategoryFinancial       = "Financial"
	CategoryDates           = "Dates"
)

// ValidationRule declares a SAIBA readiness requirement: the policy field
// feeding a SAIBA payload field and the predicate its value must satisfy
// before sync. Rules are unique per (policy type, saiba field, policy field).
type ValidationRule struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PolicyType     string `json:"policy_type" gorm:"not null;index;uniqueIndex:idx_rule_fields" validate:"required,oneof=Motor Health"`
	SaibaField     string `json:"saiba_field" gorm:"not null;uniqueIndex:idx_rule_fields" validate:"required"`
	PolicyField    string `json:"policy_field" gorm:"not null;uniqueIndex:idx_rule_fields" validate:"required"`
	Label          string `json:"label" gorm:"not null" validate:"required"`
	Category       string `json:"category" gorm:"not null" validate:"required"`
	ValidationType string `json:"validation_type" gorm:"not null;default:string" validate:"required,oneof=string integer integer_nonzero integer_positive date yes_no new_renew gcv_pcv_misc"`
	IsRequired     bool   `json:"is_required" gorm:"default:true"`
	Position       int    `json:"position" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for ValidationRule
func (ValidationRule) TableName() string {
	return "validation_rules"
}
