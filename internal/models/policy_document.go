package models

import (
	"time"

	"gorm.io/gorm"
)

// Policy document lifecycle statuses
const (
	DocumentStatusDraft      = "Draft"
	DocumentStatusQueued     = "Queued"
	DocumentStatusProcessing = "Processing"
	DocumentStatusCompleted  = "Completed"
	DocumentStatusFailed     = "Failed"
)

// Supported policy types
const (
	PolicyTypeMotor  = "Motor"
	PolicyTypeHealth = "Health"
)

// PolicyDocument represents an uploaded policy PDF and the state of its
// AI extraction run. Customer and insurer details are entered by the broker
// before extraction and are copied into created policies as protected fields.
type PolicyDocument struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title      string `json:"title" gorm:"not null" validate:"required"`
	PolicyFile string `json:"policy_file" gorm:"not null" validate:"required"`
	PolicyType string `json:"policy_type" gorm:"index" validate:"omitempty,oneof=Motor Health"`
	Status     string `json:"status" gorm:"not null;index;default:Draft" validate:"required,oneof=Draft Queued Processing Completed Failed"`

	ExtractedFields     JSONMap    `json:"extracted_fields,omitempty" gorm:"type:jsonb"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	ProcessingTime      float64    `json:"processing_time,omitempty"`
	TokensUsed          int        `json:"tokens_used,omitempty"`
	RetryCount          int        `json:"retry_count" gorm:"default:0"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`

	// Operator-entered customer and insurer details. These seed the protected
	// fields on created policies and are never overwritten by mapping.
	CustomerCode           int    `json:"customer_code,omitempty"`
	CustomerName           string `json:"customer_name,omitempty"`
	CustomerGroupName      string `json:"customer_group_name,omitempty"`
	InsuranceCompanyBranch string `json:"insurance_company_branch,omitempty"`
	InsurerName            string `json:"insurer_name,omitempty"`
	InsurerCity            string `json:"insurer_city,omitempty"`
	InsurerBranch          string `json:"insurer_branch,omitempty"`
	InsurerBranchCode      int    `json:"insurer_branch_code,omitempty"`

	MotorPolicyID  *string `json:"motor_policy_id,omitempty" gorm:"type:uuid;index"`
	HealthPolicyID *string `json:"health_policy_id,omitempty" gorm:"type:uuid;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	MotorPolicy  *MotorPolicy  `json:"motor_policy,omitempty" gorm:"foreignKey:MotorPolicyID"`
	HealthPolicy *HealthPolicy `json:"health_policy,omitempty" gorm:"foreignKey:HealthPolicyID"`
}

// TableName returns the table name for PolicyDocument
func (PolicyDocument) TableName() string {
	return "policy_documents"
}

// HasExtractedFields checks whether an extraction run has produced data
func (d *PolicyDocument) HasExtractedFields() bool {
	return len(d.ExtractedFields) > 0
}

// CanQueue checks whether the document may be queued for extraction
func (d *PolicyDocument) CanQueue() bool {
	return d.Status == DocumentStatusDraft || d.Status == DocumentStatusFailed
}

// IsTerminal checks whether processing has finished for this document
func (d *PolicyDocument) IsTerminal() bool {
	return d.Status == DocumentStatusCompleted || d.Status == DocumentStatusFailed
}

// HasPolicy checks whether a policy has already been created for the
// document's declared type
func (d *PolicyDocument) HasPolicy() bool {
	switch d.PolicyType {
	case PolicyTypeMotor:
		return d.MotorPolicyID != nil && *d.MotorPolicyID != ""
	case PolicyTypeHealth:
		return d.HealthPolicyID != nil && *d.HealthPolicyID != ""
	}
	return false
}
