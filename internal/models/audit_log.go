package models

import (
	"time"
)

// Audit actions
const (
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
	AuditActionExtract  = "EXTRACT"
	AuditActionSync     = "SYNC"
	AuditActionValidate = "VALIDATE"
)

// AuditLog represents an immutable audit log entry for document, policy and
// settings changes
type AuditLog struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID       *string   `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Action       string    `json:"action" gorm:"not null" validate:"required,oneof=CREATE UPDATE DELETE EXTRACT SYNC VALIDATE"`
	ResourceType string    `json:"resource_type" gorm:"not null" validate:"required"`
	ResourceID   string    `json:"resource_id" gorm:"not null;index" validate:"required"`
	OldValues    JSONMap   `json:"old_values,omitempty" gorm:"type:jsonb"`
	NewValues    JSONMap   `json:"new_values,omitempty" gorm:"type:jsonb"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null;index"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
