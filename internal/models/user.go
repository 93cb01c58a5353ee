package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// User represents a system user
type User struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Username     string         `json:"username" gorm:"not null;uniqueIndex" validate:"required,min=3,max=50"`
	Email        string         `json:"email" gorm:"not null;uniqueIndex" validate:"required,email"`
	FullName     string         `json:"full_name,omitempty"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         string         `json:"role" gorm:"not null" validate:"required,oneof=operator admin"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsOperator checks if the user is a policy operator
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator
}
