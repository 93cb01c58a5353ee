package database

import (
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// Migrator handles database migrations
type Migrator struct {
	db *Connection
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *Connection) *Migrator {
	return &Migrator{db: db}
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	return m.db.AutoMigrate(
		&models.User{},
		&models.ReaderSettings{},
		&models.ValidationRule{},
		&models.PolicyDocument{},
		&models.MotorPolicy{},
		&models.HealthPolicy{},
		&models.AuditLog{},
	)
}

// Down rolls back all migrations (for testing purposes)
func (m *Migrator) Down() error {
	return m.db.Migrator().DropTable(
		&models.AuditLog{},
		&models.HealthPolicy{},
		&models.MotorPolicy{},
		&models.PolicyDocument{},
		&models.ValidationRule{},
		&models.ReaderSettings{},
		&models.User{},
	)
}
