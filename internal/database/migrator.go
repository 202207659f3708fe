package database

import (
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
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
		&models.Organisation{},
		&models.ApplicantProfile{},
		&models.LoanApplication{},
		&models.Integration{},
		&models.FieldMapping{},
		&models.ExecutionLog{},
	)
}

// Down rolls back all migrations (for testing purposes)
func (m *Migrator) Down() error {
	return m.db.Migrator().DropTable(
		&models.ExecutionLog{},
		&models.FieldMapping{},
		&models.Integration{},
		&models.LoanApplication{},
		&models.ApplicantProfile{},
		&models.Organisation{},
	)
}
