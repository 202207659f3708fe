package repositories

import (
	"context"

	"github.com/aalfraarauscher/loan-app-admin/internal/database"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// applicationRecordRepository implements ApplicationRecordRepository
type applicationRecordRepository struct {
	db *database.Connection
}

// NewApplicationRecordRepository creates a new application record repository
func NewApplicationRecordRepository(db *database.Connection) ApplicationRecordRepository {
	return &applicationRecordRepository{db: db}
}

// Get retrieves the application plus its linked profile as one resolved record
func (r *applicationRecordRepository) Get(ctx context.Context, applicationID string) (*models.ApplicationRecord, error) {
	var application models.LoanApplication
	err := r.db.WithContext(ctx).
		Preload("Profile").
		First(&application, "id = ?", applicationID).Error
	if err != nil {
		return nil, err
	}

	return &models.ApplicationRecord{
		Application: &application,
		Profile:     application.Profile,
	}, nil
}
