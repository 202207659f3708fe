package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/aalfraarauscher/loan-app-admin/internal/database"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// integrationRepository implements IntegrationRepository
type integrationRepository struct {
	db *database.Connection
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *database.Connection) IntegrationRepository {
	return &integrationRepository{db: db}
}

// Create creates a new integration
func (r *integrationRepository) Create(ctx context.Context, integration *models.Integration) error {
	return r.db.WithContext(ctx).Create(integration).Error
}

// GetByID retrieves an integration by ID
func (r *integrationRepository) GetByID(ctx context.Context, id string) (*models.Integration, error) {
	var integration models.Integration
	err := r.db.WithContext(ctx).First(&integration, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// GetByOrganisation retrieves all integrations for an organisation
func (r *integrationRepository) GetByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error) {
	var integrations []*models.Integration
	err := r.db.WithContext(ctx).
		Where("organisation_id = ?", orgID).
		Order("created_at ASC").
		Find(&integrations).Error
	return integrations, err
}

// GetEnabledByOrganisation retrieves the integrations eligible for automatic dispatch
func (r *integrationRepository) GetEnabledByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error) {
	var integrations []*models.Integration
	err := r.db.WithContext(ctx).
		Where("organisation_id = ? AND is_enabled = ?", orgID, true).
		Order("created_at ASC").
		Find(&integrations).Error
	return integrations, err
}

// Update updates an existing integration
func (r *integrationRepository) Update(ctx context.Context, integration *models.Integration) error {
	return r.db.WithContext(ctx).Save(integration).Error
}

// SetEnabled toggles automatic dispatch for an integration
func (r *integrationRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Integration{}).
		Where("id = ?", id).
		Update("is_enabled", enabled).Error
}

// Delete soft deletes an integration and cascades its field mappings
func (r *integrationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("integration_id = ?", id).Delete(&models.FieldMapping{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Integration{}, "id = ?", id).Error
	})
}
