package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/aalfraarauscher/loan-app-admin/internal/database"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// fieldMappingRepository implements FieldMappingRepository
type fieldMappingRepository struct {
	db *database.Connection
}

// NewFieldMappingRepository creates a new field mapping repository
func NewFieldMappingRepository(db *database.Connection) FieldMappingRepository {
	return &fieldMappingRepository{db: db}
}

// Create creates a new field mapping
func (r *fieldMappingRepository) Create(ctx context.Context, mapping *models.FieldMapping) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

// GetByID retrieves a field mapping by ID
func (r *fieldMappingRepository) GetByID(ctx context.Context, id string) (*models.FieldMapping, error) {
	var mapping models.FieldMapping
	err := r.db.WithContext(ctx).First(&mapping, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// GetByIntegration retrieves an integration's mappings in ascending display order.
// Display order is the compiler's evaluation order, so the ordering here is
// load-bearing, not cosmetic.
func (r *fieldMappingRepository) GetByIntegration(ctx context.Context, integrationID string) ([]*models.FieldMapping, error) {
	var mappings []*models.FieldMapping
	err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("display_order ASC, created_at ASC").
		Find(&mappings).Error
	return mappings, err
}

// Update updates an existing field mapping
func (r *fieldMappingRepository) Update(ctx context.Context, mapping *models.FieldMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}

// Reorder rewrites the display order of an integration's mappings to match
// the given ID sequence
func (r *fieldMappingRepository) Reorder(ctx context.Context, integrationID string, orderedIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range orderedIDs {
			result := tx.Model(&models.FieldMapping{}).
				Where("id = ? AND integration_id = ?", id, integrationID).
				Update("display_order", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("mapping %s does not belong to integration %s", id, integrationID)
			}
		}
		return nil
	})
}

// Delete soft deletes a field mapping
func (r *fieldMappingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.FieldMapping{}, "id = ?", id).Error
}

// DeleteByIntegration soft deletes all mappings for an integration
func (r *fieldMappingRepository) DeleteByIntegration(ctx context.Context, integrationID string) error {
	return r.db.WithContext(ctx).Delete(&models.FieldMapping{}, "integration_id = ?", integrationID).Error
}
