package repositories

import (
	"context"

	"github.com/aalfraarauscher/loan-app-admin/internal/database"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// executionLogRepository implements ExecutionLogRepository
type executionLogRepository struct {
	db *database.Connection
}

// NewExecutionLogRepository creates a new execution log repository
func NewExecutionLogRepository(db *database.Connection) ExecutionLogRepository {
	return &executionLogRepository{db: db}
}

// Create appends one delivery attempt record. Entries are never updated or
// deleted by the system; each write is a single atomic INSERT.
func (r *executionLogRepository) Create(ctx context.Context, entry *models.ExecutionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByID retrieves an execution log entry by ID
func (r *executionLogRepository) GetByID(ctx context.Context, id string) (*models.ExecutionLog, error) {
	var entry models.ExecutionLog
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByIntegration retrieves attempt records for an integration, newest first
func (r *executionLogRepository) GetByIntegration(ctx context.Context, integrationID string, limit, offset int) ([]*models.ExecutionLog, error) {
	var entries []*models.ExecutionLog
	err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

// GetByDelivery retrieves the full retry history of one logical delivery in
// creation order
func (r *executionLogRepository) GetByDelivery(ctx context.Context, deliveryID string) ([]*models.ExecutionLog, error) {
	var entries []*models.ExecutionLog
	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// GetLatestByIntegration retrieves the most recent attempt record for an
// integration, used for the operator's health summary
func (r *executionLogRepository) GetLatestByIntegration(ctx context.Context, integrationID string) (*models.ExecutionLog, error) {
	var entry models.ExecutionLog
	err := r.db.WithContext(ctx).
		Where("integration_id = ?", integrationID).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
