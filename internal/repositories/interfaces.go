package repositories

import (
	"context"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// OrganisationRepository defines the interface for organisation data operations
type OrganisationRepository interface {
	Create(ctx context.Context, org *models.Organisation) error
	GetByID(ctx context.Context, id string) (*models.Organisation, error)
	GetAll(ctx context.Context) ([]*models.Organisation, error)
	Update(ctx context.Context, org *models.Organisation) error
	Delete(ctx context.Context, id string) error
}

// IntegrationRepository defines the interface for integration data operations
type IntegrationRepository interface {
	Create(ctx context.Context, integration *models.Integration) error
	GetByID(ctx context.Context, id string) (*models.Integration, error)
	GetByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error)
	GetEnabledByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error)
	Update(ctx context.Context, integration *models.Integration) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
}

// FieldMappingRepository defines the interface for field mapping data operations
type FieldMappingRepository interface {
	Create(ctx context.Context, mapping *models.FieldMapping) error
	GetByID(ctx context.Context, id string) (*models.FieldMapping, error)
	GetByIntegration(ctx context.Context, integrationID string) ([]*models.FieldMapping, error)
	Update(ctx context.Context, mapping *models.FieldMapping) error
	Reorder(ctx context.Context, integrationID string, orderedIDs []string) error
	Delete(ctx context.Context, id string) error
	DeleteByIntegration(ctx context.Context, integrationID string) error
}

// ExecutionLogRepository defines the append-only interface for delivery attempt records
type ExecutionLogRepository interface {
	Create(ctx context.Context, entry *models.ExecutionLog) error
	GetByID(ctx context.Context, id string) (*models.ExecutionLog, error)
	GetByIntegration(ctx context.Context, integrationID string, limit, offset int) ([]*models.ExecutionLog, error)
	GetByDelivery(ctx context.Context, deliveryID string) ([]*models.ExecutionLog, error)
	GetLatestByIntegration(ctx context.Context, integrationID string) (*models.ExecutionLog, error)
}

// ApplicationRecordRepository supplies read-only application snapshots to the
// field resolver. The loan workflow itself lives outside this system.
type ApplicationRecordRepository interface {
	Get(ctx context.Context, applicationID string) (*models.ApplicationRecord, error)
}
