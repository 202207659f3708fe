package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aalfraarauscher/loan-app-admin/internal/config"
	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	})
}

// fakeExecutionLogRepo is an in-memory append-only execution log
type fakeExecutionLogRepo struct {
	mu      sync.Mutex
	entries []*models.ExecutionLog
}

func (r *fakeExecutionLogRepo) Create(ctx context.Context, entry *models.ExecutionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeExecutionLogRepo) GetByID(ctx context.Context, id string) (*models.ExecutionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("execution log not found: %s", id)
}

func (r *fakeExecutionLogRepo) GetByIntegration(ctx context.Context, integrationID string, limit, offset int) ([]*models.ExecutionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.ExecutionLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].IntegrationID == integrationID {
			matched = append(matched, r.entries[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeExecutionLogRepo) GetByDelivery(ctx context.Context, deliveryID string) ([]*models.ExecutionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.ExecutionLog
	for _, entry := range r.entries {
		if entry.DeliveryID == deliveryID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (r *fakeExecutionLogRepo) GetLatestByIntegration(ctx context.Context, integrationID string) (*models.ExecutionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].IntegrationID == integrationID {
			return r.entries[i], nil
		}
	}
	return nil, fmt.Errorf("no execution logs for integration: %s", integrationID)
}

func (r *fakeExecutionLogRepo) all() []*models.ExecutionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ExecutionLog, len(r.entries))
	copy(out, r.entries)
	return out
}

// fakeIntegrationRepo is an in-memory integration store
type fakeIntegrationRepo struct {
	mu           sync.Mutex
	integrations map[string]*models.Integration
}

func newFakeIntegrationRepo(integrations ...*models.Integration) *fakeIntegrationRepo {
	repo := &fakeIntegrationRepo{integrations: make(map[string]*models.Integration)}
	for _, integration := range integrations {
		if integration.ID == "" {
			integration.ID = uuid.New().String()
		}
		repo.integrations[integration.ID] = integration
	}
	return repo
}

func (r *fakeIntegrationRepo) Create(ctx context.Context, integration *models.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}
	r.integrations[integration.ID] = integration
	return nil
}

func (r *fakeIntegrationRepo) GetByID(ctx context.Context, id string) (*models.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	integration, ok := r.integrations[id]
	if !ok {
		return nil, fmt.Errorf("integration not found: %s", id)
	}
	return integration, nil
}

func (r *fakeIntegrationRepo) GetByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Integration
	for _, integration := range r.integrations {
		if integration.OrganisationID == orgID {
			matched = append(matched, integration)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (r *fakeIntegrationRepo) GetEnabledByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error) {
	all, _ := r.GetByOrganisation(ctx, orgID)
	var enabled []*models.Integration
	for _, integration := range all {
		if integration.IsEnabled {
			enabled = append(enabled, integration)
		}
	}
	return enabled, nil
}

func (r *fakeIntegrationRepo) Update(ctx context.Context, integration *models.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.integrations[integration.ID]; !ok {
		return fmt.Errorf("integration not found: %s", integration.ID)
	}
	r.integrations[integration.ID] = integration
	return nil
}

func (r *fakeIntegrationRepo) SetEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	integration, ok := r.integrations[id]
	if !ok {
		return fmt.Errorf("integration not found: %s", id)
	}
	integration.IsEnabled = enabled
	return nil
}

func (r *fakeIntegrationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.integrations, id)
	return nil
}

// fakeMappingRepo is an in-memory field mapping store
type fakeMappingRepo struct {
	mu       sync.Mutex
	mappings map[string]*models.FieldMapping
}

func newFakeMappingRepo(mappings ...*models.FieldMapping) *fakeMappingRepo {
	repo := &fakeMappingRepo{mappings: make(map[string]*models.FieldMapping)}
	for _, mapping := range mappings {
		if mapping.ID == "" {
			mapping.ID = uuid.New().String()
		}
		repo.mappings[mapping.ID] = mapping
	}
	return repo
}

func (r *fakeMappingRepo) Create(ctx context.Context, mapping *models.FieldMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mapping.ID == "" {
		mapping.ID = uuid.New().String()
	}
	r.mappings[mapping.ID] = mapping
	return nil
}

func (r *fakeMappingRepo) GetByID(ctx context.Context, id string) (*models.FieldMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mapping, ok := r.mappings[id]
	if !ok {
		return nil, fmt.Errorf("field mapping not found: %s", id)
	}
	return mapping, nil
}

func (r *fakeMappingRepo) GetByIntegration(ctx context.Context, integrationID string) ([]*models.FieldMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.FieldMapping
	for _, mapping := range r.mappings {
		if mapping.IntegrationID == integrationID {
			matched = append(matched, mapping)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DisplayOrder < matched[j].DisplayOrder })
	return matched, nil
}

func (r *fakeMappingRepo) Update(ctx context.Context, mapping *models.FieldMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mappings[mapping.ID]; !ok {
		return fmt.Errorf("field mapping not found: %s", mapping.ID)
	}
	r.mappings[mapping.ID] = mapping
	return nil
}

func (r *fakeMappingRepo) Reorder(ctx context.Context, integrationID string, orderedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for position, id := range orderedIDs {
		mapping, ok := r.mappings[id]
		if !ok || mapping.IntegrationID != integrationID {
			return fmt.Errorf("field mapping not found for integration: %s", id)
		}
		mapping.DisplayOrder = position + 1
	}
	return nil
}

func (r *fakeMappingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mappings, id)
	return nil
}

func (r *fakeMappingRepo) DeleteByIntegration(ctx context.Context, integrationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, mapping := range r.mappings {
		if mapping.IntegrationID == integrationID {
			delete(r.mappings, id)
		}
	}
	return nil
}

// fakeOrganisationRepo is an in-memory organisation store
type fakeOrganisationRepo struct {
	mu   sync.Mutex
	orgs map[string]*models.Organisation
}

func newFakeOrganisationRepo(orgs ...*models.Organisation) *fakeOrganisationRepo {
	repo := &fakeOrganisationRepo{orgs: make(map[string]*models.Organisation)}
	for _, org := range orgs {
		if org.ID == "" {
			org.ID = uuid.New().String()
		}
		repo.orgs[org.ID] = org
	}
	return repo
}

func (r *fakeOrganisationRepo) Create(ctx context.Context, org *models.Organisation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrganisationRepo) GetByID(ctx context.Context, id string) (*models.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return nil, fmt.Errorf("organisation not found: %s", id)
	}
	return org, nil
}

func (r *fakeOrganisationRepo) GetAll(ctx context.Context) ([]*models.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Organisation
	for _, org := range r.orgs {
		all = append(all, org)
	}
	return all, nil
}

func (r *fakeOrganisationRepo) Update(ctx context.Context, org *models.Organisation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeOrganisationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orgs, id)
	return nil
}

// fakeApplicationRepo serves fixed application records
type fakeApplicationRepo struct {
	records map[string]*models.ApplicationRecord
}

func newFakeApplicationRepo(records map[string]*models.ApplicationRecord) *fakeApplicationRepo {
	return &fakeApplicationRepo{records: records}
}

func (r *fakeApplicationRepo) Get(ctx context.Context, applicationID string) (*models.ApplicationRecord, error) {
	record, ok := r.records[applicationID]
	if !ok {
		return nil, fmt.Errorf("application not found: %s", applicationID)
	}
	return record, nil
}

// inlineScheduler drives retry chains synchronously instead of through redis,
// so tests observe the full chain without a running queue
type inlineScheduler struct {
	executor AttemptExecutor
	enqueued []*DeliveryJob
}

func (s *inlineScheduler) EnqueueDelivery(ctx context.Context, job *DeliveryJob) error {
	s.enqueued = append(s.enqueued, job)
	if s.executor != nil {
		return s.executor.ExecuteAttempt(ctx, job)
	}
	return nil
}

func (s *inlineScheduler) ScheduleRetry(ctx context.Context, job *DeliveryJob, at time.Time) error {
	if s.executor != nil {
		return s.executor.ExecuteAttempt(ctx, job)
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}
