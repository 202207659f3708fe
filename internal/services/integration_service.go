package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
	"github.com/aalfraarauscher/loan-app-admin/internal/repositories"
)

// ErrIntegrationDisabled is returned when a dispatch targets a disabled
// integration.
var ErrIntegrationDisabled = errors.New("integration is disabled")

// integrationService implements IntegrationService
type integrationService struct {
	logger        *logger.Logger
	organisations repositories.OrganisationRepository
	integrations  repositories.IntegrationRepository
	mappings      repositories.FieldMappingRepository
	logs          repositories.ExecutionLogRepository
	applications  repositories.ApplicationRecordRepository
	validation    *models.ValidationService
	resolver      *FieldResolver
	compiler      *PayloadCompiler
	dispatcher    Dispatcher
	scheduler     RetryScheduler
	sample        *models.ApplicationRecord
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(
	log *logger.Logger,
	organisations repositories.OrganisationRepository,
	integrations repositories.IntegrationRepository,
	mappings repositories.FieldMappingRepository,
	logs repositories.ExecutionLogRepository,
	applications repositories.ApplicationRecordRepository,
	validation *models.ValidationService,
	resolver *FieldResolver,
	compiler *PayloadCompiler,
	dispatcher Dispatcher,
	scheduler RetryScheduler,
) IntegrationService {
	return &integrationService{
		logger:        log,
		organisations: organisations,
		integrations:  integrations,
		mappings:      mappings,
		logs:          logs,
		applications:  applications,
		validation:    validation,
		resolver:      resolver,
		compiler:      compiler,
		dispatcher:    dispatcher,
		scheduler:     scheduler,
		sample:        SampleApplicationRecord(),
	}
}

// CreateIntegration creates a new webhook integration for an organisation
func (s *integrationService) CreateIntegration(ctx context.Context, integration *models.Integration) (*models.Integration, error) {
	if integration.Method == "" {
		integration.Method = "POST"
	}
	if err := s.validation.ValidateStruct(integration); err != nil {
		return nil, err
	}
	if _, err := s.organisations.GetByID(ctx, integration.OrganisationID); err != nil {
		return nil, fmt.Errorf("organisation %s not found: %w", integration.OrganisationID, err)
	}

	if err := s.integrations.Create(ctx, integration); err != nil {
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}

	s.logger.WithOrganisation(integration.OrganisationID).
		WithField("integration_id", integration.ID).
		WithField("url", integration.URL).
		Info("Integration created")

	return integration, nil
}

// UpdateIntegration updates an existing integration's configuration
func (s *integrationService) UpdateIntegration(ctx context.Context, integration *models.Integration) (*models.Integration, error) {
	existing, err := s.integrations.GetByID(ctx, integration.ID)
	if err != nil {
		return nil, err
	}
	// Tenancy is immutable
	integration.OrganisationID = existing.OrganisationID

	if err := s.validation.ValidateStruct(integration); err != nil {
		return nil, err
	}
	if err := s.integrations.Update(ctx, integration); err != nil {
		return nil, fmt.Errorf("failed to update integration: %w", err)
	}

	s.logger.WithIntegration(integration.ID).Info("Integration updated")
	return integration, nil
}

// DeleteIntegration removes an integration and its mappings. Execution logs
// are retained for audit.
func (s *integrationService) DeleteIntegration(ctx context.Context, id string) error {
	if _, err := s.integrations.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.integrations.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	s.logger.WithIntegration(id).Info("Integration deleted")
	return nil
}

// GetIntegration retrieves an integration by ID
func (s *integrationService) GetIntegration(ctx context.Context, id string) (*models.Integration, error) {
	return s.integrations.GetByID(ctx, id)
}

// GetIntegrationsByOrganisation lists an organisation's integrations
func (s *integrationService) GetIntegrationsByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error) {
	return s.integrations.GetByOrganisation(ctx, orgID)
}

// SetIntegrationEnabled toggles the enabled flag. Disabling takes effect for
// pending retries on their next attempt.
func (s *integrationService) SetIntegrationEnabled(ctx context.Context, id string, enabled bool) error {
	if _, err := s.integrations.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.integrations.SetEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("failed to update integration enabled state: %w", err)
	}
	s.logger.WithIntegration(id).WithField("enabled", enabled).Info("Integration enabled state changed")
	return nil
}

// AddMapping creates a field mapping after checking the source path and
// transformer against their closed catalogs, so configuration errors surface
// at write time instead of at dispatch time.
func (s *integrationService) AddMapping(ctx context.Context, mapping *models.FieldMapping) (*models.FieldMapping, error) {
	if mapping.Transformer == "" {
		mapping.Transformer = TransformerNone
	}
	if err := s.validateMapping(ctx, mapping); err != nil {
		return nil, err
	}
	if err := s.mappings.Create(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to create field mapping: %w", err)
	}
	s.logger.WithIntegration(mapping.IntegrationID).
		WithField("target_key", mapping.TargetKey).
		Info("Field mapping created")
	return mapping, nil
}

// UpdateMapping updates an existing field mapping
func (s *integrationService) UpdateMapping(ctx context.Context, mapping *models.FieldMapping) (*models.FieldMapping, error) {
	existing, err := s.mappings.GetByID(ctx, mapping.ID)
	if err != nil {
		return nil, err
	}
	mapping.IntegrationID = existing.IntegrationID

	if err := s.validateMapping(ctx, mapping); err != nil {
		return nil, err
	}
	if err := s.mappings.Update(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to update field mapping: %w", err)
	}
	return mapping, nil
}

// DeleteMapping removes a field mapping
func (s *integrationService) DeleteMapping(ctx context.Context, id string) error {
	if _, err := s.mappings.GetByID(ctx, id); err != nil {
		return err
	}
	return s.mappings.Delete(ctx, id)
}

// GetMappings lists an integration's mappings in display order
func (s *integrationService) GetMappings(ctx context.Context, integrationID string) ([]*models.FieldMapping, error) {
	return s.mappings.GetByIntegration(ctx, integrationID)
}

// ReorderMappings rewrites the display order of an integration's mappings
func (s *integrationService) ReorderMappings(ctx context.Context, integrationID string, orderedIDs []string) error {
	if _, err := s.integrations.GetByID(ctx, integrationID); err != nil {
		return err
	}
	return s.mappings.Reorder(ctx, integrationID, orderedIDs)
}

func (s *integrationService) validateMapping(ctx context.Context, mapping *models.FieldMapping) error {
	if err := s.validation.ValidateStruct(mapping); err != nil {
		return err
	}
	if _, err := s.integrations.GetByID(ctx, mapping.IntegrationID); err != nil {
		return fmt.Errorf("integration %s not found: %w", mapping.IntegrationID, err)
	}
	if !s.resolver.IsKnownPath(mapping.SourcePath) {
		return fmt.Errorf("unknown source path %q (known paths: %v)", mapping.SourcePath, s.resolver.KnownPaths())
	}
	if !IsKnownTransformer(mapping.Transformer) {
		return fmt.Errorf("unknown transformer %q (known transformers: %v)", mapping.Transformer, KnownTransformers())
	}
	if mapping.IsStatic() && !mapping.HasDefault {
		return fmt.Errorf("static mapping %q requires a default value", mapping.TargetKey)
	}
	return nil
}

// Dispatch compiles the payload for one application and enqueues the delivery.
// The payload is compiled synchronously, so a required-field failure is
// reported to the caller immediately; the HTTP attempt itself runs in the
// background queue. Returns the delivery ID grouping the attempt chain.
func (s *integrationService) Dispatch(ctx context.Context, integrationID, applicationID, trigger string) (string, error) {
	integration, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		return "", err
	}
	if !integration.IsEnabled {
		return "", ErrIntegrationDisabled
	}

	record, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		return "", fmt.Errorf("application %s not found: %w", applicationID, err)
	}

	job, err := s.buildJob(ctx, integration, record, &applicationID, trigger)
	if err != nil {
		s.logCompileFailure(ctx, integration, &applicationID, err)
		return "", err
	}

	if err := s.scheduler.EnqueueDelivery(ctx, job); err != nil {
		return "", err
	}

	s.logger.WithIntegration(integrationID).
		WithField("application_id", applicationID).
		WithField("delivery_id", job.DeliveryID).
		WithField("trigger", trigger).
		Info("Delivery dispatched")

	return job.DeliveryID, nil
}

// DispatchEvent fans an application event out to every enabled integration of
// the organisation. Integrations fail independently: one integration's
// compilation error never blocks another's delivery.
func (s *integrationService) DispatchEvent(ctx context.Context, orgID, applicationID, trigger string) error {
	integrations, err := s.integrations.GetEnabledByOrganisation(ctx, orgID)
	if err != nil {
		return err
	}

	record, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("application %s not found: %w", applicationID, err)
	}

	for _, integration := range integrations {
		job, err := s.buildJob(ctx, integration, record, &applicationID, trigger)
		if err != nil {
			s.logCompileFailure(ctx, integration, &applicationID, err)
			s.logger.WithError(err).
				WithField("integration_id", integration.ID).
				WithField("application_id", applicationID).
				Warn("Skipping integration, payload compilation failed")
			continue
		}
		if err := s.scheduler.EnqueueDelivery(ctx, job); err != nil {
			s.logger.WithError(err).
				WithField("integration_id", integration.ID).
				Error("Failed to enqueue delivery")
		}
	}

	return nil
}

func (s *integrationService) buildJob(ctx context.Context, integration *models.Integration, record *models.ApplicationRecord, applicationID *string, trigger string) (*DeliveryJob, error) {
	mappings, err := s.mappings.GetByIntegration(ctx, integration.ID)
	if err != nil {
		return nil, err
	}

	payload, err := s.compiler.Compile(record, mappings)
	if err != nil {
		return nil, err
	}

	return &DeliveryJob{
		DeliveryID:    uuid.New().String(),
		IntegrationID: integration.ID,
		ApplicationID: applicationID,
		Trigger:       trigger,
		Payload:       payload,
		Attempt:       0,
		MaxTries:      integration.RetryAttempts + 1,
	}, nil
}

// logCompileFailure records a payload compilation failure as a terminal log
// entry. No network call was made; the entry exists so the failure is visible
// in the integration's log history, not just the caller's error.
func (s *integrationService) logCompileFailure(ctx context.Context, integration *models.Integration, applicationID *string, compileErr error) {
	var compile *CompileError
	if !errors.As(compileErr, &compile) {
		return
	}
	entry := &models.ExecutionLog{
		IntegrationID: integration.ID,
		DeliveryID:    uuid.New().String(),
		ApplicationID: applicationID,
		RequestURL:    integration.URL,
		RequestMethod: integration.Method,
		ErrorMessage:  compile.Error(),
		Status:        models.ExecutionStatusFailed,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("integration_id", integration.ID).Error("Failed to record compile failure")
	}
}

// Test exercises an integration end to end with a built-in sample application
// record: compile, send once, report. It runs synchronously, performs exactly
// one attempt regardless of the retry configuration, and works on disabled
// integrations so operators can verify configuration before enabling.
func (s *integrationService) Test(ctx context.Context, integrationID string) (*TestResult, error) {
	integration, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}

	mappings, err := s.mappings.GetByIntegration(ctx, integrationID)
	if err != nil {
		return nil, err
	}

	payload, err := s.compiler.Compile(s.sample, mappings)
	if err != nil {
		var compileErr *CompileError
		if errors.As(err, &compileErr) {
			return &TestResult{
				Outcome:      models.ExecutionStatusFailed,
				CompileError: compileErr.Error(),
			}, nil
		}
		return nil, err
	}

	job := &DeliveryJob{
		DeliveryID:    uuid.New().String(),
		IntegrationID: integrationID,
		Payload:       payload,
		Attempt:       0,
		MaxTries:      1,
	}

	outcome, err := s.dispatcher.Send(ctx, integration, job)
	if err != nil {
		return nil, err
	}

	result := &TestResult{
		Outcome:       outcome.Status,
		SamplePayload: payload,
	}
	if outcome.Err != nil {
		result.DeliveryError = outcome.Err.Error()
	}
	if outcome.Entry != nil && outcome.Entry.ResponseStatus != nil {
		result.Response = &ResponseSummary{
			StatusCode: *outcome.Entry.ResponseStatus,
			Body:       outcome.Entry.ResponseBody,
			DurationMS: outcome.Entry.DurationMS,
		}
	}
	return result, nil
}

// GetLogs returns an integration's execution log entries, newest first
func (s *integrationService) GetLogs(ctx context.Context, integrationID string, limit, offset int) ([]*models.ExecutionLog, error) {
	if _, err := s.integrations.GetByID(ctx, integrationID); err != nil {
		return nil, err
	}
	return s.logs.GetByIntegration(ctx, integrationID, limit, offset)
}

// GetHealth summarises each of the organisation's integrations with the
// outcome of its most recent delivery attempt
func (s *integrationService) GetHealth(ctx context.Context, orgID string) ([]*IntegrationHealth, error) {
	integrations, err := s.integrations.GetByOrganisation(ctx, orgID)
	if err != nil {
		return nil, err
	}

	health := make([]*IntegrationHealth, 0, len(integrations))
	for _, integration := range integrations {
		item := &IntegrationHealth{Integration: integration}

		latest, err := s.logs.GetLatestByIntegration(ctx, integration.ID)
		if err == nil && latest != nil {
			item.LastStatus = latest.Status
			item.LastError = latest.ErrorMessage
			attemptedAt := latest.CreatedAt
			item.LastAttempt = &attemptedAt
		}

		health = append(health, item)
	}
	return health, nil
}
