package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
	"github.com/aalfraarauscher/loan-app-admin/internal/repositories"
)

// DeliveryJob is one queued delivery attempt. The payload is compiled once at
// dispatch time and carried through the retry chain unchanged, so every
// attempt sends the exact bytes the administrator's mappings produced, even if
// the application record changes while retries are pending.
type DeliveryJob struct {
	DeliveryID    string         `json:"delivery_id"`
	IntegrationID string         `json:"integration_id"`
	ApplicationID *string        `json:"application_id,omitempty"`
	Trigger       string         `json:"trigger,omitempty"`
	Payload       models.JSONMap `json:"payload"`
	Attempt       int            `json:"attempt"`
	MaxTries      int            `json:"max_tries"`
}

// DeliveryService executes queued delivery attempts and chains retries
// through the scheduler. It implements AttemptExecutor.
type DeliveryService struct {
	logger       *logger.Logger
	integrations repositories.IntegrationRepository
	logs         repositories.ExecutionLogRepository
	dispatcher   Dispatcher
	scheduler    RetryScheduler
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(
	logger *logger.Logger,
	integrations repositories.IntegrationRepository,
	logs repositories.ExecutionLogRepository,
	dispatcher Dispatcher,
	scheduler RetryScheduler,
) *DeliveryService {
	return &DeliveryService{
		logger:       logger,
		integrations: integrations,
		logs:         logs,
		dispatcher:   dispatcher,
		scheduler:    scheduler,
	}
}

// ExecuteAttempt performs one delivery attempt for a queued job. The
// integration's enabled flag is re-checked on every attempt, so disabling an
// integration halts a pending retry chain instead of letting stale jobs keep
// firing. A retryable outcome schedules the next attempt at the dispatcher's
// due time.
func (s *DeliveryService) ExecuteAttempt(ctx context.Context, job *DeliveryJob) error {
	integration, err := s.integrations.GetByID(ctx, job.IntegrationID)
	if err != nil {
		return fmt.Errorf("failed to load integration %s: %w", job.IntegrationID, err)
	}

	if !integration.IsEnabled {
		return s.abortDisabled(ctx, integration, job)
	}

	outcome, err := s.dispatcher.Send(ctx, integration, job)
	if err != nil {
		return fmt.Errorf("delivery attempt failed: %w", err)
	}

	if outcome.Status == models.ExecutionStatusRetrying && outcome.NextAttemptAt != nil {
		next := &DeliveryJob{
			DeliveryID:    job.DeliveryID,
			IntegrationID: job.IntegrationID,
			ApplicationID: job.ApplicationID,
			Trigger:       job.Trigger,
			Payload:       job.Payload,
			Attempt:       job.Attempt + 1,
			MaxTries:      job.MaxTries,
		}
		if err := s.scheduler.ScheduleRetry(ctx, next, *outcome.NextAttemptAt); err != nil {
			return fmt.Errorf("failed to schedule retry for delivery %s: %w", job.DeliveryID, err)
		}
	}

	return nil
}

// abortDisabled closes out a delivery chain whose integration was disabled
// while attempts were pending, appending a terminal failed entry so the chain
// does not end on a dangling "retrying" record.
func (s *DeliveryService) abortDisabled(ctx context.Context, integration *models.Integration, job *DeliveryJob) error {
	now := time.Now()
	entry := &models.ExecutionLog{
		IntegrationID: integration.ID,
		DeliveryID:    job.DeliveryID,
		ApplicationID: job.ApplicationID,
		RequestURL:    integration.URL,
		RequestMethod: integration.Method,
		ErrorMessage:  "integration disabled before attempt",
		RetryCount:    job.Attempt,
		Status:        models.ExecutionStatusFailed,
		CreatedAt:     now,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record aborted delivery: %w", err)
	}

	s.logger.WithIntegration(integration.ID).
		WithField("delivery_id", job.DeliveryID).
		WithField("attempt", job.Attempt).
		Info("Delivery aborted, integration disabled")

	return nil
}
