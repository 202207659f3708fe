package services

import (
	"context"
	"time"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// Dispatcher owns the HTTP delivery contract for one attempt: request
// construction, the bounded round trip, outcome classification, and the
// attempt's execution log entry.
type Dispatcher interface {
	Send(ctx context.Context, integration *models.Integration, job *DeliveryJob) (*AttemptOutcome, error)
}

// AttemptExecutor executes one queued delivery attempt, including the
// retry-chaining decisions around it.
type AttemptExecutor interface {
	ExecuteAttempt(ctx context.Context, job *DeliveryJob) error
}

// RetryScheduler hands delivery attempts to the background queue: immediately
// for fresh dispatches, or at a due time for retries.
type RetryScheduler interface {
	EnqueueDelivery(ctx context.Context, job *DeliveryJob) error
	ScheduleRetry(ctx context.Context, job *DeliveryJob, at time.Time) error
}

// IntegrationService defines the interface for the integration registry:
// configuration management plus the dispatch and test entry points.
type IntegrationService interface {
	CreateIntegration(ctx context.Context, integration *models.Integration) (*models.Integration, error)
	UpdateIntegration(ctx context.Context, integration *models.Integration) (*models.Integration, error)
	DeleteIntegration(ctx context.Context, id string) error
	GetIntegration(ctx context.Context, id string) (*models.Integration, error)
	GetIntegrationsByOrganisation(ctx context.Context, orgID string) ([]*models.Integration, error)
	SetIntegrationEnabled(ctx context.Context, id string, enabled bool) error

	AddMapping(ctx context.Context, mapping *models.FieldMapping) (*models.FieldMapping, error)
	UpdateMapping(ctx context.Context, mapping *models.FieldMapping) (*models.FieldMapping, error)
	DeleteMapping(ctx context.Context, id string) error
	GetMappings(ctx context.Context, integrationID string) ([]*models.FieldMapping, error)
	ReorderMappings(ctx context.Context, integrationID string, orderedIDs []string) error

	Dispatch(ctx context.Context, integrationID, applicationID, trigger string) (string, error)
	DispatchEvent(ctx context.Context, orgID, applicationID, trigger string) error
	Test(ctx context.Context, integrationID string) (*TestResult, error)

	GetLogs(ctx context.Context, integrationID string, limit, offset int) ([]*models.ExecutionLog, error)
	GetHealth(ctx context.Context, orgID string) ([]*IntegrationHealth, error)
}

// TestResult is the synchronous outcome of an operator test invocation.
// Compilation errors and delivery errors are reported distinctly so
// misconfiguration is diagnosable without a real application record.
type TestResult struct {
	Outcome       models.ExecutionStatus `json:"outcome"`
	SamplePayload models.JSONMap         `json:"sample_payload,omitempty"`
	CompileError  string                 `json:"compile_error,omitempty"`
	DeliveryError string                 `json:"delivery_error,omitempty"`
	Response      *ResponseSummary       `json:"response,omitempty"`
}

// ResponseSummary condenses the destination's reply for operator feedback
type ResponseSummary struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// IntegrationHealth summarises one integration's configuration state and the
// outcome of its most recent delivery attempt
type IntegrationHealth struct {
	Integration *models.Integration    `json:"integration"`
	LastStatus  models.ExecutionStatus `json:"last_status,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	LastAttempt *time.Time             `json:"last_attempt,omitempty"`
}
