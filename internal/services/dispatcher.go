package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
	"github.com/aalfraarauscher/loan-app-admin/internal/repositories"
)

// maxCapturedBodyBytes bounds how much of a destination's response body is
// persisted per attempt.
const maxCapturedBodyBytes = 64 * 1024

// HTTPClientPool manages a pool of HTTP clients with connection pooling,
// one per destination endpoint
type HTTPClientPool struct {
	clients map[string]*http.Client
	mutex   sync.RWMutex
}

// NewHTTPClientPool creates a new HTTP client pool
func NewHTTPClientPool() *HTTPClientPool {
	return &HTTPClientPool{
		clients: make(map[string]*http.Client),
	}
}

// GetClient returns an HTTP client for the given endpoint. The round-trip
// deadline comes from the request context, not the client, because the
// timeout is configured per integration.
func (p *HTTPClientPool) GetClient(endpoint string) *http.Client {
	p.mutex.RLock()
	client, exists := p.clients[endpoint]
	p.mutex.RUnlock()

	if exists {
		return client
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if client, exists := p.clients[endpoint]; exists {
		return client
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client = &http.Client{
		Transport: transport,
	}

	p.clients[endpoint] = client
	return client
}

// AttemptOutcome reports one delivery attempt's classification together with
// the log entry it produced
type AttemptOutcome struct {
	Status        models.ExecutionStatus
	Entry         *models.ExecutionLog
	NextAttemptAt *time.Time
	Err           *DeliveryError // nil on success
}

// dispatcherService implements Dispatcher
type dispatcherService struct {
	logger     *logger.Logger
	logs       repositories.ExecutionLogRepository
	clientPool *HTTPClientPool
}

// NewDispatcherService creates a new dispatcher
func NewDispatcherService(logger *logger.Logger, logs repositories.ExecutionLogRepository) Dispatcher {
	return &dispatcherService{
		logger:     logger,
		logs:       logs,
		clientPool: NewHTTPClientPool(),
	}
}

// Send performs exactly one HTTP round trip for the delivery, bounded by the
// integration's timeout, and appends exactly one execution log entry before
// returning. Outcome classification: 2xx success; 4xx permanent failure with
// no retry; 5xx and network/timeout errors retryable while attempts remain.
func (s *dispatcherService) Send(ctx context.Context, integration *models.Integration, job *DeliveryJob) (*AttemptOutcome, error) {
	bodyBytes, err := json.Marshal(job.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqHeaders := s.buildHeaders(integration)

	attemptCtx, cancel := context.WithTimeout(ctx, integration.TimeoutDuration())
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, integration.Method, integration.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key, value := range reqHeaders {
		req.Header.Set(key, value)
	}

	client := s.clientPool.GetClient(integration.URL)

	start := time.Now()
	resp, doErr := client.Do(req)
	duration := time.Since(start)

	entry := &models.ExecutionLog{
		IntegrationID:  integration.ID,
		DeliveryID:     job.DeliveryID,
		ApplicationID:  job.ApplicationID,
		RequestURL:     integration.URL,
		RequestMethod:  integration.Method,
		RequestHeaders: redactHeaders(reqHeaders),
		RequestBody:    string(bodyBytes),
		DurationMS:     duration.Milliseconds(),
		RetryCount:     job.Attempt,
	}

	outcome := &AttemptOutcome{Entry: entry}

	if doErr != nil {
		entry.ErrorMessage = doErr.Error()
		outcome.Err = &DeliveryError{Message: doErr.Error()}
		s.classifyRetryable(integration, job, entry, outcome)
	} else {
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxCapturedBodyBytes))
		if readErr != nil {
			respBody = []byte(fmt.Sprintf("<failed to read response body: %v>", readErr))
		}

		statusCode := resp.StatusCode
		entry.ResponseStatus = &statusCode
		entry.ResponseHeaders = flattenHeaders(resp.Header)
		entry.ResponseBody = string(respBody)

		switch {
		case statusCode >= 200 && statusCode < 300:
			entry.Status = models.ExecutionStatusSuccess
			outcome.Status = models.ExecutionStatusSuccess

		case statusCode >= 500:
			entry.ErrorMessage = fmt.Sprintf("destination returned status %d", statusCode)
			outcome.Err = &DeliveryError{StatusCode: statusCode, Message: entry.ErrorMessage}
			s.classifyRetryable(integration, job, entry, outcome)

		default:
			// 4xx (and any other non-2xx) is a permanent rejection: the
			// payload itself is presumed wrong, retrying won't help.
			entry.Status = models.ExecutionStatusFailed
			entry.ErrorMessage = fmt.Sprintf("destination rejected request with status %d", statusCode)
			outcome.Status = models.ExecutionStatusFailed
			outcome.Err = &DeliveryError{StatusCode: statusCode, Message: entry.ErrorMessage}
		}
	}

	if logErr := s.logs.Create(ctx, entry); logErr != nil {
		s.logger.WithError(logErr).
			WithField("integration_id", integration.ID).
			WithField("delivery_id", job.DeliveryID).
			Error("Failed to persist execution log entry")
	}

	s.logger.WithIntegration(integration.ID).
		WithField("delivery_id", job.DeliveryID).
		WithField("attempt", job.Attempt).
		WithField("status", string(outcome.Status)).
		WithField("duration_ms", entry.DurationMS).
		Info("Delivery attempt completed")

	return outcome, nil
}

// classifyRetryable marks a transient failure as retrying while the job has
// tries left, or failed once the budget is exhausted
func (s *dispatcherService) classifyRetryable(integration *models.Integration, job *DeliveryJob, entry *models.ExecutionLog, outcome *AttemptOutcome) {
	if job.Attempt+1 < job.MaxTries {
		next := time.Now().Add(integration.RetryDelayDuration())
		entry.Status = models.ExecutionStatusRetrying
		entry.NextAttemptAt = &next
		outcome.Status = models.ExecutionStatusRetrying
		outcome.NextAttemptAt = &next
		return
	}
	entry.Status = models.ExecutionStatusFailed
	outcome.Status = models.ExecutionStatusFailed
}

// buildHeaders assembles the request headers: content type, the integration's
// custom headers, and the configured secret attached both as a bearer token
// and a vendor key header for compatibility with heterogeneous receivers.
func (s *dispatcherService) buildHeaders(integration *models.Integration) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for key, value := range integration.Headers {
		headers[key] = value
	}
	if integration.APIKey != "" {
		headers["Authorization"] = "Bearer " + integration.APIKey
		headers["X-API-Key"] = integration.APIKey
	}
	return headers
}

// redactHeaders hides secret-bearing header values before they reach the log
func redactHeaders(headers map[string]string) models.HeadersConfig {
	redacted := make(models.HeadersConfig, len(headers))
	for key, value := range headers {
		if key == "Authorization" || key == "X-API-Key" {
			redacted[key] = "[REDACTED]"
			continue
		}
		redacted[key] = value
	}
	return redacted
}

// flattenHeaders keeps the first value of each response header
func flattenHeaders(header http.Header) models.HeadersConfig {
	flat := make(models.HeadersConfig, len(header))
	for key, values := range header {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return flat
}
