package models

import (
	"time"
)

// ExecutionStatus represents the state of one delivery attempt
type ExecutionStatus string

const (
	ExecutionStatusPending  ExecutionStatus = "pending"
	ExecutionStatusSuccess  ExecutionStatus = "success"
	ExecutionStatusFailed   ExecutionStatus = "failed"
	ExecutionStatusRetrying ExecutionStatus = "retrying"
)

// IsTerminal reports whether no further log entries follow for the attempt
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed
}

// ExecutionLog is the immutable record of one HTTP delivery attempt.
// A retried attempt appends a new entry with the same DeliveryID rather than
// mutating the prior one, so the full retry history is reconstructible in
// creation order.
type ExecutionLog struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	IntegrationID   string          `json:"integration_id" gorm:"type:uuid;not null;index" validate:"required"`
	DeliveryID      string          `json:"delivery_id" gorm:"type:uuid;not null;index" validate:"required"`
	ApplicationID   *string         `json:"application_id,omitempty" gorm:"type:uuid;index"` // nil for test invocations
	RequestURL      string          `json:"request_url" gorm:"not null"`
	RequestMethod   string          `json:"request_method" gorm:"not null"`
	RequestHeaders  HeadersConfig   `json:"request_headers,omitempty" gorm:"type:jsonb"`
	RequestBody     string          `json:"request_body,omitempty" gorm:"type:text"`
	ResponseStatus  *int            `json:"response_status,omitempty"` // nil on network failure
	ResponseHeaders HeadersConfig   `json:"response_headers,omitempty" gorm:"type:jsonb"`
	ResponseBody    string          `json:"response_body,omitempty" gorm:"type:text"`
	ErrorMessage    string          `json:"error_message,omitempty" gorm:"type:text"`
	DurationMS      int64           `json:"duration_ms"`
	RetryCount      int             `json:"retry_count" gorm:"not null;default:0"`
	Status          ExecutionStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	NextAttemptAt   *time.Time      `json:"next_attempt_at,omitempty"` // durable retry due time
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`

	// Relationships
	Integration *Integration `json:"integration,omitempty" gorm:"foreignKey:IntegrationID"`
}

// TableName returns the table name for ExecutionLog
func (ExecutionLog) TableName() string {
	return "execution_logs"
}

// IsError checks if the attempt resulted in an error
func (e *ExecutionLog) IsError() bool {
	return e.Status == ExecutionStatusFailed || e.ErrorMessage != ""
}
