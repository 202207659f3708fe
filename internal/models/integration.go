package models

import (
	"time"

	"gorm.io/gorm"
)

// Integration represents one configured outbound webhook destination
type Integration struct {
	ID             string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrganisationID string         `json:"organisation_id" gorm:"type:uuid;not null;index" validate:"required"`
	Name           string         `json:"name" gorm:"not null" validate:"required,min=1,max=255"`
	Description    string         `json:"description,omitempty" gorm:"type:text"`
	URL            string         `json:"url" gorm:"not null" validate:"required,http_url"`
	APIKey         string         `json:"api_key,omitempty" gorm:"type:text"`
	Method         string         `json:"method" gorm:"not null;default:'POST'" validate:"required,oneof=POST PUT PATCH"`
	Headers        HeadersConfig  `json:"headers,omitempty" gorm:"type:jsonb"`
	IsEnabled      bool           `json:"is_enabled" gorm:"default:true"`
	RetryAttempts  int            `json:"retry_attempts" gorm:"default:3" validate:"gte=0,lte=5"`
	RetryDelay     int            `json:"retry_delay" gorm:"default:60" validate:"gte=0,lte=3600"` // seconds
	Timeout        int            `json:"timeout" gorm:"default:30" validate:"gte=1,lte=300"`      // seconds
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Organisation  *Organisation  `json:"organisation,omitempty" gorm:"foreignKey:OrganisationID"`
	FieldMappings []FieldMapping `json:"field_mappings,omitempty" gorm:"foreignKey:IntegrationID;constraint:OnDelete:CASCADE"`
	ExecutionLogs []ExecutionLog `json:"execution_logs,omitempty" gorm:"foreignKey:IntegrationID"`
}

// TableName returns the table name for Integration
func (Integration) TableName() string {
	return "integrations"
}

// RetryDelayDuration returns the configured retry delay as a duration
func (i *Integration) RetryDelayDuration() time.Duration {
	return time.Duration(i.RetryDelay) * time.Second
}

// TimeoutDuration returns the configured request timeout as a duration
func (i *Integration) TimeoutDuration() time.Duration {
	return time.Duration(i.Timeout) * time.Second
}
