package models

import (
	"time"

	"gorm.io/gorm"
)

// StaticSourcePath marks a mapping whose value is the default value verbatim,
// ignoring the application record.
const StaticSourcePath = "static"

// FieldMapping represents one rule translating a source field into a
// destination payload key, with optional transformation and default
type FieldMapping struct {
	ID            string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	IntegrationID string         `json:"integration_id" gorm:"type:uuid;not null;index" validate:"required"`
	SourcePath    string         `json:"source_path" gorm:"not null" validate:"required"`
	TargetKey     string         `json:"target_key" gorm:"not null" validate:"required"`
	Transformer   string         `json:"transformer" gorm:"not null;default:'none'" validate:"required"`
	DefaultValue  string         `json:"default_value,omitempty"`
	HasDefault    bool           `json:"has_default" gorm:"default:false"`
	Required      bool           `json:"required" gorm:"default:false"`
	DisplayOrder  int            `json:"display_order" gorm:"not null;default:0;index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Integration *Integration `json:"integration,omitempty" gorm:"foreignKey:IntegrationID"`
}

// TableName returns the table name for FieldMapping
func (FieldMapping) TableName() string {
	return "field_mappings"
}

// IsStatic checks whether the mapping ignores the source record and uses the
// default value verbatim
func (m *FieldMapping) IsStatic() bool {
	return m.SourcePath == StaticSourcePath
}
