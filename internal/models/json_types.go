package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// HeadersConfig holds HTTP headers stored as JSONB
type HeadersConfig map[string]string

// Value implements driver.Valuer interface for GORM
func (h HeadersConfig) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface for GORM
func (h *HeadersConfig) Scan(value interface{}) error {
	if value == nil {
		*h = make(HeadersConfig)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into HeadersConfig", value)
	}

	return json.Unmarshal(bytes, h)
}

// JSONMap is a custom type for map[string]interface{} that implements GORM interfaces
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface for GORM
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}

	return json.Unmarshal(bytes, m)
}
