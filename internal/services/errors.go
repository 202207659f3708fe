package services

import (
	"fmt"
)

// CompileError reports a payload compilation failure. It always names the
// offending target key so operators can fix the mapping without a real
// application record.
type CompileError struct {
	TargetKey  string
	SourcePath string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("payload compilation failed: required mapping %q (source %q) resolved to no value", e.TargetKey, e.SourcePath)
}

// DeliveryError reports a delivery failure distinct from compilation:
// a non-2xx response or a network/timeout error.
type DeliveryError struct {
	StatusCode int // 0 when the request never completed
	Message    string
}

func (e *DeliveryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("delivery failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("delivery failed: %s", e.Message)
}
