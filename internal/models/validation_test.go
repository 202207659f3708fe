package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestIntegration() *Integration {
	return &Integration{
		OrganisationID: "7a6bdf1e-9f6a-4a11-a77f-0d4d3b9a2f10",
		Name:           "core-banking",
		URL:            "https://destination.example.com/webhook",
		Method:         "POST",
		RetryAttempts:  3,
		RetryDelay:     60,
		Timeout:        30,
	}
}

func TestValidationService_Integration(t *testing.T) {
	vs := NewValidationService()

	t.Run("valid integration passes", func(t *testing.T) {
		assert.NoError(t, vs.ValidateStruct(validTestIntegration()))
	})

	t.Run("relative URL is rejected", func(t *testing.T) {
		integration := validTestIntegration()
		integration.URL = "/webhook"
		err := vs.ValidateStruct(integration)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "url")
	})

	t.Run("method outside POST/PUT/PATCH is rejected", func(t *testing.T) {
		integration := validTestIntegration()
		integration.Method = "GET"
		err := vs.ValidateStruct(integration)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "method")
	})

	t.Run("retry bounds are enforced", func(t *testing.T) {
		integration := validTestIntegration()
		integration.RetryAttempts = 6
		assert.Error(t, vs.ValidateStruct(integration))

		integration = validTestIntegration()
		integration.RetryAttempts = -1
		assert.Error(t, vs.ValidateStruct(integration))

		integration = validTestIntegration()
		integration.RetryDelay = 3601
		assert.Error(t, vs.ValidateStruct(integration))
	})

	t.Run("timeout bounds are enforced", func(t *testing.T) {
		integration := validTestIntegration()
		integration.Timeout = 0
		assert.Error(t, vs.ValidateStruct(integration))

		integration = validTestIntegration()
		integration.Timeout = 301
		assert.Error(t, vs.ValidateStruct(integration))
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		integration := validTestIntegration()
		integration.Name = ""
		assert.Error(t, vs.ValidateStruct(integration))
	})
}

func TestValidationService_FieldMapping(t *testing.T) {
	vs := NewValidationService()

	t.Run("valid mapping passes", func(t *testing.T) {
		mapping := &FieldMapping{
			IntegrationID: "7a6bdf1e-9f6a-4a11-a77f-0d4d3b9a2f10",
			SourcePath:    "profiles.full_name",
			TargetKey:     "applicant_name",
			Transformer:   "none",
		}
		assert.NoError(t, vs.ValidateStruct(mapping))
	})

	t.Run("missing target key is rejected", func(t *testing.T) {
		mapping := &FieldMapping{
			IntegrationID: "7a6bdf1e-9f6a-4a11-a77f-0d4d3b9a2f10",
			SourcePath:    "amount",
			Transformer:   "none",
		}
		err := vs.ValidateStruct(mapping)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target_key")
	})
}

func TestFieldMapping_IsStatic(t *testing.T) {
	assert.True(t, (&FieldMapping{SourcePath: StaticSourcePath}).IsStatic())
	assert.False(t, (&FieldMapping{SourcePath: "amount"}).IsStatic())
}

func TestExecutionStatus_IsTerminal(t *testing.T) {
	assert.True(t, ExecutionStatusSuccess.IsTerminal())
	assert.True(t, ExecutionStatusFailed.IsTerminal())
	assert.False(t, ExecutionStatusRetrying.IsTerminal())
	assert.False(t, ExecutionStatusPending.IsTerminal())
}
