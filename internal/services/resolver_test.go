package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

func TestFieldResolver_Resolve(t *testing.T) {
	resolver := NewFieldResolver()
	record := SampleApplicationRecord()

	t.Run("application fields", func(t *testing.T) {
		value, present := resolver.Resolve(record, "amount")
		require.True(t, present)
		assert.Equal(t, float64(25000), value)

		value, present = resolver.Resolve(record, "term_months")
		require.True(t, present)
		assert.Equal(t, 36, value)

		value, present = resolver.Resolve(record, "status")
		require.True(t, present)
		assert.Equal(t, "submitted", value)
	})

	t.Run("profile fields use the profiles prefix", func(t *testing.T) {
		value, present := resolver.Resolve(record, "profiles.full_name")
		require.True(t, present)
		assert.Equal(t, "Jane Mary Doe", value)

		value, present = resolver.Resolve(record, "profiles.city")
		require.True(t, present)
		assert.Equal(t, "London", value)
	})

	t.Run("empty string fields resolve absent", func(t *testing.T) {
		blank := &models.ApplicationRecord{
			Application: &models.LoanApplication{Amount: 100, TermMonths: 12},
			Profile:     &models.ApplicantProfile{},
		}

		_, present := resolver.Resolve(blank, "purpose")
		assert.False(t, present)

		_, present = resolver.Resolve(blank, "profiles.email")
		assert.False(t, present)
	})

	t.Run("nil date pointers resolve absent", func(t *testing.T) {
		blank := &models.ApplicationRecord{
			Application: &models.LoanApplication{},
			Profile:     &models.ApplicantProfile{},
		}

		_, present := resolver.Resolve(blank, "submitted_at")
		assert.False(t, present)

		_, present = resolver.Resolve(blank, "profiles.date_of_birth")
		assert.False(t, present)
	})

	t.Run("numeric fields are always present", func(t *testing.T) {
		zero := &models.ApplicationRecord{
			Application: &models.LoanApplication{},
		}

		value, present := resolver.Resolve(zero, "amount")
		require.True(t, present)
		assert.Equal(t, float64(0), value)

		value, present = resolver.Resolve(zero, "term_months")
		require.True(t, present)
		assert.Equal(t, 0, value)
	})

	t.Run("missing profile makes profile paths absent", func(t *testing.T) {
		noProfile := &models.ApplicationRecord{
			Application: &models.LoanApplication{Status: "draft"},
		}

		_, present := resolver.Resolve(noProfile, "profiles.full_name")
		assert.False(t, present)
	})

	t.Run("unknown paths resolve absent", func(t *testing.T) {
		_, present := resolver.Resolve(record, "credit_score")
		assert.False(t, present)

		_, present = resolver.Resolve(record, "profiles.passport_number")
		assert.False(t, present)
	})

	t.Run("nil record resolves absent", func(t *testing.T) {
		_, present := resolver.Resolve(nil, "amount")
		assert.False(t, present)
	})

	t.Run("dates resolve as native times", func(t *testing.T) {
		value, present := resolver.Resolve(record, "profiles.date_of_birth")
		require.True(t, present)
		dob, ok := value.(time.Time)
		require.True(t, ok)
		assert.Equal(t, 1992, dob.Year())
	})
}

func TestFieldResolver_KnownPaths(t *testing.T) {
	resolver := NewFieldResolver()

	assert.True(t, resolver.IsKnownPath("amount"))
	assert.True(t, resolver.IsKnownPath("profiles.date_of_birth"))
	assert.True(t, resolver.IsKnownPath(models.StaticSourcePath))
	assert.False(t, resolver.IsKnownPath("credit_score"))
	assert.False(t, resolver.IsKnownPath("profiles.unknown"))

	paths := resolver.KnownPaths()
	assert.Contains(t, paths, "static")
	assert.Contains(t, paths, "term_months")
	assert.Contains(t, paths, "profiles.full_name")
}
