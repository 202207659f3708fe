package services

import (
	"time"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// SampleApplicationRecord returns the fixed application record used by test
// invocations. Its values exercise every transformer meaningfully: a
// multi-part name for splitting, a date of birth for age calculation, and a
// whole-valued amount for numeric stringification.
func SampleApplicationRecord() *models.ApplicationRecord {
	dob := time.Date(1992, time.April, 12, 0, 0, 0, 0, time.UTC)
	submitted := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	created := time.Date(2024, time.February, 28, 14, 0, 0, 0, time.UTC)

	return &models.ApplicationRecord{
		Application: &models.LoanApplication{
			ID:          "00000000-0000-0000-0000-000000000001",
			Amount:      25000,
			TermMonths:  36,
			Purpose:     "home_improvement",
			Status:      "submitted",
			SubmittedAt: &submitted,
			CreatedAt:   created,
		},
		Profile: &models.ApplicantProfile{
			ID:          "00000000-0000-0000-0000-000000000002",
			FullName:    "Jane Mary Doe",
			Email:       "jane.doe@example.com",
			Phone:       "+44 20 7946 0958",
			DateOfBirth: &dob,
			Address:     "1 Sample Street",
			City:        "London",
		},
	}
}
