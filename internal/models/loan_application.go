package models

import (
	"time"

	"gorm.io/gorm"
)

// LoanApplication is the read-only snapshot of a loan application consumed by
// the integration engine. The application workflow itself is owned by the
// surrounding system; the engine only resolves fields out of it.
type LoanApplication struct {
	ID             string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrganisationID string         `json:"organisation_id" gorm:"type:uuid;not null;index"`
	ProfileID      string         `json:"profile_id" gorm:"type:uuid;not null;index"`
	Amount         float64        `json:"amount"`
	TermMonths     int            `json:"term_months"`
	Purpose        string         `json:"purpose,omitempty"`
	Status         string         `json:"status" gorm:"not null;index"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Profile *ApplicantProfile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}

// TableName returns the table name for LoanApplication
func (LoanApplication) TableName() string {
	return "loan_applications"
}

// ApplicantProfile is the linked user profile sub-record of an application
type ApplicantProfile struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FullName    string         `json:"full_name"`
	Email       string         `json:"email,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	DateOfBirth *time.Time     `json:"date_of_birth,omitempty"`
	Address     string         `json:"address,omitempty"`
	City        string         `json:"city,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for ApplicantProfile
func (ApplicantProfile) TableName() string {
	return "applicant_profiles"
}

// ApplicationRecord is the resolved application-plus-profile record handed to
// the field resolver. Nil Profile means the application has no linked profile.
type ApplicationRecord struct {
	Application *LoanApplication
	Profile     *ApplicantProfile
}
