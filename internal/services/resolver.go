package services

import (
	"sort"
	"strings"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// profilePathPrefix scopes a source path to the application's linked profile
// sub-record.
const profilePathPrefix = "profiles."

// FieldResolver resolves administrator-authored source paths against an
// application record. Paths are looked up in explicit tables rather than via
// reflection, so an unknown path is a write-time configuration error instead
// of a silent runtime miss.
type FieldResolver struct{}

// NewFieldResolver creates a new field resolver
func NewFieldResolver() *FieldResolver {
	return &FieldResolver{}
}

// applicationFields maps application-level path segments to accessors.
// An accessor returns (value, false) when the field is null or empty.
var applicationFields = map[string]func(*models.LoanApplication) (interface{}, bool){
	"id": func(a *models.LoanApplication) (interface{}, bool) {
		return presentString(a.ID)
	},
	"amount": func(a *models.LoanApplication) (interface{}, bool) {
		return a.Amount, true
	},
	"term_months": func(a *models.LoanApplication) (interface{}, bool) {
		return a.TermMonths, true
	},
	"purpose": func(a *models.LoanApplication) (interface{}, bool) {
		return presentString(a.Purpose)
	},
	"status": func(a *models.LoanApplication) (interface{}, bool) {
		return presentString(a.Status)
	},
	"submitted_at": func(a *models.LoanApplication) (interface{}, bool) {
		if a.SubmittedAt == nil {
			return nil, false
		}
		return *a.SubmittedAt, true
	},
	"created_at": func(a *models.LoanApplication) (interface{}, bool) {
		return a.CreatedAt, true
	},
}

// profileFields maps profile-level path segments (after the "profiles."
// prefix) to accessors.
var profileFields = map[string]func(*models.ApplicantProfile) (interface{}, bool){
	"full_name": func(p *models.ApplicantProfile) (interface{}, bool) {
		return presentString(p.FullName)
	},
	"email": func(p *models.ApplicantProfile) (interface{}, bool) {
		return presentString(p.Email)
	},
	"phone": func(p *models.ApplicantProfile) (interface{}, bool) {
		return presentString(p.Phone)
	},
	"date_of_birth": func(p *models.ApplicantProfile) (interface{}, bool) {
		if p.DateOfBirth == nil {
			return nil, false
		}
		return *p.DateOfBirth, true
	},
	"address": func(p *models.ApplicantProfile) (interface{}, bool) {
		return presentString(p.Address)
	},
	"city": func(p *models.ApplicantProfile) (interface{}, bool) {
		return presentString(p.City)
	},
}

func presentString(s string) (interface{}, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

// Resolve produces the scalar value at the given source path, or absent.
// It never fails for a missing or null field; defaulting is the mapping's
// concern, not the resolver's.
func (r *FieldResolver) Resolve(record *models.ApplicationRecord, path string) (interface{}, bool) {
	if record == nil {
		return nil, false
	}

	if strings.HasPrefix(path, profilePathPrefix) {
		if record.Profile == nil {
			return nil, false
		}
		accessor, ok := profileFields[strings.TrimPrefix(path, profilePathPrefix)]
		if !ok {
			return nil, false
		}
		return accessor(record.Profile)
	}

	if record.Application == nil {
		return nil, false
	}
	accessor, ok := applicationFields[path]
	if !ok {
		return nil, false
	}
	return accessor(record.Application)
}

// IsKnownPath reports whether a source path is resolvable, including the
// literal static token. Used to reject unknown paths when a mapping is written.
func (r *FieldResolver) IsKnownPath(path string) bool {
	if path == models.StaticSourcePath {
		return true
	}
	if strings.HasPrefix(path, profilePathPrefix) {
		_, ok := profileFields[strings.TrimPrefix(path, profilePathPrefix)]
		return ok
	}
	_, ok := applicationFields[path]
	return ok
}

// KnownPaths returns every resolvable source path, sorted, for the operator UI
func (r *FieldResolver) KnownPaths() []string {
	paths := make([]string, 0, len(applicationFields)+len(profileFields)+1)
	paths = append(paths, models.StaticSourcePath)
	for name := range applicationFields {
		paths = append(paths, name)
	}
	for name := range profileFields {
		paths = append(paths, profilePathPrefix+name)
	}
	sort.Strings(paths)
	return paths
}
