package services

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// Transformer names form a closed catalog. Adding one is an explicit,
// exhaustively-checked case addition, not an open registry.
const (
	TransformerNone          = "none"
	TransformerUppercase     = "uppercase"
	TransformerLowercase     = "lowercase"
	TransformerSplitFirst    = "split_first"
	TransformerSplitLast     = "split_last"
	TransformerCalculateAge  = "calculate_age"
	TransformerAppendMonths  = "append_months"
	TransformerGenerateEmail = "generate_email"
	TransformerDateFormat    = "date_format"
)

var transformerNames = map[string]struct{}{
	TransformerNone:          {},
	TransformerUppercase:     {},
	TransformerLowercase:     {},
	TransformerSplitFirst:    {},
	TransformerSplitLast:     {},
	TransformerCalculateAge:  {},
	TransformerAppendMonths:  {},
	TransformerGenerateEmail: {},
	TransformerDateFormat:    {},
}

// dateLayouts are the accepted ISO-8601 representations of date-typed source
// values arriving as strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// outputDateLayout is the destination's expected date representation.
const outputDateLayout = "2006-01-02"

// TransformerCatalog applies the fixed catalog of pure value transformers.
// A transformer given a value of the wrong shape degrades to absent and
// defers to the mapping's default; it never aborts the payload.
type TransformerCatalog struct {
	emailDomain string
	now         func() time.Time
}

// NewTransformerCatalog creates a catalog deriving synthetic emails under the
// given domain
func NewTransformerCatalog(emailDomain string) *TransformerCatalog {
	return &TransformerCatalog{
		emailDomain: emailDomain,
		now:         time.Now,
	}
}

// IsKnownTransformer reports whether the name is in the catalog
func IsKnownTransformer(name string) bool {
	_, ok := transformerNames[name]
	return ok
}

// KnownTransformers returns the catalog names, sorted, for the operator UI
func KnownTransformers() []string {
	names := make([]string, 0, len(transformerNames))
	for name := range transformerNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs one named transformer over a resolved value. The record is
// consulted only by the name-splitting and email transformers, which may need
// the counterpart half of a full name the source path did not scope to.
func (c *TransformerCatalog) Apply(name string, value interface{}, present bool, record *models.ApplicationRecord) (interface{}, bool) {
	switch name {
	case TransformerNone, "":
		return value, present

	case TransformerUppercase:
		s, ok := stringify(value, present)
		if !ok {
			return nil, false
		}
		return strings.ToUpper(s), true

	case TransformerLowercase:
		s, ok := stringify(value, present)
		if !ok {
			return nil, false
		}
		return strings.ToLower(s), true

	case TransformerSplitFirst:
		full, ok := c.fullName(value, present, record)
		if !ok {
			return nil, false
		}
		first, _, _ := splitName(full)
		return first, true

	case TransformerSplitLast:
		full, ok := c.fullName(value, present, record)
		if !ok {
			return nil, false
		}
		_, last, hasLast := splitName(full)
		if !hasLast {
			return nil, false
		}
		return last, true

	case TransformerCalculateAge:
		dob, ok := toTime(value, present)
		if !ok {
			return nil, false
		}
		return wholeYearsBetween(dob, c.now()), true

	case TransformerAppendMonths:
		s, ok := stringify(value, present)
		if !ok {
			return nil, false
		}
		return s + " months", true

	case TransformerGenerateEmail:
		full, ok := c.fullName(value, present, record)
		if !ok {
			return nil, false
		}
		return syntheticEmail(full, c.emailDomain), true

	case TransformerDateFormat:
		t, ok := toTime(value, present)
		if !ok {
			return nil, false
		}
		return t.Format(outputDateLayout), true

	default:
		// Unknown names are rejected at write time; degrade to absent if one
		// slips through stale configuration.
		return nil, false
	}
}

// fullName resolves the name a split/email transformer operates on: the
// mapped value when present, otherwise the record's profile full name.
func (c *TransformerCatalog) fullName(value interface{}, present bool, record *models.ApplicationRecord) (string, bool) {
	if s, ok := stringify(value, present); ok {
		return s, true
	}
	if record != nil && record.Profile != nil && record.Profile.FullName != "" {
		return record.Profile.FullName, true
	}
	return "", false
}

// stringify coerces a present scalar to its string form
func stringify(value interface{}, present bool) (string, bool) {
	if !present || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case time.Time:
		return v.Format(time.RFC3339), true
	case float64:
		// Whole-valued floats print without a trailing ".0" so numeric DB
		// columns round-trip cleanly.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), true
		}
		return fmt.Sprintf("%g", v), true
	default:
		return fmt.Sprint(v), true
	}
}

// splitName splits a full name on its first whitespace run
func splitName(full string) (first, last string, hasLast bool) {
	full = strings.TrimSpace(full)
	idx := strings.IndexFunc(full, unicode.IsSpace)
	if idx < 0 {
		return full, "", false
	}
	first = full[:idx]
	last = strings.TrimLeftFunc(full[idx:], unicode.IsSpace)
	return first, last, last != ""
}

// toTime coerces a present value to a time, accepting native times and
// ISO-8601 strings
func toTime(value interface{}, present bool) (time.Time, bool) {
	if !present || value == nil {
		return time.Time{}, false
	}
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// wholeYearsBetween computes calendar-aware whole years elapsed from dob to now
func wholeYearsBetween(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	// Not yet reached this year's birthday
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// syntheticEmail derives a deterministic address from a name and domain
func syntheticEmail(name, domain string) string {
	parts := strings.Fields(strings.ToLower(name))
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		var b strings.Builder
		for _, r := range part {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			cleaned = append(cleaned, b.String())
		}
	}
	local := strings.Join(cleaned, ".")
	if local == "" {
		local = "applicant"
	}
	return local + "@" + domain
}
