package validation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validator provides the basic value checks shared by the entry rules.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// IsValidID reports whether id is a well-formed identifier (UUID).
func (v *Validator) IsValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// IsNonEmptyString checks that a string has content after trimming.
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidateString returns the trimmed string.
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// IsReasonableDate checks that a timestamp is within a plausible range for
// logged work, guarding against mistyped years.
func (v *Validator) IsReasonableDate(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() >= 2000 && t.Year() <= time.Now().Year()+1
}

// IsValidTimeRange checks that end is after start when end is set.
func (v *Validator) IsValidTimeRange(start time.Time, end *time.Time) bool {
	if end == nil {
		return true
	}
	return end.After(start)
}
