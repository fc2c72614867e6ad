package validation

import (
	"fmt"
	"time"

	"timeledger/internal/domain"
)

// Candidate is a proposed time entry (new or edited) as seen by the rule
// pipeline. For edits, EntryID names the entry being replaced so its own
// stored interval is excluded from the overlap set.
type Candidate struct {
	EntryID     string
	UserID      string
	EntryType   domain.EntryType
	Description string
	Start       time.Time
	End         time.Time
	Seconds     int64 // raw duration before normalization
}

// Warning is a non-fatal advisory surfaced alongside a successful
// validation. It never blocks the operation.
type Warning struct {
	Code         string
	Message      string
	TotalSeconds int64
}

// WarningCodeDailyHours flags a day whose cumulative total exceeds the
// configured threshold.
const WarningCodeDailyHours = "daily_hours"

// WarningCodeCarryOverSkipped flags a midnight split whose post-midnight
// remainder could not be recorded as its own entry.
const WarningCodeCarryOverSkipped = "carry_over_skipped"

// EntryRules holds the stateless decision functions governing time entry
// creation and editing. All inputs arrive as parameters; nothing is read
// from ambient state, so the rules are testable with synthetic settings.
type EntryRules struct {
	validator *Validator
}

// NewEntryRules creates a new EntryRules instance
func NewEntryRules() *EntryRules {
	return &EntryRules{
		validator: NewValidator(),
	}
}

// ValidateDescription enforces the description requirement. Manual entries
// must always explain themselves, regardless of the per-user setting; that
// keeps client-visible logs meaningful.
func (r *EntryRules) ValidateDescription(entryType domain.EntryType, description string, settings domain.Settings) error {
	required := settings.RequireDescription || entryType == domain.EntryTypeManual
	if !required {
		return nil
	}
	if r.validator.IsNonEmptyString(description) {
		return nil
	}

	validationError := NewValidationError()
	validationError.AddError("description", ErrorTypeRequired, "description required", description)
	return validationError
}

// ValidateRetroactiveWindow rejects manual entries dated too far in the
// past and any entry dated in the future. Dates are compared by calendar
// day in now's location.
func (r *EntryRules) ValidateRetroactiveWindow(entryType domain.EntryType, start time.Time, settings domain.Settings, now time.Time) error {
	validationError := NewValidationError()

	today := domain.StartOfDay(now)
	startDay := domain.StartOfDay(start.In(now.Location()))

	if startDay.After(today) {
		validationError.AddError("start_time", ErrorTypeFutureDate, "future date", start)
		return validationError
	}

	if entryType == domain.EntryTypeManual && settings.MaxRetroactiveDays >= 0 {
		earliest := today.AddDate(0, 0, -settings.MaxRetroactiveDays)
		if startDay.Before(earliest) {
			validationError.AddError("start_time", ErrorTypeTooFarInPast,
				fmt.Sprintf("too far in past: you can only add entries up to %d days in the past", settings.MaxRetroactiveDays),
				start)
			return validationError
		}
	}

	return nil
}

// ValidateOverlap rejects candidates whose interval intersects another
// entry of the same user. Skipped entirely when the user allows
// overlapping entries. A still-running entry's interval extends to now;
// touching endpoints are not a conflict.
func (r *EntryRules) ValidateOverlap(candidate domain.Interval, excludeEntryID string, existing []*domain.TimeEntry, settings domain.Settings, now time.Time) error {
	if settings.AllowOverlapping {
		return nil
	}

	for _, entry := range existing {
		if entry.ID == excludeEntryID {
			continue
		}
		if candidate.Overlaps(entry.Interval(now)) {
			validationError := NewValidationError()
			validationError.AddError("time_range", ErrorTypeOverlap, "overlaps existing entry", candidate)
			return validationError
		}
	}

	return nil
}

// ApplyMinimumDuration rounds short work up to the configured minimum.
// This is a disclosed normalization, not a rejection.
func (r *EntryRules) ApplyMinimumDuration(seconds int64, settings domain.Settings) int64 {
	minimum := int64(settings.MinimumEntryMinutes) * 60
	if minimum > 0 && seconds < minimum {
		return minimum
	}
	return seconds
}

// ApplyRounding rounds a duration to the nearest configured increment,
// half rounding up. Zero disables rounding. Non-zero work never rounds
// down to nothing: a 7-minute entry at a 15-minute increment bills one
// increment.
func (r *EntryRules) ApplyRounding(seconds int64, settings domain.Settings) int64 {
	if settings.RoundToMinutes <= 0 {
		return seconds
	}
	increment := int64(settings.RoundToMinutes) * 60
	rounded := (seconds + increment/2) / increment * increment
	if rounded == 0 && seconds > 0 {
		return increment
	}
	return rounded
}

// NormalizeDuration applies the minimum-duration floor and then rounding.
// Rounding can land below the minimum when the increment is smaller than
// the floor (a 7-minute minimum with 5-minute rounding would turn 430s
// into 300s); the result is then bumped to the smallest increment multiple
// at or above the minimum so the floor holds after rounding too.
func (r *EntryRules) NormalizeDuration(seconds int64, settings domain.Settings) int64 {
	normalized := r.ApplyRounding(r.ApplyMinimumDuration(seconds, settings), settings)
	minimum := int64(settings.MinimumEntryMinutes) * 60
	if normalized >= minimum {
		return normalized
	}
	increment := int64(settings.RoundToMinutes) * 60
	if increment <= 0 {
		return minimum
	}
	return (minimum + increment - 1) / increment * increment
}

// ComputeDailyWarning returns an advisory when the day's cumulative total,
// candidate included, exceeds the configured threshold. Never blocks.
func (r *EntryRules) ComputeDailyWarning(existingDaySeconds, newSeconds int64, settings domain.Settings) *Warning {
	if settings.DailyHourWarningMinutes <= 0 {
		return nil
	}
	threshold := int64(settings.DailyHourWarningMinutes) * 60
	total := existingDaySeconds + newSeconds
	if total <= threshold {
		return nil
	}
	return &Warning{
		Code:         WarningCodeDailyHours,
		Message:      fmt.Sprintf("daily total is %.1f hours, above your %.1f hour threshold", float64(total)/3600, float64(threshold)/3600),
		TotalSeconds: total,
	}
}

// ValidateEntry runs the full pipeline in its fixed order: description
// check, retroactive window, overlap, duration normalization, daily-hour
// advisory. Hard rejections short-circuit before normalization; the
// advisory is evaluated last and never blocks. Returns the normalized
// duration in seconds and any warnings.
func (r *EntryRules) ValidateEntry(c Candidate, existing []*domain.TimeEntry, settings domain.Settings, now time.Time) (int64, []Warning, error) {
	if err := r.ValidateDescription(c.EntryType, c.Description, settings); err != nil {
		return 0, nil, err
	}

	if err := r.ValidateRetroactiveWindow(c.EntryType, c.Start, settings, now); err != nil {
		return 0, nil, err
	}

	candidateInterval := domain.Interval{Start: c.Start, End: c.End}
	if err := r.ValidateOverlap(candidateInterval, c.EntryID, existing, settings, now); err != nil {
		return 0, nil, err
	}

	normalized := r.NormalizeDuration(c.Seconds, settings)

	var warnings []Warning
	if warning := r.ComputeDailyWarning(r.sameDayTotal(c, existing, now), normalized, settings); warning != nil {
		warnings = append(warnings, *warning)
	}

	return normalized, warnings, nil
}

// sameDayTotal sums the stored durations of the user's other entries on
// the candidate's calendar day, in now's location.
func (r *EntryRules) sameDayTotal(c Candidate, existing []*domain.TimeEntry, now time.Time) int64 {
	day := domain.StartOfDay(c.Start.In(now.Location()))

	var total int64
	for _, entry := range existing {
		if entry.ID == c.EntryID {
			continue
		}
		if !domain.SameDay(day, entry.StartTime) {
			continue
		}
		if entry.DurationSeconds != nil {
			total += *entry.DurationSeconds
		} else {
			total += int64(now.Sub(entry.StartTime) / time.Second)
		}
	}
	return total
}
