package domain

import "time"

// Settings holds the per-user configuration that parameterizes every
// time-tracking rule. It is an immutable value passed explicitly into
// validator and lifecycle calls, never read from ambient state.
type Settings struct {
	UserID                  string
	DefaultHourlyRateCents  int64
	MaxRetroactiveDays      int
	DailyHourWarningMinutes int
	IdleTimeoutMinutes      int
	RoundToMinutes          int
	MinimumEntryMinutes     int
	AllowOverlapping        bool
	ClientVisibleLogs       bool
	RequireDescription      bool
	AutoStopAtMidnight      bool
	UpdatedAt               time.Time
}

// AllowedRoundingIncrements are the rounding increments a user may pick.
// Zero disables rounding.
var AllowedRoundingIncrements = []int{0, 1, 5, 6, 10, 15, 30, 60}

// IsAllowedRoundingIncrement reports whether minutes is a permitted
// rounding increment.
func IsAllowedRoundingIncrement(minutes int) bool {
	for _, inc := range AllowedRoundingIncrements {
		if minutes == inc {
			return true
		}
	}
	return false
}

// DefaultSettings returns the settings a freshly provisioned user gets.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:                  userID,
		DefaultHourlyRateCents:  0,
		MaxRetroactiveDays:      7,
		DailyHourWarningMinutes: 480,
		IdleTimeoutMinutes:      0,
		RoundToMinutes:          0,
		MinimumEntryMinutes:     1,
		AllowOverlapping:        false,
		ClientVisibleLogs:       true,
		RequireDescription:      false,
		AutoStopAtMidnight:      true,
	}
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	DefaultHourlyRateCents  *int64
	MaxRetroactiveDays      *int
	DailyHourWarningMinutes *int
	IdleTimeoutMinutes      *int
	RoundToMinutes          *int
	MinimumEntryMinutes     *int
	AllowOverlapping        *bool
	ClientVisibleLogs       *bool
	RequireDescription      *bool
	AutoStopAtMidnight      *bool
}

// Apply returns a copy of s with the non-nil patch fields applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.DefaultHourlyRateCents != nil {
		s.DefaultHourlyRateCents = *p.DefaultHourlyRateCents
	}
	if p.MaxRetroactiveDays != nil {
		s.MaxRetroactiveDays = *p.MaxRetroactiveDays
	}
	if p.DailyHourWarningMinutes != nil {
		s.DailyHourWarningMinutes = *p.DailyHourWarningMinutes
	}
	if p.IdleTimeoutMinutes != nil {
		s.IdleTimeoutMinutes = *p.IdleTimeoutMinutes
	}
	if p.RoundToMinutes != nil {
		s.RoundToMinutes = *p.RoundToMinutes
	}
	if p.MinimumEntryMinutes != nil {
		s.MinimumEntryMinutes = *p.MinimumEntryMinutes
	}
	if p.AllowOverlapping != nil {
		s.AllowOverlapping = *p.AllowOverlapping
	}
	if p.ClientVisibleLogs != nil {
		s.ClientVisibleLogs = *p.ClientVisibleLogs
	}
	if p.RequireDescription != nil {
		s.RequireDescription = *p.RequireDescription
	}
	if p.AutoStopAtMidnight != nil {
		s.AutoStopAtMidnight = *p.AutoStopAtMidnight
	}
	return s
}
