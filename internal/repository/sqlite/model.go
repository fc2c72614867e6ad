package sqlite

import "time"

// TimeEntry is the database representation of a time tracking entry.
type TimeEntry struct {
	ID          string
	UserID      string
	ProjectID   *string
	MilestoneID *string
	Description string

	StartTime       time.Time
	EndTime         *time.Time // NULL while the timer is running
	DurationSeconds *int64

	HourlyRateCents int64
	Billable        bool
	InvoiceID       *string

	EntryType    string
	LockedAt     *time.Time
	LockedReason *string

	AutoStopped    bool
	AutoStopReason *string

	OriginalStartTime       time.Time
	OriginalEndTime         *time.Time
	OriginalDurationSeconds *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EditRecord is one row of the append-only edit_records audit table.
type EditRecord struct {
	ID       int64
	EntryID  string
	EditedAt time.Time
	Field    string
	OldValue string
	NewValue string
	Reason   *string
}

// TrackingSettings is the per-user settings row.
type TrackingSettings struct {
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

// Project is the minimal project row kept for foreign-key checks and rate
// snapshots.
type Project struct {
	ID              string
	UserID          string
	Name            string
	HourlyRateCents *int64
}

// Invoice is the minimal invoice registry row standing in for the external
// invoicing subsystem.
type Invoice struct {
	ID        string
	UserID    string
	Status    string
	CreatedAt time.Time
}
