package domain

import (
	"time"
)

// EntryType describes how a time entry came into existence. Tracked entries
// are created by starting and stopping a live timer; manual entries had
// their times typed in after the fact. The type is set once at creation and
// never changes.
type EntryType string

const (
	EntryTypeTracked EntryType = "tracked"
	EntryTypeManual  EntryType = "manual"
)

// EntryState is the lifecycle state of an entry, derived from its fields.
type EntryState string

const (
	StateRunning EntryState = "running"
	StateStopped EntryState = "stopped"
	StateLocked  EntryState = "locked"
)

// Lock reasons recorded on an entry when it becomes immutable.
const (
	LockReasonInvoiced = "invoiced"
)

// Auto-stop reasons recorded when the system, not the user, ended a timer.
const (
	AutoStopReasonMidnight = "midnight"
	AutoStopReasonIdle     = "idle"
)

// TimeEntry represents a single time tracking entry in the domain model.
// This is a pure domain model without database-specific concerns.
type TimeEntry struct {
	ID          string
	UserID      string
	ProjectID   *string
	MilestoneID *string
	Description string

	StartTime       time.Time
	EndTime         *time.Time // nil while the timer is running
	DurationSeconds *int64     // nil while running; normalized once stopped

	// HourlyRateCents is a snapshot taken at creation time so historical
	// entries keep billing at the rate in effect when the work was logged.
	HourlyRateCents int64
	Billable        bool
	InvoiceID       *string

	EntryType    EntryType
	LockedAt     *time.Time
	LockedReason string

	AutoStopped    bool
	AutoStopReason string

	// Original* capture the first-created interval and are never touched by
	// later edits. They are the ground truth for audit comparison.
	OriginalStartTime       time.Time
	OriginalEndTime         *time.Time
	OriginalDurationSeconds *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRunning returns true if the entry is a currently running timer.
func (te TimeEntry) IsRunning() bool {
	return te.EndTime == nil
}

// IsLocked returns true once the entry has been made immutable.
func (te TimeEntry) IsLocked() bool {
	return te.LockedAt != nil
}

// State derives the lifecycle state from the entry's fields.
func (te TimeEntry) State() EntryState {
	if te.IsLocked() {
		return StateLocked
	}
	if te.IsRunning() {
		return StateRunning
	}
	return StateStopped
}

// Interval returns the entry's half-open interval [start, end). A running
// entry's interval extends to now.
func (te TimeEntry) Interval(now time.Time) Interval {
	end := now
	if te.EndTime != nil {
		end = *te.EndTime
	}
	return Interval{Start: te.StartTime, End: end}
}

// Duration returns the entry's duration. For a running entry this is the
// elapsed time up to now; for a stopped entry it is the stored, normalized
// duration.
func (te TimeEntry) Duration(now time.Time) time.Duration {
	if te.EndTime == nil {
		return now.Sub(te.StartTime)
	}
	if te.DurationSeconds != nil {
		return time.Duration(*te.DurationSeconds) * time.Second
	}
	return te.EndTime.Sub(te.StartTime)
}

// EarningsCents returns the entry's billable value in cents using the
// snapshot rate. Non-billable and running entries earn nothing.
func (te TimeEntry) EarningsCents() int64 {
	if !te.Billable || te.DurationSeconds == nil {
		return 0
	}
	return *te.DurationSeconds * te.HourlyRateCents / 3600
}

// Interval is a half-open time interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two intervals intersect. Touching endpoints
// (one interval ending exactly where another starts) do not conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// IsValid checks if the time entry has structurally valid data.
func (te TimeEntry) IsValid() bool {
	if te.UserID == "" {
		return false
	}
	if te.StartTime.IsZero() {
		return false
	}
	if te.EntryType != EntryTypeTracked && te.EntryType != EntryTypeManual {
		return false
	}
	if te.EndTime != nil && te.EndTime.Before(te.StartTime) {
		return false
	}
	return true
}
