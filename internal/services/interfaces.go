package services

import (
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/validation"
)

// Clock supplies the current wall-clock time. Injected so temporal rules
// are testable.
type Clock func() time.Time

// StartOptions are the optional fields accepted when starting a timer.
type StartOptions struct {
	ProjectID   *string `json:"project_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Billable    *bool   `json:"billable,omitempty"` // defaults to true
}

// StopOptions are the optional overrides accepted when stopping a timer.
type StopOptions struct {
	Description *string `json:"description,omitempty"`
	ProjectID   *string `json:"project_id,omitempty"`
	Billable    *bool   `json:"billable,omitempty"`
}

// ManualOptions are the fields accompanying a manual entry's time input.
type ManualOptions struct {
	Description string  `json:"description"`
	ProjectID   *string `json:"project_id,omitempty"`
	MilestoneID *string `json:"milestone_id,omitempty"`
	Billable    bool    `json:"billable"`
}

// EntryChanges is a partial edit of a time entry; nil fields are left
// unchanged. Entry type is immutable and deliberately absent.
type EntryChanges struct {
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Billable    *bool      `json:"billable,omitempty"`
	ProjectID   *string    `json:"project_id,omitempty"`   // empty string clears
	MilestoneID *string    `json:"milestone_id,omitempty"` // empty string clears
}

// EntryResult pairs a persisted entry with any non-fatal warnings the
// validator surfaced.
type EntryResult struct {
	Entry    *domain.TimeEntry    `json:"entry"`
	Warnings []validation.Warning `json:"warnings,omitempty"`
}

// StopResult describes a stop operation. CarryOver is non-nil when a timer
// spanning midnight was split into two entries.
type StopResult struct {
	Stopped   *domain.TimeEntry    `json:"stopped"`
	CarryOver *domain.TimeEntry    `json:"carry_over,omitempty"`
	Warnings  []validation.Warning `json:"warnings,omitempty"`
}

// RangeStats are the aggregate figures for a user's entries in a range.
type RangeStats struct {
	TotalSeconds    int64 `json:"total_seconds"`
	BillableSeconds int64 `json:"billable_seconds"`
	TrackedCount    int   `json:"tracked_count"`
	ManualCount     int   `json:"manual_count"`
	EarningsCents   int64 `json:"earnings_cents"`
}

// DayBucket groups a day's entries for the timesheet view, keyed by the
// calendar date of each entry's start time in the business timezone.
type DayBucket struct {
	Date            time.Time           `json:"date"`
	TotalSeconds    int64               `json:"total_seconds"`
	BillableSeconds int64               `json:"billable_seconds"`
	Entries         []*domain.TimeEntry `json:"entries"`
}

// Timesheet is a week of day buckets plus totals.
type Timesheet struct {
	WeekStart       time.Time   `json:"week_start"`
	Days            []DayBucket `json:"days"`
	TotalSeconds    int64       `json:"total_seconds"`
	BillableSeconds int64       `json:"billable_seconds"`
	EarningsCents   int64       `json:"earnings_cents"`
}

// LifecycleService owns entry creation, mutation, deletion and locking. It
// enforces the validator's decisions and maintains the audit trail.
type LifecycleService interface {
	StartTimer(userID string, opts StartOptions) (*domain.TimeEntry, error)
	StopTimer(userID string, opts StopOptions) (*StopResult, error)
	GetRunningEntry(userID string) (*domain.TimeEntry, error)

	CreateManual(userID string, input domain.ManualInput, opts ManualOptions) (*EntryResult, error)
	EditEntry(entryID string, changes EntryChanges, reason string) (*EntryResult, error)
	DeleteEntry(entryID string) error
	GetEntry(entryID string) (*domain.TimeEntry, error)
	GetEditHistory(entryID string) ([]*domain.EditRecord, error)

	LockEntry(entryID string, reason string) error
	UnlockEntry(entryID string) error

	SweepStaleTimers() ([]*domain.TimeEntry, error)
}

// ReportingService handles read-side aggregation and formatting. It never
// mutates an entry; everything here is derived data.
type ReportingService interface {
	GetRangeStats(userID string, from, to time.Time) (*RangeStats, error)
	GetWeeklyTimesheet(userID string, weekStart time.Time) (*Timesheet, error)
	GetDayBuckets(userID string, from, to time.Time) ([]DayBucket, error)
	GetClientLog(userID string, from, to time.Time) ([]domain.ClientLogEntry, error)

	FormatDuration(duration time.Duration) string
	FormatCurrency(cents int64) string
}

// InvoiceGate is the sole boundary between time tracking and invoicing
// with write access to entries.
type InvoiceGate interface {
	SelectBillableEntries(userID string, projectID *string, from, to *time.Time) ([]*domain.TimeEntry, error)
	AttachToInvoice(entryIDs []string, invoiceID string) error
	DetachFromDraftInvoice(invoiceID string) ([]string, error)

	CreateDraftInvoice(userID string) (*domain.Invoice, error)
	GetInvoice(invoiceID string) (*domain.Invoice, error)
	MarkInvoiceSent(invoiceID string) error
	DeleteDraftInvoice(invoiceID string) error
}
