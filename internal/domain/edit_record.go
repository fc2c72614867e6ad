package domain

import "time"

// EditRecord is one append-only audit record describing a single field
// change made to a time entry after creation. Records are never rewritten
// or removed.
type EditRecord struct {
	ID       int64
	EntryID  string
	EditedAt time.Time
	Field    string
	OldValue string
	NewValue string
	Reason   string
}

// Audited field names used in edit records.
const (
	FieldDescription = "description"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldDuration    = "duration_seconds"
	FieldBillable    = "billable"
	FieldProjectID   = "project_id"
	FieldMilestoneID = "milestone_id"
)
