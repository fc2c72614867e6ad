package domain

import "time"

// SearchOptions contains the filters for querying a user's time entries.
type SearchOptions struct {
	UserID      string
	From        *time.Time
	To          *time.Time
	ProjectID   *string
	Billable    *bool
	Uninvoiced  bool // only entries not yet attached to an invoice
	Unlocked    bool // only entries not locked
	RunningOnly bool
}
