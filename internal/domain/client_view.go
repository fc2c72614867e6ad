package domain

import "time"

// ClientLogEntry is the client-portal projection of a time entry. It
// exposes only what the end client may see: never the hourly rate, the
// invoice linkage or the audit fields.
type ClientLogEntry struct {
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	DurationSeconds int64     `json:"duration_seconds"`
	EntryType       EntryType `json:"entry_type"`
	Billable        bool      `json:"billable"`
}

// ClientView projects a stopped entry for client display. Running entries
// have no fixed duration yet and are not shown.
func ClientView(te TimeEntry) (ClientLogEntry, bool) {
	if te.DurationSeconds == nil {
		return ClientLogEntry{}, false
	}
	return ClientLogEntry{
		Date:            StartOfDay(te.StartTime),
		Description:     te.Description,
		DurationSeconds: *te.DurationSeconds,
		EntryType:       te.EntryType,
		Billable:        te.Billable,
	}, true
}
