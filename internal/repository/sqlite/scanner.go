package sqlite

import (
	"database/sql"
)

// Scanner defines the common scanning behavior for both sql.Row and sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows defines the common behavior for sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// timeEntryColumns is the column list every time entry query selects, in
// the order ScanTimeEntry expects.
const timeEntryColumns = `id, user_id, project_id, milestone_id, description,
	start_time, end_time, duration_seconds,
	hourly_rate_cents, billable, invoice_id,
	entry_type, locked_at, locked_reason,
	auto_stopped, auto_stop_reason,
	original_start_time, original_end_time, original_duration_seconds,
	created_at, updated_at`

// ScanTimeEntry scans a single time entry from a database row.
func ScanTimeEntry(scanner Scanner) (*TimeEntry, error) {
	entry := &TimeEntry{}
	var (
		projectID      sql.NullString
		milestoneID    sql.NullString
		endTime        sql.NullTime
		duration       sql.NullInt64
		invoiceID      sql.NullString
		lockedAt       sql.NullTime
		lockedReason   sql.NullString
		autoStopReason sql.NullString
		origEndTime    sql.NullTime
		origDuration   sql.NullInt64
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.UserID,
		&projectID,
		&milestoneID,
		&entry.Description,
		&entry.StartTime,
		&endTime,
		&duration,
		&entry.HourlyRateCents,
		&entry.Billable,
		&invoiceID,
		&entry.EntryType,
		&lockedAt,
		&lockedReason,
		&entry.AutoStopped,
		&autoStopReason,
		&entry.OriginalStartTime,
		&origEndTime,
		&origDuration,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		entry.ProjectID = &projectID.String
	}
	if milestoneID.Valid {
		entry.MilestoneID = &milestoneID.String
	}
	if endTime.Valid {
		entry.EndTime = &endTime.Time
	}
	if duration.Valid {
		entry.DurationSeconds = &duration.Int64
	}
	if invoiceID.Valid {
		entry.InvoiceID = &invoiceID.String
	}
	if lockedAt.Valid {
		entry.LockedAt = &lockedAt.Time
	}
	if lockedReason.Valid {
		entry.LockedReason = &lockedReason.String
	}
	if autoStopReason.Valid {
		entry.AutoStopReason = &autoStopReason.String
	}
	if origEndTime.Valid {
		entry.OriginalEndTime = &origEndTime.Time
	}
	if origDuration.Valid {
		entry.OriginalDurationSeconds = &origDuration.Int64
	}

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows.
func ScanTimeEntries(rows Rows) ([]*TimeEntry, error) {
	var entries []*TimeEntry
	for rows.Next() {
		entry, err := ScanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ScanEditRecord scans a single edit record from a database row.
func ScanEditRecord(scanner Scanner) (*EditRecord, error) {
	record := &EditRecord{}
	var reason sql.NullString

	err := scanner.Scan(
		&record.ID,
		&record.EntryID,
		&record.EditedAt,
		&record.Field,
		&record.OldValue,
		&record.NewValue,
		&reason,
	)
	if err != nil {
		return nil, err
	}

	if reason.Valid {
		record.Reason = &reason.String
	}

	return record, nil
}

// ScanEditRecords scans multiple edit records from database rows.
func ScanEditRecords(rows Rows) ([]*EditRecord, error) {
	var records []*EditRecord
	for rows.Next() {
		record, err := ScanEditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// ScanTrackingSettings scans a settings row.
func ScanTrackingSettings(scanner Scanner) (*TrackingSettings, error) {
	s := &TrackingSettings{}
	err := scanner.Scan(
		&s.UserID,
		&s.DefaultHourlyRateCents,
		&s.MaxRetroactiveDays,
		&s.DailyHourWarningMinutes,
		&s.IdleTimeoutMinutes,
		&s.RoundToMinutes,
		&s.MinimumEntryMinutes,
		&s.AllowOverlapping,
		&s.ClientVisibleLogs,
		&s.RequireDescription,
		&s.AutoStopAtMidnight,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ScanProject scans a single project from a database row.
func ScanProject(scanner Scanner) (*Project, error) {
	project := &Project{}
	var rate sql.NullInt64

	err := scanner.Scan(&project.ID, &project.UserID, &project.Name, &rate)
	if err != nil {
		return nil, err
	}

	if rate.Valid {
		project.HourlyRateCents = &rate.Int64
	}

	return project, nil
}

// ScanProjects scans multiple projects from database rows.
func ScanProjects(rows Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		project, err := ScanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// ScanInvoice scans a single invoice from a database row.
func ScanInvoice(scanner Scanner) (*Invoice, error) {
	invoice := &Invoice{}
	err := scanner.Scan(&invoice.ID, &invoice.UserID, &invoice.Status, &invoice.CreatedAt)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
