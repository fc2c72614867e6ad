package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"timeledger/internal/errors"
	"timeledger/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// SearchOptions contains all possible time entry search parameters.
// From/To filter on start time alone; ActiveFrom/ActiveTo select entries
// whose whole interval intersects [ActiveFrom, ActiveTo), treating a
// running entry as open-ended.
type SearchOptions struct {
	UserID      string
	From        *time.Time
	To          *time.Time
	ActiveFrom  *time.Time
	ActiveTo    *time.Time
	ProjectID   *string
	Billable    *bool
	Uninvoiced  bool
	Unlocked    bool
	RunningOnly bool
}

// Repository defines the interface for database operations.
type Repository interface {
	// Time entry writes
	CreateTimeEntry(entry *TimeEntry) error
	CreateRunningEntry(entry *TimeEntry) error
	CompleteRunningEntry(entry *TimeEntry) error
	UpdateTimeEntry(entry *TimeEntry) error
	DeleteTimeEntry(id string) error

	// Time entry reads
	GetTimeEntry(id string) (*TimeEntry, error)
	GetRunningEntry(userID string) (*TimeEntry, error)
	ListRunningEntries() ([]*TimeEntry, error)
	SearchTimeEntries(opts SearchOptions) ([]*TimeEntry, error)

	// Audit trail (append-only)
	AppendEditRecords(records []*EditRecord) error
	ListEditRecords(entryID string) ([]*EditRecord, error)

	// Locking and invoice linkage
	LockEntry(id string, lockedAt time.Time, reason string) error
	UnlockEntry(id string) error
	AttachEntriesToInvoice(entryIDs []string, invoiceID string, lockedAt time.Time) error
	DetachEntriesFromInvoice(invoiceID string, unlockedAt time.Time) ([]string, error)

	// Settings
	GetSettings(userID string) (*TrackingSettings, error)
	SaveSettings(settings *TrackingSettings) error

	// Projects
	CreateProject(project *Project) error
	GetProject(id string) (*Project, error)
	ListProjects(userID string) ([]*Project, error)

	// Invoice registry
	CreateInvoice(invoice *Invoice) error
	GetInvoice(id string) (*Invoice, error)
	UpdateInvoiceStatus(id string, status string) error
	DeleteInvoice(id string) error

	// Utility
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db *sql.DB
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// Serialized access keeps the check-then-write transactions below sound.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const insertTimeEntryQuery = `
	INSERT INTO time_entries (
		id, user_id, project_id, milestone_id, description,
		start_time, end_time, duration_seconds,
		hourly_rate_cents, billable, invoice_id,
		entry_type, locked_at, locked_reason,
		auto_stopped, auto_stop_reason,
		original_start_time, original_end_time, original_duration_seconds,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertTimeEntryArgs(entry *TimeEntry) []interface{} {
	return []interface{}{
		entry.ID, entry.UserID, entry.ProjectID, entry.MilestoneID, entry.Description,
		FormatTimeForDB(entry.StartTime), FormatTimePtrForDB(entry.EndTime), entry.DurationSeconds,
		entry.HourlyRateCents, entry.Billable, entry.InvoiceID,
		entry.EntryType, FormatTimePtrForDB(entry.LockedAt), entry.LockedReason,
		entry.AutoStopped, entry.AutoStopReason,
		FormatTimeForDB(entry.OriginalStartTime), FormatTimePtrForDB(entry.OriginalEndTime), entry.OriginalDurationSeconds,
		FormatTimeForDB(entry.CreatedAt), FormatTimeForDB(entry.UpdatedAt),
	}
}

// CreateTimeEntry inserts a stopped (manual or already-completed) entry.
func (r *SQLiteRepository) CreateTimeEntry(entry *TimeEntry) error {
	if _, err := r.db.Exec(insertTimeEntryQuery, insertTimeEntryArgs(entry)...); err != nil {
		return HandleDatabaseError("create time entry", err)
	}
	return nil
}

// CreateRunningEntry inserts an entry with no end time, failing with a
// state conflict if the user already has a running timer. The precondition
// check and the insert happen in one transaction; the partial unique index
// on (user_id) WHERE end_time IS NULL backstops the check.
func (r *SQLiteRepository) CreateRunningEntry(entry *TimeEntry) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		var count int
		row := tx.QueryRow(`SELECT COUNT(1) FROM time_entries WHERE user_id = ? AND end_time IS NULL`, entry.UserID)
		if err := row.Scan(&count); err != nil {
			return HandleDatabaseError("check running entry", err)
		}
		if count > 0 {
			return errors.NewStateConflictError("timer already running")
		}

		if _, err := tx.Exec(insertTimeEntryQuery, insertTimeEntryArgs(entry)...); err != nil {
			if strings.Contains(err.Error(), "idx_time_entries_one_running") {
				return errors.NewStateConflictError("timer already running")
			}
			return HandleDatabaseError("create running entry", err)
		}
		return nil
	})
}

// CompleteRunningEntry transitions a running entry to stopped. The update
// is conditional on the entry still being running, so the first of two
// concurrent stops wins and the second gets a state conflict.
func (r *SQLiteRepository) CompleteRunningEntry(entry *TimeEntry) error {
	query := `
	UPDATE time_entries
	SET end_time = ?, duration_seconds = ?, description = ?, project_id = ?, billable = ?,
		auto_stopped = ?, auto_stop_reason = ?,
		original_end_time = ?, original_duration_seconds = ?, updated_at = ?
	WHERE id = ? AND end_time IS NULL`

	result, err := r.db.Exec(query,
		FormatTimePtrForDB(entry.EndTime), entry.DurationSeconds, entry.Description, entry.ProjectID, entry.Billable,
		entry.AutoStopped, entry.AutoStopReason,
		FormatTimePtrForDB(entry.OriginalEndTime), entry.OriginalDurationSeconds, FormatTimeForDB(entry.UpdatedAt),
		entry.ID)
	if err != nil {
		return HandleDatabaseError("complete running entry", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		return errors.NewStateConflictError("entry is not running")
	}
	return nil
}

// UpdateTimeEntry updates the mutable fields of an unlocked entry. The
// locked check rides inside the statement so a concurrent lock cannot be
// overwritten.
func (r *SQLiteRepository) UpdateTimeEntry(entry *TimeEntry) error {
	query := `
	UPDATE time_entries
	SET description = ?, start_time = ?, end_time = ?, duration_seconds = ?,
		billable = ?, project_id = ?, milestone_id = ?, updated_at = ?
	WHERE id = ? AND locked_at IS NULL`

	result, err := r.db.Exec(query,
		entry.Description, FormatTimeForDB(entry.StartTime), FormatTimePtrForDB(entry.EndTime), entry.DurationSeconds,
		entry.Billable, entry.ProjectID, entry.MilestoneID, FormatTimeForDB(entry.UpdatedAt),
		entry.ID)
	if err != nil {
		return HandleDatabaseError("update time entry", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		return errors.NewStateConflictError("entry is locked or missing")
	}
	return nil
}

// DeleteTimeEntry deletes an entry unless it is locked or invoiced.
func (r *SQLiteRepository) DeleteTimeEntry(id string) error {
	result, err := r.db.Exec(`DELETE FROM time_entries WHERE id = ? AND locked_at IS NULL AND invoice_id IS NULL`, id)
	if err != nil {
		return HandleDatabaseError("delete time entry", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		// Distinguish "locked" from "gone" for the caller.
		if _, getErr := r.GetTimeEntry(id); getErr == nil {
			return errors.NewStateConflictError("entry is locked or invoiced")
		}
		return errors.NewNotFoundError("time entry", id)
	}
	return nil
}

// GetTimeEntry retrieves a time entry by ID
func (r *SQLiteRepository) GetTimeEntry(id string) (*TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	return QuerySingle(r.db, query, ScanTimeEntry, "time entry", id, id)
}

// GetRunningEntry returns the user's running entry, or nil when there is none.
func (r *SQLiteRepository) GetRunningEntry(userID string) (*TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE user_id = ? AND end_time IS NULL`
	entry, err := QuerySingle(r.db, query, ScanTimeEntry, "running entry", userID, userID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// ListRunningEntries returns every running entry across all users, for the
// stale-timer sweep.
func (r *SQLiteRepository) ListRunningEntries() ([]*TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE end_time IS NULL ORDER BY start_time ASC`
	return QueryMultiple(r.db, query, ScanTimeEntries, "running entries")
}

// SearchTimeEntries searches for time entries based on the provided options
func (r *SQLiteRepository) SearchTimeEntries(opts SearchOptions) ([]*TimeEntry, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{opts.UserID}

	if opts.From != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, FormatTimePtrForDB(opts.From))
	}
	if opts.To != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, FormatTimePtrForDB(opts.To))
	}
	if opts.ActiveFrom != nil {
		conditions = append(conditions, "(end_time IS NULL OR end_time > ?)")
		args = append(args, FormatTimePtrForDB(opts.ActiveFrom))
	}
	if opts.ActiveTo != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, FormatTimePtrForDB(opts.ActiveTo))
	}
	if opts.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *opts.ProjectID)
	}
	if opts.Billable != nil {
		conditions = append(conditions, "billable = ?")
		args = append(args, *opts.Billable)
	}
	if opts.Uninvoiced {
		conditions = append(conditions, "invoice_id IS NULL")
	}
	if opts.Unlocked {
		conditions = append(conditions, "locked_at IS NULL")
	}
	if opts.RunningOnly {
		conditions = append(conditions, "end_time IS NULL")
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY start_time ASC`

	return QueryMultiple(r.db, query, ScanTimeEntries, "time entries", args...)
}

// AppendEditRecords appends audit records for an entry. Records are only
// ever inserted; there is no update or delete path for this table.
func (r *SQLiteRepository) AppendEditRecords(records []*EditRecord) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		query := `
		INSERT INTO edit_records (entry_id, edited_at, field, old_value, new_value, reason)
		VALUES (?, ?, ?, ?, ?, ?)`

		for _, record := range records {
			result, err := tx.Exec(query,
				record.EntryID, FormatTimeForDB(record.EditedAt), record.Field,
				record.OldValue, record.NewValue, record.Reason)
			if err != nil {
				return HandleDatabaseError("append edit record", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return HandleDatabaseError("get edit record id", err)
			}
			record.ID = id
		}
		return nil
	})
}

// ListEditRecords returns an entry's audit trail in insertion order.
func (r *SQLiteRepository) ListEditRecords(entryID string) ([]*EditRecord, error) {
	query := `
	SELECT id, entry_id, edited_at, field, old_value, new_value, reason
	FROM edit_records
	WHERE entry_id = ?
	ORDER BY id ASC`

	return QueryMultiple(r.db, query, ScanEditRecords, "edit records", entryID)
}

// LockEntry sets the lock fields if not already locked. Idempotent: locking
// an already-locked entry succeeds without touching it.
func (r *SQLiteRepository) LockEntry(id string, lockedAt time.Time, reason string) error {
	result, err := r.db.Exec(`
	UPDATE time_entries
	SET locked_at = ?, locked_reason = ?, updated_at = ?
	WHERE id = ? AND locked_at IS NULL`,
		FormatTimeForDB(lockedAt), reason, FormatTimeForDB(lockedAt), id)
	if err != nil {
		return HandleDatabaseError("lock entry", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError("get rows affected", err)
	}
	if rows == 0 {
		if _, getErr := r.GetTimeEntry(id); getErr != nil {
			return getErr
		}
		// Already locked; idempotent success.
	}
	return nil
}

// UnlockEntry clears the lock fields and the invoice linkage.
func (r *SQLiteRepository) UnlockEntry(id string) error {
	return ExecuteWithRowsAffected(r.db, `
	UPDATE time_entries
	SET locked_at = NULL, locked_reason = NULL, invoice_id = NULL
	WHERE id = ?`, "time entry", id, id)
}

// AttachEntriesToInvoice atomically attaches and locks every entry in the
// set. If any entry is already locked, already attached elsewhere, not
// billable or still running, the whole operation fails and nothing changes.
func (r *SQLiteRepository) AttachEntriesToInvoice(entryIDs []string, invoiceID string, lockedAt time.Time) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		for _, id := range entryIDs {
			entry, err := QuerySingle(tx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`,
				ScanTimeEntry, "time entry", id, id)
			if err != nil {
				return err
			}
			if entry.LockedAt != nil {
				return errors.NewStateConflictError("entry is already locked").WithContext("entry_id", id)
			}
			if entry.InvoiceID != nil {
				return errors.NewStateConflictError("entry is already attached to an invoice").WithContext("entry_id", id)
			}
			if !entry.Billable {
				return errors.NewStateConflictError("entry is not billable").WithContext("entry_id", id)
			}
			if entry.EndTime == nil {
				return errors.NewStateConflictError("entry is still running").WithContext("entry_id", id)
			}

			_, err = tx.Exec(`
			UPDATE time_entries
			SET invoice_id = ?, locked_at = ?, locked_reason = ?, updated_at = ?
			WHERE id = ?`,
				invoiceID, FormatTimeForDB(lockedAt), "invoiced", FormatTimeForDB(lockedAt), id)
			if err != nil {
				return HandleDatabaseError("attach entry to invoice", err)
			}
		}
		return nil
	})
}

// DetachEntriesFromInvoice unlocks and detaches every entry attached to the
// invoice, returning the affected entry IDs. Runs in one transaction.
func (r *SQLiteRepository) DetachEntriesFromInvoice(invoiceID string, unlockedAt time.Time) ([]string, error) {
	var ids []string
	err := withTx(r.db, func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT id FROM time_entries WHERE invoice_id = ?`, invoiceID)
		if err != nil {
			return HandleDatabaseError("list invoiced entries", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return HandleDatabaseError("scan entry id", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return HandleDatabaseError("list invoiced entries", err)
		}

		_, err = tx.Exec(`
		UPDATE time_entries
		SET invoice_id = NULL, locked_at = NULL, locked_reason = NULL, updated_at = ?
		WHERE invoice_id = ?`,
			FormatTimeForDB(unlockedAt), invoiceID)
		if err != nil {
			return HandleDatabaseError("detach entries from invoice", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetSettings returns the user's settings row, or nil when unset.
func (r *SQLiteRepository) GetSettings(userID string) (*TrackingSettings, error) {
	query := `
	SELECT user_id, default_hourly_rate_cents, max_retroactive_days, daily_hour_warning_minutes,
		idle_timeout_minutes, round_to_minutes, minimum_entry_minutes,
		allow_overlapping, client_visible_logs, require_description, auto_stop_at_midnight,
		updated_at
	FROM tracking_settings
	WHERE user_id = ?`

	settings, err := QuerySingle(r.db, query, ScanTrackingSettings, "tracking settings", userID, userID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return settings, nil
}

// SaveSettings upserts the user's settings row.
func (r *SQLiteRepository) SaveSettings(settings *TrackingSettings) error {
	query := `
	INSERT INTO tracking_settings (
		user_id, default_hourly_rate_cents, max_retroactive_days, daily_hour_warning_minutes,
		idle_timeout_minutes, round_to_minutes, minimum_entry_minutes,
		allow_overlapping, client_visible_logs, require_description, auto_stop_at_midnight,
		updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		default_hourly_rate_cents = excluded.default_hourly_rate_cents,
		max_retroactive_days = excluded.max_retroactive_days,
		daily_hour_warning_minutes = excluded.daily_hour_warning_minutes,
		idle_timeout_minutes = excluded.idle_timeout_minutes,
		round_to_minutes = excluded.round_to_minutes,
		minimum_entry_minutes = excluded.minimum_entry_minutes,
		allow_overlapping = excluded.allow_overlapping,
		client_visible_logs = excluded.client_visible_logs,
		require_description = excluded.require_description,
		auto_stop_at_midnight = excluded.auto_stop_at_midnight,
		updated_at = excluded.updated_at`

	_, err := r.db.Exec(query,
		settings.UserID, settings.DefaultHourlyRateCents, settings.MaxRetroactiveDays, settings.DailyHourWarningMinutes,
		settings.IdleTimeoutMinutes, settings.RoundToMinutes, settings.MinimumEntryMinutes,
		settings.AllowOverlapping, settings.ClientVisibleLogs, settings.RequireDescription, settings.AutoStopAtMidnight,
		FormatTimeForDB(settings.UpdatedAt))
	if err != nil {
		return HandleDatabaseError("save settings", err)
	}
	return nil
}

// CreateProject creates a new project
func (r *SQLiteRepository) CreateProject(project *Project) error {
	_, err := r.db.Exec(`INSERT INTO projects (id, user_id, name, hourly_rate_cents) VALUES (?, ?, ?, ?)`,
		project.ID, project.UserID, project.Name, project.HourlyRateCents)
	if err != nil {
		return HandleDatabaseError("create project", err)
	}
	return nil
}

// GetProject retrieves a project by ID
func (r *SQLiteRepository) GetProject(id string) (*Project, error) {
	query := `SELECT id, user_id, name, hourly_rate_cents FROM projects WHERE id = ?`
	return QuerySingle(r.db, query, ScanProject, "project", id, id)
}

// ListProjects retrieves all projects for a user
func (r *SQLiteRepository) ListProjects(userID string) ([]*Project, error) {
	query := `SELECT id, user_id, name, hourly_rate_cents FROM projects WHERE user_id = ? ORDER BY name ASC`
	return QueryMultiple(r.db, query, ScanProjects, "projects", userID)
}

// CreateInvoice creates a new invoice registry row
func (r *SQLiteRepository) CreateInvoice(invoice *Invoice) error {
	_, err := r.db.Exec(`INSERT INTO invoices (id, user_id, status, created_at) VALUES (?, ?, ?, ?)`,
		invoice.ID, invoice.UserID, invoice.Status, FormatTimeForDB(invoice.CreatedAt))
	if err != nil {
		return HandleDatabaseError("create invoice", err)
	}
	return nil
}

// GetInvoice retrieves an invoice by ID
func (r *SQLiteRepository) GetInvoice(id string) (*Invoice, error) {
	query := `SELECT id, user_id, status, created_at FROM invoices WHERE id = ?`
	return QuerySingle(r.db, query, ScanInvoice, "invoice", id, id)
}

// UpdateInvoiceStatus updates an invoice's status
func (r *SQLiteRepository) UpdateInvoiceStatus(id string, status string) error {
	return ExecuteWithRowsAffected(r.db, `UPDATE invoices SET status = ? WHERE id = ?`,
		"invoice", id, status, id)
}

// DeleteInvoice deletes an invoice registry row
func (r *SQLiteRepository) DeleteInvoice(id string) error {
	return ExecuteWithRowsAffected(r.db, `DELETE FROM invoices WHERE id = ?`, "invoice", id, id)
}
