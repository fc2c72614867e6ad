package services

import (
	"fmt"
	"strconv"
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/logging"
	"timeledger/internal/repository/sqlite"
	"timeledger/internal/settings"
	"timeledger/internal/validation"

	"github.com/google/uuid"
)

// lifecycleServiceImpl implements the LifecycleService interface
type lifecycleServiceImpl struct {
	repo     sqlite.Repository
	settings settings.Service
	mapper   *domain.Mapper
	rules    *validation.EntryRules
	loc      *time.Location
	clock    Clock
}

// NewLifecycleService creates a new LifecycleService instance. loc is the
// user's business timezone; day boundaries and the retroactive window are
// evaluated in it.
func NewLifecycleService(repo sqlite.Repository, settingsService settings.Service, loc *time.Location) LifecycleService {
	return NewLifecycleServiceWithClock(repo, settingsService, loc, time.Now)
}

// NewLifecycleServiceWithClock creates a LifecycleService with an injected
// clock for deterministic temporal behavior in tests.
func NewLifecycleServiceWithClock(repo sqlite.Repository, settingsService settings.Service, loc *time.Location, clock Clock) LifecycleService {
	if loc == nil {
		loc = time.Local
	}
	return &lifecycleServiceImpl{
		repo:     repo,
		settings: settingsService,
		mapper:   domain.NewMapper(),
		rules:    validation.NewEntryRules(),
		loc:      loc,
		clock:    clock,
	}
}

func (l *lifecycleServiceImpl) now() time.Time {
	return l.clock().In(l.loc)
}

// StartTimer creates a running tracked entry. At most one concurrent
// running timer per user is enforced here with a transactional
// precondition check, independent of the general overlap setting: a
// running timer has no fixed end to compare.
func (l *lifecycleServiceImpl) StartTimer(userID string, opts StartOptions) (*domain.TimeEntry, error) {
	userSettings, err := l.settings.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	rate, err := l.resolveRate(userID, opts.ProjectID, userSettings)
	if err != nil {
		return nil, err
	}

	billable := true
	if opts.Billable != nil {
		billable = *opts.Billable
	}

	entry := domain.TimeEntry{
		ID:                uuid.NewString(),
		UserID:            userID,
		ProjectID:         opts.ProjectID,
		Description:       opts.Description,
		StartTime:         now,
		HourlyRateCents:   rate,
		Billable:          billable,
		EntryType:         domain.EntryTypeTracked,
		OriginalStartTime: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	dbEntry := l.mapper.TimeEntry.ToDatabase(entry)
	if err := l.repo.CreateRunningEntry(&dbEntry); err != nil {
		return nil, err
	}

	logging.Debugf("started timer %s for user %s\n", entry.ID, userID)
	return &entry, nil
}

// StopTimer fixes the running entry's end time and runs the full validator
// pipeline over the now-fixed interval. A timer spanning midnight with
// auto-stop enabled is split at the boundary into two entries rather than
// truncated.
func (l *lifecycleServiceImpl) StopTimer(userID string, opts StopOptions) (*StopResult, error) {
	running, err := l.GetRunningEntry(userID)
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, errors.NewNotFoundError("running timer", userID)
	}

	userSettings, err := l.settings.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	entry := *running
	if opts.Description != nil {
		entry.Description = *opts.Description
	}
	if opts.ProjectID != nil {
		entry.ProjectID = opts.ProjectID
	}
	if opts.Billable != nil {
		entry.Billable = *opts.Billable
	}

	end := now
	var carryStart *time.Time
	if userSettings.AutoStopAtMidnight && !domain.SameDay(entry.StartTime.In(l.loc), now) {
		midnight := domain.NextMidnight(entry.StartTime.In(l.loc))
		end = midnight
		carryStart = &midnight
	}

	result, err := l.completeEntry(&entry, end, userSettings, now, false, "")
	if err != nil {
		return nil, err
	}
	stopResult := &StopResult{Stopped: result.Entry, Warnings: result.Warnings}

	if carryStart != nil && now.After(*carryStart) {
		carry, carryWarnings, err := l.createCarryOverEntry(entry, *carryStart, now, userSettings)
		if err != nil {
			return nil, err
		}
		stopResult.CarryOver = carry
		stopResult.Warnings = append(stopResult.Warnings, carryWarnings...)
	}

	return stopResult, nil
}

// completeEntry validates and persists the Running -> Stopped transition.
func (l *lifecycleServiceImpl) completeEntry(entry *domain.TimeEntry, end time.Time, userSettings domain.Settings, now time.Time, autoStopped bool, autoStopReason string) (*EntryResult, error) {
	rawSeconds := int64(end.Sub(entry.StartTime) / time.Second)

	existing, err := l.overlapWindow(entry.UserID, entry.StartTime, end)
	if err != nil {
		return nil, err
	}

	candidate := validation.Candidate{
		EntryID:     entry.ID,
		UserID:      entry.UserID,
		EntryType:   entry.EntryType,
		Description: entry.Description,
		Start:       entry.StartTime,
		End:         end,
		Seconds:     rawSeconds,
	}
	normalized, warnings, err := l.rules.ValidateEntry(candidate, existing, userSettings, now)
	if err != nil {
		return nil, err
	}

	entry.EndTime = &end
	entry.DurationSeconds = &normalized
	entry.AutoStopped = autoStopped
	entry.AutoStopReason = autoStopReason
	entry.OriginalEndTime = &end
	entry.OriginalDurationSeconds = &normalized
	entry.UpdatedAt = now

	dbEntry := l.mapper.TimeEntry.ToDatabase(*entry)
	if err := l.repo.CompleteRunningEntry(&dbEntry); err != nil {
		return nil, err
	}

	return &EntryResult{Entry: entry, Warnings: warnings}, nil
}

// createCarryOverEntry writes the post-midnight remainder of a split timer
// as a separate system-created entry. The remainder goes through the same
// validator pipeline as any other entry; when it cannot pass (a
// retroactively added entry already occupies the new morning) it is
// skipped with a warning rather than written over the conflict.
func (l *lifecycleServiceImpl) createCarryOverEntry(source domain.TimeEntry, start, end time.Time, userSettings domain.Settings) (*domain.TimeEntry, []validation.Warning, error) {
	rawSeconds := int64(end.Sub(start) / time.Second)

	existing, err := l.overlapWindow(source.UserID, start, end)
	if err != nil {
		return nil, nil, err
	}

	candidate := validation.Candidate{
		UserID:      source.UserID,
		EntryType:   domain.EntryTypeTracked,
		Description: source.Description,
		Start:       start,
		End:         end,
		Seconds:     rawSeconds,
	}
	normalized, warnings, err := l.rules.ValidateEntry(candidate, existing, userSettings, end)
	if err != nil {
		if validation.IsValidationError(err) {
			skipped := validation.Warning{
				Code:    validation.WarningCodeCarryOverSkipped,
				Message: fmt.Sprintf("work after midnight was not recorded: %s", err.Error()),
			}
			return nil, []validation.Warning{skipped}, nil
		}
		return nil, nil, err
	}

	carry := domain.TimeEntry{
		ID:                      uuid.NewString(),
		UserID:                  source.UserID,
		ProjectID:               source.ProjectID,
		MilestoneID:             source.MilestoneID,
		Description:             source.Description,
		StartTime:               start,
		EndTime:                 &end,
		DurationSeconds:         &normalized,
		HourlyRateCents:         source.HourlyRateCents,
		Billable:                source.Billable,
		EntryType:               domain.EntryTypeTracked,
		AutoStopped:             true,
		AutoStopReason:          domain.AutoStopReasonMidnight,
		OriginalStartTime:       start,
		OriginalEndTime:         &end,
		OriginalDurationSeconds: &normalized,
		CreatedAt:               end,
		UpdatedAt:               end,
	}

	dbEntry := l.mapper.TimeEntry.ToDatabase(carry)
	if err := l.repo.CreateTimeEntry(&dbEntry); err != nil {
		return nil, nil, err
	}
	return &carry, warnings, nil
}

// GetRunningEntry returns the user's currently running entry, or nil.
func (l *lifecycleServiceImpl) GetRunningEntry(userID string) (*domain.TimeEntry, error) {
	dbEntry, err := l.repo.GetRunningEntry(userID)
	if err != nil {
		return nil, err
	}
	if dbEntry == nil {
		return nil, nil
	}
	entry := l.mapper.TimeEntry.FromDatabase(*dbEntry)
	return &entry, nil
}

// CreateManual creates a stopped entry from typed-in times. The input is
// normalized to a canonical interval before any validation runs; manual
// entries always require a description.
func (l *lifecycleServiceImpl) CreateManual(userID string, input domain.ManualInput, opts ManualOptions) (*EntryResult, error) {
	userSettings, err := l.settings.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	interval, ok := input.Normalize(l.loc)
	if !ok {
		return nil, errors.NewInvalidInputError("time_input", input.Kind(), "must provide a positive duration or a valid start/end range")
	}

	now := l.now()
	rate, err := l.resolveRate(userID, opts.ProjectID, userSettings)
	if err != nil {
		return nil, err
	}

	existing, err := l.overlapWindow(userID, interval.Start, interval.End)
	if err != nil {
		return nil, err
	}

	candidate := validation.Candidate{
		UserID:      userID,
		EntryType:   domain.EntryTypeManual,
		Description: opts.Description,
		Start:       interval.Start,
		End:         interval.End,
		Seconds:     interval.Seconds,
	}
	normalized, warnings, err := l.rules.ValidateEntry(candidate, existing, userSettings, now)
	if err != nil {
		return nil, err
	}

	entry := domain.TimeEntry{
		ID:                      uuid.NewString(),
		UserID:                  userID,
		ProjectID:               opts.ProjectID,
		MilestoneID:             opts.MilestoneID,
		Description:             opts.Description,
		StartTime:               interval.Start,
		EndTime:                 &interval.End,
		DurationSeconds:         &normalized,
		HourlyRateCents:         rate,
		Billable:                opts.Billable,
		EntryType:               domain.EntryTypeManual,
		OriginalStartTime:       interval.Start,
		OriginalEndTime:         &interval.End,
		OriginalDurationSeconds: &normalized,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	dbEntry := l.mapper.TimeEntry.ToDatabase(entry)
	if err := l.repo.CreateTimeEntry(&dbEntry); err != nil {
		return nil, err
	}

	return &EntryResult{Entry: &entry, Warnings: warnings}, nil
}

// EditEntry applies a partial edit. The edit is treated as a new candidate:
// overlap and retroactive checks re-run against the new values with the
// entry's own prior interval removed from consideration. Every changed
// field appends one audit record; the original snapshots are never touched.
func (l *lifecycleServiceImpl) EditEntry(entryID string, changes EntryChanges, reason string) (*EntryResult, error) {
	dbEntry, err := l.repo.GetTimeEntry(entryID)
	if err != nil {
		return nil, err
	}
	current := l.mapper.TimeEntry.FromDatabase(*dbEntry)

	if current.IsLocked() {
		return nil, errors.NewStateConflictError("entry is locked and cannot be edited").WithContext("entry_id", entryID)
	}

	userSettings, err := l.settings.GetSettings(current.UserID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	updated := current
	var records []domain.EditRecord
	appendRecord := func(field, oldValue, newValue string) {
		records = append(records, domain.EditRecord{
			EntryID:  entryID,
			EditedAt: now,
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			Reason:   reason,
		})
	}

	if changes.Description != nil && *changes.Description != current.Description {
		appendRecord(domain.FieldDescription, current.Description, *changes.Description)
		updated.Description = *changes.Description
	}
	if changes.Billable != nil && *changes.Billable != current.Billable {
		appendRecord(domain.FieldBillable, strconv.FormatBool(current.Billable), strconv.FormatBool(*changes.Billable))
		updated.Billable = *changes.Billable
	}
	if changes.ProjectID != nil {
		if newID, changed := applyRefChange(current.ProjectID, *changes.ProjectID); changed {
			appendRecord(domain.FieldProjectID, refString(current.ProjectID), refString(newID))
			updated.ProjectID = newID
		}
	}
	if changes.MilestoneID != nil {
		if newID, changed := applyRefChange(current.MilestoneID, *changes.MilestoneID); changed {
			appendRecord(domain.FieldMilestoneID, refString(current.MilestoneID), refString(newID))
			updated.MilestoneID = newID
		}
	}

	timesChanged := false
	if changes.StartTime != nil && !changes.StartTime.Equal(current.StartTime) {
		if current.IsRunning() {
			return nil, errors.NewStateConflictError("cannot edit times of a running entry")
		}
		appendRecord(domain.FieldStartTime, formatAuditTime(current.StartTime), formatAuditTime(*changes.StartTime))
		updated.StartTime = changes.StartTime.In(l.loc)
		timesChanged = true
	}
	if changes.EndTime != nil && (current.EndTime == nil || !changes.EndTime.Equal(*current.EndTime)) {
		if current.IsRunning() {
			return nil, errors.NewStateConflictError("cannot edit times of a running entry")
		}
		newEnd := changes.EndTime.In(l.loc)
		appendRecord(domain.FieldEndTime, formatAuditTimePtr(current.EndTime), formatAuditTime(newEnd))
		updated.EndTime = &newEnd
		timesChanged = true
	}

	if len(records) == 0 {
		return &EntryResult{Entry: &current}, nil
	}

	if updated.EndTime != nil && !updated.EndTime.After(updated.StartTime) {
		return nil, errors.NewInvalidInputError("end_time", updated.EndTime, "must be after start time")
	}

	var warnings []validation.Warning
	if updated.EndTime != nil {
		rawSeconds := int64(updated.EndTime.Sub(updated.StartTime) / time.Second)

		existing, err := l.overlapWindow(updated.UserID, updated.StartTime, *updated.EndTime)
		if err != nil {
			return nil, err
		}

		candidate := validation.Candidate{
			EntryID:     entryID,
			UserID:      updated.UserID,
			EntryType:   updated.EntryType,
			Description: updated.Description,
			Start:       updated.StartTime,
			End:         *updated.EndTime,
			Seconds:     rawSeconds,
		}
		normalized, w, err := l.rules.ValidateEntry(candidate, existing, userSettings, now)
		if err != nil {
			return nil, err
		}
		warnings = w

		if timesChanged && (updated.DurationSeconds == nil || normalized != *updated.DurationSeconds) {
			appendRecord(domain.FieldDuration, durationString(updated.DurationSeconds), strconv.FormatInt(normalized, 10))
			updated.DurationSeconds = &normalized
		}
	} else if err := l.rules.ValidateDescription(updated.EntryType, updated.Description, userSettings); err != nil {
		return nil, err
	}

	updated.UpdatedAt = now
	dbUpdated := l.mapper.TimeEntry.ToDatabase(updated)
	if err := l.repo.UpdateTimeEntry(&dbUpdated); err != nil {
		return nil, err
	}

	dbRecords := make([]*sqlite.EditRecord, len(records))
	for i, record := range records {
		dbRecord := l.mapper.EditRecord.ToDatabase(record)
		dbRecords[i] = &dbRecord
	}
	if err := l.repo.AppendEditRecords(dbRecords); err != nil {
		return nil, err
	}

	logging.Debugf("edited entry %s: %d field(s) changed\n", entryID, len(records))
	return &EntryResult{Entry: &updated, Warnings: warnings}, nil
}

// DeleteEntry removes an entry. Locked entries cannot be deleted, and
// invoice linkage alone blocks deletion even if the entry were somehow
// unlocked.
func (l *lifecycleServiceImpl) DeleteEntry(entryID string) error {
	dbEntry, err := l.repo.GetTimeEntry(entryID)
	if err != nil {
		return err
	}
	if dbEntry.LockedAt != nil {
		return errors.NewStateConflictError("entry is locked and cannot be deleted").WithContext("entry_id", entryID)
	}
	if dbEntry.InvoiceID != nil {
		return errors.NewStateConflictError("entry is attached to an invoice and cannot be deleted").WithContext("entry_id", entryID)
	}

	return l.repo.DeleteTimeEntry(entryID)
}

// GetEntry returns a single entry by id.
func (l *lifecycleServiceImpl) GetEntry(entryID string) (*domain.TimeEntry, error) {
	dbEntry, err := l.repo.GetTimeEntry(entryID)
	if err != nil {
		return nil, err
	}
	entry := l.mapper.TimeEntry.FromDatabase(*dbEntry)
	return &entry, nil
}

// GetEditHistory returns an entry's audit trail in insertion order.
func (l *lifecycleServiceImpl) GetEditHistory(entryID string) ([]*domain.EditRecord, error) {
	if _, err := l.repo.GetTimeEntry(entryID); err != nil {
		return nil, err
	}
	dbRecords, err := l.repo.ListEditRecords(entryID)
	if err != nil {
		return nil, err
	}
	return l.mapper.EditRecord.FromDatabaseSlice(dbRecords), nil
}

// LockEntry makes an entry immutable. Idempotent.
func (l *lifecycleServiceImpl) LockEntry(entryID string, reason string) error {
	return l.repo.LockEntry(entryID, l.now(), reason)
}

// UnlockEntry reverses a lock. This is the sole exception to "Locked is
// terminal": it is only permitted when the entry was locked by invoicing
// and the associated invoice is still a draft being deleted.
func (l *lifecycleServiceImpl) UnlockEntry(entryID string) error {
	dbEntry, err := l.repo.GetTimeEntry(entryID)
	if err != nil {
		return err
	}
	entry := l.mapper.TimeEntry.FromDatabase(*dbEntry)

	if !entry.IsLocked() {
		return nil
	}
	if entry.LockedReason != domain.LockReasonInvoiced {
		return errors.NewStateConflictError("entry was not locked by invoicing").WithContext("entry_id", entryID)
	}
	if entry.InvoiceID == nil {
		return errors.NewStateConflictError("entry has no associated invoice").WithContext("entry_id", entryID)
	}

	dbInvoice, err := l.repo.GetInvoice(*entry.InvoiceID)
	if err != nil {
		return err
	}
	if domain.InvoiceStatus(dbInvoice.Status) != domain.InvoiceStatusDraft {
		return errors.NewStateConflictError("invoice is no longer a draft").WithContext("invoice_id", *entry.InvoiceID)
	}

	return l.repo.UnlockEntry(entryID)
}

// SweepStaleTimers stops running timers the user abandoned: timers past a
// midnight rollover (when auto-stop is enabled) and timers past the idle
// timeout. Safe to run concurrently with user-initiated stops; the
// conditional Running -> Stopped transition means the first writer wins
// and the sweep no-ops cleanly on entries already stopped.
func (l *lifecycleServiceImpl) SweepStaleTimers() ([]*domain.TimeEntry, error) {
	dbRunning, err := l.repo.ListRunningEntries()
	if err != nil {
		return nil, err
	}

	now := l.now()
	var stopped []*domain.TimeEntry
	for _, dbEntry := range dbRunning {
		entry := l.mapper.TimeEntry.FromDatabase(*dbEntry)

		userSettings, err := l.settings.GetSettings(entry.UserID)
		if err != nil {
			return nil, err
		}

		start := entry.StartTime.In(l.loc)
		switch {
		case userSettings.AutoStopAtMidnight && !domain.SameDay(start, now):
			midnight := domain.NextMidnight(start)
			result, err := l.completeEntry(&entry, midnight, userSettings, now, true, domain.AutoStopReasonMidnight)
			if err != nil {
				if sweepSkippable(err) {
					continue // a user stop won the race, or the entry cannot validate
				}
				return nil, err
			}
			stopped = append(stopped, result.Entry)

		case userSettings.IdleTimeoutMinutes > 0 && now.Sub(start) > time.Duration(userSettings.IdleTimeoutMinutes)*time.Minute:
			end := start.Add(time.Duration(userSettings.IdleTimeoutMinutes) * time.Minute)
			result, err := l.completeEntry(&entry, end, userSettings, now, true, domain.AutoStopReasonIdle)
			if err != nil {
				if sweepSkippable(err) {
					continue
				}
				return nil, err
			}
			stopped = append(stopped, result.Entry)
		}
	}

	return stopped, nil
}

// resolveRate snapshots the hourly rate for a new entry: the project's
// override when set, the user's default otherwise.
func (l *lifecycleServiceImpl) resolveRate(userID string, projectID *string, userSettings domain.Settings) (int64, error) {
	if projectID == nil {
		return userSettings.DefaultHourlyRateCents, nil
	}

	dbProject, err := l.repo.GetProject(*projectID)
	if err != nil {
		return 0, err
	}
	if dbProject.UserID != userID {
		return 0, errors.NewNotFoundError("project", *projectID)
	}
	if dbProject.HourlyRateCents != nil {
		return *dbProject.HourlyRateCents, nil
	}
	return userSettings.DefaultHourlyRateCents, nil
}

// overlapWindow fetches the entries that could conflict with the candidate
// interval, plus any running entry. The window is matched by interval
// intersection, not start-time proximity, so an entry spanning several
// days is found no matter how long ago it started. Two days of padding
// either side keeps same-day entries available for the daily total.
func (l *lifecycleServiceImpl) overlapWindow(userID string, start, end time.Time) ([]*domain.TimeEntry, error) {
	from := start.AddDate(0, 0, -2)
	to := end.AddDate(0, 0, 2)

	dbEntries, err := l.repo.SearchTimeEntries(sqlite.SearchOptions{
		UserID:     userID,
		ActiveFrom: &from,
		ActiveTo:   &to,
	})
	if err != nil {
		return nil, err
	}
	entries := l.mapper.TimeEntry.FromDatabaseSlice(dbEntries)

	running, err := l.GetRunningEntry(userID)
	if err != nil {
		return nil, err
	}
	if running != nil {
		found := false
		for _, entry := range entries {
			if entry.ID == running.ID {
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, running)
		}
	}

	return entries, nil
}

// sweepSkippable reports whether a sweep failure concerns only that one
// entry. Conflicts mean a user-initiated stop won the race; validation
// failures mean the entry needs human attention. Neither should abort the
// rest of the sweep.
func sweepSkippable(err error) bool {
	if errors.IsErrorType(err, errors.ErrorTypeStateConflict) {
		return true
	}
	return validation.IsValidationError(err)
}

func applyRefChange(current *string, newValue string) (*string, bool) {
	if newValue == "" {
		return nil, current != nil
	}
	if current != nil && *current == newValue {
		return current, false
	}
	return &newValue, true
}

func refString(ref *string) string {
	if ref == nil {
		return ""
	}
	return *ref
}

func formatAuditTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatAuditTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatAuditTime(*t)
}

func durationString(seconds *int64) string {
	if seconds == nil {
		return ""
	}
	return fmt.Sprintf("%d", *seconds)
}
