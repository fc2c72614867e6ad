package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/repository/sqlite"
	"timeledger/internal/settings"
	"timeledger/internal/validation"
)

type lifecycleEnv struct {
	repo      *sqlite.SQLiteRepository
	settings  settings.Service
	lifecycle LifecycleService
	now       time.Time
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	env := &lifecycleEnv{
		repo:     repo,
		settings: settings.NewService(repo),
		now:      time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
	env.lifecycle = NewLifecycleServiceWithClock(repo, env.settings, time.UTC, func() time.Time {
		return env.now
	})
	return env
}

func (env *lifecycleEnv) patchSettings(t *testing.T, patch domain.SettingsPatch) {
	t.Helper()
	_, err := env.settings.UpdateSettings("user-1", patch)
	require.NoError(t, err)
}

func TestStartTimer(t *testing.T) {
	env := newLifecycleEnv(t)

	rate := int64(8500)
	env.patchSettings(t, domain.SettingsPatch{DefaultHourlyRateCents: &rate})

	entry, err := env.lifecycle.StartTimer("user-1", StartOptions{Description: "deep work"})
	require.NoError(t, err)

	assert.True(t, entry.IsRunning())
	assert.Equal(t, domain.EntryTypeTracked, entry.EntryType)
	assert.Equal(t, int64(8500), entry.HourlyRateCents)
	assert.True(t, entry.Billable)
	assert.True(t, env.now.Equal(entry.StartTime))
	assert.True(t, env.now.Equal(entry.OriginalStartTime))

	running, err := env.lifecycle.GetRunningEntry("user-1")
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, entry.ID, running.ID)
}

func TestStartTimer_SecondTimerConflicts(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{})
	require.NoError(t, err)

	_, err = env.lifecycle.StartTimer("user-1", StartOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestStartTimer_ProjectRateOverride(t *testing.T) {
	env := newLifecycleEnv(t)

	defaultRate := int64(8500)
	env.patchSettings(t, domain.SettingsPatch{DefaultHourlyRateCents: &defaultRate})

	projectRate := int64(12000)
	require.NoError(t, env.repo.CreateProject(&sqlite.Project{
		ID: "proj-1", UserID: "user-1", Name: "Alpha", HourlyRateCents: &projectRate,
	}))

	projectID := "proj-1"
	entry, err := env.lifecycle.StartTimer("user-1", StartOptions{ProjectID: &projectID})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), entry.HourlyRateCents)
}

func TestStopTimer(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{Description: "morning block"})
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)
	result, err := env.lifecycle.StopTimer("user-1", StopOptions{})
	require.NoError(t, err)

	stopped := result.Stopped
	require.NotNil(t, stopped.EndTime)
	require.NotNil(t, stopped.DurationSeconds)
	assert.Equal(t, int64(3600), *stopped.DurationSeconds)
	assert.Nil(t, result.CarryOver)
	require.NotNil(t, stopped.OriginalEndTime)
	assert.True(t, stopped.EndTime.Equal(*stopped.OriginalEndTime))

	running, err := env.lifecycle.GetRunningEntry("user-1")
	require.NoError(t, err)
	assert.Nil(t, running)
}

func TestStopTimer_NoTimerRunning(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.StopTimer("user-1", StopOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestStopTimer_SplitsAtMidnight(t *testing.T) {
	env := newLifecycleEnv(t)
	env.now = time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC)

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{Description: "late night"})
	require.NoError(t, err)

	env.now = time.Date(2026, 8, 28, 0, 15, 0, 0, time.UTC)
	result, err := env.lifecycle.StopTimer("user-1", StopOptions{})
	require.NoError(t, err)

	stopped := result.Stopped
	require.NotNil(t, stopped.EndTime)
	assert.True(t, stopped.EndTime.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(1800), *stopped.DurationSeconds)
	assert.False(t, stopped.AutoStopped)

	carry := result.CarryOver
	require.NotNil(t, carry)
	assert.True(t, carry.StartTime.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(900), *carry.DurationSeconds)
	assert.True(t, carry.AutoStopped)
	assert.Equal(t, domain.AutoStopReasonMidnight, carry.AutoStopReason)
	assert.Equal(t, "late night", carry.Description)
	assert.Equal(t, stopped.HourlyRateCents, carry.HourlyRateCents)
}

func TestStopTimer_MidnightSplitDisabled(t *testing.T) {
	env := newLifecycleEnv(t)
	disabled := false
	env.patchSettings(t, domain.SettingsPatch{AutoStopAtMidnight: &disabled})

	env.now = time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC)
	_, err := env.lifecycle.StartTimer("user-1", StartOptions{})
	require.NoError(t, err)

	env.now = time.Date(2026, 8, 28, 0, 15, 0, 0, time.UTC)
	result, err := env.lifecycle.StopTimer("user-1", StopOptions{})
	require.NoError(t, err)

	assert.Nil(t, result.CarryOver)
	assert.Equal(t, int64(2700), *result.Stopped.DurationSeconds)
}

func TestCreateManual(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))

	result, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{
		Description: "client call",
		Billable:    true,
	})
	require.NoError(t, err)

	entry := result.Entry
	assert.Equal(t, domain.EntryTypeManual, entry.EntryType)
	assert.Equal(t, int64(3600), *entry.DurationSeconds)
	assert.True(t, start.Equal(entry.StartTime))
	assert.True(t, start.Equal(entry.OriginalStartTime))
	assert.False(t, entry.IsRunning())
}

func TestCreateManual_RequiresDescription(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))

	_, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Billable: true})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
}

func TestCreateManual_AppliesRounding(t *testing.T) {
	env := newLifecycleEnv(t)
	roundTo := 15
	env.patchSettings(t, domain.SettingsPatch{RoundToMinutes: &roundTo})

	start := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(7*time.Minute))

	result, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{
		Description: "quick fix",
		Billable:    true,
	})
	require.NoError(t, err)

	// 7 minutes of work bills one 15-minute increment; the recorded end
	// time stays at the actual range end.
	assert.Equal(t, int64(900), *result.Entry.DurationSeconds)
	assert.True(t, result.Entry.EndTime.Equal(start.Add(7*time.Minute)))
}

func TestCreateManual_RetroactiveWindow(t *testing.T) {
	env := newLifecycleEnv(t)

	start := env.now.AddDate(0, 0, -10)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))

	_, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{
		Description: "forgotten work",
		Billable:    true,
	})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
}

func TestCreateManual_OverlapRejected(t *testing.T) {
	env := newLifecycleEnv(t)

	nine := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	first := domain.ManualByRangeInput(nine, nine.Add(time.Hour))
	_, err := env.lifecycle.CreateManual("user-1", first, ManualOptions{Description: "first", Billable: true})
	require.NoError(t, err)

	overlapping := domain.ManualByRangeInput(nine.Add(30*time.Minute), nine.Add(90*time.Minute))
	_, err = env.lifecycle.CreateManual("user-1", overlapping, ManualOptions{Description: "second", Billable: true})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))

	// Touching the first entry's end is fine.
	touching := domain.ManualByRangeInput(nine.Add(time.Hour), nine.Add(2*time.Hour))
	_, err = env.lifecycle.CreateManual("user-1", touching, ManualOptions{Description: "third", Billable: true})
	assert.NoError(t, err)
}

func TestCreateManual_OverlapWithLongEntry(t *testing.T) {
	env := newLifecycleEnv(t)

	longStart := env.now.AddDate(0, 0, -5)
	long := domain.ManualByRangeInput(longStart, env.now.Add(-time.Hour))
	_, err := env.lifecycle.CreateManual("user-1", long, ManualOptions{Description: "conference travel", Billable: true})
	require.NoError(t, err)

	// An interval buried inside the long entry still conflicts, even though
	// the long entry started days before it.
	insideStart := longStart.AddDate(0, 0, 3)
	inside := domain.ManualByRangeInput(insideStart, insideStart.Add(time.Hour))
	_, err = env.lifecycle.CreateManual("user-1", inside, ManualOptions{Description: "inside", Billable: true})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
}

func TestStopTimer_ConflictingCarryOverSkipped(t *testing.T) {
	env := newLifecycleEnv(t)
	env.now = time.Date(2026, 8, 27, 23, 0, 0, 0, time.UTC)

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{Description: "overnight"})
	require.NoError(t, err)

	// While the timer runs past midnight, the early morning gets logged by
	// hand (overlaps allowed at the time).
	env.now = time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)
	allow := true
	env.patchSettings(t, domain.SettingsPatch{AllowOverlapping: &allow})
	morning := domain.ManualByRangeInput(
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC))
	_, err = env.lifecycle.CreateManual("user-1", morning, ManualOptions{Description: "early call", Billable: true})
	require.NoError(t, err)

	disallow := false
	env.patchSettings(t, domain.SettingsPatch{AllowOverlapping: &disallow})

	result, err := env.lifecycle.StopTimer("user-1", StopOptions{})
	require.NoError(t, err)

	// The pre-midnight portion stops normally; the remainder would overlap
	// the manual entry, so it is skipped with a warning instead of written.
	assert.Equal(t, int64(3600), *result.Stopped.DurationSeconds)
	assert.Nil(t, result.CarryOver)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, validation.WarningCodeCarryOverSkipped, result.Warnings[0].Code)
}

func TestCreateManual_DailyWarning(t *testing.T) {
	env := newLifecycleEnv(t)
	warn := 60
	env.patchSettings(t, domain.SettingsPatch{DailyHourWarningMinutes: &warn})

	six := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	first := domain.ManualByRangeInput(six, six.Add(time.Hour))
	result, err := env.lifecycle.CreateManual("user-1", first, ManualOptions{Description: "first", Billable: true})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	second := domain.ManualByRangeInput(six.Add(time.Hour), six.Add(2*time.Hour))
	result, err = env.lifecycle.CreateManual("user-1", second, ManualOptions{Description: "second", Billable: true})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, validation.WarningCodeDailyHours, result.Warnings[0].Code)
}

func TestEditEntry_AppendsAuditRecords(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "draft notes", Billable: true})
	require.NoError(t, err)
	entryID := created.Entry.ID

	newDescription := "polished notes"
	billable := false
	_, err = env.lifecycle.EditEntry(entryID, EntryChanges{
		Description: &newDescription,
		Billable:    &billable,
	}, "client asked for detail")
	require.NoError(t, err)

	records, err := env.lifecycle.GetEditHistory(entryID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.FieldDescription, records[0].Field)
	assert.Equal(t, "draft notes", records[0].OldValue)
	assert.Equal(t, "polished notes", records[0].NewValue)
	assert.Equal(t, "client asked for detail", records[0].Reason)
	assert.Equal(t, domain.FieldBillable, records[1].Field)

	entry, err := env.lifecycle.GetEntry(entryID)
	require.NoError(t, err)
	assert.Equal(t, "polished notes", entry.Description)
	assert.False(t, entry.Billable)
}

func TestEditEntry_TimeChangeRecomputesDuration(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "work", Billable: true})
	require.NoError(t, err)
	entryID := created.Entry.ID

	newEnd := start.Add(2 * time.Hour)
	result, err := env.lifecycle.EditEntry(entryID, EntryChanges{EndTime: &newEnd}, "forgot to stop")
	require.NoError(t, err)
	assert.Equal(t, int64(7200), *result.Entry.DurationSeconds)

	// Originals are untouched.
	assert.True(t, result.Entry.OriginalEndTime.Equal(start.Add(time.Hour)))
	assert.Equal(t, int64(3600), *result.Entry.OriginalDurationSeconds)

	records, err := env.lifecycle.GetEditHistory(entryID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.FieldEndTime, records[0].Field)
	assert.Equal(t, domain.FieldDuration, records[1].Field)
}

func TestEditEntry_NoChangesNoRecords(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "work", Billable: true})
	require.NoError(t, err)

	sameDescription := "work"
	_, err = env.lifecycle.EditEntry(created.Entry.ID, EntryChanges{Description: &sameDescription}, "")
	require.NoError(t, err)

	records, err := env.lifecycle.GetEditHistory(created.Entry.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEditEntry_LockedEntryRejected(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "work", Billable: true})
	require.NoError(t, err)
	entryID := created.Entry.ID

	require.NoError(t, env.lifecycle.LockEntry(entryID, domain.LockReasonInvoiced))

	newDescription := "tampered"
	_, err = env.lifecycle.EditEntry(entryID, EntryChanges{Description: &newDescription}, "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestDeleteEntry_LockedRejected(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "work", Billable: true})
	require.NoError(t, err)

	require.NoError(t, env.lifecycle.LockEntry(created.Entry.ID, domain.LockReasonInvoiced))

	err = env.lifecycle.DeleteEntry(created.Entry.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestUnlockEntry_OnlyForDraftInvoices(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "work", Billable: true})
	require.NoError(t, err)
	entryID := created.Entry.ID

	require.NoError(t, env.repo.CreateInvoice(&sqlite.Invoice{
		ID: "inv-1", UserID: "user-1", Status: "draft", CreatedAt: env.now,
	}))
	require.NoError(t, env.repo.AttachEntriesToInvoice([]string{entryID}, "inv-1", env.now))

	// Draft invoice: unlock succeeds and clears the linkage.
	require.NoError(t, env.lifecycle.UnlockEntry(entryID))
	entry, err := env.lifecycle.GetEntry(entryID)
	require.NoError(t, err)
	assert.False(t, entry.IsLocked())
	assert.Nil(t, entry.InvoiceID)

	// Re-attach, send the invoice: unlock now fails.
	require.NoError(t, env.repo.AttachEntriesToInvoice([]string{entryID}, "inv-1", env.now))
	require.NoError(t, env.repo.UpdateInvoiceStatus("inv-1", "sent"))

	err = env.lifecycle.UnlockEntry(entryID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestUnlockEntry_ManualLockRejected(t *testing.T) {
	env := newLifecycleEnv(t)

	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	created, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{Description: "work", Billable: true})
	require.NoError(t, err)

	require.NoError(t, env.lifecycle.LockEntry(created.Entry.ID, "archived"))

	err = env.lifecycle.UnlockEntry(created.Entry.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestSweepStaleTimers_IdleTimeout(t *testing.T) {
	env := newLifecycleEnv(t)
	idle := 30
	env.patchSettings(t, domain.SettingsPatch{IdleTimeoutMinutes: &idle})

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{Description: "left running"})
	require.NoError(t, err)

	env.now = env.now.Add(2 * time.Hour)
	stopped, err := env.lifecycle.SweepStaleTimers()
	require.NoError(t, err)
	require.Len(t, stopped, 1)

	entry := stopped[0]
	assert.True(t, entry.AutoStopped)
	assert.Equal(t, domain.AutoStopReasonIdle, entry.AutoStopReason)
	// Ended at start + timeout, not at sweep time.
	assert.Equal(t, int64(30*60), *entry.DurationSeconds)
}

func TestSweepStaleTimers_MidnightRollover(t *testing.T) {
	env := newLifecycleEnv(t)
	env.now = time.Date(2026, 8, 27, 22, 0, 0, 0, time.UTC)

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{Description: "overnight"})
	require.NoError(t, err)

	env.now = time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	stopped, err := env.lifecycle.SweepStaleTimers()
	require.NoError(t, err)
	require.Len(t, stopped, 1)

	entry := stopped[0]
	assert.Equal(t, domain.AutoStopReasonMidnight, entry.AutoStopReason)
	assert.True(t, entry.EndTime.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(2*3600), *entry.DurationSeconds)
}

func TestSweepStaleTimers_FreshTimerLeftAlone(t *testing.T) {
	env := newLifecycleEnv(t)

	_, err := env.lifecycle.StartTimer("user-1", StartOptions{})
	require.NoError(t, err)

	env.now = env.now.Add(10 * time.Minute)
	stopped, err := env.lifecycle.SweepStaleTimers()
	require.NoError(t, err)
	assert.Empty(t, stopped)

	running, err := env.lifecycle.GetRunningEntry("user-1")
	require.NoError(t, err)
	assert.NotNil(t, running)
}
