package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeledger/internal/errors"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testEntry(id, userID string) *TimeEntry {
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	seconds := int64(3600)
	return &TimeEntry{
		ID:                      id,
		UserID:                  userID,
		Description:             "test work",
		StartTime:               start,
		EndTime:                 &end,
		DurationSeconds:         &seconds,
		HourlyRateCents:         8500,
		Billable:                true,
		EntryType:               "manual",
		OriginalStartTime:       start,
		OriginalEndTime:         &end,
		OriginalDurationSeconds: &seconds,
		CreatedAt:               start,
		UpdatedAt:               start,
	}
}

func runningEntry(id, userID string, start time.Time) *TimeEntry {
	return &TimeEntry{
		ID:                id,
		UserID:            userID,
		Description:       "in progress",
		StartTime:         start,
		HourlyRateCents:   8500,
		Billable:          true,
		EntryType:         "tracked",
		OriginalStartTime: start,
		CreatedAt:         start,
		UpdatedAt:         start,
	}
}

func TestCreateAndGetTimeEntry(t *testing.T) {
	repo := newTestRepo(t)

	entry := testEntry("entry-1", "user-1")
	require.NoError(t, repo.CreateTimeEntry(entry))

	got, err := repo.GetTimeEntry("entry-1")
	require.NoError(t, err)

	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.UserID, got.UserID)
	assert.Equal(t, entry.Description, got.Description)
	assert.Equal(t, entry.HourlyRateCents, got.HourlyRateCents)
	assert.True(t, got.Billable)
	require.NotNil(t, got.DurationSeconds)
	assert.Equal(t, int64(3600), *got.DurationSeconds)
	assert.True(t, entry.StartTime.Equal(got.StartTime))
	assert.Nil(t, got.LockedAt)
	assert.Nil(t, got.InvoiceID)
}

func TestGetTimeEntry_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetTimeEntry("missing")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestCreateRunningEntry_SecondTimerConflicts(t *testing.T) {
	repo := newTestRepo(t)
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateRunningEntry(runningEntry("run-1", "user-1", start)))

	err := repo.CreateRunningEntry(runningEntry("run-2", "user-1", start.Add(time.Minute)))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))

	// Another user is unaffected.
	require.NoError(t, repo.CreateRunningEntry(runningEntry("run-3", "user-2", start)))
}

func TestCompleteRunningEntry_FirstStopWins(t *testing.T) {
	repo := newTestRepo(t)
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	entry := runningEntry("run-1", "user-1", start)
	require.NoError(t, repo.CreateRunningEntry(entry))

	end := start.Add(time.Hour)
	seconds := int64(3600)
	entry.EndTime = &end
	entry.DurationSeconds = &seconds
	entry.OriginalEndTime = &end
	entry.OriginalDurationSeconds = &seconds
	entry.UpdatedAt = end

	require.NoError(t, repo.CompleteRunningEntry(entry))

	// Second stop on the same entry loses.
	err := repo.CompleteRunningEntry(entry)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestGetRunningEntry(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetRunningEntry("user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateRunningEntry(runningEntry("run-1", "user-1", start)))

	got, err = repo.GetRunningEntry("user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.ID)
	assert.Nil(t, got.EndTime)
}

func TestUpdateTimeEntry_LockedEntryRejected(t *testing.T) {
	repo := newTestRepo(t)

	entry := testEntry("entry-1", "user-1")
	require.NoError(t, repo.CreateTimeEntry(entry))
	require.NoError(t, repo.LockEntry("entry-1", time.Now().UTC(), "invoiced"))

	entry.Description = "rewritten"
	err := repo.UpdateTimeEntry(entry)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))

	got, err := repo.GetTimeEntry("entry-1")
	require.NoError(t, err)
	assert.Equal(t, "test work", got.Description)
}

func TestDeleteTimeEntry(t *testing.T) {
	repo := newTestRepo(t)

	t.Run("deletes unlocked entry", func(t *testing.T) {
		require.NoError(t, repo.CreateTimeEntry(testEntry("entry-1", "user-1")))
		require.NoError(t, repo.DeleteTimeEntry("entry-1"))

		_, err := repo.GetTimeEntry("entry-1")
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})

	t.Run("locked entry cannot be deleted", func(t *testing.T) {
		require.NoError(t, repo.CreateTimeEntry(testEntry("entry-2", "user-1")))
		require.NoError(t, repo.LockEntry("entry-2", time.Now().UTC(), "invoiced"))

		err := repo.DeleteTimeEntry("entry-2")
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
	})

	t.Run("missing entry reports not found", func(t *testing.T) {
		err := repo.DeleteTimeEntry("missing")
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})
}

func TestLockEntry_Idempotent(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateTimeEntry(testEntry("entry-1", "user-1")))

	lockedAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.LockEntry("entry-1", lockedAt, "invoiced"))
	require.NoError(t, repo.LockEntry("entry-1", lockedAt.Add(time.Hour), "invoiced"))

	got, err := repo.GetTimeEntry("entry-1")
	require.NoError(t, err)
	require.NotNil(t, got.LockedAt)
	assert.True(t, lockedAt.Equal(*got.LockedAt))
}

func TestAppendAndListEditRecords(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.CreateTimeEntry(testEntry("entry-1", "user-1")))

	reason := "client asked for clarification"
	records := []*EditRecord{
		{EntryID: "entry-1", EditedAt: time.Now().UTC(), Field: "description", OldValue: "a", NewValue: "b", Reason: &reason},
		{EntryID: "entry-1", EditedAt: time.Now().UTC(), Field: "billable", OldValue: "true", NewValue: "false"},
	}
	require.NoError(t, repo.AppendEditRecords(records))
	assert.NotZero(t, records[0].ID)
	assert.NotZero(t, records[1].ID)

	got, err := repo.ListEditRecords("entry-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "description", got[0].Field)
	assert.Equal(t, "billable", got[1].Field)
	require.NotNil(t, got[0].Reason)
	assert.Equal(t, reason, *got[0].Reason)
}

func TestAttachEntriesToInvoice_Atomic(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateTimeEntry(testEntry("entry-1", "user-1")))
	nonBillable := testEntry("entry-2", "user-1")
	nonBillable.Billable = false
	require.NoError(t, repo.CreateTimeEntry(nonBillable))

	err := repo.AttachEntriesToInvoice([]string{"entry-1", "entry-2"}, "inv-1", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))

	// The billable entry must not have been touched.
	got, err := repo.GetTimeEntry("entry-1")
	require.NoError(t, err)
	assert.Nil(t, got.InvoiceID)
	assert.Nil(t, got.LockedAt)
}

func TestAttachAndDetachEntries(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateTimeEntry(testEntry("entry-1", "user-1")))
	require.NoError(t, repo.CreateTimeEntry(testEntry("entry-2", "user-1")))

	lockedAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AttachEntriesToInvoice([]string{"entry-1", "entry-2"}, "inv-1", lockedAt))

	got, err := repo.GetTimeEntry("entry-1")
	require.NoError(t, err)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, "inv-1", *got.InvoiceID)
	require.NotNil(t, got.LockedAt)
	require.NotNil(t, got.LockedReason)
	assert.Equal(t, "invoiced", *got.LockedReason)

	// Already-attached entries fail a second attach.
	err = repo.AttachEntriesToInvoice([]string{"entry-1"}, "inv-2", lockedAt)
	require.Error(t, err)

	ids, err := repo.DetachEntriesFromInvoice("inv-1", lockedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"entry-1", "entry-2"}, ids)

	got, err = repo.GetTimeEntry("entry-1")
	require.NoError(t, err)
	assert.Nil(t, got.InvoiceID)
	assert.Nil(t, got.LockedAt)
}

func TestSearchTimeEntries(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"entry-1", "entry-2", "entry-3"} {
		entry := testEntry(id, "user-1")
		start := base.AddDate(0, 0, i)
		end := start.Add(time.Hour)
		entry.StartTime = start
		entry.EndTime = &end
		entry.OriginalStartTime = start
		entry.OriginalEndTime = &end
		require.NoError(t, repo.CreateTimeEntry(entry))
	}
	require.NoError(t, repo.CreateTimeEntry(testEntry("other-user", "user-2")))

	t.Run("filters by user", func(t *testing.T) {
		entries, err := repo.SearchTimeEntries(SearchOptions{UserID: "user-1"})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("date range is half open", func(t *testing.T) {
		from := base
		to := base.AddDate(0, 0, 2)
		entries, err := repo.SearchTimeEntries(SearchOptions{UserID: "user-1", From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "entry-1", entries[0].ID)
		assert.Equal(t, "entry-2", entries[1].ID)
	})

	t.Run("uninvoiced filter", func(t *testing.T) {
		require.NoError(t, repo.AttachEntriesToInvoice([]string{"entry-1"}, "inv-1", base))

		entries, err := repo.SearchTimeEntries(SearchOptions{UserID: "user-1", Uninvoiced: true})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestSearchTimeEntries_ActiveRange(t *testing.T) {
	repo := newTestRepo(t)

	long := testEntry("long", "user-1")
	longStart := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	longEnd := longStart.AddDate(0, 0, 5)
	long.StartTime = longStart
	long.EndTime = &longEnd
	require.NoError(t, repo.CreateTimeEntry(long))

	short := testEntry("short", "user-1")
	shortStart := time.Date(2026, 8, 18, 9, 0, 0, 0, time.UTC)
	shortEnd := shortStart.Add(time.Hour)
	short.StartTime = shortStart
	short.EndTime = &shortEnd
	require.NoError(t, repo.CreateTimeEntry(short))

	open := runningEntry("open", "user-1", time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateRunningEntry(open))

	t.Run("multi-day entry found inside its interval", func(t *testing.T) {
		// The window sits days past the long entry's start but inside its
		// interval; a start-time filter would miss it.
		from := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)
		entries, err := repo.SearchTimeEntries(SearchOptions{UserID: "user-1", ActiveFrom: &from, ActiveTo: &to})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "long", entries[0].ID)
	})

	t.Run("running entry is open ended", func(t *testing.T) {
		from := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)
		entries, err := repo.SearchTimeEntries(SearchOptions{UserID: "user-1", ActiveFrom: &from, ActiveTo: &to})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "open", entries[0].ID)
	})

	t.Run("entries ended before the window are excluded", func(t *testing.T) {
		from := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)
		entries, err := repo.SearchTimeEntries(SearchOptions{UserID: "user-1", ActiveFrom: &from, ActiveTo: &to})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetSettings("user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	settings := &TrackingSettings{
		UserID:                  "user-1",
		DefaultHourlyRateCents:  8500,
		MaxRetroactiveDays:      7,
		DailyHourWarningMinutes: 480,
		RoundToMinutes:          15,
		MinimumEntryMinutes:     1,
		ClientVisibleLogs:       true,
		AutoStopAtMidnight:      true,
		UpdatedAt:               time.Now().UTC(),
	}
	require.NoError(t, repo.SaveSettings(settings))

	got, err = repo.GetSettings("user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(8500), got.DefaultHourlyRateCents)
	assert.Equal(t, 15, got.RoundToMinutes)
	assert.True(t, got.ClientVisibleLogs)

	// Upsert overwrites.
	settings.RoundToMinutes = 6
	require.NoError(t, repo.SaveSettings(settings))

	got, err = repo.GetSettings("user-1")
	require.NoError(t, err)
	assert.Equal(t, 6, got.RoundToMinutes)
}

func TestProjectAndInvoiceRegistry(t *testing.T) {
	repo := newTestRepo(t)

	rate := int64(12000)
	require.NoError(t, repo.CreateProject(&Project{ID: "proj-1", UserID: "user-1", Name: "Alpha", HourlyRateCents: &rate}))
	require.NoError(t, repo.CreateProject(&Project{ID: "proj-2", UserID: "user-1", Name: "Beta"}))

	project, err := repo.GetProject("proj-1")
	require.NoError(t, err)
	require.NotNil(t, project.HourlyRateCents)
	assert.Equal(t, int64(12000), *project.HourlyRateCents)

	projects, err := repo.ListProjects("user-1")
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	require.NoError(t, repo.CreateInvoice(&Invoice{ID: "inv-1", UserID: "user-1", Status: "draft", CreatedAt: time.Now().UTC()}))

	invoice, err := repo.GetInvoice("inv-1")
	require.NoError(t, err)
	assert.Equal(t, "draft", invoice.Status)

	require.NoError(t, repo.UpdateInvoiceStatus("inv-1", "sent"))
	invoice, err = repo.GetInvoice("inv-1")
	require.NoError(t, err)
	assert.Equal(t, "sent", invoice.Status)

	require.NoError(t, repo.DeleteInvoice("inv-1"))
	_, err = repo.GetInvoice("inv-1")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}
