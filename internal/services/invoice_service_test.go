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
)

type invoiceEnv struct {
	repo      *sqlite.SQLiteRepository
	lifecycle LifecycleService
	gate      InvoiceGate
	now       time.Time
}

func newInvoiceEnv(t *testing.T) *invoiceEnv {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	env := &invoiceEnv{
		repo: repo,
		now:  time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	env.lifecycle = NewLifecycleServiceWithClock(repo, settings.NewService(repo), time.UTC, clock)
	env.gate = NewInvoiceGateWithClock(repo, clock)
	return env
}

func (env *invoiceEnv) addEntry(t *testing.T, description string, start time.Time, billable bool) string {
	t.Helper()
	input := domain.ManualByRangeInput(start, start.Add(time.Hour))
	result, err := env.lifecycle.CreateManual("user-1", input, ManualOptions{
		Description: description,
		Billable:    billable,
	})
	require.NoError(t, err)
	return result.Entry.ID
}

func TestSelectBillableEntries(t *testing.T) {
	env := newInvoiceEnv(t)

	day := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	billableID := env.addEntry(t, "billable", day, true)
	env.addEntry(t, "internal", day.Add(2*time.Hour), false)

	entries, err := env.gate.SelectBillableEntries("user-1", nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, billableID, entries[0].ID)
}

func TestAttachToInvoice_LocksEntries(t *testing.T) {
	env := newInvoiceEnv(t)

	day := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	entryID := env.addEntry(t, "work", day, true)

	invoice, err := env.gate.CreateDraftInvoice("user-1")
	require.NoError(t, err)
	assert.True(t, invoice.IsDraft())

	require.NoError(t, env.gate.AttachToInvoice([]string{entryID}, invoice.ID))

	entry, err := env.lifecycle.GetEntry(entryID)
	require.NoError(t, err)
	assert.True(t, entry.IsLocked())
	assert.Equal(t, domain.LockReasonInvoiced, entry.LockedReason)
	require.NotNil(t, entry.InvoiceID)
	assert.Equal(t, invoice.ID, *entry.InvoiceID)

	// Attached entries no longer show up as billable.
	entries, err := env.gate.SelectBillableEntries("user-1", nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAttachToInvoice_AllOrNothing(t *testing.T) {
	env := newInvoiceEnv(t)

	day := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	goodID := env.addEntry(t, "good", day, true)
	badID := env.addEntry(t, "not billable", day.Add(2*time.Hour), false)

	invoice, err := env.gate.CreateDraftInvoice("user-1")
	require.NoError(t, err)

	err = env.gate.AttachToInvoice([]string{goodID, badID}, invoice.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))

	// The eligible entry was not locked either.
	entry, err := env.lifecycle.GetEntry(goodID)
	require.NoError(t, err)
	assert.False(t, entry.IsLocked())
	assert.Nil(t, entry.InvoiceID)
}

func TestAttachToInvoice_RejectsNonDraft(t *testing.T) {
	env := newInvoiceEnv(t)

	day := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	entryID := env.addEntry(t, "work", day, true)

	invoice, err := env.gate.CreateDraftInvoice("user-1")
	require.NoError(t, err)
	require.NoError(t, env.gate.MarkInvoiceSent(invoice.ID))

	err = env.gate.AttachToInvoice([]string{entryID}, invoice.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}

func TestDeleteDraftInvoice_ReleasesEntries(t *testing.T) {
	env := newInvoiceEnv(t)

	day := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	entryID := env.addEntry(t, "work", day, true)

	invoice, err := env.gate.CreateDraftInvoice("user-1")
	require.NoError(t, err)
	require.NoError(t, env.gate.AttachToInvoice([]string{entryID}, invoice.ID))

	require.NoError(t, env.gate.DeleteDraftInvoice(invoice.ID))

	entry, err := env.lifecycle.GetEntry(entryID)
	require.NoError(t, err)
	assert.False(t, entry.IsLocked())
	assert.Nil(t, entry.InvoiceID)

	_, err = env.gate.GetInvoice(invoice.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestDeleteDraftInvoice_SentInvoiceRejected(t *testing.T) {
	env := newInvoiceEnv(t)

	day := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	entryID := env.addEntry(t, "work", day, true)

	invoice, err := env.gate.CreateDraftInvoice("user-1")
	require.NoError(t, err)
	require.NoError(t, env.gate.AttachToInvoice([]string{entryID}, invoice.ID))
	require.NoError(t, env.gate.MarkInvoiceSent(invoice.ID))

	err = env.gate.DeleteDraftInvoice(invoice.ID)
	require.Error(t, err)

	// The entry stays locked forever.
	entry, err := env.lifecycle.GetEntry(entryID)
	require.NoError(t, err)
	assert.True(t, entry.IsLocked())
}

func TestMarkInvoiceSent_OnlyOnce(t *testing.T) {
	env := newInvoiceEnv(t)

	invoice, err := env.gate.CreateDraftInvoice("user-1")
	require.NoError(t, err)

	require.NoError(t, env.gate.MarkInvoiceSent(invoice.ID))

	err = env.gate.MarkInvoiceSent(invoice.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStateConflict))
}
