package api

import (
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/repository/sqlite"
	"timeledger/internal/services"
	"timeledger/internal/settings"
)

// API provides the single entry point to the time tracking engine. Callers
// (CLI today, a sync server later) go through here rather than touching
// the services directly.
type API struct {
	repo      sqlite.Repository
	settings  settings.Service
	lifecycle services.LifecycleService
	reporting services.ReportingService
	invoices  services.InvoiceGate
}

// New creates a new API instance over an opened repository. loc is the
// business timezone used for day boundaries.
func New(repo sqlite.Repository, loc *time.Location) *API {
	settingsService := settings.NewService(repo)
	return &API{
		repo:      repo,
		settings:  settingsService,
		lifecycle: services.NewLifecycleService(repo, settingsService, loc),
		reporting: services.NewReportingService(repo, settingsService, loc),
		invoices:  services.NewInvoiceGate(repo),
	}
}

// Close releases the underlying repository.
func (a *API) Close() error {
	return a.repo.Close()
}

// Reporting exposes the reporting service for export helpers.
func (a *API) Reporting() services.ReportingService {
	return a.reporting
}

// Timer lifecycle

// StartTimer starts a running timer for the user.
func (a *API) StartTimer(userID string, opts services.StartOptions) (*domain.TimeEntry, error) {
	return a.lifecycle.StartTimer(userID, opts)
}

// StopTimer stops the user's running timer.
func (a *API) StopTimer(userID string, opts services.StopOptions) (*services.StopResult, error) {
	return a.lifecycle.StopTimer(userID, opts)
}

// GetRunningEntry returns the user's running timer, or nil.
func (a *API) GetRunningEntry(userID string) (*domain.TimeEntry, error) {
	return a.lifecycle.GetRunningEntry(userID)
}

// SweepStaleTimers auto-stops abandoned timers across all users.
func (a *API) SweepStaleTimers() ([]*domain.TimeEntry, error) {
	return a.lifecycle.SweepStaleTimers()
}

// Entry management

// CreateManualEntry creates a manual entry from typed-in times.
func (a *API) CreateManualEntry(userID string, input domain.ManualInput, opts services.ManualOptions) (*services.EntryResult, error) {
	return a.lifecycle.CreateManual(userID, input, opts)
}

// EditEntry applies a partial edit with an audit trail.
func (a *API) EditEntry(entryID string, changes services.EntryChanges, reason string) (*services.EntryResult, error) {
	return a.lifecycle.EditEntry(entryID, changes, reason)
}

// DeleteEntry deletes an unlocked, uninvoiced entry.
func (a *API) DeleteEntry(entryID string) error {
	return a.lifecycle.DeleteEntry(entryID)
}

// GetEntry returns a single entry.
func (a *API) GetEntry(entryID string) (*domain.TimeEntry, error) {
	return a.lifecycle.GetEntry(entryID)
}

// GetEditHistory returns an entry's audit trail.
func (a *API) GetEditHistory(entryID string) ([]*domain.EditRecord, error) {
	return a.lifecycle.GetEditHistory(entryID)
}

// LockEntry makes an entry immutable.
func (a *API) LockEntry(entryID string, reason string) error {
	return a.lifecycle.LockEntry(entryID, reason)
}

// ListEntries searches a user's entries.
func (a *API) ListEntries(userID string, from, to *time.Time, projectID *string) ([]*domain.TimeEntry, error) {
	mapper := domain.NewMapper()
	dbEntries, err := a.repo.SearchTimeEntries(sqlite.SearchOptions{
		UserID:    userID,
		From:      from,
		To:        to,
		ProjectID: projectID,
	})
	if err != nil {
		return nil, err
	}
	return mapper.TimeEntry.FromDatabaseSlice(dbEntries), nil
}

// Reporting

// GetRangeStats aggregates a user's entries over a range.
func (a *API) GetRangeStats(userID string, from, to time.Time) (*services.RangeStats, error) {
	return a.reporting.GetRangeStats(userID, from, to)
}

// GetWeeklyTimesheet builds a seven-day timesheet.
func (a *API) GetWeeklyTimesheet(userID string, weekStart time.Time) (*services.Timesheet, error) {
	return a.reporting.GetWeeklyTimesheet(userID, weekStart)
}

// GetDayBuckets groups entries by calendar day.
func (a *API) GetDayBuckets(userID string, from, to time.Time) ([]services.DayBucket, error) {
	return a.reporting.GetDayBuckets(userID, from, to)
}

// GetClientLog returns the client-safe work log projection.
func (a *API) GetClientLog(userID string, from, to time.Time) ([]domain.ClientLogEntry, error) {
	return a.reporting.GetClientLog(userID, from, to)
}

// FormatDuration renders a duration for display.
func (a *API) FormatDuration(duration time.Duration) string {
	return a.reporting.FormatDuration(duration)
}

// FormatCurrency renders cents for display.
func (a *API) FormatCurrency(cents int64) string {
	return a.reporting.FormatCurrency(cents)
}

// Settings

// GetSettings returns the user's settings, defaults when unset.
func (a *API) GetSettings(userID string) (domain.Settings, error) {
	return a.settings.GetSettings(userID)
}

// UpdateSettings applies a partial settings update.
func (a *API) UpdateSettings(userID string, patch domain.SettingsPatch) (domain.Settings, error) {
	return a.settings.UpdateSettings(userID, patch)
}

// Invoicing

// SelectBillableEntries returns entries eligible for invoicing.
func (a *API) SelectBillableEntries(userID string, projectID *string, from, to *time.Time) ([]*domain.TimeEntry, error) {
	return a.invoices.SelectBillableEntries(userID, projectID, from, to)
}

// CreateDraftInvoice creates an empty draft invoice.
func (a *API) CreateDraftInvoice(userID string) (*domain.Invoice, error) {
	return a.invoices.CreateDraftInvoice(userID)
}

// AttachToInvoice attaches and locks entries to a draft invoice.
func (a *API) AttachToInvoice(entryIDs []string, invoiceID string) error {
	return a.invoices.AttachToInvoice(entryIDs, invoiceID)
}

// GetInvoice returns an invoice.
func (a *API) GetInvoice(invoiceID string) (*domain.Invoice, error) {
	return a.invoices.GetInvoice(invoiceID)
}

// MarkInvoiceSent finalizes a draft invoice.
func (a *API) MarkInvoiceSent(invoiceID string) error {
	return a.invoices.MarkInvoiceSent(invoiceID)
}

// DeleteDraftInvoice deletes a draft invoice, releasing its entries.
func (a *API) DeleteDraftInvoice(invoiceID string) error {
	return a.invoices.DeleteDraftInvoice(invoiceID)
}

// Projects

// CreateProject registers a project, optionally with a rate override.
func (a *API) CreateProject(userID, name string, hourlyRateCents *int64) (*domain.Project, error) {
	return createProject(a.repo, userID, name, hourlyRateCents)
}

// GetProject returns a project.
func (a *API) GetProject(projectID string) (*domain.Project, error) {
	mapper := domain.NewMapper()
	dbProject, err := a.repo.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	project := mapper.Project.FromDatabase(*dbProject)
	return &project, nil
}

// ListProjects returns the user's projects.
func (a *API) ListProjects(userID string) ([]*domain.Project, error) {
	mapper := domain.NewMapper()
	dbProjects, err := a.repo.ListProjects(userID)
	if err != nil {
		return nil, err
	}
	projects := make([]*domain.Project, len(dbProjects))
	for i, dbProject := range dbProjects {
		project := mapper.Project.FromDatabase(*dbProject)
		projects[i] = &project
	}
	return projects, nil
}
