package domain

import (
	"timeledger/internal/repository/sqlite"
)

// TimeEntryMapper handles conversion between domain and database TimeEntry models.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToDatabase converts a domain TimeEntry to a database TimeEntry.
func (m *TimeEntryMapper) ToDatabase(entry TimeEntry) sqlite.TimeEntry {
	dbEntry := sqlite.TimeEntry{
		ID:                      entry.ID,
		UserID:                  entry.UserID,
		ProjectID:               entry.ProjectID,
		MilestoneID:             entry.MilestoneID,
		Description:             entry.Description,
		StartTime:               entry.StartTime,
		EndTime:                 entry.EndTime,
		DurationSeconds:         entry.DurationSeconds,
		HourlyRateCents:         entry.HourlyRateCents,
		Billable:                entry.Billable,
		InvoiceID:               entry.InvoiceID,
		EntryType:               string(entry.EntryType),
		LockedAt:                entry.LockedAt,
		AutoStopped:             entry.AutoStopped,
		OriginalStartTime:       entry.OriginalStartTime,
		OriginalEndTime:         entry.OriginalEndTime,
		OriginalDurationSeconds: entry.OriginalDurationSeconds,
		CreatedAt:               entry.CreatedAt,
		UpdatedAt:               entry.UpdatedAt,
	}
	if entry.LockedReason != "" {
		dbEntry.LockedReason = &entry.LockedReason
	}
	if entry.AutoStopReason != "" {
		dbEntry.AutoStopReason = &entry.AutoStopReason
	}
	return dbEntry
}

// FromDatabase converts a database TimeEntry to a domain TimeEntry.
func (m *TimeEntryMapper) FromDatabase(dbEntry sqlite.TimeEntry) TimeEntry {
	entry := TimeEntry{
		ID:                      dbEntry.ID,
		UserID:                  dbEntry.UserID,
		ProjectID:               dbEntry.ProjectID,
		MilestoneID:             dbEntry.MilestoneID,
		Description:             dbEntry.Description,
		StartTime:               dbEntry.StartTime,
		EndTime:                 dbEntry.EndTime,
		DurationSeconds:         dbEntry.DurationSeconds,
		HourlyRateCents:         dbEntry.HourlyRateCents,
		Billable:                dbEntry.Billable,
		InvoiceID:               dbEntry.InvoiceID,
		EntryType:               EntryType(dbEntry.EntryType),
		LockedAt:                dbEntry.LockedAt,
		AutoStopped:             dbEntry.AutoStopped,
		OriginalStartTime:       dbEntry.OriginalStartTime,
		OriginalEndTime:         dbEntry.OriginalEndTime,
		OriginalDurationSeconds: dbEntry.OriginalDurationSeconds,
		CreatedAt:               dbEntry.CreatedAt,
		UpdatedAt:               dbEntry.UpdatedAt,
	}
	if dbEntry.LockedReason != nil {
		entry.LockedReason = *dbEntry.LockedReason
	}
	if dbEntry.AutoStopReason != nil {
		entry.AutoStopReason = *dbEntry.AutoStopReason
	}
	return entry
}

// FromDatabaseSlice converts a slice of database TimeEntries to domain TimeEntries.
func (m *TimeEntryMapper) FromDatabaseSlice(dbEntries []*sqlite.TimeEntry) []*TimeEntry {
	entries := make([]*TimeEntry, len(dbEntries))
	for i, dbEntry := range dbEntries {
		entry := m.FromDatabase(*dbEntry)
		entries[i] = &entry
	}
	return entries
}

// EditRecordMapper handles conversion between domain and database EditRecord models.
type EditRecordMapper struct{}

// NewEditRecordMapper creates a new EditRecordMapper instance.
func NewEditRecordMapper() *EditRecordMapper {
	return &EditRecordMapper{}
}

// ToDatabase converts a domain EditRecord to a database EditRecord.
func (m *EditRecordMapper) ToDatabase(record EditRecord) sqlite.EditRecord {
	dbRecord := sqlite.EditRecord{
		ID:       record.ID,
		EntryID:  record.EntryID,
		EditedAt: record.EditedAt,
		Field:    record.Field,
		OldValue: record.OldValue,
		NewValue: record.NewValue,
	}
	if record.Reason != "" {
		dbRecord.Reason = &record.Reason
	}
	return dbRecord
}

// FromDatabase converts a database EditRecord to a domain EditRecord.
func (m *EditRecordMapper) FromDatabase(dbRecord sqlite.EditRecord) EditRecord {
	record := EditRecord{
		ID:       dbRecord.ID,
		EntryID:  dbRecord.EntryID,
		EditedAt: dbRecord.EditedAt,
		Field:    dbRecord.Field,
		OldValue: dbRecord.OldValue,
		NewValue: dbRecord.NewValue,
	}
	if dbRecord.Reason != nil {
		record.Reason = *dbRecord.Reason
	}
	return record
}

// FromDatabaseSlice converts a slice of database EditRecords to domain EditRecords.
func (m *EditRecordMapper) FromDatabaseSlice(dbRecords []*sqlite.EditRecord) []*EditRecord {
	records := make([]*EditRecord, len(dbRecords))
	for i, dbRecord := range dbRecords {
		record := m.FromDatabase(*dbRecord)
		records[i] = &record
	}
	return records
}

// SettingsMapper handles conversion between domain and database settings models.
type SettingsMapper struct{}

// NewSettingsMapper creates a new SettingsMapper instance.
func NewSettingsMapper() *SettingsMapper {
	return &SettingsMapper{}
}

// ToDatabase converts domain Settings to a database TrackingSettings row.
func (m *SettingsMapper) ToDatabase(s Settings) sqlite.TrackingSettings {
	return sqlite.TrackingSettings{
		UserID:                  s.UserID,
		DefaultHourlyRateCents:  s.DefaultHourlyRateCents,
		MaxRetroactiveDays:      s.MaxRetroactiveDays,
		DailyHourWarningMinutes: s.DailyHourWarningMinutes,
		IdleTimeoutMinutes:      s.IdleTimeoutMinutes,
		RoundToMinutes:          s.RoundToMinutes,
		MinimumEntryMinutes:     s.MinimumEntryMinutes,
		AllowOverlapping:        s.AllowOverlapping,
		ClientVisibleLogs:       s.ClientVisibleLogs,
		RequireDescription:      s.RequireDescription,
		AutoStopAtMidnight:      s.AutoStopAtMidnight,
		UpdatedAt:               s.UpdatedAt,
	}
}

// FromDatabase converts a database TrackingSettings row to domain Settings.
func (m *SettingsMapper) FromDatabase(dbSettings sqlite.TrackingSettings) Settings {
	return Settings{
		UserID:                  dbSettings.UserID,
		DefaultHourlyRateCents:  dbSettings.DefaultHourlyRateCents,
		MaxRetroactiveDays:      dbSettings.MaxRetroactiveDays,
		DailyHourWarningMinutes: dbSettings.DailyHourWarningMinutes,
		IdleTimeoutMinutes:      dbSettings.IdleTimeoutMinutes,
		RoundToMinutes:          dbSettings.RoundToMinutes,
		MinimumEntryMinutes:     dbSettings.MinimumEntryMinutes,
		AllowOverlapping:        dbSettings.AllowOverlapping,
		ClientVisibleLogs:       dbSettings.ClientVisibleLogs,
		RequireDescription:      dbSettings.RequireDescription,
		AutoStopAtMidnight:      dbSettings.AutoStopAtMidnight,
		UpdatedAt:               dbSettings.UpdatedAt,
	}
}

// ProjectMapper handles conversion between domain and database Project models.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToDatabase converts a domain Project to a database Project.
func (m *ProjectMapper) ToDatabase(project Project) sqlite.Project {
	return sqlite.Project{
		ID:              project.ID,
		UserID:          project.UserID,
		Name:            project.Name,
		HourlyRateCents: project.HourlyRateCents,
	}
}

// FromDatabase converts a database Project to a domain Project.
func (m *ProjectMapper) FromDatabase(dbProject sqlite.Project) Project {
	return Project{
		ID:              dbProject.ID,
		UserID:          dbProject.UserID,
		Name:            dbProject.Name,
		HourlyRateCents: dbProject.HourlyRateCents,
	}
}

// InvoiceMapper handles conversion between domain and database Invoice models.
type InvoiceMapper struct{}

// NewInvoiceMapper creates a new InvoiceMapper instance.
func NewInvoiceMapper() *InvoiceMapper {
	return &InvoiceMapper{}
}

// ToDatabase converts a domain Invoice to a database Invoice.
func (m *InvoiceMapper) ToDatabase(invoice Invoice) sqlite.Invoice {
	return sqlite.Invoice{
		ID:        invoice.ID,
		UserID:    invoice.UserID,
		Status:    string(invoice.Status),
		CreatedAt: invoice.CreatedAt,
	}
}

// FromDatabase converts a database Invoice to a domain Invoice.
func (m *InvoiceMapper) FromDatabase(dbInvoice sqlite.Invoice) Invoice {
	return Invoice{
		ID:        dbInvoice.ID,
		UserID:    dbInvoice.UserID,
		Status:    InvoiceStatus(dbInvoice.Status),
		CreatedAt: dbInvoice.CreatedAt,
	}
}

// SearchOptionsMapper handles conversion between domain and database SearchOptions.
type SearchOptionsMapper struct{}

// NewSearchOptionsMapper creates a new SearchOptionsMapper instance.
func NewSearchOptionsMapper() *SearchOptionsMapper {
	return &SearchOptionsMapper{}
}

// ToDatabase converts domain SearchOptions to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(opts SearchOptions) sqlite.SearchOptions {
	return sqlite.SearchOptions{
		UserID:      opts.UserID,
		From:        opts.From,
		To:          opts.To,
		ProjectID:   opts.ProjectID,
		Billable:    opts.Billable,
		Uninvoiced:  opts.Uninvoiced,
		Unlocked:    opts.Unlocked,
		RunningOnly: opts.RunningOnly,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	TimeEntry     *TimeEntryMapper
	EditRecord    *EditRecordMapper
	Settings      *SettingsMapper
	Project       *ProjectMapper
	Invoice       *InvoiceMapper
	SearchOptions *SearchOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		TimeEntry:     NewTimeEntryMapper(),
		EditRecord:    NewEditRecordMapper(),
		Settings:      NewSettingsMapper(),
		Project:       NewProjectMapper(),
		Invoice:       NewInvoiceMapper(),
		SearchOptions: NewSearchOptionsMapper(),
	}
}
