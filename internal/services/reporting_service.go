package services

import (
	"fmt"
	"sort"
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/repository/sqlite"
	"timeledger/internal/settings"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo     sqlite.Repository
	settings settings.Service
	mapper   *domain.Mapper
	loc      *time.Location
	clock    Clock
}

// NewReportingService creates a new ReportingService instance.
func NewReportingService(repo sqlite.Repository, settingsService settings.Service, loc *time.Location) ReportingService {
	return NewReportingServiceWithClock(repo, settingsService, loc, time.Now)
}

// NewReportingServiceWithClock creates a ReportingService with an injected
// clock for tests.
func NewReportingServiceWithClock(repo sqlite.Repository, settingsService settings.Service, loc *time.Location, clock Clock) ReportingService {
	if loc == nil {
		loc = time.Local
	}
	return &reportingServiceImpl{
		repo:     repo,
		settings: settingsService,
		mapper:   domain.NewMapper(),
		loc:      loc,
		clock:    clock,
	}
}

// GetRangeStats aggregates a user's entries in [from, to). Earnings use
// each entry's snapshotted rate, so a later rate change never moves past
// figures. Running entries count their elapsed time but contribute no
// earnings until stopped.
func (s *reportingServiceImpl) GetRangeStats(userID string, from, to time.Time) (*RangeStats, error) {
	entries, err := s.rangeEntries(userID, from, to)
	if err != nil {
		return nil, err
	}

	now := s.clock().In(s.loc)
	stats := &RangeStats{}
	for _, entry := range entries {
		seconds := int64(entry.Duration(now) / time.Second)
		stats.TotalSeconds += seconds
		if entry.Billable {
			stats.BillableSeconds += seconds
		}
		switch entry.EntryType {
		case domain.EntryTypeManual:
			stats.ManualCount++
		default:
			stats.TrackedCount++
		}
		stats.EarningsCents += entry.EarningsCents()
	}
	return stats, nil
}

// GetDayBuckets groups a user's entries in [from, to) by calendar day in
// the business timezone. Days with no entries are omitted.
func (s *reportingServiceImpl) GetDayBuckets(userID string, from, to time.Time) ([]DayBucket, error) {
	entries, err := s.rangeEntries(userID, from, to)
	if err != nil {
		return nil, err
	}

	now := s.clock().In(s.loc)
	byDay := make(map[time.Time]*DayBucket)
	for _, entry := range entries {
		day := domain.StartOfDay(entry.StartTime.In(s.loc))
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DayBucket{Date: day}
			byDay[day] = bucket
		}
		seconds := int64(entry.Duration(now) / time.Second)
		bucket.TotalSeconds += seconds
		if entry.Billable {
			bucket.BillableSeconds += seconds
		}
		bucket.Entries = append(bucket.Entries, entry)
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for _, bucket := range byDay {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets, nil
}

// GetWeeklyTimesheet builds a seven-day timesheet starting at the given
// day. Every day appears, empty or not, so the week renders as a full grid.
func (s *reportingServiceImpl) GetWeeklyTimesheet(userID string, weekStart time.Time) (*Timesheet, error) {
	start := domain.StartOfDay(weekStart.In(s.loc))
	end := start.AddDate(0, 0, 7)

	buckets, err := s.GetDayBuckets(userID, start, end)
	if err != nil {
		return nil, err
	}
	byDay := make(map[time.Time]DayBucket, len(buckets))
	for _, bucket := range buckets {
		byDay[bucket.Date] = bucket
	}

	sheet := &Timesheet{WeekStart: start}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		bucket, ok := byDay[day]
		if !ok {
			bucket = DayBucket{Date: day}
		}
		sheet.Days = append(sheet.Days, bucket)
		sheet.TotalSeconds += bucket.TotalSeconds
		sheet.BillableSeconds += bucket.BillableSeconds
		for _, entry := range bucket.Entries {
			sheet.EarningsCents += entry.EarningsCents()
		}
	}
	return sheet, nil
}

// GetClientLog returns the client-safe projection of a user's entries:
// dates, descriptions and durations with no rates or earnings. Returns an
// empty log when the user has client-visible logs turned off. Running
// entries are excluded until they stop.
func (s *reportingServiceImpl) GetClientLog(userID string, from, to time.Time) ([]domain.ClientLogEntry, error) {
	userSettings, err := s.settings.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	if !userSettings.ClientVisibleLogs {
		return []domain.ClientLogEntry{}, nil
	}

	entries, err := s.rangeEntries(userID, from, to)
	if err != nil {
		return nil, err
	}

	log := make([]domain.ClientLogEntry, 0, len(entries))
	for _, entry := range entries {
		if view, ok := domain.ClientView(*entry); ok {
			log = append(log, view)
		}
	}
	return log, nil
}

// FormatDuration renders a duration as hours and minutes, e.g. "2h 15m".
func (s *reportingServiceImpl) FormatDuration(duration time.Duration) string {
	totalMinutes := int(duration.Minutes())
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatCurrency renders an amount of cents as dollars, e.g. "$86.25".
func (s *reportingServiceImpl) FormatCurrency(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	formatted := fmt.Sprintf("$%d.%02d", cents/100, cents%100)
	if negative {
		return "-" + formatted
	}
	return formatted
}

func (s *reportingServiceImpl) rangeEntries(userID string, from, to time.Time) ([]*domain.TimeEntry, error) {
	dbEntries, err := s.repo.SearchTimeEntries(sqlite.SearchOptions{
		UserID: userID,
		From:   &from,
		To:     &to,
	})
	if err != nil {
		return nil, err
	}
	return s.mapper.TimeEntry.FromDatabaseSlice(dbEntries), nil
}
