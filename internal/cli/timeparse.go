package cli

import (
	"fmt"
	"time"

	"timeledger/internal/errors"
)

var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

const dateLayout = "2006-01-02"
const clockLayout = "15:04"

// parseDateTime parses a timestamp in the accepted input layouts, in loc.
func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewInvalidInputError("time", value, "expected a timestamp like 2006-01-02 15:04")
}

// parseDate parses a calendar date, in loc.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, errors.NewInvalidInputError("date", value, "expected a date like 2006-01-02")
	}
	return t, nil
}

// parseClockOnDate parses a clock time like "09:30" onto the given date.
func parseClockOnDate(value string, date time.Time, loc *time.Location) (time.Time, error) {
	clock, err := time.ParseInLocation(clockLayout, value, loc)
	if err != nil {
		return time.Time{}, errors.NewInvalidInputError("time", value, "expected a clock time like 09:30")
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// formatSeconds renders a duration in seconds as hours and minutes.
func formatSeconds(seconds int64) string {
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
