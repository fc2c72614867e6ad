package domain

import (
	"time"
)

// ManualInput is the tagged "either a duration or a start/end range" shape
// accepted for manual entries. It is normalized into a single canonical
// (start, end, duration) representation before any validation runs.
type ManualInput struct {
	kind ManualInputKind

	date    time.Time
	seconds int64

	start time.Time
	end   time.Time
}

// ManualInputKind tags the input variant.
type ManualInputKind string

const (
	ManualByDuration ManualInputKind = "by_duration"
	ManualByRange    ManualInputKind = "by_range"
)

// ManualByDurationInput builds a manual input from a calendar date and a
// duration in seconds. The entry is anchored at the start of that day.
func ManualByDurationInput(date time.Time, seconds int64) ManualInput {
	return ManualInput{kind: ManualByDuration, date: date, seconds: seconds}
}

// ManualByRangeInput builds a manual input from explicit start and end times.
func ManualByRangeInput(start, end time.Time) ManualInput {
	return ManualInput{kind: ManualByRange, start: start, end: end}
}

// Kind returns the input variant tag.
func (mi ManualInput) Kind() ManualInputKind {
	return mi.kind
}

// NormalizedInterval is the canonical representation every manual input is
// reduced to before validation.
type NormalizedInterval struct {
	Start   time.Time
	End     time.Time
	Seconds int64
}

// Normalize reduces the input to its canonical interval in the given
// location. Structural problems (zero times, inverted range, non-positive
// duration) are reported as ok=false; business rules are the validator's
// concern, not this function's.
func (mi ManualInput) Normalize(loc *time.Location) (NormalizedInterval, bool) {
	switch mi.kind {
	case ManualByDuration:
		if mi.date.IsZero() || mi.seconds <= 0 {
			return NormalizedInterval{}, false
		}
		start := StartOfDay(mi.date.In(loc))
		return NormalizedInterval{
			Start:   start,
			End:     start.Add(time.Duration(mi.seconds) * time.Second),
			Seconds: mi.seconds,
		}, true
	case ManualByRange:
		if mi.start.IsZero() || mi.end.IsZero() || !mi.end.After(mi.start) {
			return NormalizedInterval{}, false
		}
		start := mi.start.In(loc)
		end := mi.end.In(loc)
		return NormalizedInterval{
			Start:   start,
			End:     end,
			Seconds: int64(end.Sub(start) / time.Second),
		}, true
	default:
		return NormalizedInterval{}, false
	}
}

// StartOfDay returns midnight at the start of t's calendar day, in t's
// location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMidnight returns midnight at the end of t's calendar day.
func NextMidnight(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same calendar day in a's
// location.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
