package engine

import (
	"time"

	"menuboard/internal/model"
)

// nextOccurrence computes the next start time for a recurring schedule.
// Returns ok=false when the recurrence kind has no next-occurrence
// formula (Custom) or the calendar advance is undefined.
func nextOccurrence(s model.MenuSchedule) (time.Time, bool) {
	switch s.Recurrence {
	case model.RecurrenceDaily:
		return s.StartTime.Add(24 * time.Hour), true
	case model.RecurrenceWeekly:
		return s.StartTime.Add(7 * 24 * time.Hour), true
	case model.RecurrenceMonthly:
		return addOneMonth(s.StartTime), true
	default:
		return time.Time{}, false
	}
}

// addOneMonth advances t by one calendar month, preserving the time of
// day and clamping the day to the last valid day of the target month
// (Jan 31 -> Feb 28/29). Plain AddDate would normalize Jan 31 into early
// March instead.
func addOneMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Day 0 of month+2 is the last day of month+1.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+1, day, hour, min, sec, t.Nanosecond(), t.Location())
}
