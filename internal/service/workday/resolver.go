package workday

import (
	"time"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/domain/store"
)

const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's own location, as UTC midnight.
// Work dates are stored and compared in this form.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PreviousDay returns the calendar date before date.
func PreviousDay(date time.Time) time.Time {
	return DateOf(date).AddDate(0, 0, -1)
}

// ParseDate parses YYYY-MM-DD into a work date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate formats a work date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// ResolveWorkDate computes the work date a clock-in at now must be recorded
// against. now must already be in the business timezone. latest is the
// user's most recent record at this store, or nil.
//
// A night-shift store whose ShiftStartHour is unset resolves like an
// ordinary store.
func ResolveWorkDate(cfg store.ScheduleConfig, now time.Time, latest *attendance.Record) time.Time {
	today := DateOf(now)

	if !cfg.IsNightShift {
		return today
	}

	// A shift in progress keeps its work date across midnight.
	if latest != nil && latest.IsActive() {
		return DateOf(latest.WorkDate)
	}

	if !cfg.HasShiftStart() {
		return today
	}

	// Continuation already implies hour >= ShiftStartHour, so the check below
	// would also give today. It stays as the named rule.
	if IsContinuation(cfg, latest, now) {
		return today
	}

	if now.Hour() < *cfg.ShiftStartHour {
		return PreviousDay(today)
	}
	return today
}

// EndSearchDates is the order in which clock-out looks for a record by work
// date: today, then yesterday. Callers fall back to any open record at the
// store after these.
func EndSearchDates(now time.Time) []time.Time {
	today := DateOf(now)
	return []time.Time{today, PreviousDay(today)}
}
