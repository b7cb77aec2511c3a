// Package workday decides which business date an attendance event belongs
// to and whether that date is a management day for the store. Everything
// here is pure: no I/O, no clock reads.
package workday

import (
	"time"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/domain/store"
)

// IsAuthorizedDay reports whether date falls on one of the store's
// management days. A store with an empty schedule is always open; a stored
// schedule with unknown day names fails to load and never reaches here.
func IsAuthorizedDay(cfg store.ScheduleConfig, date time.Time) bool {
	if len(cfg.ManagementDays) == 0 {
		return true
	}

	weekday := DateOf(date).Weekday()
	for _, d := range cfg.ManagementDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// IsContinuation reports whether a night-shift store may start the next
// management day's shift on the same evening the previous one was completed:
// the latest record is completed, its work date and today are both management
// days, and the shift start hour has been reached.
func IsContinuation(cfg store.ScheduleConfig, latest *attendance.Record, now time.Time) bool {
	if !cfg.IsNightShift || !cfg.HasShiftStart() {
		return false
	}
	if latest == nil || !latest.IsCompleted() {
		return false
	}
	if now.Hour() < *cfg.ShiftStartHour {
		return false
	}
	return IsAuthorizedDay(cfg, latest.WorkDate) && IsAuthorizedDay(cfg, DateOf(now))
}
