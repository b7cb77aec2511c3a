package store

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleConfig is the per-store schedule used to resolve work dates.
// It is owned by store administration and read-only to attendance.
type ScheduleConfig struct {
	StoreID string
	Name    string

	// ManagementDays is the weekly recurring schedule. Nil or empty means
	// every day is authorized (legacy stores without a declared schedule).
	ManagementDays []time.Weekday

	IsNightShift bool
	// ShiftStartHour and ShiftEndHour are local business hours (0-23).
	// They are only meaningful when IsNightShift is true.
	ShiftStartHour *int
	ShiftEndHour   *int

	UpdatedAt time.Time
}

// HasShiftStart reports whether a night-shift start hour is configured.
func (c ScheduleConfig) HasShiftStart() bool {
	return c.ShiftStartHour != nil
}

type MemberRole string

const (
	RoleStaff   MemberRole = "staff"
	RoleManager MemberRole = "manager"
)

type Member struct {
	StoreID   string
	UserID    string
	Role      MemberRole
	CreatedAt time.Time
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[s]; ok {
		return d, true
	}
	if len(s) == 3 {
		for name, d := range weekdayNames {
			if strings.HasPrefix(name, s) {
				return d, true
			}
		}
	}
	return 0, false
}

// ParseWeekdays parses a stored list of day names. A single unknown entry
// fails the whole list; only an empty list means every day.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	if len(names) == 0 {
		return nil, nil
	}
	days := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		d, ok := ParseWeekday(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidManagementDay, n)
		}
		days = append(days, d)
	}
	return days, nil
}

// WeekdayNames is the inverse of ParseWeekdays.
func WeekdayNames(days []time.Weekday) []string {
	if len(days) == 0 {
		return nil
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, strings.ToLower(d.String()))
	}
	return names
}
