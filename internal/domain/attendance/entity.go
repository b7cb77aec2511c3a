package attendance

import (
	"math"
	"time"

	"github.com/retailops/storeops-backend/internal/pkg/geo"
)

type AttendanceType string

const (
	TypeRegular     AttendanceType = "regular"
	TypeRescheduled AttendanceType = "rescheduled"
	TypeEmergency   AttendanceType = "emergency"
)

var AttendanceTypeValues = []string{
	string(TypeRegular),
	string(TypeRescheduled),
	string(TypeEmergency),
}

// State is derived from the record, never stored.
type State string

const (
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StateCompleted  State = "completed"
)

// Record is one management session of a user at a store for one work date.
// At most one exists per (UserID, StoreID, WorkDate), and at most one per
// user has a nil ClockOutAt at any time.
type Record struct {
	ID      string
	UserID  string
	StoreID string

	// WorkDate is the resolved business date (UTC midnight), not the
	// wall-clock date of the clock-in.
	WorkDate   time.Time
	ClockInAt  time.Time
	ClockOutAt *time.Time

	AttendanceType AttendanceType
	ScheduledDate  *time.Time
	ChangeReason   *string

	ClockInLatitude   *float64
	ClockInLongitude  *float64
	ClockOutLatitude  *float64
	ClockOutLongitude *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	StoreName *string
	UserName  *string
}

func (r Record) State() State {
	if r.ClockOutAt == nil {
		return StateActive
	}
	return StateCompleted
}

func (r Record) IsActive() bool {
	return r.ClockOutAt == nil
}

func (r Record) IsCompleted() bool {
	return r.ClockOutAt != nil
}

// WorkedMinutes is zero while the record is active.
func (r Record) WorkedMinutes() int {
	if r.ClockOutAt == nil {
		return 0
	}
	return int(r.ClockOutAt.Sub(r.ClockInAt).Minutes())
}

// ClockOutDistanceMeters is how far the clock-out position was from the
// clock-in position, or nil when either was not captured.
func (r Record) ClockOutDistanceMeters() *float64 {
	in := geo.PointOf(r.ClockInLatitude, r.ClockInLongitude)
	out := geo.PointOf(r.ClockOutLatitude, r.ClockOutLongitude)
	if in == nil || out == nil {
		return nil
	}
	d := math.Round(geo.DistanceMeters(*in, *out))
	return &d
}
