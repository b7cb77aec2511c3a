package attendance

import (
	"strings"

	"github.com/retailops/storeops-backend/internal/pkg/validator"
)

// ========================================
// MANAGEMENT DTOs
// ========================================

type StartManagementRequest struct {
	UserID         string   `json:"-"`
	StoreID        string   `json:"-"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	AttendanceType string   `json:"attendance_type"`
	ScheduledDate  *string  `json:"scheduled_date,omitempty"` // YYYY-MM-DD, rescheduled only
	ChangeReason   *string  `json:"change_reason,omitempty"`
}

func (r *StartManagementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if validator.IsEmpty(r.StoreID) {
		errs = append(errs, validator.ValidationError{
			Field:   "store_id",
			Message: "store_id is required",
		})
	}

	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if r.AttendanceType == "" {
		r.AttendanceType = string(TypeRegular)
	}
	r.AttendanceType = strings.ToLower(r.AttendanceType)
	if !validator.IsInSlice(r.AttendanceType, AttendanceTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_type",
			Message: "attendance_type must be one of: regular, rescheduled, emergency",
		})
	}

	hasReason := r.ChangeReason != nil && !validator.IsEmpty(*r.ChangeReason)

	switch AttendanceType(r.AttendanceType) {
	case TypeRescheduled:
		if r.ScheduledDate == nil || validator.IsEmpty(*r.ScheduledDate) {
			errs = append(errs, validator.ValidationError{
				Field:   "scheduled_date",
				Message: "scheduled_date is required for rescheduled attendance",
			})
		} else if _, valid := validator.IsValidDate(*r.ScheduledDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "scheduled_date",
				Message: "scheduled_date must be in YYYY-MM-DD format",
			})
		}
		if !hasReason {
			errs = append(errs, validator.ValidationError{
				Field:   "change_reason",
				Message: "change_reason is required for rescheduled attendance",
			})
		}
	case TypeEmergency:
		if !hasReason {
			errs = append(errs, validator.ValidationError{
				Field:   "change_reason",
				Message: "change_reason is required for emergency attendance",
			})
		}
		if r.ScheduledDate != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "scheduled_date",
				Message: "scheduled_date is only allowed for rescheduled attendance",
			})
		}
	case TypeRegular:
		if r.ScheduledDate != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "scheduled_date",
				Message: "scheduled_date is only allowed for rescheduled attendance",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndManagementRequest struct {
	UserID    string   `json:"-"`
	StoreID   string   `json:"-"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *EndManagementRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if validator.IsEmpty(r.StoreID) {
		errs = append(errs, validator.ValidationError{
			Field:   "store_id",
			Message: "store_id is required",
		})
	}

	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateCoordinates(lat, lng *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be provided together",
		})
	}

	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lng != nil && (*lng < -180 || *lng > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	return errs
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	UserName          *string  `json:"user_name,omitempty"`
	StoreID           string   `json:"store_id"`
	StoreName         *string  `json:"store_name,omitempty"`
	WorkDate          string   `json:"work_date"`
	State             string   `json:"state"`
	AttendanceType    string   `json:"attendance_type"`
	ScheduledDate     *string  `json:"scheduled_date,omitempty"`
	ChangeReason      *string  `json:"change_reason,omitempty"`
	ClockInAt         string   `json:"clock_in_at"`
	ClockOutAt        *string  `json:"clock_out_at,omitempty"`
	ClockInLatitude   *float64 `json:"clock_in_latitude,omitempty"`
	ClockInLongitude  *float64 `json:"clock_in_longitude,omitempty"`
	ClockOutLatitude  *float64 `json:"clock_out_latitude,omitempty"`
	ClockOutLongitude *float64 `json:"clock_out_longitude,omitempty"`
	WorkedMinutes     *int     `json:"worked_minutes,omitempty"`
	ClockOutDistanceM *float64 `json:"clock_out_distance_m,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// ========================================
// MANAGEMENT STATUS DTOs
// ========================================

// ManagementStatusResponse is everything a client needs to render the
// start/end controls for one store without re-deriving business rules.
type ManagementStatusResponse struct {
	StoreID            string              `json:"store_id"`
	WorkDate           string              `json:"work_date"`
	IsManagementDay    bool                `json:"is_management_day"`
	IsNightShift       bool                `json:"is_night_shift"`
	ActiveRecord       *AttendanceResponse `json:"active_record,omitempty"`
	ActiveElsewhereID  *string             `json:"active_elsewhere_store_id,omitempty"`
	HasRecordForDate   bool                `json:"has_record_for_work_date"`
	ChecklistCompleted int                 `json:"checklist_completed"`
	ChecklistTotal     int                 `json:"checklist_total"`
	CanStart           bool                `json:"can_start"`
	CanEnd             bool                `json:"can_end"`
	Message            string              `json:"message"`
}

// ========================================
// LIST DTOs
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	UserID    *string `json:"user_id,omitempty"`
	StoreID   *string `json:"store_id,omitempty"`
	WorkDate  *string `json:"work_date,omitempty"`  // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	State     *string `json:"state,omitempty"`
	Type      *string `json:"attendance_type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // work_date, clock_in_at, clock_out_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.State != nil {
		validStates := []string{string(StateActive), string(StateCompleted)}
		if !validator.IsInSlice(*f.State, validStates) {
			errs = append(errs, validator.ValidationError{
				Field:   "state",
				Message: "state must be one of: active, completed",
			})
		}
	}

	if f.Type != nil && !validator.IsInSlice(*f.Type, AttendanceTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_type",
			Message: "attendance_type must be one of: regular, rescheduled, emergency",
		})
	}

	for field, value := range map[string]*string{
		"work_date":  f.WorkDate,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"work_date", "clock_in_at", "clock_out_at"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: work_date, clock_in_at, clock_out_at",
			})
		}
	} else {
		f.SortBy = "work_date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type ExportRequest struct {
	StoreID   string `json:"-"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if end.Sub(start).Hours() > 24*366 {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "export range must not exceed one year",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
