package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Start errors
	ErrUnauthorized           = errors.New("user is not allowed to manage this store")
	ErrAlreadyActiveElsewhere = errors.New("user is already managing another store")
	ErrAlreadyClockedInHere   = errors.New("management already started at this store for this work date")
	ErrNotAuthorizedDay       = errors.New("work date is not a management day for this store")

	// End errors
	ErrNoActiveRecord      = errors.New("no active management session at this store")
	ErrAlreadyCompleted    = errors.New("management session already ended")
	ErrIncompleteChecklist = errors.New("checklist is not complete")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrForbidden          = errors.New("not allowed to access this attendance record")
)

// IncompleteChecklistError carries checklist progress for a rejected clock-out.
type IncompleteChecklistError struct {
	Completed int
	Total     int
}

func (e *IncompleteChecklistError) Error() string {
	return fmt.Sprintf("checklist is not complete: %d of %d items done", e.Completed, e.Total)
}

func (e *IncompleteChecklistError) Is(target error) bool {
	return target == ErrIncompleteChecklist
}
