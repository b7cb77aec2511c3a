package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/domain/request"
	"github.com/retailops/storeops-backend/internal/domain/store"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
	"github.com/retailops/storeops-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var conflict *request.ConflictError
	if errors.As(err, &conflict) {
		ConflictWithData(w, "Request was changed by someone else", conflict.Latest)
		return
	}

	var incomplete *attendance.IncompleteChecklistError
	if errors.As(err, &incomplete) {
		PolicyViolation(w, "INCOMPLETE_CHECKLIST", "Complete the checklist before ending management", map[string]string{
			"completed": strconv.Itoa(incomplete.Completed),
			"total":     strconv.Itoa(incomplete.Total),
		})
		return
	}

	switch {
	// Token errors
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrMissingClaim):
		Unauthorized(w, err.Error())

	// Store domain errors
	case errors.Is(err, store.ErrStoreNotFound):
		NotFound(w, "Store not found")
	case errors.Is(err, store.ErrNotStoreMember):
		Forbidden(w, "You are not assigned to this store")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, "You are not allowed to manage this store")
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, "You are not allowed to view this attendance record")
	case errors.Is(err, attendance.ErrAlreadyActiveElsewhere):
		Conflict(w, "ALREADY_ACTIVE_ELSEWHERE", "You are already managing another store")
	case errors.Is(err, attendance.ErrAlreadyClockedInHere):
		Conflict(w, "ALREADY_CLOCKED_IN", "Management has already been started at this store for this work date")
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		Conflict(w, "ALREADY_COMPLETED", "Management has already been ended")
	case errors.Is(err, attendance.ErrNotAuthorizedDay):
		PolicyViolation(w, "NOT_AUTHORIZED_DAY", "This work date is not a management day for the store", nil)
	case errors.Is(err, attendance.ErrNoActiveRecord):
		NotFound(w, "No active management session at this store")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Request domain errors
	case errors.Is(err, request.ErrRequestNotFound):
		NotFound(w, "Request not found")
	case errors.Is(err, request.ErrForbidden):
		Forbidden(w, "You are not allowed to change this request")
	case errors.Is(err, request.ErrInvalidTransition):
		PolicyViolation(w, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, request.ErrNothingToUpdate):
		BadRequest(w, "Nothing to update", nil)
	case errors.Is(err, request.ErrConflict):
		Conflict(w, "VERSION_CONFLICT", "Request was changed by someone else")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
