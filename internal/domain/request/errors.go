package request

import (
	"errors"

	"github.com/retailops/storeops-backend/internal/pkg/occ"
)

var (
	ErrRequestNotFound   = errors.New("request not found")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrForbidden         = errors.New("you are not allowed to modify this request")
	ErrNothingToUpdate   = errors.New("no fields to update")

	// ErrConflict matches ConflictError. The request changed after the
	// caller read it.
	ErrConflict = occ.ErrConflict
)

// ConflictError carries the latest state of a request whose guarded write lost.
type ConflictError = occ.ConflictError[RequestResponse]
