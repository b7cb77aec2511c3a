package attendance

import (
	"context"
)

// Viewer is the authenticated caller of a read operation.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

// AttendanceService defines the attendance lifecycle operations
type AttendanceService interface {
	// StartManagement resolves the work date and opens a record for it
	StartManagement(ctx context.Context, req StartManagementRequest) (AttendanceResponse, error)

	// EndManagement closes the user's active record at the store once the checklist is done
	EndManagement(ctx context.Context, req EndManagementRequest) (AttendanceResponse, error)

	// GetManagementStatus returns the server-derived start/end state for a store
	GetManagementStatus(ctx context.Context, userID string, storeID string) (ManagementStatusResponse, error)

	// ListMyAttendance lists the caller's own records
	ListMyAttendance(ctx context.Context, userID string, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListStoreAttendance lists a store's records for its managers
	ListStoreAttendance(ctx context.Context, viewer Viewer, storeID string, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single record by ID
	GetAttendance(ctx context.Context, viewer Viewer, id string) (AttendanceResponse, error)

	// DeleteAttendance removes a record (administrative correction)
	DeleteAttendance(ctx context.Context, id string) error

	// ExportStoreAttendance renders a store's records over a work-date range as xlsx
	ExportStoreAttendance(ctx context.Context, viewer Viewer, req ExportRequest) ([]byte, error)
}
