package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Only the attendance service writes through it.
type AttendanceRepository interface {
	// Create inserts a new active record. Unique violations are reported as
	// ErrAlreadyActiveElsewhere (one open record per user) or
	// ErrAlreadyClockedInHere (one record per user, store and work date).
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID returns ErrAttendanceNotFound when missing.
	GetByID(ctx context.Context, id string) (Record, error)

	// GetByUserStoreDate returns nil when no record exists for the tuple.
	GetByUserStoreDate(ctx context.Context, userID string, storeID string, workDate time.Time) (*Record, error)

	// GetLatestByUserStore returns the user's most recent record at the store, or nil.
	GetLatestByUserStore(ctx context.Context, userID string, storeID string) (*Record, error)

	// GetOpenByUser returns the user's open record at any store, or nil.
	GetOpenByUser(ctx context.Context, userID string) (*Record, error)

	// GetOpenByUserStore returns the user's open record at the store regardless of work date, or nil.
	GetOpenByUserStore(ctx context.Context, userID string, storeID string) (*Record, error)

	// Close sets clock_out_at only while it is still null. Returns
	// ErrAlreadyCompleted when another request closed it first.
	Close(ctx context.Context, id string, clockOutAt time.Time, latitude, longitude *float64) (Record, error)

	// List retrieves records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// ListOpenSince returns open records clocked in before the given instant.
	ListOpenSince(ctx context.Context, clockedInBefore time.Time) ([]Record, error)

	// ListByStoreAndRange returns a store's records with work dates in [start, end].
	ListByStoreAndRange(ctx context.Context, storeID string, start time.Time, end time.Time) ([]Record, error)

	// Delete is an administrative correction outside the normal lifecycle.
	Delete(ctx context.Context, id string) error
}
