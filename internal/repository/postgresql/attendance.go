package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/pkg/database"
)

const (
	constraintOneOpenPerUser   = "uq_attendance_records_one_open_per_user"
	constraintUserStoreWorkDay = "uq_attendance_records_user_store_work_date"
)

const attendanceSelect = `
	SELECT
		a.id, a.user_id, a.store_id, a.work_date, a.clock_in_at, a.clock_out_at,
		a.attendance_type, a.scheduled_date, a.change_reason,
		a.clock_in_latitude, a.clock_in_longitude, a.clock_out_latitude, a.clock_out_longitude,
		a.created_at, a.updated_at,
		s.name AS store_name,
		u.full_name AS user_name
	FROM attendance_records a
	JOIN stores s ON s.id = a.store_id
	LEFT JOIN users u ON u.id = a.user_id
`

type attendanceRepository struct {
	db *database.DB
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.UserID, &r.StoreID, &r.WorkDate, &r.ClockInAt, &r.ClockOutAt,
		&r.AttendanceType, &r.ScheduledDate, &r.ChangeReason,
		&r.ClockInLatitude, &r.ClockInLongitude, &r.ClockOutLatitude, &r.ClockOutLongitude,
		&r.CreatedAt, &r.UpdatedAt,
		&r.StoreName, &r.UserName,
	)
	return r, err
}

func collectRecords(rows pgx.Rows) ([]attendance.Record, error) {
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

// queryOne returns nil when no row matches.
func (a *attendanceRepository) queryOne(ctx context.Context, where string, args ...interface{}) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	r, err := scanRecord(q.QueryRow(ctx, attendanceSelect+" WHERE "+where+" LIMIT 1", args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	record.ID = id.String()

	query := `
		INSERT INTO attendance_records (
			id, user_id, store_id, work_date, clock_in_at,
			attendance_type, scheduled_date, change_reason,
			clock_in_latitude, clock_in_longitude
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		record.ID,
		record.UserID,
		record.StoreID,
		record.WorkDate,
		record.ClockInAt,
		record.AttendanceType,
		record.ScheduledDate,
		record.ChangeReason,
		record.ClockInLatitude,
		record.ClockInLongitude,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case constraintOneOpenPerUser:
				return attendance.Record{}, attendance.ErrAlreadyActiveElsewhere
			case constraintUserStoreWorkDay:
				return attendance.Record{}, attendance.ErrAlreadyClockedInHere
			}
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	r, err := a.queryOne(ctx, "a.id = $1", id)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if r == nil {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return *r, nil
}

// GetByUserStoreDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserStoreDate(ctx context.Context, userID string, storeID string, workDate time.Time) (*attendance.Record, error) {
	r, err := a.queryOne(ctx, "a.user_id = $1 AND a.store_id = $2 AND a.work_date = $3", userID, storeID, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by user, store and work date: %w", err)
	}
	return r, nil
}

// GetLatestByUserStore implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLatestByUserStore(ctx context.Context, userID string, storeID string) (*attendance.Record, error) {
	r, err := a.queryOne(ctx, "a.user_id = $1 AND a.store_id = $2 ORDER BY a.work_date DESC, a.clock_in_at DESC", userID, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attendance: %w", err)
	}
	return r, nil
}

// GetOpenByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenByUser(ctx context.Context, userID string) (*attendance.Record, error) {
	r, err := a.queryOne(ctx, "a.user_id = $1 AND a.clock_out_at IS NULL", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return r, nil
}

// GetOpenByUserStore implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenByUserStore(ctx context.Context, userID string, storeID string) (*attendance.Record, error) {
	r, err := a.queryOne(ctx, "a.user_id = $1 AND a.store_id = $2 AND a.clock_out_at IS NULL ORDER BY a.clock_in_at DESC", userID, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open attendance at store: %w", err)
	}
	return r, nil
}

// Close implements attendance.AttendanceRepository.
func (a *attendanceRepository) Close(ctx context.Context, id string, clockOutAt time.Time, latitude, longitude *float64) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_out_at = $2,
			clock_out_latitude = $3,
			clock_out_longitude = $4,
			updated_at = NOW()
		WHERE id = $1
		  AND clock_out_at IS NULL
	`

	commandTag, err := q.Exec(ctx, query, id, clockOutAt, latitude, longitude)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	current, err := a.GetByID(ctx, id)
	if err != nil {
		return attendance.Record{}, err
	}

	if commandTag.RowsAffected() == 0 {
		// Someone else closed it between our read and this write.
		return attendance.Record{}, attendance.ErrAlreadyCompleted
	}

	return current, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.StoreID != nil && *filter.StoreID != "" {
		baseWhere += fmt.Sprintf(" AND a.store_id = $%d", argIdx)
		args = append(args, *filter.StoreID)
		argIdx++
	}

	// Date filter
	if filter.WorkDate != nil && *filter.WorkDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date = $%d", argIdx)
		args = append(args, *filter.WorkDate)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.State != nil {
		switch attendance.State(*filter.State) {
		case attendance.StateActive:
			baseWhere += " AND a.clock_out_at IS NULL"
		case attendance.StateCompleted:
			baseWhere += " AND a.clock_out_at IS NOT NULL"
		}
	}

	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND a.attendance_type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendance_records a WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.work_date"
	switch filter.SortBy {
	case "clock_in_at":
		orderByField = "a.clock_in_at"
	case "clock_out_at":
		orderByField = "a.clock_out_at"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY %s %s, a.clock_in_at DESC
		LIMIT $%d OFFSET $%d
	`, attendanceSelect, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListOpenSince implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenSince(ctx context.Context, clockedInBefore time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, attendanceSelect+`
		WHERE a.clock_out_at IS NULL
		  AND a.clock_in_at < $1
		ORDER BY a.clock_in_at
	`, clockedInBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendance records: %w", err)
	}

	return collectRecords(rows)
}

// ListByStoreAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByStoreAndRange(ctx context.Context, storeID string, start time.Time, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, attendanceSelect+`
		WHERE a.store_id = $1
		  AND a.work_date BETWEEN $2 AND $3
		ORDER BY a.work_date, a.clock_in_at
	`, storeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query store attendance: %w", err)
	}

	return collectRecords(rows)
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
