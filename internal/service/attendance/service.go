package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/domain/checklist"
	"github.com/retailops/storeops-backend/internal/domain/store"
	"github.com/retailops/storeops-backend/internal/pkg/clock"
	"github.com/retailops/storeops-backend/internal/pkg/export"
	"github.com/retailops/storeops-backend/internal/service/workday"
)

const provisionTimeout = 30 * time.Second

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	store.StoreRepository
	provisioner checklist.Provisioner
	progress    checklist.ProgressOracle
	clock       clock.Clock

	// provisioning tracks in-flight checklist instantiations.
	provisioning sync.WaitGroup
}

// StartManagement implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartManagement(ctx context.Context, req attendance.StartManagementRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := s.requireMember(ctx, req.StoreID, req.UserID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	cfg, err := s.StoreRepository.GetScheduleConfig(ctx, req.StoreID)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return attendance.AttendanceResponse{}, store.ErrStoreNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get store schedule: %w", err)
	}

	now := s.clock.Now()

	open, err := s.AttendanceRepository.GetOpenByUser(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check open attendance: %w", err)
	}
	if open != nil {
		if open.StoreID != req.StoreID {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyActiveElsewhere
		}
		// An open record here keeps its own work date, which is therefore taken.
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedInHere
	}

	latest, err := s.AttendanceRepository.GetLatestByUserStore(ctx, req.UserID, req.StoreID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get latest attendance: %w", err)
	}

	workDate := workday.ResolveWorkDate(cfg, now, latest)

	existing, err := s.AttendanceRepository.GetByUserStoreDate(ctx, req.UserID, req.StoreID, workDate)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedInHere
	}

	attendanceType := attendance.AttendanceType(req.AttendanceType)

	// Someone covering a different day is exempt from the schedule check.
	if attendanceType != attendance.TypeRescheduled && !workday.IsAuthorizedDay(cfg, workDate) {
		return attendance.AttendanceResponse{}, attendance.ErrNotAuthorizedDay
	}

	record := attendance.Record{
		UserID:           req.UserID,
		StoreID:          req.StoreID,
		WorkDate:         workDate,
		ClockInAt:        now,
		AttendanceType:   attendanceType,
		ChangeReason:     req.ChangeReason,
		ClockInLatitude:  req.Latitude,
		ClockInLongitude: req.Longitude,
	}
	if req.ScheduledDate != nil {
		scheduled, err := workday.ParseDate(*req.ScheduledDate)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to parse scheduled date: %w", err)
		}
		record.ScheduledDate = &scheduled
	}

	created, err := s.AttendanceRepository.Create(ctx, record)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrAlreadyActiveElsewhere):
			// Lost a race on the one-open-record index. If the winner opened
			// this same store, report it as a double start.
			if winner, lookupErr := s.AttendanceRepository.GetOpenByUser(ctx, req.UserID); lookupErr == nil && winner != nil && winner.StoreID == req.StoreID {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedInHere
			}
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyActiveElsewhere
		case errors.Is(err, attendance.ErrAlreadyClockedInHere):
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedInHere
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	slog.Info("management started",
		"user_id", created.UserID,
		"store_id", created.StoreID,
		"work_date", workday.FormatDate(created.WorkDate),
		"attendance_type", created.AttendanceType,
	)

	s.provisionChecklist(ctx, created)

	return mapRecordToResponse(created, s.clock.Location()), nil
}

// provisionChecklist instantiates the checklist in the background. Its
// failure never affects the clock-in that triggered it.
func (s *AttendanceServiceImpl) provisionChecklist(ctx context.Context, record attendance.Record) {
	if s.provisioner == nil {
		return
	}

	s.provisioning.Add(1)
	go func() {
		defer s.provisioning.Done()

		logAttrs := []any{
			"user_id", record.UserID,
			"store_id", record.StoreID,
			"work_date", workday.FormatDate(record.WorkDate),
		}
		defer func() {
			if p := recover(); p != nil {
				slog.Error("checklist provisioning panicked", append(logAttrs, "panic", p)...)
			}
		}()

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), provisionTimeout)
		defer cancel()

		if err := s.provisioner.InstantiateForWorkDate(pctx, record.StoreID, record.UserID, record.WorkDate); err != nil {
			slog.Error("checklist provisioning failed", append(logAttrs, "error", err)...)
		}
	}()
}

// WaitForProvisioning blocks until background checklist work has finished.
func (s *AttendanceServiceImpl) WaitForProvisioning() {
	s.provisioning.Wait()
}

// EndManagement implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndManagement(ctx context.Context, req attendance.EndManagementRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()

	record, err := s.findRecordToClose(ctx, req.UserID, req.StoreID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	progress, err := s.progress.Progress(ctx, record.StoreID, record.UserID, record.WorkDate)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check checklist progress: %w", err)
	}
	if !progress.IsFullyComplete() {
		return attendance.AttendanceResponse{}, &attendance.IncompleteChecklistError{
			Completed: progress.Completed,
			Total:     progress.Total,
		}
	}

	closed, err := s.AttendanceRepository.Close(ctx, record.ID, now, req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCompleted) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCompleted
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to close attendance: %w", err)
	}

	slog.Info("management ended",
		"user_id", closed.UserID,
		"store_id", closed.StoreID,
		"work_date", workday.FormatDate(closed.WorkDate),
		"worked_minutes", closed.WorkedMinutes(),
	)

	return mapRecordToResponse(closed, s.clock.Location()), nil
}

// findRecordToClose looks for the user's active record at the store by work
// date (today, then yesterday), then for any open record at the store. A
// completed record found on the way is reported as ErrAlreadyCompleted when
// nothing active turns up.
func (s *AttendanceServiceImpl) findRecordToClose(ctx context.Context, userID, storeID string, now time.Time) (attendance.Record, error) {
	var completed *attendance.Record

	for _, date := range workday.EndSearchDates(now) {
		r, err := s.AttendanceRepository.GetByUserStoreDate(ctx, userID, storeID, date)
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to get attendance for %s: %w", workday.FormatDate(date), err)
		}
		if r == nil {
			continue
		}
		if r.IsActive() {
			return *r, nil
		}
		if completed == nil {
			completed = r
		}
	}

	open, err := s.AttendanceRepository.GetOpenByUserStore(ctx, userID, storeID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get open attendance: %w", err)
	}
	if open != nil {
		return *open, nil
	}

	if completed != nil {
		return attendance.Record{}, attendance.ErrAlreadyCompleted
	}
	return attendance.Record{}, attendance.ErrNoActiveRecord
}

// GetManagementStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetManagementStatus(ctx context.Context, userID string, storeID string) (attendance.ManagementStatusResponse, error) {
	if err := s.requireMember(ctx, storeID, userID); err != nil {
		return attendance.ManagementStatusResponse{}, err
	}

	cfg, err := s.StoreRepository.GetScheduleConfig(ctx, storeID)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return attendance.ManagementStatusResponse{}, store.ErrStoreNotFound
		}
		return attendance.ManagementStatusResponse{}, fmt.Errorf("failed to get store schedule: %w", err)
	}

	now := s.clock.Now()

	open, err := s.AttendanceRepository.GetOpenByUser(ctx, userID)
	if err != nil {
		return attendance.ManagementStatusResponse{}, fmt.Errorf("failed to check open attendance: %w", err)
	}

	prior := open
	if open == nil || open.StoreID != storeID {
		prior, err = s.AttendanceRepository.GetLatestByUserStore(ctx, userID, storeID)
		if err != nil {
			return attendance.ManagementStatusResponse{}, fmt.Errorf("failed to get latest attendance: %w", err)
		}
	}

	workDate := workday.ResolveWorkDate(cfg, now, prior)
	isManagementDay := workday.IsAuthorizedDay(cfg, workDate)

	existing, err := s.AttendanceRepository.GetByUserStoreDate(ctx, userID, storeID, workDate)
	if err != nil {
		return attendance.ManagementStatusResponse{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}

	status := attendance.ManagementStatusResponse{
		StoreID:          storeID,
		WorkDate:         workday.FormatDate(workDate),
		IsManagementDay:  isManagementDay,
		IsNightShift:     cfg.IsNightShift,
		HasRecordForDate: existing != nil,
	}

	switch {
	case open != nil && open.StoreID != storeID:
		elsewhere := open.StoreID
		status.ActiveElsewhereID = &elsewhere
		status.Message = "You are currently managing another store. End that session first."

	case open != nil:
		active := mapRecordToResponse(*open, s.clock.Location())
		status.ActiveRecord = &active

		progress, err := s.progress.Progress(ctx, storeID, userID, open.WorkDate)
		if err != nil {
			return attendance.ManagementStatusResponse{}, fmt.Errorf("failed to check checklist progress: %w", err)
		}
		status.ChecklistCompleted = progress.Completed
		status.ChecklistTotal = progress.Total
		status.CanEnd = progress.IsFullyComplete()
		if status.CanEnd {
			status.Message = "Management in progress. You can end it now."
		} else {
			status.Message = fmt.Sprintf("Complete the checklist before ending (%d of %d done).", progress.Completed, progress.Total)
		}

	case existing != nil:
		status.Message = "Management for this work date has already been completed."

	case !isManagementDay:
		status.Message = "Today is not a management day for this store. Use a rescheduled start to cover another day."

	default:
		status.CanStart = true
		status.Message = "Ready to start management."
	}

	return status, nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, userID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// ListStoreAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListStoreAttendance(ctx context.Context, viewer attendance.Viewer, storeID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := s.requireManager(ctx, viewer, storeID); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.StoreID = &storeID
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapRecordToResponse(r, s.clock.Location()))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, viewer attendance.Viewer, id string) (attendance.AttendanceResponse, error) {
	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if record.UserID != viewer.UserID {
		if err := s.requireManager(ctx, viewer, record.StoreID); err != nil {
			return attendance.AttendanceResponse{}, attendance.ErrForbidden
		}
	}

	return mapRecordToResponse(record, s.clock.Location()), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	slog.Warn("attendance record deleted by administrative correction", "attendance_id", id)

	return nil
}

// ExportStoreAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportStoreAttendance(ctx context.Context, viewer attendance.Viewer, req attendance.ExportRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.requireManager(ctx, viewer, req.StoreID); err != nil {
		return nil, err
	}

	start, _ := workday.ParseDate(req.StartDate)
	end, _ := workday.ParseDate(req.EndDate)

	records, err := s.AttendanceRepository.ListByStoreAndRange(ctx, req.StoreID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list store attendance: %w", err)
	}

	data, err := export.WriteXLSX(buildAttendanceSheets(records, s.clock.Location())...)
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance export: %w", err)
	}

	return data, nil
}

func buildAttendanceSheets(records []attendance.Record, loc *time.Location) []export.Sheet {
	detail := export.Sheet{
		Name: "Attendance",
		Headers: []string{
			"Work Date", "User ID", "User", "Type", "State",
			"Clock In", "Clock Out", "Worked Minutes", "Clock-out Distance (m)", "Scheduled Date", "Change Reason",
		},
	}

	type userTotals struct {
		name          string
		sessions      int
		completed     int
		workedMinutes int
	}
	totals := make(map[string]*userTotals)

	for _, r := range records {
		clockOut, scheduled, reason := "", "", ""
		var distance any = ""
		if d := r.ClockOutDistanceMeters(); d != nil {
			distance = *d
		}
		if r.ClockOutAt != nil {
			clockOut = r.ClockOutAt.In(loc).Format(time.DateTime)
		}
		if r.ScheduledDate != nil {
			scheduled = workday.FormatDate(*r.ScheduledDate)
		}
		if r.ChangeReason != nil {
			reason = *r.ChangeReason
		}
		name := r.UserID
		if r.UserName != nil {
			name = *r.UserName
		}

		detail.Rows = append(detail.Rows, []any{
			workday.FormatDate(r.WorkDate),
			r.UserID,
			name,
			string(r.AttendanceType),
			string(r.State()),
			r.ClockInAt.In(loc).Format(time.DateTime),
			clockOut,
			r.WorkedMinutes(),
			distance,
			scheduled,
			reason,
		})

		t, ok := totals[r.UserID]
		if !ok {
			t = &userTotals{name: name}
			totals[r.UserID] = t
		}
		t.sessions++
		if r.IsCompleted() {
			t.completed++
			t.workedMinutes += r.WorkedMinutes()
		}
	}

	userIDs := make([]string, 0, len(totals))
	for id := range totals {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	summary := export.Sheet{
		Name:    "Summary",
		Headers: []string{"User ID", "User", "Sessions", "Completed", "Worked Minutes"},
	}
	for _, id := range userIDs {
		t := totals[id]
		summary.Rows = append(summary.Rows, []any{id, t.name, t.sessions, t.completed, t.workedMinutes})
	}

	return []export.Sheet{detail, summary}
}

func (s *AttendanceServiceImpl) requireMember(ctx context.Context, storeID, userID string) error {
	if _, err := s.StoreRepository.GetMember(ctx, storeID, userID); err != nil {
		if errors.Is(err, store.ErrNotStoreMember) {
			return attendance.ErrUnauthorized
		}
		return fmt.Errorf("failed to check store membership: %w", err)
	}
	return nil
}

func (s *AttendanceServiceImpl) requireManager(ctx context.Context, viewer attendance.Viewer, storeID string) error {
	if viewer.IsAdmin {
		return nil
	}
	member, err := s.StoreRepository.GetMember(ctx, storeID, viewer.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotStoreMember) {
			return attendance.ErrUnauthorized
		}
		return fmt.Errorf("failed to check store membership: %w", err)
	}
	if member.Role != store.RoleManager {
		return attendance.ErrUnauthorized
	}
	return nil
}

// mapRecordToResponse converts a Record to AttendanceResponse with
// instants rendered in the business timezone.
func mapRecordToResponse(r attendance.Record, loc *time.Location) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		UserName:          r.UserName,
		StoreID:           r.StoreID,
		StoreName:         r.StoreName,
		WorkDate:          workday.FormatDate(r.WorkDate),
		State:             string(r.State()),
		AttendanceType:    string(r.AttendanceType),
		ChangeReason:      r.ChangeReason,
		ClockInAt:         r.ClockInAt.In(loc).Format(time.RFC3339),
		ClockInLatitude:   r.ClockInLatitude,
		ClockInLongitude:  r.ClockInLongitude,
		ClockOutLatitude:  r.ClockOutLatitude,
		ClockOutLongitude: r.ClockOutLongitude,
		CreatedAt:         r.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.In(loc).Format(time.RFC3339),
	}

	if r.ScheduledDate != nil {
		scheduled := workday.FormatDate(*r.ScheduledDate)
		resp.ScheduledDate = &scheduled
	}

	if r.ClockOutAt != nil {
		clockOut := r.ClockOutAt.In(loc).Format(time.RFC3339)
		resp.ClockOutAt = &clockOut
		worked := r.WorkedMinutes()
		resp.WorkedMinutes = &worked
		resp.ClockOutDistanceM = r.ClockOutDistanceMeters()
	}

	return resp
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	storeRepo store.StoreRepository,
	provisioner checklist.Provisioner,
	progress checklist.ProgressOracle,
	clk clock.Clock,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		StoreRepository:      storeRepo,
		provisioner:          provisioner,
		progress:             progress,
		clock:                clk,
	}
}
