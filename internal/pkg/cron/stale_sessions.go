package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/pkg/clock"
	"github.com/retailops/storeops-backend/internal/service/workday"
)

// StaleSessionJobs reports management sessions that were never ended.
// Records are only ever closed by the user, so this job does not touch them.
type StaleSessionJobs struct {
	attendanceRepo attendance.AttendanceRepository
	clock          clock.Clock
	threshold      time.Duration
}

func NewStaleSessionJobs(attendanceRepo attendance.AttendanceRepository, clk clock.Clock, threshold time.Duration) *StaleSessionJobs {
	if threshold <= 0 {
		threshold = 24 * time.Hour
	}
	return &StaleSessionJobs{
		attendanceRepo: attendanceRepo,
		clock:          clk,
		threshold:      threshold,
	}
}

func (j *StaleSessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("report_stale_open_sessions", time.Hour, j.ReportStaleOpenSessions)
}

// FindStaleSessions returns open records clocked in more than the threshold ago.
func (j *StaleSessionJobs) FindStaleSessions(ctx context.Context) ([]attendance.Record, error) {
	cutoff := j.clock.Now().Add(-j.threshold)

	records, err := j.attendanceRepo.ListOpenSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	return records, nil
}

func (j *StaleSessionJobs) ReportStaleOpenSessions(ctx context.Context) error {
	stale, err := j.FindStaleSessions(ctx)
	if err != nil {
		return err
	}

	now := j.clock.Now()
	for _, r := range stale {
		slog.Warn("management session still open",
			"attendance_id", r.ID,
			"user_id", r.UserID,
			"store_id", r.StoreID,
			"work_date", workday.FormatDate(r.WorkDate),
			"open_for", now.Sub(r.ClockInAt).Round(time.Minute).String(),
		)
	}

	if len(stale) > 0 {
		slog.Info("stale session report finished", "count", len(stale))
	}
	return nil
}
