package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openSessionsRepo only answers ListOpenSince; any other call panics on the
// nil embedded interface, which would catch a mutation.
type openSessionsRepo struct {
	attendance.AttendanceRepository
	open   []attendance.Record
	err    error
	cutoff time.Time
}

func (r *openSessionsRepo) ListOpenSince(_ context.Context, before time.Time) ([]attendance.Record, error) {
	r.cutoff = before
	if r.err != nil {
		return nil, r.err
	}
	var out []attendance.Record
	for _, rec := range r.open {
		if rec.IsActive() && rec.ClockInAt.Before(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestStaleSessionJobs_FindsSessionsPastThreshold(t *testing.T) {
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	repo := &openSessionsRepo{open: []attendance.Record{
		{ID: "old", ClockInAt: now.Add(-30 * time.Hour), WorkDate: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{ID: "recent", ClockInAt: now.Add(-2 * time.Hour), WorkDate: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
	}}

	jobs := NewStaleSessionJobs(repo, clock.FixedClock{At: now}, 12*time.Hour)

	stale, err := jobs.FindStaleSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)
	assert.True(t, repo.cutoff.Equal(now.Add(-12*time.Hour)))

	assert.NoError(t, jobs.ReportStaleOpenSessions(context.Background()))
}

func TestStaleSessionJobs_PropagatesRepositoryError(t *testing.T) {
	repo := &openSessionsRepo{err: errors.New("connection reset")}
	jobs := NewStaleSessionJobs(repo, clock.FixedClock{At: time.Now()}, 0)

	err := jobs.ReportStaleOpenSessions(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestStaleSessionJobs_Register(t *testing.T) {
	s := NewScheduler()
	NewStaleSessionJobs(&openSessionsRepo{}, clock.FixedClock{At: time.Now()}, time.Hour).RegisterJobs(s)

	assert.Equal(t, []string{"report_stale_open_sessions"}, s.Jobs())
}
