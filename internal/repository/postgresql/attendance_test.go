package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(userID, storeID string, day int) attendance.Record {
	return attendance.Record{
		UserID:         userID,
		StoreID:        storeID,
		WorkDate:       workDate(day),
		ClockInAt:      workDate(day).Add(9 * time.Hour),
		AttendanceType: attendance.TypeRegular,
	}
}

func TestAttendanceRepository_CreateAndRead(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	storeID := seedStore(t, db, []string{"monday"}, false, nil)
	userID := seedUser(t, db, "Aiko")

	created, err := repo.Create(ctx, newRecord(userID, storeID, 11))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, workDate(11), got.WorkDate.UTC())
	assert.True(t, got.IsActive())
	require.NotNil(t, got.UserName)
	assert.Equal(t, "Aiko", *got.UserName)

	byDate, err := repo.GetByUserStoreDate(ctx, userID, storeID, workDate(11))
	require.NoError(t, err)
	require.NotNil(t, byDate)
	assert.Equal(t, created.ID, byDate.ID)

	missing, err := repo.GetByUserStoreDate(ctx, userID, storeID, workDate(12))
	require.NoError(t, err)
	assert.Nil(t, missing)

	open, err := repo.GetOpenByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, created.ID, open.ID)

	_, err = repo.GetByID(ctx, newID())
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_OneOpenRecordPerUser(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	storeA := seedStore(t, db, nil, false, nil)
	storeB := seedStore(t, db, nil, false, nil)
	userID := seedUser(t, db, "Ben")

	_, err := repo.Create(ctx, newRecord(userID, storeA, 11))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newRecord(userID, storeB, 11))
	assert.ErrorIs(t, err, attendance.ErrAlreadyActiveElsewhere)
}

func TestAttendanceRepository_ConcurrentStartsAtDifferentStores(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)

	userID := seedUser(t, db, "Chie")
	stores := []string{
		seedStore(t, db, nil, false, nil),
		seedStore(t, db, nil, false, nil),
		seedStore(t, db, nil, false, nil),
		seedStore(t, db, nil, false, nil),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(stores))
	for i, storeID := range stores {
		wg.Add(1)
		go func(i int, storeID string) {
			defer wg.Done()
			_, errs[i] = repo.Create(context.Background(), newRecord(userID, storeID, 11))
		}(i, storeID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyActiveElsewhere)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAttendanceRepository_SameWorkDateTwice(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	storeID := seedStore(t, db, nil, false, nil)
	userID := seedUser(t, db, "Dai")

	first, err := repo.Create(ctx, newRecord(userID, storeID, 11))
	require.NoError(t, err)
	_, err = repo.Close(ctx, first.ID, workDate(11).Add(17*time.Hour), nil, nil)
	require.NoError(t, err)

	_, err = repo.Create(ctx, newRecord(userID, storeID, 11))
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedInHere)
}

func TestAttendanceRepository_CloseOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	storeID := seedStore(t, db, nil, false, nil)
	userID := seedUser(t, db, "Emi")

	created, err := repo.Create(ctx, newRecord(userID, storeID, 11))
	require.NoError(t, err)

	lat, lng := 35.68, 139.76
	out := workDate(11).Add(17 * time.Hour)
	closed, err := repo.Close(ctx, created.ID, out, &lat, &lng)
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOutAt)
	assert.True(t, closed.ClockOutAt.Equal(out))
	assert.Equal(t, lat, *closed.ClockOutLatitude)

	_, err = repo.Close(ctx, created.ID, out.Add(time.Hour), nil, nil)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, again.ClockOutAt.Equal(out), "clock-out must not move once set")
}

func TestAttendanceRepository_ListAndRanges(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	storeID := seedStore(t, db, nil, false, nil)
	userID := seedUser(t, db, "Fumi")

	for _, day := range []int{9, 10, 11} {
		rec, err := repo.Create(ctx, newRecord(userID, storeID, day))
		require.NoError(t, err)
		if day != 11 {
			_, err = repo.Close(ctx, rec.ID, rec.ClockInAt.Add(8*time.Hour), nil, nil)
			require.NoError(t, err)
		}
	}

	filter := attendance.AttendanceFilter{StoreID: &storeID}
	require.NoError(t, filter.Validate())
	records, total, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, records, 3)
	assert.Equal(t, workDate(11), records[0].WorkDate.UTC(), "newest work date first")

	active := string(attendance.StateActive)
	filter = attendance.AttendanceFilter{StoreID: &storeID, State: &active}
	require.NoError(t, filter.Validate())
	_, total, err = repo.List(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	ranged, err := repo.ListByStoreAndRange(ctx, storeID, workDate(9), workDate(10))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	stale, err := repo.ListOpenSince(ctx, workDate(12))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, workDate(11), stale[0].WorkDate.UTC())

	latest, err := repo.GetLatestByUserStore(ctx, userID, storeID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, workDate(11), latest.WorkDate.UTC())
}

func TestAttendanceRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()

	storeID := seedStore(t, db, nil, false, nil)
	userID := seedUser(t, db, "Gen")

	created, err := repo.Create(ctx, newRecord(userID, storeID, 11))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), attendance.ErrAttendanceNotFound)
}
