package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/domain/checklist"
	"github.com/retailops/storeops-backend/internal/domain/store"
	"github.com/retailops/storeops-backend/internal/service/workday"
)

// mockAttendanceRepo enforces the same two uniqueness rules as the
// attendance_records table.
type mockAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Record

	// beforeCreate runs once before the uniqueness checks of Create.
	beforeCreate func()
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]attendance.Record)}
}

// seed stores r as is, bypassing the uniqueness rules.
func (m *mockAttendanceRepo) seed(r attendance.Record) attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.Must(uuid.NewV7()).String()
	}
	if r.AttendanceType == "" {
		r.AttendanceType = attendance.TypeRegular
	}
	m.records[r.ID] = r
	return r
}

func (m *mockAttendanceRepo) get(id string) attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func (m *mockAttendanceRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *mockAttendanceRepo) Create(_ context.Context, r attendance.Record) (attendance.Record, error) {
	if m.beforeCreate != nil {
		hook := m.beforeCreate
		m.beforeCreate = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.records {
		if existing.UserID == r.UserID && existing.IsActive() {
			return attendance.Record{}, attendance.ErrAlreadyActiveElsewhere
		}
	}
	for _, existing := range m.records {
		if existing.UserID == r.UserID && existing.StoreID == r.StoreID && existing.WorkDate.Equal(r.WorkDate) {
			return attendance.Record{}, attendance.ErrAlreadyClockedInHere
		}
	}

	r.ID = uuid.Must(uuid.NewV7()).String()
	r.CreatedAt = r.ClockInAt
	r.UpdatedAt = r.ClockInAt
	m.records[r.ID] = r
	return r, nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return r, nil
}

func (m *mockAttendanceRepo) find(match func(attendance.Record) bool) *attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *attendance.Record
	for _, r := range m.records {
		if !match(r) {
			continue
		}
		if found == nil || r.ClockInAt.After(found.ClockInAt) {
			r := r
			found = &r
		}
	}
	return found
}

func (m *mockAttendanceRepo) GetByUserStoreDate(_ context.Context, userID, storeID string, workDate time.Time) (*attendance.Record, error) {
	return m.find(func(r attendance.Record) bool {
		return r.UserID == userID && r.StoreID == storeID && r.WorkDate.Equal(workDate)
	}), nil
}

func (m *mockAttendanceRepo) GetLatestByUserStore(_ context.Context, userID, storeID string) (*attendance.Record, error) {
	return m.find(func(r attendance.Record) bool {
		return r.UserID == userID && r.StoreID == storeID
	}), nil
}

func (m *mockAttendanceRepo) GetOpenByUser(_ context.Context, userID string) (*attendance.Record, error) {
	return m.find(func(r attendance.Record) bool {
		return r.UserID == userID && r.IsActive()
	}), nil
}

func (m *mockAttendanceRepo) GetOpenByUserStore(_ context.Context, userID, storeID string) (*attendance.Record, error) {
	return m.find(func(r attendance.Record) bool {
		return r.UserID == userID && r.StoreID == storeID && r.IsActive()
	}), nil
}

func (m *mockAttendanceRepo) Close(_ context.Context, id string, clockOutAt time.Time, lat, lng *float64) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	if !r.IsActive() {
		return attendance.Record{}, attendance.ErrAlreadyCompleted
	}
	r.ClockOutAt = &clockOutAt
	r.ClockOutLatitude = lat
	r.ClockOutLongitude = lng
	r.UpdatedAt = clockOutAt
	m.records[id] = r
	return r, nil
}

func (m *mockAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.StoreID != nil && r.StoreID != *filter.StoreID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.After(out[j].WorkDate) })
	total := int64(len(out))

	start := min((filter.Page-1)*filter.Limit, len(out))
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func (m *mockAttendanceRepo) ListOpenSince(_ context.Context, before time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.IsActive() && r.ClockInAt.Before(before) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByStoreAndRange(_ context.Context, storeID string, start, end time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.StoreID == storeID && !r.WorkDate.Before(start) && !r.WorkDate.After(end) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	return out, nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(m.records, id)
	return nil
}

type mockStoreRepo struct {
	configs map[string]store.ScheduleConfig
	members map[string]store.Member
}

func newMockStoreRepo() *mockStoreRepo {
	return &mockStoreRepo{
		configs: make(map[string]store.ScheduleConfig),
		members: make(map[string]store.Member),
	}
}

func (m *mockStoreRepo) addStore(cfg store.ScheduleConfig) {
	m.configs[cfg.StoreID] = cfg
}

func (m *mockStoreRepo) addMember(storeID, userID string, role store.MemberRole) {
	m.members[storeID+"/"+userID] = store.Member{StoreID: storeID, UserID: userID, Role: role}
}

func (m *mockStoreRepo) GetScheduleConfig(_ context.Context, storeID string) (store.ScheduleConfig, error) {
	cfg, ok := m.configs[storeID]
	if !ok {
		return store.ScheduleConfig{}, store.ErrStoreNotFound
	}
	return cfg, nil
}

func (m *mockStoreRepo) GetMember(_ context.Context, storeID, userID string) (store.Member, error) {
	member, ok := m.members[storeID+"/"+userID]
	if !ok {
		return store.Member{}, store.ErrNotStoreMember
	}
	return member, nil
}

type provisionCall struct {
	StoreID  string
	UserID   string
	WorkDate time.Time
}

type mockProvisioner struct {
	mu    sync.Mutex
	calls []provisionCall
	err   error
	panic bool
	// release, when set, holds every call until it is closed.
	release chan struct{}
}

func (m *mockProvisioner) InstantiateForWorkDate(_ context.Context, storeID, userID string, workDate time.Time) error {
	m.mu.Lock()
	m.calls = append(m.calls, provisionCall{StoreID: storeID, UserID: userID, WorkDate: workDate})
	m.mu.Unlock()
	if m.release != nil {
		<-m.release
	}
	if m.panic {
		panic("provisioner exploded")
	}
	return m.err
}

func (m *mockProvisioner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockProgress reports checklist progress per store/user/work date; unknown
// keys have no items.
type mockProgress struct {
	progress map[string]checklist.Progress
}

func newMockProgress() *mockProgress {
	return &mockProgress{progress: make(map[string]checklist.Progress)}
}

func (m *mockProgress) set(storeID, userID string, workDate time.Time, p checklist.Progress) {
	m.progress[storeID+"/"+userID+"/"+workday.FormatDate(workDate)] = p
}

func (m *mockProgress) Progress(_ context.Context, storeID, userID string, workDate time.Time) (checklist.Progress, error) {
	return m.progress[storeID+"/"+userID+"/"+workday.FormatDate(workDate)], nil
}

// stepClock is a clock the test can move.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time            { return c.now }
func (c *stepClock) Location() *time.Location { return c.now.Location() }
func (c *stepClock) set(t time.Time)          { c.now = t }
