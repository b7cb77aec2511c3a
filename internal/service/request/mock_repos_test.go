package request

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/storeops-backend/internal/domain/request"
	"github.com/retailops/storeops-backend/internal/domain/store"
	"github.com/retailops/storeops-backend/internal/pkg/occ"
)

// mockRequestRepo emulates the conditional update of the postgres repository.
type mockRequestRepo struct {
	mu       sync.Mutex
	requests map[string]request.SupplyRequest
	base     time.Time

	// interleave runs once between the guard's read and its write.
	interleave func()
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{
		requests: make(map[string]request.SupplyRequest),
		base:     time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockRequestRepo) nextVersion(prev time.Time) time.Time {
	m.base = m.base.Add(time.Millisecond)
	if !m.base.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return m.base
}

func (m *mockRequestRepo) Create(_ context.Context, req request.SupplyRequest) (request.SupplyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = uuid.Must(uuid.NewV7()).String()
	req.CreatedAt = m.nextVersion(time.Time{})
	req.UpdatedAt = req.CreatedAt
	m.requests[req.ID] = req
	return req, nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (request.SupplyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return request.SupplyRequest{}, request.ErrRequestNotFound
	}
	return r, nil
}

func (m *mockRequestRepo) ConditionalUpdate(_ context.Context, id string, expected occ.Expectation, next request.SupplyRequest) (request.SupplyRequest, bool, error) {
	if m.interleave != nil {
		hook := m.interleave
		m.interleave = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.requests[id]
	if !ok || !expected.Matches(string(cur.Status), cur.UpdatedAt) {
		return request.SupplyRequest{}, false, nil
	}
	next.ID = cur.ID
	next.StoreID = cur.StoreID
	next.RequesterID = cur.RequesterID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = m.nextVersion(cur.UpdatedAt)
	m.requests[id] = next
	return next, true, nil
}

func (m *mockRequestRepo) MarkConfirmed(_ context.Context, id string, at time.Time) (request.SupplyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.requests[id]
	if !ok {
		return request.SupplyRequest{}, request.ErrRequestNotFound
	}
	cur.ConfirmedAt = &at
	m.requests[id] = cur
	return cur, nil
}

func (m *mockRequestRepo) List(_ context.Context, filter request.RequestFilter) ([]request.SupplyRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.SupplyRequest
	for _, r := range m.requests {
		if filter.StoreID != nil && r.StoreID != *filter.StoreID {
			continue
		}
		if filter.RequesterID != nil && r.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Status != nil && string(r.Status) != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := (filter.Page - 1) * filter.Limit
	if start > len(out) {
		start = len(out)
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

// advance simulates a reviewer changing the status directly in storage.
func (m *mockRequestRepo) advance(id string, to request.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.requests[id]
	cur.Status = to
	cur.UpdatedAt = m.nextVersion(cur.UpdatedAt)
	m.requests[id] = cur
}

type mockStoreRepo struct {
	configs map[string]store.ScheduleConfig
	members map[string]store.Member // key: storeID + "/" + userID
}

func newMockStoreRepo() *mockStoreRepo {
	return &mockStoreRepo{
		configs: make(map[string]store.ScheduleConfig),
		members: make(map[string]store.Member),
	}
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

func (m *mockStoreRepo) GetMember(_ context.Context, storeID string, userID string) (store.Member, error) {
	member, ok := m.members[storeID+"/"+userID]
	if !ok {
		return store.Member{}, store.ErrNotStoreMember
	}
	return member, nil
}
