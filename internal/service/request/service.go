package request

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/retailops/storeops-backend/internal/domain/request"
	"github.com/retailops/storeops-backend/internal/domain/store"
	"github.com/retailops/storeops-backend/internal/pkg/clock"
	"github.com/retailops/storeops-backend/internal/pkg/occ"
)

type RequestServiceImpl struct {
	request.RequestRepository
	store.StoreRepository
	clock clock.Clock
}

// guardStore exposes the repository as the storage primitive of the guard.
type guardStore struct {
	repo request.RequestRepository
}

func (g guardStore) Load(ctx context.Context, id string) (request.SupplyRequest, error) {
	return g.repo.GetByID(ctx, id)
}

func (g guardStore) CompareAndSwap(ctx context.Context, id string, expected occ.Expectation, next request.SupplyRequest) (request.SupplyRequest, bool, error) {
	return g.repo.ConditionalUpdate(ctx, id, expected, next)
}

// CreateRequest implements request.RequestService.
func (s *RequestServiceImpl) CreateRequest(ctx context.Context, req request.CreateRequestRequest) (request.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return request.RequestResponse{}, err
	}

	if !req.Actor.IsAdmin {
		if _, err := s.StoreRepository.GetMember(ctx, req.StoreID, req.Actor.UserID); err != nil {
			if errors.Is(err, store.ErrNotStoreMember) {
				return request.RequestResponse{}, store.ErrNotStoreMember
			}
			return request.RequestResponse{}, fmt.Errorf("failed to check store membership: %w", err)
		}
	}

	created, err := s.RequestRepository.Create(ctx, request.SupplyRequest{
		StoreID:     req.StoreID,
		RequesterID: req.Actor.UserID,
		Category:    request.Category(req.Category),
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Status:      request.StatusReceived,
	})
	if err != nil {
		return request.RequestResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	return request.ToResponse(created), nil
}

// EditRequest implements request.RequestService.
func (s *RequestServiceImpl) EditRequest(ctx context.Context, req request.EditRequestRequest) (request.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return request.RequestResponse{}, err
	}

	if err := s.requireRequester(ctx, req.ID, req.Actor); err != nil {
		return request.RequestResponse{}, err
	}

	expected := occ.Expectation{Version: req.Version(), Status: string(request.StatusReceived)}

	return s.guarded(ctx, req.ID, expected, func(cur request.SupplyRequest) (request.SupplyRequest, error) {
		if req.Category != nil {
			cur.Category = request.Category(*req.Category)
		}
		if req.Title != nil {
			cur.Title = *req.Title
		}
		if req.Description != nil {
			cur.Description = req.Description
		}
		if req.Quantity != nil {
			cur.Quantity = req.Quantity
		}
		return cur, nil
	})
}

// CancelRequest implements request.RequestService.
func (s *RequestServiceImpl) CancelRequest(ctx context.Context, req request.CancelRequestRequest) (request.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return request.RequestResponse{}, err
	}

	if err := s.requireRequester(ctx, req.ID, req.Actor); err != nil {
		return request.RequestResponse{}, err
	}

	expected := occ.Expectation{Version: req.Version(), Status: string(request.StatusReceived)}
	now := s.clock.Now()

	return s.guarded(ctx, req.ID, expected, func(cur request.SupplyRequest) (request.SupplyRequest, error) {
		cur.Status = request.StatusCancelled
		cur.CancelledAt = &now
		return cur, nil
	})
}

// AdvanceRequest implements request.RequestService.
func (s *RequestServiceImpl) AdvanceRequest(ctx context.Context, req request.AdvanceRequestRequest) (request.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return request.RequestResponse{}, err
	}

	from, to := request.Status(req.ExpectedStatus), request.Status(req.NextStatus)
	if !request.CanAdvance(from, to) {
		return request.RequestResponse{}, request.ErrInvalidTransition
	}

	current, err := s.RequestRepository.GetByID(ctx, req.ID)
	if err != nil {
		return request.RequestResponse{}, err
	}

	if !req.Actor.IsAdmin {
		member, err := s.StoreRepository.GetMember(ctx, current.StoreID, req.Actor.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotStoreMember) {
				return request.RequestResponse{}, request.ErrForbidden
			}
			return request.RequestResponse{}, fmt.Errorf("failed to check store membership: %w", err)
		}
		if member.Role != store.RoleManager {
			return request.RequestResponse{}, request.ErrForbidden
		}
	}

	expected := occ.Expectation{Version: req.Version(), Status: string(from)}
	reviewer := req.Actor.UserID

	return s.guarded(ctx, req.ID, expected, func(cur request.SupplyRequest) (request.SupplyRequest, error) {
		cur.Status = to
		cur.ReviewedBy = &reviewer
		if req.Note != nil {
			cur.ReviewNote = req.Note
		}
		// The requester has not seen the new status yet.
		cur.ConfirmedAt = nil
		return cur, nil
	})
}

// ConfirmRequest implements request.RequestService.
func (s *RequestServiceImpl) ConfirmRequest(ctx context.Context, id string, actor request.Actor) (request.RequestResponse, error) {
	if err := s.requireRequester(ctx, id, actor); err != nil {
		return request.RequestResponse{}, err
	}

	confirmed, err := s.RequestRepository.MarkConfirmed(ctx, id, s.clock.Now())
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			return request.RequestResponse{}, request.ErrRequestNotFound
		}
		return request.RequestResponse{}, fmt.Errorf("failed to confirm request: %w", err)
	}

	return request.ToResponse(confirmed), nil
}

// GetRequest implements request.RequestService.
func (s *RequestServiceImpl) GetRequest(ctx context.Context, id string, actor request.Actor) (request.RequestResponse, error) {
	current, err := s.RequestRepository.GetByID(ctx, id)
	if err != nil {
		return request.RequestResponse{}, err
	}

	if !actor.IsAdmin && current.RequesterID != actor.UserID {
		if _, err := s.StoreRepository.GetMember(ctx, current.StoreID, actor.UserID); err != nil {
			if errors.Is(err, store.ErrNotStoreMember) {
				return request.RequestResponse{}, request.ErrForbidden
			}
			return request.RequestResponse{}, fmt.Errorf("failed to check store membership: %w", err)
		}
	}

	return request.ToResponse(current), nil
}

// ListRequests implements request.RequestService.
func (s *RequestServiceImpl) ListRequests(ctx context.Context, filter request.RequestFilter, actor request.Actor) (request.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return request.ListRequestResponse{}, err
	}

	if !actor.IsAdmin {
		if filter.StoreID != nil {
			if _, err := s.StoreRepository.GetMember(ctx, *filter.StoreID, actor.UserID); err != nil {
				if errors.Is(err, store.ErrNotStoreMember) {
					return request.ListRequestResponse{}, store.ErrNotStoreMember
				}
				return request.ListRequestResponse{}, fmt.Errorf("failed to check store membership: %w", err)
			}
		} else {
			// Without a store scope a non-admin only sees their own requests.
			self := actor.UserID
			filter.RequesterID = &self
		}
	}

	requests, total, err := s.RequestRepository.List(ctx, filter)
	if err != nil {
		return request.ListRequestResponse{}, fmt.Errorf("failed to list requests: %w", err)
	}

	responses := make([]request.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, request.ToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return request.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Requests:   responses,
	}, nil
}

// requireRequester fails unless actor raised the request. The requester
// never changes, so this check does not need the version guard.
func (s *RequestServiceImpl) requireRequester(ctx context.Context, id string, actor request.Actor) error {
	current, err := s.RequestRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.RequesterID != actor.UserID {
		return request.ErrForbidden
	}
	return nil
}

// guarded runs mutate through the concurrency guard and translates a lost
// race into a request.ConflictError carrying the latest state.
func (s *RequestServiceImpl) guarded(ctx context.Context, id string, expected occ.Expectation, mutate occ.Mutation[request.SupplyRequest]) (request.RequestResponse, error) {
	updated, err := occ.TryMutate[request.SupplyRequest](ctx, guardStore{repo: s.RequestRepository}, id, expected, mutate)
	if err != nil {
		if latest, ok := occ.LatestFrom[request.SupplyRequest](err); ok {
			return request.RequestResponse{}, &request.ConflictError{Latest: request.ToResponse(latest)}
		}
		if errors.Is(err, request.ErrRequestNotFound) || errors.Is(err, request.ErrInvalidTransition) {
			return request.RequestResponse{}, err
		}
		return request.RequestResponse{}, fmt.Errorf("failed to update request: %w", err)
	}

	return request.ToResponse(updated), nil
}

func NewRequestService(
	requestRepo request.RequestRepository,
	storeRepo store.StoreRepository,
	clk clock.Clock,
) request.RequestService {
	return &RequestServiceImpl{
		RequestRepository: requestRepo,
		StoreRepository:   storeRepo,
		clock:             clk,
	}
}
