package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/retailops/storeops-backend/internal/domain/request"
	"github.com/retailops/storeops-backend/internal/handler/http/response"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
)

type RequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Advance(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	requestService request.RequestService
}

func NewRequestHandler(requestService request.RequestService) RequestHandler {
	return &requestHandlerImpl{
		requestService: requestService,
	}
}

func actorOf(claims jwt.Claims) request.Actor {
	return request.Actor{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}
}

// Create implements RequestHandler.
func (h *requestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req request.CreateRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = actorOf(claims)

	result, err := h.requestService.CreateRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Request submitted", result)
}

// List implements RequestHandler.
func (h *requestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	filter := request.RequestFilter{
		StoreID:     queryString(r, "store_id"),
		RequesterID: queryString(r, "requester_id"),
		Status:      queryString(r, "status"),
		Category:    queryString(r, "category"),
		Page:        queryInt(r, "page"),
		Limit:       queryInt(r, "limit"),
		SortBy:      r.URL.Query().Get("sort_by"),
		SortOrder:   r.URL.Query().Get("sort_order"),
	}

	results, err := h.requestService.ListRequests(r.Context(), filter, actorOf(claims))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements RequestHandler.
func (h *requestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	result, err := h.requestService.GetRequest(r.Context(), chi.URLParam(r, "id"), actorOf(claims))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Edit implements RequestHandler.
func (h *requestHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req request.EditRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.Actor = actorOf(claims)

	result, err := h.requestService.EditRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request updated", result)
}

// Cancel implements RequestHandler.
func (h *requestHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req request.CancelRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.Actor = actorOf(claims)

	result, err := h.requestService.CancelRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request cancelled", result)
}

// Advance implements RequestHandler.
func (h *requestHandlerImpl) Advance(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req request.AdvanceRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.Actor = actorOf(claims)

	result, err := h.requestService.AdvanceRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request status updated", result)
}

// Confirm implements RequestHandler.
func (h *requestHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	result, err := h.requestService.ConfirmRequest(r.Context(), chi.URLParam(r, "id"), actorOf(claims))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
