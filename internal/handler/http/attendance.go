package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/retailops/storeops-backend/internal/domain/attendance"
	"github.com/retailops/storeops-backend/internal/handler/http/response"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListStore(w http.ResponseWriter, r *http.Request)
	ExportStore(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func viewerOf(claims jwt.Claims) attendance.Viewer {
	return attendance.Viewer{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetManagementStatus(r.Context(), claims.UserID, chi.URLParam(r, "storeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Start implements AttendanceHandler.
func (h *attendanceHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req attendance.StartManagementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = claims.UserID
	req.StoreID = chi.URLParam(r, "storeID")

	result, err := h.attendanceService.StartManagement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Management started", result)
}

// End implements AttendanceHandler.
func (h *attendanceHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req attendance.EndManagementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = claims.UserID
	req.StoreID = chi.URLParam(r, "storeID")

	result, err := h.attendanceService.EndManagement(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Management ended", result)
}

func attendanceFilterFromQuery(r *http.Request) attendance.AttendanceFilter {
	return attendance.AttendanceFilter{
		StoreID:   queryString(r, "store_id"),
		WorkDate:  queryString(r, "work_date"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		State:     queryString(r, "state"),
		Type:      queryString(r, "attendance_type"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
}

// ListMy implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	results, err := h.attendanceService.ListMyAttendance(r.Context(), claims.UserID, attendanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetAttendance(r.Context(), viewerOf(claims), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.DeleteAttendance(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted", nil)
}

// ListStore implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListStore(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	filter := attendanceFilterFromQuery(r)
	filter.UserID = queryString(r, "user_id")

	results, err := h.attendanceService.ListStoreAttendance(r.Context(), viewerOf(claims), chi.URLParam(r, "storeID"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ExportStore implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportStore(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	req := attendance.ExportRequest{
		StoreID:   chi.URLParam(r, "storeID"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	data, err := h.attendanceService.ExportStoreAttendance(r.Context(), viewerOf(claims), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", req.StartDate, req.EndDate)
	response.File(w, filename, xlsxContentType, data)
}
