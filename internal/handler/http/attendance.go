package http

import (
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"github.com/faena-app/faena-backend/internal/pkg/sse"
	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

type AttendanceHandler interface {
	PushIn(w http.ResponseWriter, r *http.Request)
	PushOut(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
	}
}

// PushIn handles POST /attendance/push-in
func (h *attendanceHandlerImpl) PushIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req attendance.PushInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.PushIn(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Push in successful", result)
}

// PushOut handles POST /attendance/push-out
func (h *attendanceHandlerImpl) PushOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req attendance.PushOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.PushOut(r.Context(), identity.UserID, req.ProjectID, false)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Push out successful", result)
}

// GetToday handles GET /attendance/today?project_id=
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	projectID := r.URL.Query().Get("project_id")
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(projectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	today, err := h.attendanceService.GetToday(r.Context(), identity, projectID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, today)
}

// GetMyAttendance handles GET /attendance/me
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	filter := attendance.MyAttendanceFilter{
		ProjectID: queryPtr(r, "project_id"),
		StartDate: queryPtr(r, "start_date"),
		EndDate:   queryPtr(r, "end_date"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 20),
	}

	result, err := h.attendanceService.GetMyAttendance(r.Context(), identity, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Stream handles GET /stream/attendance?token=, pushing the caller's own session changes
// such as a geofence push-out.
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := streamUser(w, r, h.jwtService)
	if !ok {
		return
	}

	sub := h.hub.NewSubscription(sse.UserAttendanceTopic(userID))
	defer sub.Cancel()

	streamEvents(w, r, userID, sub.Start())
}
