package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/chat"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/domain/report"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Out of range carries the measured distance back to the device
	var outOfRange *attendance.OutOfRangeError
	if errors.As(err, &outOfRange) {
		UnprocessableEntity(w, "OUT_OF_RANGE", attendance.ErrOutOfRange.Error(), map[string]string{
			"distance_meters": strconv.FormatFloat(outOfRange.Distance, 'f', 2, 64),
			"radius_meters":   strconv.FormatFloat(outOfRange.Radius, 'f', 2, 64),
		})
		return
	}

	switch {
	// Auth & users
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingIdentity):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrJefePrivilegeRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrEmailExists):
		Conflict(w, "Email already registered")

	// Projects
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")
	case errors.Is(err, project.ErrNotAssigned):
		Forbidden(w, err.Error())
	case errors.Is(err, project.ErrUnknownUsers):
		BadRequest(w, err.Error(), nil)

	// Attendance
	case errors.Is(err, attendance.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, Response{
			Success: false,
			Error:   &ErrorDetail{Code: "PERMISSION_DENIED", Message: err.Error()},
		})
	case errors.Is(err, attendance.ErrOutOfRange):
		UnprocessableEntity(w, "OUT_OF_RANGE", err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyPushedIn),
		errors.Is(err, attendance.ErrNotPushedIn),
		errors.Is(err, attendance.ErrSessionClosed):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Location
	case errors.Is(err, location.ErrInvalidCoordinates):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, location.ErrPositionUnavailable):
		Conflict(w, err.Error())
	case errors.Is(err, location.ErrPositionStale):
		UnprocessableEntity(w, "POSITION_STALE", location.ErrPositionStale.Error(), nil)

	// Daily report
	case errors.Is(err, dailyreport.ErrJefeRequired):
		Forbidden(w, err.Error())
	case errors.Is(err, dailyreport.ErrReportNotFound):
		NotFound(w, "Daily report not found")
	case errors.Is(err, dailyreport.ErrBlockNotFound):
		NotFound(w, "Comment block not found")
	case errors.Is(err, dailyreport.ErrBlockLocked),
		errors.Is(err, dailyreport.ErrNotPushedIn):
		Conflict(w, err.Error())
	case errors.Is(err, dailyreport.ErrInvalidPhase):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, dailyreport.ErrStockWriteFailed):
		slog.Error("Live stock out of sync with recount", "error", err)
		InternalServerError(w, dailyreport.ErrStockWriteFailed.Error())

	// Chat & reports
	case errors.Is(err, chat.ErrEmptyMessage):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrProjectScopeRequired):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
