package attendance

import (
	"context"

	"github.com/faena-app/faena-backend/internal/domain/auth"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// PushIn verifies location permission and site radius, opens today's session and starts the geofence monitor.
	PushIn(ctx context.Context, caller auth.Identity, req PushInRequest) (PushInResponse, error)

	// PushOut closes today's open session. silent suppresses the confirmation notification.
	PushOut(ctx context.Context, userID string, projectID string, silent bool) (AttendanceResponse, error)

	// GetToday returns the caller's session for today on a project.
	GetToday(ctx context.Context, caller auth.Identity, projectID string) (TodayResponse, error)

	// GetMyAttendance retrieves attendance records for the authenticated user
	GetMyAttendance(ctx context.Context, caller auth.Identity, filter MyAttendanceFilter) (ListAttendanceResponse, error)
}
