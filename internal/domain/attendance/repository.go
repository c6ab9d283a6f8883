package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new open record. A second record for the same (user, project, date) fails with ErrAlreadyPushedIn.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByUserProjectDate returns ErrRecordNotFound when the user never pushed in that day.
	GetByUserProjectDate(ctx context.Context, userID, projectID, date string) (Record, error)

	// Close sets push-out fields only while the record is still open.
	// A record that was already closed yields ErrSessionClosed, so a session closes exactly once.
	Close(ctx context.Context, id string, pushOut time.Time, totalHours float64, reason CloseReason) (Record, error)

	// ListOpen returns every open record, used to resume geofence monitors after a restart.
	ListOpen(ctx context.Context) ([]Record, error)

	// ListOpenBefore returns open records pushed in before cutoff.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]Record, error)

	ListByUser(ctx context.Context, userID string, filter MyAttendanceFilter) ([]Record, int64, error)
}
