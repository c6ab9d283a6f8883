package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/pkg/geo"
	"github.com/faena-app/faena-backend/internal/pkg/sse"
)

// PromptResolver decides which daily report step a supervisor sees after pushing in.
type PromptResolver interface {
	NextPrompt(ctx context.Context, projectID string) (dailyreport.Prompt, error)
}

type Config struct {
	DefaultRadiusMeters float64        // used when a project has no radius, default 200
	MinDistanceMeters   float64        // movement needed before the monitor re-checks, default 10
	DefaultLocation     *time.Location // used when a project has no timezone
	StaleAfter          time.Duration  // open sessions older than this are closed by AutoCloseStale
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	projectRepo    project.ProjectRepository
	locations      location.Provider
	prompts        PromptResolver
	notifier       notification.Service
	hub            *sse.Hub
	config         Config
	now            func() time.Time

	mu       sync.Mutex
	monitors map[monitorKey]*monitor
	closed   bool
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	projectRepo project.ProjectRepository,
	locations location.Provider,
	prompts PromptResolver,
	notifier notification.Service,
	hub *sse.Hub,
	cfg Config,
) *AttendanceServiceImpl {
	if cfg.DefaultRadiusMeters <= 0 {
		cfg.DefaultRadiusMeters = geo.DefaultRadiusMeters
	}
	if cfg.MinDistanceMeters <= 0 {
		cfg.MinDistanceMeters = 10
	}
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 16 * time.Hour
	}

	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		projectRepo:    projectRepo,
		locations:      locations,
		prompts:        prompts,
		notifier:       notifier,
		hub:            hub,
		config:         cfg,
		now:            time.Now,
		monitors:       make(map[monitorKey]*monitor),
	}
}

// PushIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PushIn(ctx context.Context, caller auth.Identity, req attendance.PushInRequest) (attendance.PushInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PushInResponse{}, err
	}

	granted, err := a.locations.RequestForegroundPermission(ctx, caller.UserID)
	if err != nil {
		return attendance.PushInResponse{}, fmt.Errorf("failed to check location permission: %w", err)
	}
	if !granted {
		return attendance.PushInResponse{}, attendance.ErrPermissionDenied
	}

	position, err := a.locations.CurrentPosition(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, location.ErrPositionUnavailable) {
			return attendance.PushInResponse{}, attendance.ErrPermissionDenied
		}
		if errors.Is(err, location.ErrPositionStale) {
			return attendance.PushInResponse{}, err
		}
		return attendance.PushInResponse{}, fmt.Errorf("failed to read current position: %w", err)
	}

	proj, err := a.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return attendance.PushInResponse{}, err
	}

	assigned, err := a.projectRepo.IsAssigned(ctx, proj.ID, caller.UserID)
	if err != nil {
		return attendance.PushInResponse{}, fmt.Errorf("failed to check project assignment: %w", err)
	}
	if !assigned {
		return attendance.PushInResponse{}, project.ErrNotAssigned
	}

	distance := geo.Distance(position, proj.Site())
	radius := proj.Radius(a.config.DefaultRadiusMeters)
	if !geo.WithinRadius(distance, radius) {
		return attendance.PushInResponse{}, &attendance.OutOfRangeError{Distance: distance, Radius: radius}
	}

	now := a.now().UTC()
	date := proj.DateKey(now, a.config.DefaultLocation)

	existing, err := a.attendanceRepo.GetByUserProjectDate(ctx, caller.UserID, proj.ID, date)
	switch {
	case err == nil && existing.IsOpen():
		return attendance.PushInResponse{}, attendance.ErrAlreadyPushedIn
	case err == nil:
		return attendance.PushInResponse{}, attendance.ErrSessionClosed
	case !errors.Is(err, attendance.ErrRecordNotFound):
		return attendance.PushInResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}

	record, err := a.attendanceRepo.Create(ctx, attendance.Record{
		UserID:     caller.UserID,
		ProjectID:  proj.ID,
		Date:       date,
		PushInTime: now,
		Latitude:   position.Latitude,
		Longitude:  position.Longitude,
	})
	if err != nil {
		slog.Error("Failed to persist push-in", "user_id", caller.UserID, "project_id", proj.ID, "error", err)
		return attendance.PushInResponse{}, err
	}

	if err := a.startMonitor(ctx, record, proj); err != nil {
		slog.Error("Failed to start geofence monitor", "user_id", caller.UserID, "project_id", proj.ID, "error", err)
	}

	prompt := dailyreport.PromptNone
	if caller.IsJefe() && a.prompts != nil {
		if prompt, err = a.prompts.NextPrompt(ctx, proj.ID); err != nil {
			slog.Error("Failed to resolve supervisor prompt", "project_id", proj.ID, "error", err)
			prompt = dailyreport.PromptNone
		}
	}

	resp := attendance.ToResponse(record)
	a.publish(caller.UserID, "pushed_in", resp)

	slog.Info("Pushed in",
		"user_id", caller.UserID, "project_id", proj.ID, "date", date,
		"distance_m", math.Round(distance), "radius_m", radius)

	return attendance.PushInResponse{
		Attendance:     resp,
		DistanceMeters: math.Round(distance*100) / 100,
		RadiusMeters:   radius,
		Prompt:         string(prompt),
	}, nil
}

// PushOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PushOut(ctx context.Context, userID string, projectID string, silent bool) (attendance.AttendanceResponse, error) {
	proj, err := a.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now().UTC()
	date := proj.DateKey(now, a.config.DefaultLocation)

	record, err := a.attendanceRepo.GetByUserProjectDate(ctx, userID, projectID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotPushedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if !record.IsOpen() {
		return attendance.AttendanceResponse{}, attendance.ErrSessionClosed
	}

	closed, err := a.closeRecord(ctx, record, now, attendance.CloseManual, silent)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.ToResponse(closed), nil
}

// closeRecord persists the push-out, then stops the monitor and notifies.
// On a persistence failure the monitor keeps running.
func (a *AttendanceServiceImpl) closeRecord(ctx context.Context, record attendance.Record, pushOut time.Time, reason attendance.CloseReason, silent bool) (attendance.Record, error) {
	totalHours := attendance.TotalHours(record.PushInTime, pushOut)

	closed, err := a.attendanceRepo.Close(ctx, record.ID, pushOut, totalHours, reason)
	if err != nil {
		slog.Error("Failed to persist push-out",
			"attendance_id", record.ID, "user_id", record.UserID, "reason", reason, "error", err)
		return attendance.Record{}, err
	}

	a.stopMonitor(monitorKey{userID: record.UserID, projectID: record.ProjectID})

	if !silent && a.notifier != nil {
		title, message := "Pushed out", fmt.Sprintf("Session closed with %.2f hours", totalHours)
		if reason == attendance.CloseStale {
			title = "Session closed automatically"
		}
		if err := a.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: record.UserID,
			Type:        notification.TypePushedOut,
			Title:       title,
			Message:     message,
			Data: map[string]interface{}{
				"attendance_id": record.ID,
				"project_id":    record.ProjectID,
				"total_hours":   totalHours,
			},
		}); err != nil {
			slog.Warn("Failed to queue push-out notification", "user_id", record.UserID, "error", err)
		}
	}

	a.publish(record.UserID, "pushed_out", attendance.ToResponse(closed))

	slog.Info("Pushed out",
		"user_id", record.UserID, "project_id", record.ProjectID,
		"total_hours", totalHours, "reason", reason, "silent", silent)

	return closed, nil
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, caller auth.Identity, projectID string) (attendance.TodayResponse, error) {
	req := attendance.PushInRequest{ProjectID: projectID}
	if err := req.Validate(); err != nil {
		return attendance.TodayResponse{}, err
	}

	proj, err := a.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	date := proj.DateKey(a.now(), a.config.DefaultLocation)

	record, err := a.attendanceRepo.GetByUserProjectDate(ctx, caller.UserID, projectID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.TodayResponse{Date: date, State: attendance.StateNotStarted}, nil
		}
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	resp := attendance.ToResponse(record)
	return attendance.TodayResponse{Date: date, State: record.State(), Attendance: &resp}, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, caller auth.Identity, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.attendanceRepo.ListByUser(ctx, caller.UserID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	items := make([]attendance.AttendanceResponse, len(records))
	for i, r := range records {
		items[i] = attendance.ToResponse(r)
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: items,
	}, nil
}

// AutoCloseStale closes sessions left open longer than the configured limit.
// Push-out is set to push-in plus the limit.
func (a *AttendanceServiceImpl) AutoCloseStale(ctx context.Context) (int, error) {
	cutoff := a.now().UTC().Add(-a.config.StaleAfter)

	records, err := a.attendanceRepo.ListOpenBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	closed := 0
	for _, record := range records {
		pushOut := record.PushInTime.Add(a.config.StaleAfter)
		if _, err := a.closeRecord(ctx, record, pushOut, attendance.CloseStale, false); err != nil {
			if errors.Is(err, attendance.ErrSessionClosed) {
				continue
			}
			slog.Error("Failed to auto-close stale session", "attendance_id", record.ID, "error", err)
			continue
		}
		closed++
	}
	return closed, nil
}

func (a *AttendanceServiceImpl) publish(userID, event string, data attendance.AttendanceResponse) {
	if a.hub == nil {
		return
	}
	a.hub.Publish(sse.UserAttendanceTopic(userID), sse.Event{Event: event, Data: data})
}
