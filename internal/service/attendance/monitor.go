package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/pkg/geo"
)

const breachTimeout = 30 * time.Second

type monitorKey struct {
	userID    string
	projectID string
}

// monitor watches one open session. The first position outside the radius closes
// the session silently; later updates are ignored.
type monitor struct {
	key    monitorKey
	date   string
	site   geo.Point
	radius float64

	breach  sync.Once
	stopped atomic.Bool

	mu  sync.Mutex
	sub location.Subscription
}

func (m *monitor) setSubscription(sub location.Subscription) {
	m.mu.Lock()
	if m.stopped.Load() {
		m.mu.Unlock()
		sub.Remove()
		return
	}
	m.sub = sub
	m.mu.Unlock()
}

func (m *monitor) stop() {
	if m.stopped.Swap(true) {
		return
	}
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()
	if sub != nil {
		sub.Remove()
	}
}

func (a *AttendanceServiceImpl) startMonitor(ctx context.Context, record attendance.Record, proj project.Project) error {
	key := monitorKey{userID: record.UserID, projectID: record.ProjectID}
	m := &monitor{
		key:    key,
		date:   record.Date,
		site:   proj.Site(),
		radius: proj.Radius(a.config.DefaultRadiusMeters),
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	prev := a.monitors[key]
	a.monitors[key] = m
	a.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	sub, err := a.locations.WatchPosition(context.WithoutCancel(ctx), record.UserID, a.config.MinDistanceMeters, func(p geo.Point) {
		a.onPosition(m, p)
	})
	if err != nil {
		a.removeMonitor(m)
		return fmt.Errorf("failed to watch position: %w", err)
	}
	m.setSubscription(sub)

	slog.Debug("Geofence monitor started", "user_id", key.userID, "project_id", key.projectID, "radius_m", m.radius)
	return nil
}

func (a *AttendanceServiceImpl) onPosition(m *monitor, p geo.Point) {
	if m.stopped.Load() {
		return
	}
	distance := geo.Distance(p, m.site)
	if geo.WithinRadius(distance, m.radius) {
		return
	}

	m.breach.Do(func() {
		defer a.removeMonitor(m)

		slog.Info("Geofence exit detected",
			"user_id", m.key.userID, "project_id", m.key.projectID,
			"distance_m", distance, "radius_m", m.radius)

		ctx, cancel := context.WithTimeout(context.Background(), breachTimeout)
		defer cancel()

		record, err := a.attendanceRepo.GetByUserProjectDate(ctx, m.key.userID, m.key.projectID, m.date)
		if err != nil {
			slog.Error("Geofence push-out failed to load session", "user_id", m.key.userID, "error", err)
			return
		}
		if !record.IsOpen() {
			return
		}
		if _, err := a.closeRecord(ctx, record, a.now().UTC(), attendance.CloseGeofence, true); err != nil && !errors.Is(err, attendance.ErrSessionClosed) {
			slog.Error("Geofence push-out failed", "user_id", m.key.userID, "project_id", m.key.projectID, "error", err)
		}
	})
}

func (a *AttendanceServiceImpl) stopMonitor(key monitorKey) {
	a.mu.Lock()
	m := a.monitors[key]
	delete(a.monitors, key)
	a.mu.Unlock()

	if m != nil {
		m.stop()
	}
}

// removeMonitor stops m and forgets it unless a newer monitor took its key.
func (a *AttendanceServiceImpl) removeMonitor(m *monitor) {
	a.mu.Lock()
	if a.monitors[m.key] == m {
		delete(a.monitors, m.key)
	}
	a.mu.Unlock()
	m.stop()
}

// ResumeMonitors restarts monitoring for every open session, used at startup.
func (a *AttendanceServiceImpl) ResumeMonitors(ctx context.Context) (int, error) {
	records, err := a.attendanceRepo.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open sessions: %w", err)
	}

	projects := map[string]project.Project{}
	started := 0
	for _, record := range records {
		proj, ok := projects[record.ProjectID]
		if !ok {
			if proj, err = a.projectRepo.GetByID(ctx, record.ProjectID); err != nil {
				slog.Error("Failed to load project for monitor", "project_id", record.ProjectID, "error", err)
				continue
			}
			projects[record.ProjectID] = proj
		}
		if err := a.startMonitor(ctx, record, proj); err != nil {
			slog.Error("Failed to resume geofence monitor", "attendance_id", record.ID, "error", err)
			continue
		}
		started++
	}

	slog.Info("Geofence monitors resumed", "count", started)
	return started, nil
}

// MonitorCount returns the number of active geofence monitors.
func (a *AttendanceServiceImpl) MonitorCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.monitors)
}

// Close stops every monitor. Sessions stay open.
func (a *AttendanceServiceImpl) Close() {
	a.mu.Lock()
	a.closed = true
	monitors := a.monitors
	a.monitors = make(map[monitorKey]*monitor)
	a.mu.Unlock()

	for _, m := range monitors {
		m.stop()
	}
	slog.Info("Geofence monitors stopped", "count", len(monitors))
}
