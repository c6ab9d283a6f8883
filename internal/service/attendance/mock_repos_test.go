package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/google/uuid"
)

// ==================== Attendance Repository ====================

type mockAttendanceRepo struct {
	mu         sync.Mutex
	records    map[string]*attendance.Record
	closeCalls int
	closeErr   error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: map[string]*attendance.Record{}}
}

func (m *mockAttendanceRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == rec.UserID && r.ProjectID == rec.ProjectID && r.Date == rec.Date {
			return attendance.Record{}, attendance.ErrAlreadyPushedIn
		}
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = rec.PushInTime
	rec.UpdatedAt = rec.PushInTime
	m.records[rec.ID] = &rec
	return rec, nil
}

func (m *mockAttendanceRepo) GetByUserProjectDate(_ context.Context, userID, projectID, date string) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == userID && r.ProjectID == projectID && r.Date == date {
			return *r, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Close(_ context.Context, id string, pushOut time.Time, totalHours float64, reason attendance.CloseReason) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	if m.closeErr != nil {
		return attendance.Record{}, m.closeErr
	}
	r, ok := m.records[id]
	if !ok || r.PushOutTime != nil {
		return attendance.Record{}, attendance.ErrSessionClosed
	}
	r.PushOutTime = &pushOut
	r.TotalHours = totalHours
	r.CloseReason = &reason
	return *r, nil
}

func (m *mockAttendanceRepo) ListOpen(_ context.Context) ([]attendance.Record, error) {
	return m.ListOpenBefore(context.Background(), time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (m *mockAttendanceRepo) ListOpenBefore(_ context.Context, cutoff time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.PushOutTime == nil && r.PushInTime.Before(cutoff) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string, _ attendance.MyAttendanceFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockAttendanceRepo) closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

// ==================== Project Repository ====================

type mockProjectRepo struct {
	projects    map[string]project.Project
	assignments map[string]map[string]bool
}

func newMockProjectRepo(projects ...project.Project) *mockProjectRepo {
	m := &mockProjectRepo{projects: map[string]project.Project{}, assignments: map[string]map[string]bool{}}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjectRepo) assign(projectID string, userIDs ...string) {
	if m.assignments[projectID] == nil {
		m.assignments[projectID] = map[string]bool{}
	}
	for _, id := range userIDs {
		m.assignments[projectID][id] = true
	}
}

func (m *mockProjectRepo) Create(_ context.Context, p project.Project) (project.Project, error) {
	p.ID = uuid.NewString()
	m.projects[p.ID] = p
	return p, nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (m *mockProjectRepo) ListByUser(_ context.Context, userID string) ([]project.Project, error) {
	var out []project.Project
	for pid, users := range m.assignments {
		if users[userID] {
			out = append(out, m.projects[pid])
		}
	}
	return out, nil
}

func (m *mockProjectRepo) ReplaceAssignments(_ context.Context, projectID string, userIDs []string) error {
	m.assignments[projectID] = map[string]bool{}
	m.assign(projectID, userIDs...)
	return nil
}

func (m *mockProjectRepo) IsAssigned(_ context.Context, projectID string, userID string) (bool, error) {
	return m.assignments[projectID][userID], nil
}

func (m *mockProjectRepo) ListAssignedUserIDs(_ context.Context, projectID string) ([]string, error) {
	var out []string
	for id := range m.assignments[projectID] {
		out = append(out, id)
	}
	return out, nil
}

// ==================== Collaborators ====================

type mockNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (m *mockNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	return nil
}

func (m *mockNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, r := range reqs {
		_ = m.QueueNotification(ctx, r)
	}
	return nil
}

func (m *mockNotifier) Stop() {}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type staticPrompt dailyreport.Prompt

func (p staticPrompt) NextPrompt(context.Context, string) (dailyreport.Prompt, error) {
	return dailyreport.Prompt(p), nil
}
