package dailyreport

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/project"
)

// ==================== Report Repository ====================

type mockReportRepo struct {
	mu       sync.Mutex
	reports  map[string]*dailyreport.Report
	stock    map[string]dailyreport.LiveStock
	blocks   map[string]*dailyreport.CommentBlock
	stockErr error
	clock    func() time.Time
}

func newMockReportRepo(clock func() time.Time) *mockReportRepo {
	return &mockReportRepo{
		reports: map[string]*dailyreport.Report{},
		stock:   map[string]dailyreport.LiveStock{},
		blocks:  map[string]*dailyreport.CommentBlock{},
		clock:   clock,
	}
}

func reportKey(projectID, date string) string { return projectID + "/" + date }

func blockKey(projectID, date, id string) string { return projectID + "/" + date + "/" + id }

func (m *mockReportRepo) EnsureReport(_ context.Context, projectID, date string) (dailyreport.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportKey(projectID, date)]
	if !ok {
		r = &dailyreport.Report{ProjectID: projectID, Date: date, CreatedAt: m.clock()}
		m.reports[reportKey(projectID, date)] = r
	}
	return *r, nil
}

func (m *mockReportRepo) GetReport(_ context.Context, projectID, date string) (dailyreport.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportKey(projectID, date)]
	if !ok {
		return dailyreport.Report{}, dailyreport.ErrReportNotFound
	}
	return *r, nil
}

func (m *mockReportRepo) SaveChecklist(ctx context.Context, projectID, date string, checklist dailyreport.Checklist) error {
	_, _ = m.EnsureReport(ctx, projectID, date)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[reportKey(projectID, date)].Checklist = &checklist
	return nil
}

func (m *mockReportRepo) SaveRecount(ctx context.Context, projectID, date string, phase dailyreport.Phase, recount dailyreport.Recount) error {
	_, _ = m.EnsureReport(ctx, projectID, date)
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.reports[reportKey(projectID, date)]
	if phase == dailyreport.PhaseMorning {
		r.RecountMorning = &recount
	} else {
		r.RecountEvening = &recount
	}
	return nil
}

func (m *mockReportRepo) GetLiveStock(_ context.Context, projectID string) (dailyreport.LiveStock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stock[projectID]
	if !ok {
		return dailyreport.LiveStock{ProjectID: projectID, List: []dailyreport.ChecklistItem{}}, nil
	}
	return s, nil
}

func (m *mockReportRepo) ReplaceLiveStock(_ context.Context, projectID string, list []dailyreport.ChecklistItem) (dailyreport.LiveStock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stockErr != nil {
		return dailyreport.LiveStock{}, m.stockErr
	}
	s := dailyreport.LiveStock{ProjectID: projectID, List: list, UpdatedAt: m.clock()}
	m.stock[projectID] = s
	return s, nil
}

func (m *mockReportRepo) ListBlocks(_ context.Context, projectID, date string) ([]dailyreport.CommentBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dailyreport.CommentBlock
	for _, b := range m.blocks {
		if b.ProjectID == projectID && b.Date == date {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (m *mockReportRepo) GetBlock(_ context.Context, projectID, date, blockID string) (dailyreport.CommentBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[blockKey(projectID, date, blockID)]
	if !ok {
		return dailyreport.CommentBlock{}, dailyreport.ErrBlockNotFound
	}
	return *b, nil
}

func (m *mockReportRepo) UpsertComment(_ context.Context, block dailyreport.CommentBlock) (dailyreport.CommentBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := blockKey(block.ProjectID, block.Date, block.ID)
	if b, ok := m.blocks[key]; ok {
		b.JefeID, b.JefeNote = block.JefeID, block.JefeNote
		return *b, nil
	}
	m.blocks[key] = &block
	return block, nil
}

func (m *mockReportRepo) UpsertJefeNote(_ context.Context, block dailyreport.CommentBlock) (dailyreport.CommentBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := blockKey(block.ProjectID, block.Date, block.ID)
	if b, ok := m.blocks[key]; ok {
		b.JefeID, b.JefeNote, b.StartAt = block.JefeID, block.JefeNote, block.StartAt
		b.Locked = b.Locked || block.Locked
		return *b, nil
	}
	m.blocks[key] = &block
	return block, nil
}

func (m *mockReportRepo) AddWorkerComment(_ context.Context, projectID, date, blockID string, comment dailyreport.WorkerComment) (dailyreport.WorkerComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[blockKey(projectID, date, blockID)]
	if !ok {
		return dailyreport.WorkerComment{}, dailyreport.ErrBlockNotFound
	}
	b.Comments = append(b.Comments, comment)
	return comment, nil
}

func (m *mockReportRepo) LockExpiredBlocks(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.blocks {
		if !b.Locked && b.StartAt.Before(cutoff) {
			b.Locked = true
			n++
		}
	}
	return n, nil
}

// ==================== Project Repository ====================

type mockProjectRepo struct {
	project.ProjectRepository
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

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (m *mockProjectRepo) IsAssigned(_ context.Context, projectID string, userID string) (bool, error) {
	return m.assignments[projectID][userID], nil
}

// ==================== Attendance Repository ====================

type mockAttendanceRepo struct {
	attendance.AttendanceRepository
	records []attendance.Record
}

func (m *mockAttendanceRepo) GetByUserProjectDate(_ context.Context, userID, projectID, date string) (attendance.Record, error) {
	for _, r := range m.records {
		if r.UserID == userID && r.ProjectID == projectID && r.Date == date {
			return r, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

// ==================== Notifier ====================

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

var errStockDown = errors.New("live stock write failed")
