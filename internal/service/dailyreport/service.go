package dailyreport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/google/uuid"
)

var _ dailyreport.DailyReportService = (*DailyReportServiceImpl)(nil)

type DailyReportServiceImpl struct {
	reportRepo     dailyreport.ReportRepository
	projectRepo    project.ProjectRepository
	attendanceRepo attendance.AttendanceRepository
	notifier       notification.Service
	defaultLoc     *time.Location
	now            func() time.Time
}

func NewDailyReportService(
	reportRepo dailyreport.ReportRepository,
	projectRepo project.ProjectRepository,
	attendanceRepo attendance.AttendanceRepository,
	notifier notification.Service,
	defaultLoc *time.Location,
) *DailyReportServiceImpl {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &DailyReportServiceImpl{
		reportRepo:     reportRepo,
		projectRepo:    projectRepo,
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		defaultLoc:     defaultLoc,
		now:            time.Now,
	}
}

// authorize loads the project and checks the caller works on it. Admins see every project.
func (s *DailyReportServiceImpl) authorize(ctx context.Context, caller auth.Identity, projectID string) (project.Project, error) {
	proj, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}
	if caller.IsAdmin() {
		return proj, nil
	}
	assigned, err := s.projectRepo.IsAssigned(ctx, proj.ID, caller.UserID)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to check project assignment: %w", err)
	}
	if !assigned {
		return project.Project{}, project.ErrNotAssigned
	}
	return proj, nil
}

func (s *DailyReportServiceImpl) authorizeJefe(ctx context.Context, caller auth.Identity, projectID string) (project.Project, error) {
	if !caller.IsJefe() {
		return project.Project{}, dailyreport.ErrJefeRequired
	}
	return s.authorize(ctx, caller, projectID)
}

// GetTodayReport implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) GetTodayReport(ctx context.Context, caller auth.Identity, projectID string) (dailyreport.ReportResponse, error) {
	proj, err := s.authorize(ctx, caller, projectID)
	if err != nil {
		return dailyreport.ReportResponse{}, err
	}
	return s.buildReport(ctx, proj, s.now())
}

func (s *DailyReportServiceImpl) buildReport(ctx context.Context, proj project.Project, now time.Time) (dailyreport.ReportResponse, error) {
	date := proj.DateKey(now, s.defaultLoc)

	report, err := s.reportRepo.EnsureReport(ctx, proj.ID, date)
	if err != nil {
		return dailyreport.ReportResponse{}, fmt.Errorf("failed to load daily report: %w", err)
	}

	blocks, err := s.reportRepo.ListBlocks(ctx, proj.ID, date)
	if err != nil {
		return dailyreport.ReportResponse{}, fmt.Errorf("failed to load comment blocks: %w", err)
	}

	resp := dailyreport.ReportResponse{
		ProjectID:      proj.ID,
		Date:           date,
		Checklist:      report.Checklist,
		RecountMorning: report.RecountMorning,
		RecountEvening: report.RecountEvening,
		Comments:       make([]dailyreport.CommentBlockResponse, len(blocks)),
	}
	for i, b := range blocks {
		resp.Comments[i] = dailyreport.ToBlockResponse(b, now)
	}

	// Seed an absent checklist from live stock without persisting it
	if resp.Checklist == nil {
		stock, err := s.reportRepo.GetLiveStock(ctx, proj.ID)
		if err != nil {
			return dailyreport.ReportResponse{}, fmt.Errorf("failed to load live stock: %w", err)
		}
		if len(stock.List) > 0 {
			resp.Checklist = &dailyreport.Checklist{CreatedAt: stock.UpdatedAt, List: stock.List}
			resp.ChecklistSeeded = true
		}
	}

	return resp, nil
}

// SaveChecklist implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) SaveChecklist(ctx context.Context, caller auth.Identity, req dailyreport.SaveChecklistRequest) (dailyreport.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.ReportResponse{}, err
	}
	proj, err := s.authorizeJefe(ctx, caller, req.ProjectID)
	if err != nil {
		return dailyreport.ReportResponse{}, err
	}

	now := s.now().UTC()
	date := proj.DateKey(now, s.defaultLoc)
	list := req.List
	if list == nil {
		list = []dailyreport.ChecklistItem{}
	}

	checklist := dailyreport.Checklist{JefeID: caller.UserID, CreatedAt: now, List: list}
	if err := s.reportRepo.SaveChecklist(ctx, proj.ID, date, checklist); err != nil {
		slog.Error("Failed to save checklist", "project_id", proj.ID, "date", date, "error", err)
		return dailyreport.ReportResponse{}, err
	}

	// Checklist is the only full-replace path for live stock
	if _, err := s.reportRepo.ReplaceLiveStock(ctx, proj.ID, list); err != nil {
		slog.Error("Checklist saved but live stock replace failed", "project_id", proj.ID, "error", err)
		return dailyreport.ReportResponse{}, fmt.Errorf("%w: %w", dailyreport.ErrStockWriteFailed, err)
	}

	slog.Info("Checklist saved", "project_id", proj.ID, "date", date, "jefe_id", caller.UserID, "items", len(list))
	return s.buildReport(ctx, proj, now)
}

// SaveRecount implements dailyreport.DailyReportService.
// The recount is persisted first, then applied to live stock. Nothing deduplicates a
// repeated call, so saving the same recount twice applies its deltas twice.
func (s *DailyReportServiceImpl) SaveRecount(ctx context.Context, caller auth.Identity, req dailyreport.SaveRecountRequest) (dailyreport.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.ReportResponse{}, err
	}
	proj, err := s.authorizeJefe(ctx, caller, req.ProjectID)
	if err != nil {
		return dailyreport.ReportResponse{}, err
	}

	now := s.now().UTC()
	loc := proj.Location(s.defaultLoc)
	date := proj.DateKey(now, s.defaultLoc)

	phase := req.Phase
	if phase == "" {
		phase = dailyreport.PhaseAt(now, loc)
	}

	report, err := s.reportRepo.EnsureReport(ctx, proj.ID, date)
	if err != nil {
		return dailyreport.ReportResponse{}, fmt.Errorf("failed to load daily report: %w", err)
	}
	stock, err := s.reportRepo.GetLiveStock(ctx, proj.ID)
	if err != nil {
		return dailyreport.ReportResponse{}, fmt.Errorf("failed to load live stock: %w", err)
	}

	baseline := stock.List
	if report.Checklist != nil {
		baseline = report.Checklist.List
	}
	deltas := req.Draft(baseline).Deltas()

	recount := dailyreport.Recount{JefeID: caller.UserID, CreatedAt: now, List: deltas}
	if err := s.reportRepo.SaveRecount(ctx, proj.ID, date, phase, recount); err != nil {
		slog.Error("Failed to save recount", "project_id", proj.ID, "phase", phase, "error", err)
		return dailyreport.ReportResponse{}, err
	}

	// Read-modify-write without a version check; concurrent recounts can lose updates
	stock, err = s.reportRepo.GetLiveStock(ctx, proj.ID)
	if err == nil {
		_, err = s.reportRepo.ReplaceLiveStock(ctx, proj.ID, dailyreport.ApplyDeltas(stock.List, deltas))
	}
	if err != nil {
		slog.Error("Recount saved but live stock update failed", "project_id", proj.ID, "phase", phase, "error", err)
		return dailyreport.ReportResponse{}, fmt.Errorf("%w: %w", dailyreport.ErrStockWriteFailed, err)
	}

	slog.Info("Recount saved", "project_id", proj.ID, "date", date, "phase", phase, "deltas", len(deltas))
	return s.buildReport(ctx, proj, now)
}

// GetLiveStock implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) GetLiveStock(ctx context.Context, caller auth.Identity, projectID string) (dailyreport.LiveStockResponse, error) {
	proj, err := s.authorize(ctx, caller, projectID)
	if err != nil {
		return dailyreport.LiveStockResponse{}, err
	}
	stock, err := s.reportRepo.GetLiveStock(ctx, proj.ID)
	if err != nil {
		return dailyreport.LiveStockResponse{}, fmt.Errorf("failed to load live stock: %w", err)
	}
	return dailyreport.ToLiveStockResponse(stock), nil
}

// UpsertComment implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) UpsertComment(ctx context.Context, caller auth.Identity, req dailyreport.CommentRequest) (dailyreport.CommentBlockResponse, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.CommentBlockResponse{}, err
	}
	proj, err := s.authorizeJefe(ctx, caller, req.ProjectID)
	if err != nil {
		return dailyreport.CommentBlockResponse{}, err
	}

	now := s.now().UTC()
	block := dailyreport.WallClockBlock(now, proj.Location(s.defaultLoc))

	jefeID, note := caller.UserID, req.Text
	saved, err := s.reportRepo.UpsertComment(ctx, dailyreport.CommentBlock{
		ID:        block.ID,
		ProjectID: proj.ID,
		Date:      proj.DateKey(now, s.defaultLoc),
		JefeID:    &jefeID,
		JefeNote:  &note,
		StartAt:   block.StartAt,
	})
	if err != nil {
		slog.Error("Failed to upsert comment", "project_id", proj.ID, "block_id", block.ID, "error", err)
		return dailyreport.CommentBlockResponse{}, err
	}
	return dailyreport.ToBlockResponse(saved, now), nil
}

// UpsertJefeNote implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) UpsertJefeNote(ctx context.Context, caller auth.Identity, req dailyreport.JefeNoteRequest) (dailyreport.CommentBlockResponse, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.CommentBlockResponse{}, err
	}
	proj, err := s.authorizeJefe(ctx, caller, req.ProjectID)
	if err != nil {
		return dailyreport.CommentBlockResponse{}, err
	}

	now := s.now().UTC()
	date := proj.DateKey(now, s.defaultLoc)

	record, err := s.attendanceRepo.GetByUserProjectDate(ctx, caller.UserID, proj.ID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return dailyreport.CommentBlockResponse{}, dailyreport.ErrNotPushedIn
		}
		return dailyreport.CommentBlockResponse{}, fmt.Errorf("failed to load push-in: %w", err)
	}

	block := dailyreport.CurrentBlock(record.PushInTime, now, proj.Location(s.defaultLoc))

	existing, err := s.reportRepo.GetBlock(ctx, proj.ID, date, block.ID)
	switch {
	case err == nil && !existing.Editable(now):
		return dailyreport.CommentBlockResponse{}, dailyreport.ErrBlockLocked
	case err != nil && !errors.Is(err, dailyreport.ErrBlockNotFound):
		return dailyreport.CommentBlockResponse{}, fmt.Errorf("failed to load comment block: %w", err)
	}

	jefeID, note := caller.UserID, req.Text
	saved, err := s.reportRepo.UpsertJefeNote(ctx, dailyreport.CommentBlock{
		ID:        block.ID,
		ProjectID: proj.ID,
		Date:      date,
		JefeID:    &jefeID,
		JefeNote:  &note,
		StartAt:   block.StartAt,
		Locked:    req.LockNow,
	})
	if err != nil {
		slog.Error("Failed to upsert jefe note", "project_id", proj.ID, "block_id", block.ID, "error", err)
		return dailyreport.CommentBlockResponse{}, err
	}
	return dailyreport.ToBlockResponse(saved, now), nil
}

// AddWorkerComment implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) AddWorkerComment(ctx context.Context, caller auth.Identity, req dailyreport.WorkerCommentRequest) (dailyreport.WorkerComment, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.WorkerComment{}, err
	}
	proj, err := s.authorize(ctx, caller, req.ProjectID)
	if err != nil {
		return dailyreport.WorkerComment{}, err
	}

	now := s.now().UTC()
	date := proj.DateKey(now, s.defaultLoc)

	comment, err := s.reportRepo.AddWorkerComment(ctx, proj.ID, date, req.BlockID, dailyreport.WorkerComment{
		ID:        uuid.NewString(),
		UserID:    caller.UserID,
		Name:      caller.DisplayName,
		Text:      req.Text,
		CreatedAt: now,
	})
	if err != nil {
		return dailyreport.WorkerComment{}, err
	}

	s.notifyBlockOwner(ctx, proj, date, req.BlockID, caller, comment)
	return comment, nil
}

func (s *DailyReportServiceImpl) notifyBlockOwner(ctx context.Context, proj project.Project, date, blockID string, caller auth.Identity, comment dailyreport.WorkerComment) {
	if s.notifier == nil {
		return
	}
	block, err := s.reportRepo.GetBlock(ctx, proj.ID, date, blockID)
	if err != nil || block.JefeID == nil || *block.JefeID == caller.UserID {
		return
	}
	err = s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: *block.JefeID,
		SenderID:    &caller.UserID,
		Type:        notification.TypeBlockComment,
		Title:       proj.Name,
		Message:     fmt.Sprintf("%s (%s): %s", caller.DisplayName, blockID, comment.Text),
		Data:        map[string]interface{}{"project_id": proj.ID, "block_id": blockID},
	})
	if err != nil {
		slog.Warn("Failed to queue block comment notification", "project_id", proj.ID, "error", err)
	}
}

// NextPrompt implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) NextPrompt(ctx context.Context, projectID string) (dailyreport.Prompt, error) {
	proj, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return dailyreport.PromptNone, err
	}
	now := s.now()
	report, err := s.reportRepo.EnsureReport(ctx, proj.ID, proj.DateKey(now, s.defaultLoc))
	if err != nil {
		return dailyreport.PromptNone, fmt.Errorf("failed to load daily report: %w", err)
	}
	return dailyreport.NextPrompt(report, now, proj.Location(s.defaultLoc)), nil
}

// LockExpiredBlocks implements dailyreport.DailyReportService.
func (s *DailyReportServiceImpl) LockExpiredBlocks(ctx context.Context) (int64, error) {
	return s.reportRepo.LockExpiredBlocks(ctx, s.now().UTC().Add(-dailyreport.BlockDuration))
}
