package dailyreport

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	projectID = "7f1c2a9e-3b4d-4e5f-8a6b-9c0d1e2f3a4b"
	workerID  = "11111111-1111-4111-8111-111111111111"
	jefeID    = "22222222-2222-4222-8222-222222222222"
	otherID   = "33333333-3333-4333-8333-333333333333"
)

var (
	jefe   = auth.Identity{UserID: jefeID, DisplayName: "Marta", Role: user.RoleJefe}
	worker = auth.Identity{UserID: workerID, DisplayName: "Pedro", Role: user.RoleWorker}
	admin  = auth.Identity{UserID: otherID, DisplayName: "Ops", Role: user.RoleAdmin}

	// 09:00 in Santiago
	startTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	today     = "2026-03-10"
)

type fixture struct {
	svc        *DailyReportServiceImpl
	reports    *mockReportRepo
	projects   *mockProjectRepo
	attendance *mockAttendanceRepo
	notifier   *mockNotifier
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		projects: newMockProjectRepo(project.Project{
			ID:        projectID,
			Name:      "Obra Providencia",
			Timezone:  "America/Santiago",
			Latitude:  -33.4489,
			Longitude: -70.6693,
		}),
		attendance: &mockAttendanceRepo{},
		notifier:   &mockNotifier{},
		clock:      startTime,
	}
	f.reports = newMockReportRepo(func() time.Time { return f.clock })
	f.projects.assign(projectID, workerID, jefeID)

	f.svc = NewDailyReportService(f.reports, f.projects, f.attendance, f.notifier, time.UTC)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) pushIn(userID string, at time.Time) {
	f.attendance.records = append(f.attendance.records, attendance.Record{
		ID:         "rec-" + userID,
		UserID:     userID,
		ProjectID:  projectID,
		Date:       today,
		PushInTime: at,
	})
}

func starterList() []dailyreport.ChecklistItem {
	bags := "bolsas"
	return []dailyreport.ChecklistItem{
		{ID: "A", Name: "Cemento", Qty: 5, Unit: &bags, Type: dailyreport.ItemMaterial},
		{ID: "B", Name: "Taladro", Qty: 2, Type: dailyreport.ItemTool},
	}
}

func diff(n int) *int { return &n }

// ==================== Report & stock ====================

func TestGetTodayReport_CreatesEmptyReport(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetTodayReport(context.Background(), worker, projectID)
	require.NoError(t, err)

	assert.Equal(t, today, resp.Date)
	assert.Nil(t, resp.Checklist)
	assert.False(t, resp.ChecklistSeeded)
	assert.Empty(t, resp.Comments)

	_, err = f.reports.GetReport(context.Background(), projectID, today)
	assert.NoError(t, err, "report should be created on first access")
}

func TestGetTodayReport_SeedsChecklistFromLiveStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.ReplaceLiveStock(context.Background(), projectID, starterList())
	require.NoError(t, err)

	resp, err := f.svc.GetTodayReport(context.Background(), jefe, projectID)
	require.NoError(t, err)

	require.NotNil(t, resp.Checklist)
	assert.True(t, resp.ChecklistSeeded)
	assert.Equal(t, starterList(), resp.Checklist.List)

	stored, err := f.reports.GetReport(context.Background(), projectID, today)
	require.NoError(t, err)
	assert.Nil(t, stored.Checklist, "seeded checklist must not be persisted")
}

func TestGetTodayReport_RequiresAssignment(t *testing.T) {
	f := newFixture(t)
	outsider := auth.Identity{UserID: otherID, Role: user.RoleWorker}

	_, err := f.svc.GetTodayReport(context.Background(), outsider, projectID)
	assert.ErrorIs(t, err, project.ErrNotAssigned)

	_, err = f.svc.GetTodayReport(context.Background(), admin, projectID)
	assert.NoError(t, err)
}

func TestSaveChecklist_ReplacesLiveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.SaveChecklist(ctx, jefe, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: starterList()})
	require.NoError(t, err)
	require.NotNil(t, resp.Checklist)
	assert.False(t, resp.ChecklistSeeded)
	assert.Equal(t, jefeID, resp.Checklist.JefeID)

	stock, err := f.svc.GetLiveStock(ctx, worker, projectID)
	require.NoError(t, err)
	assert.Equal(t, starterList(), stock.List)
	assert.NotNil(t, stock.UpdatedAt)
}

func TestSaveChecklist_WorkerForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SaveChecklist(context.Background(), worker, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: starterList()})
	assert.ErrorIs(t, err, dailyreport.ErrJefeRequired)
}

func TestSaveChecklist_InvalidItems(t *testing.T) {
	f := newFixture(t)
	list := starterList()
	list[1].ID = "A"

	_, err := f.svc.SaveChecklist(context.Background(), jefe, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: list})
	assert.Error(t, err)

	stock, _ := f.reports.GetLiveStock(context.Background(), projectID)
	assert.Empty(t, stock.List)
}

func TestSaveRecount_AppliesDeltasToLiveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SaveChecklist(ctx, jefe, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: starterList()})
	require.NoError(t, err)

	resp, err := f.svc.SaveRecount(ctx, jefe, dailyreport.SaveRecountRequest{
		ProjectID: projectID,
		Changes: []dailyreport.RecountChange{
			{ID: "A", Diff: diff(-2)},
			{ID: "missing", Diff: diff(4)},
		},
	})
	require.NoError(t, err)

	// 09:00 local falls in the morning phase
	require.NotNil(t, resp.RecountMorning)
	assert.Nil(t, resp.RecountEvening)
	assert.Equal(t, []dailyreport.Delta{{ID: "A", Diff: -2}, {ID: "missing", Diff: 4}}, resp.RecountMorning.List)

	stock, err := f.reports.GetLiveStock(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, stock.List, 2)
	assert.Equal(t, 3, stock.List[0].Qty)
	assert.Equal(t, 2, stock.List[1].Qty)
}

func TestSaveRecount_UsedAndManualShareDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SaveChecklist(ctx, jefe, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: starterList()})
	require.NoError(t, err)

	resp, err := f.svc.SaveRecount(ctx, jefe, dailyreport.SaveRecountRequest{
		ProjectID: projectID,
		Phase:     dailyreport.PhaseEvening,
		Changes: []dailyreport.RecountChange{
			{ID: "A", Diff: diff(1)},
			{ID: "A", Used: true},
			{ID: "B", Used: true},
			{ID: "B", Diff: diff(-1)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.RecountEvening)
	assert.Equal(t, []dailyreport.Delta{{ID: "A", Diff: -5}, {ID: "B", Diff: -1}}, resp.RecountEvening.List)

	stock, _ := f.reports.GetLiveStock(ctx, projectID)
	assert.Equal(t, 0, stock.List[0].Qty)
	assert.Equal(t, 1, stock.List[1].Qty)
}

func TestSaveRecount_StockFailureKeepsRecount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.SaveChecklist(ctx, jefe, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: starterList()})
	require.NoError(t, err)

	f.reports.stockErr = errStockDown
	_, err = f.svc.SaveRecount(ctx, jefe, dailyreport.SaveRecountRequest{
		ProjectID: projectID,
		Changes:   []dailyreport.RecountChange{{ID: "A", Diff: diff(-1)}},
	})
	assert.ErrorIs(t, err, dailyreport.ErrStockWriteFailed)
	assert.True(t, errors.Is(err, errStockDown))

	stored, _ := f.reports.GetReport(ctx, projectID, today)
	assert.NotNil(t, stored.RecountMorning)
}

// ==================== Comment blocks ====================

func TestUpsertComment_WallClockBlock(t *testing.T) {
	f := newFixture(t)
	f.clock = startTime.Add(25 * time.Minute) // 09:25 local

	resp, err := f.svc.UpsertComment(context.Background(), jefe, dailyreport.CommentRequest{ProjectID: projectID, Text: "Llegó el hormigón"})
	require.NoError(t, err)

	assert.Equal(t, "09:00", resp.ID)
	require.NotNil(t, resp.JefeNote)
	assert.Equal(t, "Llegó el hormigón", *resp.JefeNote)
	assert.True(t, resp.Editable)
}

func TestUpsertJefeNote_RequiresPushIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpsertJefeNote(context.Background(), jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "nota"})
	assert.ErrorIs(t, err, dailyreport.ErrNotPushedIn)
}

func TestUpsertJefeNote_PushInRelativeBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pushIn := startTime.Add(-45 * time.Minute) // 08:15 local
	f.pushIn(jefeID, pushIn)

	first, err := f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "inicio"})
	require.NoError(t, err)
	assert.Equal(t, "08:15", first.ID)

	f.clock = pushIn.Add(121 * time.Minute)
	second, err := f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "segundo bloque"})
	require.NoError(t, err)
	assert.Equal(t, "10:15", second.ID)

	report, err := f.svc.GetTodayReport(ctx, worker, projectID)
	require.NoError(t, err)
	require.Len(t, report.Comments, 2)
	assert.False(t, report.Comments[0].Editable)
	assert.True(t, report.Comments[1].Editable)
}

func TestUpsertJefeNote_LockedBlockRefusesEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pushIn(jefeID, startTime.Add(-10*time.Minute))

	resp, err := f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "cierre", LockNow: true})
	require.NoError(t, err)
	assert.True(t, resp.Locked)
	assert.False(t, resp.Editable)

	_, err = f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "cambio"})
	assert.ErrorIs(t, err, dailyreport.ErrBlockLocked)
}

func TestAddWorkerComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pushIn(jefeID, startTime)

	_, err := f.svc.AddWorkerComment(ctx, worker, dailyreport.WorkerCommentRequest{ProjectID: projectID, BlockID: "09:00", Text: "ok"})
	assert.ErrorIs(t, err, dailyreport.ErrBlockNotFound)

	_, err = f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "turno mañana"})
	require.NoError(t, err)

	comment, err := f.svc.AddWorkerComment(ctx, worker, dailyreport.WorkerCommentRequest{ProjectID: projectID, BlockID: "09:00", Text: "Falta arena"})
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "Pedro", comment.Name)

	report, err := f.svc.GetTodayReport(ctx, jefe, projectID)
	require.NoError(t, err)
	require.Len(t, report.Comments, 1)
	require.Len(t, report.Comments[0].Comments, 1)
	assert.Equal(t, "Falta arena", report.Comments[0].Comments[0].Text)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, jefeID, f.notifier.sent[0].RecipientID)
	assert.Equal(t, notification.TypeBlockComment, f.notifier.sent[0].Type)
}

func TestAddWorkerComment_LockedBlockStillAcceptsReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pushIn(jefeID, startTime)

	_, err := f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "x", LockNow: true})
	require.NoError(t, err)

	_, err = f.svc.AddWorkerComment(ctx, worker, dailyreport.WorkerCommentRequest{ProjectID: projectID, BlockID: "09:00", Text: "visto"})
	assert.NoError(t, err)
}

// ==================== Prompts & jobs ====================

func TestNextPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prompt, err := f.svc.NextPrompt(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, dailyreport.PromptChecklist, prompt)

	_, err = f.svc.SaveChecklist(ctx, jefe, dailyreport.SaveChecklistRequest{ProjectID: projectID, List: starterList()})
	require.NoError(t, err)

	prompt, err = f.svc.NextPrompt(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, dailyreport.PromptRecountMorning, prompt)

	f.clock = startTime.Add(6 * time.Hour) // 15:00 local
	prompt, err = f.svc.NextPrompt(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, dailyreport.PromptRecountEvening, prompt)
}

func TestLockExpiredBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pushIn(jefeID, startTime)

	_, err := f.svc.UpsertJefeNote(ctx, jefe, dailyreport.JefeNoteRequest{ProjectID: projectID, Text: "x"})
	require.NoError(t, err)

	f.clock = startTime.Add(time.Hour)
	n, err := f.svc.LockExpiredBlocks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = startTime.Add(2*time.Hour + time.Minute)
	n, err = f.svc.LockExpiredBlocks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	block, err := f.reports.GetBlock(ctx, projectID, today, "09:00")
	require.NoError(t, err)
	assert.True(t, block.Locked)
}
