package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/chat"
	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/domain/report"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/faena-app/faena-backend/internal/pkg/cron"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"github.com/faena-app/faena-backend/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testProjectID     = "7f1c2a9e-3b4d-4e5f-8a6b-9c0d1e2f3a4b"
)

// ==================== Stub services ====================

type stubAuth struct{ auth.AuthService }

func (stubAuth) Login(_ context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if req.Password != "password123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{AccessToken: "token", User: auth.Identity{UserID: "u1"}}, nil
}

type stubProjects struct{ project.ProjectService }

func (stubProjects) Create(_ context.Context, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	return project.ProjectResponse{ID: testProjectID, Name: req.Name}, nil
}

type stubAttendance struct {
	attendance.AttendanceService
	lastCaller auth.Identity
	pushInErr  error
}

func (s *stubAttendance) PushIn(_ context.Context, caller auth.Identity, req attendance.PushInRequest) (attendance.PushInResponse, error) {
	s.lastCaller = caller
	if s.pushInErr != nil {
		return attendance.PushInResponse{}, s.pushInErr
	}
	return attendance.PushInResponse{
		Attendance: attendance.AttendanceResponse{ProjectID: req.ProjectID, State: attendance.StateOpen},
		Prompt:     string(dailyreport.PromptNone),
	}, nil
}

type stubDailyReport struct {
	dailyreport.DailyReportService
	lastChecklist dailyreport.SaveChecklistRequest
}

func (s *stubDailyReport) SaveChecklist(_ context.Context, _ auth.Identity, req dailyreport.SaveChecklistRequest) (dailyreport.ReportResponse, error) {
	s.lastChecklist = req
	return dailyreport.ReportResponse{ProjectID: req.ProjectID}, nil
}

type stubChat struct{ chat.ChatService }

type stubReports struct{ report.ReportService }

func (stubReports) ExportHours(context.Context, auth.Identity, report.HoursFilter) ([]byte, string, error) {
	return []byte("PK"), "horas.xlsx", nil
}

type stubReporter struct{}

func (stubReporter) Report(context.Context, string, location.ReportRequest) (location.Position, error) {
	return location.Position{}, location.ErrInvalidCoordinates
}

type stubHealth struct{}

func (stubHealth) MonitorCount() int { return 3 }

func (stubHealth) StreamSubscribers() int { return 2 }

func (stubHealth) JobStatus() []cron.JobStatus { return []cron.JobStatus{{Name: "auto_close_stale_sessions", Runs: 1}} }

// ==================== Fixture ====================

type routerFixture struct {
	router     *chi.Mux
	jwt        jwt.Service
	attendance *stubAttendance
	reports    *stubDailyReport
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	f := &routerFixture{jwt: jwtService, attendance: &stubAttendance{}, reports: &stubDailyReport{}}

	f.router = NewRouter(RouterConfig{Env: "test", AllowedOrigins: []string{"*"}}, jwtService, Handlers{
		Auth:        NewAuthHandler(stubAuth{}),
		Project:     NewProjectHandler(stubProjects{}),
		Location:    NewLocationHandler(stubReporter{}),
		Attendance:  NewAttendanceHandler(f.attendance, jwtService, sse.NewHub()),
		DailyReport: NewDailyReportHandler(f.reports),
		Chat:        NewChatHandler(stubChat{}, jwtService),
		Report:      NewReportHandler(stubReports{}),
		Health:      NewHealthHandler(stubHealth{}),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, role user.Role, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := f.jwt.GenerateAccessToken("user-"+string(role), "Test "+string(role), role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ==================== Tests ====================

func TestLogin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@b.cl", "password": "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@b.cl", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPushIn_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/push-in", "", map[string]string{"project_id": testProjectID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPushIn_PassesIdentity(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/push-in", user.RoleWorker, map[string]string{"project_id": testProjectID})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-worker", f.attendance.lastCaller.UserID)
	assert.Equal(t, user.RoleWorker, f.attendance.lastCaller.Role)
	assert.Equal(t, "Test worker", f.attendance.lastCaller.DisplayName)
}

func TestPushIn_OutOfRange(t *testing.T) {
	f := newRouterFixture(t)
	f.attendance.pushInErr = &attendance.OutOfRangeError{Distance: 350, Radius: 200}

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/push-in", user.RoleWorker, map[string]string{"project_id": testProjectID})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "OUT_OF_RANGE", resp.Error.Code)
	assert.Equal(t, "350.00", resp.Error.Details["distance_meters"])
}

func TestPushIn_PermissionDenied(t *testing.T) {
	f := newRouterFixture(t)
	f.attendance.pushInErr = attendance.ErrPermissionDenied

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/push-in", user.RoleWorker, map[string]string{"project_id": testProjectID})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveChecklist_SupervisorOnly(t *testing.T) {
	f := newRouterFixture(t)
	path := "/api/v1/projects/" + testProjectID + "/report/checklist"
	body := map[string]interface{}{"list": []map[string]interface{}{{"id": "A", "name": "Cemento", "qty": 5, "type": "mat"}}}

	rec := f.do(t, http.MethodPost, path, user.RoleWorker, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, path, user.RoleJefe, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testProjectID, f.reports.lastChecklist.ProjectID)
	require.Len(t, f.reports.lastChecklist.List, 1)
	assert.Equal(t, 5, f.reports.lastChecklist.List[0].Qty)
}

func TestCreateProject_AdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]interface{}{"name": "Obra", "latitude": -33.4, "longitude": -70.6}

	rec := f.do(t, http.MethodPost, "/api/v1/projects", user.RoleJefe, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/projects", user.RoleAdmin, body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLocationReport_InvalidCoordinates(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/location", user.RoleWorker, map[string]interface{}{"latitude": 200, "longitude": 0, "permission_granted": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHours_Xlsx(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/reports/hours/export?from=2026-03-01&to=2026-03-31", user.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "horas.xlsx")

	rec = f.do(t, http.MethodGet, "/api/v1/reports/hours/export?from=2026-03-01&to=2026-03-31", user.RoleWorker, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatStream_RejectsAccessToken(t *testing.T) {
	f := newRouterFixture(t)
	token, _, err := f.jwt.GenerateAccessToken("u1", "Pedro", user.RoleWorker)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stream/projects/"+testProjectID+"/chat?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stream/attendance", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_monitors":3`)
	assert.Contains(t, rec.Body.String(), `"stream_subscribers":2`)
}
