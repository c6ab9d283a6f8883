package project

import (
	"context"
	"testing"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProjects struct {
	projects    map[string]project.Project
	assignments map[string][]string
}

func newMemProjects() *memProjects {
	return &memProjects{projects: map[string]project.Project{}, assignments: map[string][]string{}}
}

func (m *memProjects) Create(_ context.Context, p project.Project) (project.Project, error) {
	p.ID = uuid.NewString()
	m.projects[p.ID] = p
	return p, nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (m *memProjects) ListByUser(_ context.Context, userID string) ([]project.Project, error) {
	var out []project.Project
	for pid, users := range m.assignments {
		for _, u := range users {
			if u == userID {
				out = append(out, m.projects[pid])
			}
		}
	}
	return out, nil
}

func (m *memProjects) ReplaceAssignments(_ context.Context, projectID string, userIDs []string) error {
	m.assignments[projectID] = userIDs
	return nil
}

func (m *memProjects) IsAssigned(_ context.Context, projectID, userID string) (bool, error) {
	for _, u := range m.assignments[projectID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProjects) ListAssignedUserIDs(_ context.Context, projectID string) ([]string, error) {
	return m.assignments[projectID], nil
}

func TestCreate_DefaultsRadius(t *testing.T) {
	repo := newMemProjects()
	svc := NewProjectService(repo, 200)

	resp, err := svc.Create(context.Background(), project.CreateProjectRequest{
		Name:      "Obra Providencia",
		Latitude:  -33.4489,
		Longitude: -70.6693,
		Timezone:  "America/Santiago",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 200.0, resp.RadiusMeters)

	custom, err := svc.Create(context.Background(), project.CreateProjectRequest{Name: "Bodega", RadiusMeters: 80})
	require.NoError(t, err)
	assert.Equal(t, 80.0, custom.RadiusMeters)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewProjectService(newMemProjects(), 200)

	_, err := svc.Create(context.Background(), project.CreateProjectRequest{Name: "x", Latitude: 91})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), project.CreateProjectRequest{Name: "x", Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestReplaceAssignments_AndListMine(t *testing.T) {
	repo := newMemProjects()
	svc := NewProjectService(repo, 200)
	ctx := context.Background()

	p, err := svc.Create(ctx, project.CreateProjectRequest{Name: "Obra"})
	require.NoError(t, err)

	workerID := uuid.NewString()
	require.NoError(t, svc.ReplaceAssignments(ctx, project.ReplaceAssignmentsRequest{ProjectID: p.ID, UserIDs: []string{workerID}}))

	mine, err := svc.ListMine(ctx, auth.Identity{UserID: workerID, Role: user.RoleWorker})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)

	require.NoError(t, svc.ReplaceAssignments(ctx, project.ReplaceAssignmentsRequest{ProjectID: p.ID}))
	mine, err = svc.ListMine(ctx, auth.Identity{UserID: workerID, Role: user.RoleWorker})
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestReplaceAssignments_Errors(t *testing.T) {
	svc := NewProjectService(newMemProjects(), 200)
	ctx := context.Background()

	err := svc.ReplaceAssignments(ctx, project.ReplaceAssignmentsRequest{ProjectID: uuid.NewString()})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	id := uuid.NewString()
	err = svc.ReplaceAssignments(ctx, project.ReplaceAssignmentsRequest{ProjectID: uuid.NewString(), UserIDs: []string{id, id}})
	assert.Error(t, err)
}
