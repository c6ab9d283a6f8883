package project

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/project"
)

type ProjectServiceImpl struct {
	projectRepo   project.ProjectRepository
	defaultRadius float64
}

func NewProjectService(projectRepo project.ProjectRepository, defaultRadius float64) project.ProjectService {
	return &ProjectServiceImpl{
		projectRepo:   projectRepo,
		defaultRadius: defaultRadius,
	}
}

func (s *ProjectServiceImpl) Create(ctx context.Context, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = s.defaultRadius
	}

	created, err := s.projectRepo.Create(ctx, project.Project{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: radius,
		Timezone:     req.Timezone,
	})
	if err != nil {
		return project.ProjectResponse{}, fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("Project created", "project_id", created.ID, "name", created.Name, "radius_m", created.RadiusMeters)
	return project.ToResponse(created), nil
}

func (s *ProjectServiceImpl) ReplaceAssignments(ctx context.Context, req project.ReplaceAssignmentsRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		return err
	}

	userIDs := req.UserIDs
	if userIDs == nil {
		userIDs = []string{}
	}
	if err := s.projectRepo.ReplaceAssignments(ctx, req.ProjectID, userIDs); err != nil {
		return err
	}

	slog.Info("Project assignments replaced", "project_id", req.ProjectID, "users", len(userIDs))
	return nil
}

func (s *ProjectServiceImpl) ListMine(ctx context.Context, caller auth.Identity) ([]project.ProjectResponse, error) {
	projects, err := s.projectRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	resp := make([]project.ProjectResponse, len(projects))
	for i, p := range projects {
		resp[i] = project.ToResponse(p)
	}
	return resp, nil
}
