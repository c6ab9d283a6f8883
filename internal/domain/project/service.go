package project

import (
	"context"

	"github.com/faena-app/faena-backend/internal/domain/auth"
)

type ProjectService interface {
	Create(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error)
	ReplaceAssignments(ctx context.Context, req ReplaceAssignmentsRequest) error
	ListMine(ctx context.Context, caller auth.Identity) ([]ProjectResponse, error)
}
