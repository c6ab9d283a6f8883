package project

import "context"

type ProjectRepository interface {
	Create(ctx context.Context, p Project) (Project, error)
	GetByID(ctx context.Context, id string) (Project, error)
	ListByUser(ctx context.Context, userID string) ([]Project, error)

	// ReplaceAssignments swaps the whole assignment set of a project atomically.
	ReplaceAssignments(ctx context.Context, projectID string, userIDs []string) error
	IsAssigned(ctx context.Context, projectID string, userID string) (bool, error)
	ListAssignedUserIDs(ctx context.Context, projectID string) ([]string, error)
}
