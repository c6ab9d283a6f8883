package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

const projectColumns = `p.id, p.name, p.latitude, p.longitude, p.radius_meters, p.timezone, p.created_at, p.updated_at`

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Latitude,
		&p.Longitude,
		&p.RadiusMeters,
		&p.Timezone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// Create implements project.ProjectRepository.
func (r *projectRepositoryImpl) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO projects AS p (name, latitude, longitude, radius_meters, timezone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns

	created, err := scanProject(q.QueryRow(ctx, query, p.Name, p.Latitude, p.Longitude, p.RadiusMeters, p.Timezone))
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

// GetByID implements project.ProjectRepository.
func (r *projectRepositoryImpl) GetByID(ctx context.Context, id string) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProject(q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListByUser implements project.ProjectRepository.
func (r *projectRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		JOIN project_assignments pa ON pa.project_id = p.id
		WHERE pa.user_id = $1
		ORDER BY p.name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ReplaceAssignments implements project.ProjectRepository.
func (r *projectRepositoryImpl) ReplaceAssignments(ctx context.Context, projectID string, userIDs []string) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		if _, err := q.Exec(txCtx, `DELETE FROM project_assignments WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}

		_, err := q.Exec(txCtx, `
			INSERT INTO project_assignments (project_id, user_id)
			SELECT $1, unnest($2::uuid[])
		`, projectID, userIDs)
		if err != nil {
			if isForeignKeyViolation(err) {
				return project.ErrUnknownUsers
			}
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
		return nil
	})
}

// IsAssigned implements project.ProjectRepository.
func (r *projectRepositoryImpl) IsAssigned(ctx context.Context, projectID string, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_assignments WHERE project_id = $1 AND user_id = $2
		)
	`, projectID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}

// ListAssignedUserIDs implements project.ProjectRepository.
func (r *projectRepositoryImpl) ListAssignedUserIDs(ctx context.Context, projectID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT user_id FROM project_assignments WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned users: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan assigned user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
