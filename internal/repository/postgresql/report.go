package postgresql

import (
	"context"
	"fmt"

	"github.com/faena-app/faena-backend/internal/domain/report"
	"github.com/faena-app/faena-backend/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// SumHours totals closed sessions per user and project inside the date range
func (r *reportRepositoryImpl) SumHours(ctx context.Context, filter report.HoursFilter) ([]report.HoursRow, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE a.push_out_time IS NOT NULL AND a.date >= $1::date AND a.date <= $2::date"
	args := []any{filter.From, filter.To}
	argIdx := 3

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.ProjectID != nil {
		where += fmt.Sprintf(" AND a.project_id = $%d", argIdx)
		args = append(args, *filter.ProjectID)
	}

	query := `
		SELECT
			u.id,
			u.display_name,
			p.id,
			p.name,
			COUNT(a.id) AS sessions,
			COALESCE(SUM(a.total_hours), 0) AS total_hours
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		JOIN projects p ON p.id = a.project_id
		` + where + `
		GROUP BY u.id, u.display_name, p.id, p.name
		ORDER BY u.display_name ASC, p.name ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum hours: %w", err)
	}
	defer rows.Close()

	result := []report.HoursRow{}
	for rows.Next() {
		var row report.HoursRow
		if err := rows.Scan(&row.UserID, &row.UserName, &row.ProjectID, &row.ProjectName, &row.Sessions, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan hours row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
