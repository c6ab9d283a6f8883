package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/attendance"
	"github.com/faena-app/faena-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, a.project_id, a.date::text, a.push_in_time, a.push_out_time,
	a.total_hours, a.latitude, a.longitude, a.close_reason, a.created_at, a.updated_at`

func scanRecord(row pgx.Row, extra ...any) (attendance.Record, error) {
	var rec attendance.Record
	dest := []any{
		&rec.ID, &rec.UserID, &rec.ProjectID, &rec.Date, &rec.PushInTime, &rec.PushOutTime,
		&rec.TotalHours, &rec.Latitude, &rec.Longitude, &rec.CloseReason, &rec.CreatedAt, &rec.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return rec, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records AS a (
			user_id, project_id, date, push_in_time, total_hours, latitude, longitude
		) VALUES (
			$1, $2, $3::date, $4, 0, $5, $6
		) RETURNING ` + attendanceColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.UserID,
		rec.ProjectID,
		rec.Date,
		rec.PushInTime,
		rec.Latitude,
		rec.Longitude,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyPushedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return created, nil
}

// GetByUserProjectDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserProjectDate(ctx context.Context, userID, projectID, date string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.user_id = $1
		  AND a.project_id = $2
		  AND a.date = $3::date
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, projectID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// Close implements attendance.AttendanceRepository.
func (a *attendanceRepository) Close(ctx context.Context, id string, pushOut time.Time, totalHours float64, reason attendance.CloseReason) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records AS a
		SET push_out_time = $2,
			total_hours = $3,
			close_reason = $4,
			updated_at = NOW()
		WHERE a.id = $1
		  AND a.push_out_time IS NULL
		RETURNING ` + attendanceColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, id, pushOut, totalHours, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrSessionClosed
		}
		return attendance.Record{}, fmt.Errorf("failed to close attendance record: %w", err)
	}
	return rec, nil
}

// ListOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpen(ctx context.Context) ([]attendance.Record, error) {
	return a.listOpen(ctx, `WHERE a.push_out_time IS NULL`)
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Record, error) {
	return a.listOpen(ctx, `WHERE a.push_out_time IS NULL AND a.push_in_time < $1`, cutoff)
}

func (a *attendanceRepository) listOpen(ctx context.Context, where string, args ...any) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT `+attendanceColumns+` FROM attendance_records a `+where+` ORDER BY a.push_in_time ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "WHERE a.user_id = $1"
	args := []any{userID}
	argIdx := 2

	if filter.ProjectID != nil {
		baseWhere += fmt.Sprintf(" AND a.project_id = $%d", argIdx)
		args = append(args, *filter.ProjectID)
		argIdx++
	}
	if filter.StartDate != nil {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_records a `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, p.name
		FROM attendance_records a
		JOIN projects p ON p.id = a.project_id
		%s
		ORDER BY a.date DESC, a.push_in_time DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		var projectName string
		rec, err := scanRecord(rows, &projectName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		rec.ProjectName = &projectName
		records = append(records, rec)
	}
	return records, total, rows.Err()
}
