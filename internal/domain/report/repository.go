package report

import "context"

type ReportRepository interface {
	// SumHours aggregates closed sessions by user and project, ordered by user name then project name.
	SumHours(ctx context.Context, filter HoursFilter) ([]HoursRow, error)
}
