package report

import (
	"context"

	"github.com/faena-app/faena-backend/internal/domain/auth"
)

type ReportService interface {
	GetHours(ctx context.Context, caller auth.Identity, filter HoursFilter) (HoursReport, error)

	// ExportHours renders the same report as an XLSX workbook.
	ExportHours(ctx context.Context, caller auth.Identity, filter HoursFilter) (data []byte, filename string, err error)
}
