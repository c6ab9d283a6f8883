package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const hoursSheet = "Horas"

type ReportServiceImpl struct {
	reportRepo  report.ReportRepository
	projectRepo project.ProjectRepository
	now         func() time.Time
}

func NewReportService(reportRepo report.ReportRepository, projectRepo project.ProjectRepository) report.ReportService {
	return &ReportServiceImpl{
		reportRepo:  reportRepo,
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// scope narrows the filter to what the caller may see: admins everything, supervisors one
// assigned project, workers their own hours.
func (s *ReportServiceImpl) scope(ctx context.Context, caller auth.Identity, filter *report.HoursFilter) error {
	switch {
	case caller.IsAdmin():
		return nil
	case caller.IsJefe():
		if filter.ProjectID == nil {
			return report.ErrProjectScopeRequired
		}
		assigned, err := s.projectRepo.IsAssigned(ctx, *filter.ProjectID, caller.UserID)
		if err != nil {
			return fmt.Errorf("failed to check project assignment: %w", err)
		}
		if !assigned {
			return project.ErrNotAssigned
		}
		return nil
	default:
		self := caller.UserID
		filter.UserID = &self
		return nil
	}
}

// GetHours implements report.ReportService.
func (s *ReportServiceImpl) GetHours(ctx context.Context, caller auth.Identity, filter report.HoursFilter) (report.HoursReport, error) {
	if err := filter.Validate(); err != nil {
		return report.HoursReport{}, err
	}
	if err := s.scope(ctx, caller, &filter); err != nil {
		return report.HoursReport{}, err
	}

	rows, err := s.reportRepo.SumHours(ctx, filter)
	if err != nil {
		return report.HoursReport{}, fmt.Errorf("failed to get hours data: %w", err)
	}

	var total float64
	for i := range rows {
		rows[i].TotalHours = round2(rows[i].TotalHours)
		total += rows[i].TotalHours
	}

	return report.HoursReport{
		From:        filter.From,
		To:          filter.To,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		TotalHours:  round2(total),
		Rows:        rows,
	}, nil
}

// ExportHours implements report.ReportService.
func (s *ReportServiceImpl) ExportHours(ctx context.Context, caller auth.Identity, filter report.HoursFilter) ([]byte, string, error) {
	hours, err := s.GetHours(ctx, caller, filter)
	if err != nil {
		return nil, "", err
	}

	data, err := renderHoursWorkbook(hours)
	if err != nil {
		slog.Error("Failed to render hours workbook", "from", filter.From, "to", filter.To, "error", err)
		return nil, "", fmt.Errorf("%w: %w", report.ErrExportFailed, err)
	}

	filename := fmt.Sprintf("horas_%s_%s.xlsx", hours.From, hours.To)
	return data, filename, nil
}

func renderHoursWorkbook(hours report.HoursReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(hoursSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetColWidth(hoursSheet, "A", "B", 28)
	f.SetColWidth(hoursSheet, "C", "D", 12)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(hoursSheet, "A1", fmt.Sprintf("Horas trabajadas %s a %s", hours.From, hours.To))
	f.MergeCell(hoursSheet, "A1", "D1")

	headers := []string{"Trabajador", "Proyecto", "Jornadas", "Horas"}
	for i, h := range headers {
		c, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(hoursSheet, c, h)
	}
	f.SetCellStyle(hoursSheet, "A2", "D2", headerStyle)

	row := 3
	for _, r := range hours.Rows {
		f.SetCellValue(hoursSheet, cell("A", row), r.UserName)
		f.SetCellValue(hoursSheet, cell("B", row), r.ProjectName)
		f.SetCellValue(hoursSheet, cell("C", row), r.Sessions)
		f.SetCellValue(hoursSheet, cell("D", row), r.TotalHours)
		row++
	}
	f.SetCellValue(hoursSheet, cell("C", row), "Total")
	f.SetCellValue(hoursSheet, cell("D", row), hours.TotalHours)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
