package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/faena-app/faena-backend/internal/domain/report"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	GetHours(w http.ResponseWriter, r *http.Request)
	ExportHours(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func hoursFilter(r *http.Request) report.HoursFilter {
	return report.HoursFilter{
		From:      r.URL.Query().Get("from"),
		To:        r.URL.Query().Get("to"),
		UserID:    queryPtr(r, "user_id"),
		ProjectID: queryPtr(r, "project_id"),
	}
}

// GetHours handles GET /reports/hours
func (h *reportHandlerImpl) GetHours(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	hours, err := h.reportService.GetHours(r.Context(), identity, hoursFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, hours)
}

// ExportHours handles GET /reports/hours/export
func (h *reportHandlerImpl) ExportHours(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	data, filename, err := h.reportService.ExportHours(r.Context(), identity, hoursFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
