package http

import (
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/dailyreport"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DailyReportHandler interface {
	GetToday(w http.ResponseWriter, r *http.Request)
	SaveChecklist(w http.ResponseWriter, r *http.Request)
	SaveRecount(w http.ResponseWriter, r *http.Request)
	GetStock(w http.ResponseWriter, r *http.Request)
	UpsertComment(w http.ResponseWriter, r *http.Request)
	UpsertJefeNote(w http.ResponseWriter, r *http.Request)
	AddReply(w http.ResponseWriter, r *http.Request)
}

type dailyReportHandlerImpl struct {
	reportService dailyreport.DailyReportService
}

func NewDailyReportHandler(reportService dailyreport.DailyReportService) DailyReportHandler {
	return &dailyReportHandlerImpl{reportService: reportService}
}

// GetToday handles GET /projects/{projectID}/report/today
func (h *dailyReportHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	report, err := h.reportService.GetTodayReport(r.Context(), identity, chi.URLParam(r, "projectID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// SaveChecklist handles POST /projects/{projectID}/report/checklist
func (h *dailyReportHandlerImpl) SaveChecklist(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dailyreport.SaveChecklistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	report, err := h.reportService.SaveChecklist(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checklist saved", report)
}

// SaveRecount handles POST /projects/{projectID}/report/recount
func (h *dailyReportHandlerImpl) SaveRecount(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dailyreport.SaveRecountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	report, err := h.reportService.SaveRecount(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Recount saved", report)
}

// GetStock handles GET /projects/{projectID}/stock
func (h *dailyReportHandlerImpl) GetStock(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	stock, err := h.reportService.GetLiveStock(r.Context(), identity, chi.URLParam(r, "projectID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stock)
}

// UpsertComment handles POST /projects/{projectID}/comments
func (h *dailyReportHandlerImpl) UpsertComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dailyreport.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	block, err := h.reportService.UpsertComment(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, block)
}

// UpsertJefeNote handles POST /projects/{projectID}/comments/note
func (h *dailyReportHandlerImpl) UpsertJefeNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dailyreport.JefeNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	block, err := h.reportService.UpsertJefeNote(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, block)
}

// AddReply handles POST /projects/{projectID}/comments/{blockID}/replies
func (h *dailyReportHandlerImpl) AddReply(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req dailyreport.WorkerCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")
	req.BlockID = chi.URLParam(r, "blockID")

	comment, err := h.reportService.AddWorkerComment(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Comment added", comment)
}
