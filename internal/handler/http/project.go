package http

import (
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ProjectHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ReplaceAssignments(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
}

type projectHandlerImpl struct {
	projectService project.ProjectService
}

func NewProjectHandler(projectService project.ProjectService) ProjectHandler {
	return &projectHandlerImpl{projectService: projectService}
}

// Create handles POST /projects
func (h *projectHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req project.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.projectService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Project created", created)
}

// ReplaceAssignments handles PUT /projects/{projectID}/assignments
func (h *projectHandlerImpl) ReplaceAssignments(w http.ResponseWriter, r *http.Request) {
	var req project.ReplaceAssignmentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	if err := h.projectService.ReplaceAssignments(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignments updated", nil)
}

// ListMine handles GET /projects/mine
func (h *projectHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	projects, err := h.projectService.ListMine(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, projects)
}
