package http

import (
	"context"
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/location"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
)

// PositionReporter accepts device position reports.
type PositionReporter interface {
	Report(ctx context.Context, userID string, req location.ReportRequest) (location.Position, error)
}

type LocationHandler interface {
	Report(w http.ResponseWriter, r *http.Request)
}

type locationHandlerImpl struct {
	reporter PositionReporter
}

func NewLocationHandler(reporter PositionReporter) LocationHandler {
	return &locationHandlerImpl{reporter: reporter}
}

// Report handles POST /location
func (h *locationHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var req location.ReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	position, err := h.reporter.Report(r.Context(), identity.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, position)
}
