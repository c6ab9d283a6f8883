package http

import (
	"net/http"

	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/faena-app/faena-backend/internal/pkg/cron"
)

// HealthSource exposes runtime counters of the attendance tracker, the event hub and the job scheduler.
type HealthSource interface {
	MonitorCount() int
	StreamSubscribers() int
	JobStatus() []cron.JobStatus
}

type HealthHandler interface {
	Health(w http.ResponseWriter, r *http.Request)
}

type healthHandlerImpl struct {
	source HealthSource
}

func NewHealthHandler(source HealthSource) HealthHandler {
	return &healthHandlerImpl{source: source}
}

type healthResponse struct {
	Status            string           `json:"status"`
	ActiveMonitors    int              `json:"active_monitors"`
	StreamSubscribers int              `json:"stream_subscribers"`
	Jobs              []cron.JobStatus `json:"jobs"`
}

// Health handles GET /health
func (h *healthHandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, healthResponse{
		Status:            "ok",
		ActiveMonitors:    h.source.MonitorCount(),
		StreamSubscribers: h.source.StreamSubscribers(),
		Jobs:              h.source.JobStatus(),
	})
}
