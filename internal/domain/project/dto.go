package project

import (
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

type CreateProjectRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	Timezone     string  `json:"timezone"`
}

func (r *CreateProjectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if len(r.Name) > 200 {
		errs.Add("name", "name must not exceed 200 characters")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	if r.RadiusMeters < 0 {
		errs.Add("radius_meters", "radius_meters must not be negative")
	}
	if r.Timezone != "" && !validator.IsValidTimezone(r.Timezone) {
		errs.Add("timezone", "timezone must be an IANA zone such as America/Santiago")
	}

	return errs.Err()
}

type ReplaceAssignmentsRequest struct {
	ProjectID string   `json:"-"`
	UserIDs   []string `json:"user_ids"`
}

func (r *ReplaceAssignmentsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	seen := make(map[string]struct{}, len(r.UserIDs))
	for _, id := range r.UserIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("user_ids", "every user id must be a valid UUID")
			break
		}
		if _, dup := seen[id]; dup {
			errs.Add("user_ids", "user ids must be unique")
			break
		}
		seen[id] = struct{}{}
	}

	return errs.Err()
}

type ProjectResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	Timezone     string  `json:"timezone"`
	CreatedAt    string  `json:"created_at"`
}

func ToResponse(p Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		RadiusMeters: p.RadiusMeters,
		Timezone:     p.Timezone,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
