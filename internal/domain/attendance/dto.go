package attendance

import (
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type PushInRequest struct {
	ProjectID string `json:"project_id"`
}

func (r *PushInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ProjectID) {
		errs.Add("project_id", "project_id is required")
	} else if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}

	return errs.Err()
}

type PushOutRequest struct {
	ProjectID string `json:"project_id"`
}

func (r *PushOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ProjectID) {
		errs.Add("project_id", "project_id is required")
	} else if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	ProjectID   string  `json:"project_id"`
	ProjectName *string `json:"project_name,omitempty"`
	Date        string  `json:"date"`
	PushInTime  string  `json:"push_in_time"`
	PushOutTime *string `json:"push_out_time"`
	TotalHours  float64 `json:"total_hours"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	CloseReason *string `json:"close_reason,omitempty"`
	State       State   `json:"state"`
}

// PushInResponse tells a supervisor which daily report step is pending.
type PushInResponse struct {
	Attendance     AttendanceResponse `json:"attendance"`
	DistanceMeters float64            `json:"distance_meters"`
	RadiusMeters   float64            `json:"radius_meters"`
	Prompt         string             `json:"prompt"`
}

type TodayResponse struct {
	Date       string              `json:"date"`
	State      State               `json:"state"`
	Attendance *AttendanceResponse `json:"attendance"`
}

type MyAttendanceFilter struct {
	ProjectID *string
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.ProjectID != nil && !validator.IsValidUUID(*f.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if f.StartDate != nil && f.EndDate != nil && *f.StartDate > *f.EndDate {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	return errs.Err()
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func ToResponse(r Record) AttendanceResponse {
	resp := AttendanceResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		ProjectID:   r.ProjectID,
		ProjectName: r.ProjectName,
		Date:        r.Date,
		PushInTime:  r.PushInTime.Format(time.RFC3339),
		TotalHours:  r.TotalHours,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		State:       r.State(),
	}
	if r.PushOutTime != nil {
		out := r.PushOutTime.Format(time.RFC3339)
		resp.PushOutTime = &out
	}
	if r.CloseReason != nil {
		reason := string(*r.CloseReason)
		resp.CloseReason = &reason
	}
	return resp
}
