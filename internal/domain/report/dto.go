package report

import (
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

// ========================================
// HOURS REPORT
// ========================================

const maxRangeDays = 366

type HoursFilter struct {
	From      string
	To        string
	UserID    *string
	ProjectID *string
}

func (f *HoursFilter) Validate() error {
	var errs validator.ValidationErrors

	from, okFrom := validator.IsValidDate(f.From)
	if !okFrom {
		errs.Add("from", "from must be in YYYY-MM-DD format")
	}
	to, okTo := validator.IsValidDate(f.To)
	if !okTo {
		errs.Add("to", "to must be in YYYY-MM-DD format")
	}
	if okFrom && okTo {
		if to.Before(from) {
			errs.Add("to", "to must not be before from")
		} else if to.Sub(from) > maxRangeDays*24*time.Hour {
			errs.Add("to", "range must not exceed 366 days")
		}
	}
	if f.UserID != nil && !validator.IsValidUUID(*f.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	if f.ProjectID != nil && !validator.IsValidUUID(*f.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}

	return errs.Err()
}

// HoursRow totals closed sessions of one user on one project.
type HoursRow struct {
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name"`
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Sessions    int     `json:"sessions"`
	TotalHours  float64 `json:"total_hours"`
}

type HoursReport struct {
	From        string     `json:"from"`
	To          string     `json:"to"`
	GeneratedAt string     `json:"generated_at"`
	TotalHours  float64    `json:"total_hours"`
	Rows        []HoursRow `json:"rows"`
}
