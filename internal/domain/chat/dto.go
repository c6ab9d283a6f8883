package chat

import (
	"time"

	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type SendMessageRequest struct {
	ProjectID string `json:"-"`
	Text      string `json:"text"`
}

func (r *SendMessageRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ProjectID) {
		errs.Add("project_id", "project_id must be a valid UUID")
	}
	if validator.IsEmpty(r.Text) {
		errs.Add("text", ErrEmptyMessage.Error())
	}
	if len(r.Text) > 4000 {
		errs.Add("text", "text must not exceed 4000 characters")
	}

	return errs.Err()
}

type MessageResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func ToResponse(m Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Name:      m.Name,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
