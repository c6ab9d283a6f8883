package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/chat"
	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/project"
	"github.com/faena-app/faena-backend/internal/pkg/sse"
	"github.com/google/uuid"
)

const eventMessage = "message"

type ChatServiceImpl struct {
	messageRepo chat.MessageRepository
	projectRepo project.ProjectRepository
	notifier    notification.Service
	hub         *sse.Hub
	now         func() time.Time
}

func NewChatService(
	messageRepo chat.MessageRepository,
	projectRepo project.ProjectRepository,
	notifier notification.Service,
	hub *sse.Hub,
) chat.ChatService {
	return &ChatServiceImpl{
		messageRepo: messageRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
		hub:         hub,
		now:         time.Now,
	}
}

func (s *ChatServiceImpl) authorize(ctx context.Context, caller auth.Identity, projectID string) (project.Project, error) {
	proj, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}
	if caller.IsAdmin() {
		return proj, nil
	}
	assigned, err := s.projectRepo.IsAssigned(ctx, proj.ID, caller.UserID)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to check project assignment: %w", err)
	}
	if !assigned {
		return project.Project{}, project.ErrNotAssigned
	}
	return proj, nil
}

// Send persists the message, broadcasts it to stream subscribers and pushes it to the rest of the crew.
func (s *ChatServiceImpl) Send(ctx context.Context, caller auth.Identity, req chat.SendMessageRequest) (chat.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return chat.MessageResponse{}, err
	}
	proj, err := s.authorize(ctx, caller, req.ProjectID)
	if err != nil {
		return chat.MessageResponse{}, err
	}

	msg, err := s.messageRepo.Create(ctx, chat.Message{
		ID:        uuid.NewString(),
		ProjectID: proj.ID,
		UserID:    caller.UserID,
		Name:      caller.DisplayName,
		Text:      req.Text,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		slog.Error("Failed to store chat message", "project_id", proj.ID, "user_id", caller.UserID, "error", err)
		return chat.MessageResponse{}, err
	}

	resp := chat.ToResponse(msg)
	s.hub.Publish(sse.ProjectChatTopic(proj.ID), sse.Event{Event: eventMessage, Data: resp})
	s.notifyCrew(ctx, proj, caller, msg)

	return resp, nil
}

func (s *ChatServiceImpl) notifyCrew(ctx context.Context, proj project.Project, caller auth.Identity, msg chat.Message) {
	userIDs, err := s.projectRepo.ListAssignedUserIDs(ctx, proj.ID)
	if err != nil {
		slog.Warn("Failed to resolve chat recipients", "project_id", proj.ID, "error", err)
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(userIDs))
	for _, id := range userIDs {
		if id == caller.UserID {
			continue
		}
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: id,
			SenderID:    &caller.UserID,
			Type:        notification.TypeChatMessage,
			Title:       proj.Name,
			Message:     fmt.Sprintf("%s: %s", caller.DisplayName, msg.Text),
			Data:        map[string]interface{}{"project_id": proj.ID, "message_id": msg.ID},
		})
	}
	if len(reqs) == 0 {
		return
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Warn("Failed to queue chat notifications", "project_id", proj.ID, "error", err)
	}
}

func (s *ChatServiceImpl) List(ctx context.Context, caller auth.Identity, projectID string, limit int) ([]chat.MessageResponse, error) {
	proj, err := s.authorize(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = chat.DefaultListLimit
	}
	if limit > chat.MaxListLimit {
		limit = chat.MaxListLimit
	}

	messages, err := s.messageRepo.ListRecent(ctx, proj.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	resp := make([]chat.MessageResponse, len(messages))
	for i, m := range messages {
		resp[i] = chat.ToResponse(m)
	}
	return resp, nil
}

// Subscribe returns a started subscription; the caller must Cancel it.
func (s *ChatServiceImpl) Subscribe(ctx context.Context, caller auth.Identity, projectID string) (*sse.Subscription, error) {
	proj, err := s.authorize(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}
	sub := s.hub.NewSubscription(sse.ProjectChatTopic(proj.ID))
	sub.Start()
	return sub, nil
}
