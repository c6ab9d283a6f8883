package chat

import (
	"context"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/pkg/sse"
)

type ChatService interface {
	Send(ctx context.Context, caller auth.Identity, req SendMessageRequest) (MessageResponse, error)
	List(ctx context.Context, caller auth.Identity, projectID string, limit int) ([]MessageResponse, error)

	// Subscribe returns a cancellable subscription to new messages of a project.
	// Delivery is at-most-once; a slow consumer misses messages.
	Subscribe(ctx context.Context, caller auth.Identity, projectID string) (*sse.Subscription, error)
}
