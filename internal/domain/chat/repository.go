package chat

import "context"

type MessageRepository interface {
	Create(ctx context.Context, m Message) (Message, error)

	// ListRecent returns the newest messages first.
	ListRecent(ctx context.Context, projectID string, limit int) ([]Message, error)
}
