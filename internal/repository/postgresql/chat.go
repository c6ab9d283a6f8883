package postgresql

import (
	"context"
	"fmt"

	"github.com/faena-app/faena-backend/internal/domain/chat"
	"github.com/faena-app/faena-backend/internal/pkg/database"
)

type chatRepository struct {
	db *database.DB
}

func NewChatRepository(db *database.DB) chat.MessageRepository {
	return &chatRepository{db: db}
}

// Create implements chat.MessageRepository.
func (r *chatRepository) Create(ctx context.Context, m chat.Message) (chat.Message, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO chat_messages (id, project_id, user_id, name, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.ProjectID, m.UserID, m.Name, m.Text, m.CreatedAt).Scan(&m.CreatedAt)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to create chat message: %w", err)
	}
	return m, nil
}

// ListRecent implements chat.MessageRepository.
func (r *chatRepository) ListRecent(ctx context.Context, projectID string, limit int) ([]chat.Message, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, project_id, user_id, name, text, created_at
		FROM chat_messages
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Name, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
