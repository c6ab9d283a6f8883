package chat

import "time"

type Message struct {
	ID        string
	ProjectID string
	UserID    string
	Name      string
	Text      string
	CreatedAt time.Time
}
