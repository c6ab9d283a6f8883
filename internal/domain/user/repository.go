package user

import "context"

type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdatePushToken(ctx context.Context, id string, token string) error

	// GetPushTokens returns user_id -> token for users that registered one.
	GetPushTokens(ctx context.Context, ids []string) (map[string]string, error)
}
