package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, email, display_name, password_hash, role, push_token, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.Role,
		&u.PushToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (email, display_name, password_hash, role)
		VALUES (LOWER($1), $2, $3, $4)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.Email,
		newUser.DisplayName,
		newUser.PasswordHash,
		newUser.Role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`

	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// UpdatePushToken implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePushToken(ctx context.Context, id string, token string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET push_token = $1, updated_at = NOW() WHERE id = $2`, token, id)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// GetPushTokens implements user.UserRepository.
func (r *userRepositoryImpl) GetPushTokens(ctx context.Context, ids []string) (map[string]string, error) {
	tokens := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return tokens, nil
	}

	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, push_token
		FROM users
		WHERE id = ANY($1::uuid[])
		  AND push_token IS NOT NULL
		  AND push_token <> ''
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get push tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, token string
		if err := rows.Scan(&id, &token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens[id] = token
	}
	return tokens, rows.Err()
}
