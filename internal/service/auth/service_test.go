package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
)

type memUsers struct {
	byID       map[string]user.User
	pushTokens map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]user.User{}, pushTokens: map[string]string{}}
}

func (m *memUsers) Create(_ context.Context, u user.User) (user.User, error) {
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, user.ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memUsers) UpdatePushToken(_ context.Context, id string, token string) error {
	if _, ok := m.byID[id]; !ok {
		return user.ErrUserNotFound
	}
	m.pushTokens[id] = token
	return nil
}

func (m *memUsers) GetPushTokens(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if tok, ok := m.pushTokens[id]; ok {
			out[id] = tok
		}
	}
	return out, nil
}

// seedUser stores a user with a low-cost bcrypt hash of password123
func seedUser(t *testing.T, repo *memUsers, email string, role user.Role) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := repo.Create(context.Background(), user.User{Email: email, DisplayName: "Marta", PasswordHash: string(hash), Role: role})
	require.NoError(t, err)
	return u
}

func newTestService() (auth.AuthService, *memUsers, jwt.Service) {
	repo := newMemUsers()
	jwtService := jwt.NewJWTService(testSecret, testAccessExp)
	return NewAuthService(repo, jwtService), repo, jwtService
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, jwtService := newTestService()
	u := seedUser(t, repo, "marta@faena.cl", user.RoleJefe)

	token := "ExponentPushToken[abc]"
	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "Marta@Faena.cl", Password: "password123", PushToken: &token})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresAt, time.Now().Unix())
	assert.Equal(t, u.ID, resp.User.UserID)
	assert.Equal(t, user.RoleJefe, resp.User.Role)
	assert.Equal(t, token, repo.pushTokens[u.ID])

	decoded, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	role, _ := decoded.Get("role")
	assert.Equal(t, "jefe", role)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, repo, _ := newTestService()
	seedUser(t, repo, "marta@faena.cl", user.RoleJefe)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "marta@faena.cl", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "nadie@faena.cl", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "not-an-email", Password: ""})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_CreateUser(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.CreateUser(ctx, auth.CreateUserRequest{
		Email:       "Pedro@Faena.cl",
		DisplayName: "Pedro",
		Password:    "supersecret",
		Role:        "worker",
	})
	require.NoError(t, err)
	assert.Equal(t, "pedro@faena.cl", resp.Email)
	assert.Equal(t, "worker", resp.Role)

	stored := repo.byID[resp.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")))

	_, err = svc.CreateUser(ctx, auth.CreateUserRequest{Email: "pedro@faena.cl", DisplayName: "Otro", Password: "supersecret", Role: "jefe"})
	assert.ErrorIs(t, err, user.ErrEmailExists)

	_, err = svc.CreateUser(ctx, auth.CreateUserRequest{Email: "x@faena.cl", DisplayName: "X", Password: "short", Role: "boss"})
	assert.Error(t, err)
}

func TestAuthService_StreamToken(t *testing.T) {
	svc, _, jwtService := newTestService()
	caller := auth.Identity{UserID: uuid.NewString(), Role: user.RoleWorker}

	resp, err := svc.StreamToken(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, 300, resp.ExpiresIn)

	userID, err := jwtService.ValidateStreamToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, userID)
}
