package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	// A device registering its push token on login is best effort
	if loginReq.PushToken != nil && strings.TrimSpace(*loginReq.PushToken) != "" {
		if err := a.UserRepository.UpdatePushToken(ctx, userData.ID, strings.TrimSpace(*loginReq.PushToken)); err != nil {
			slog.Warn("Failed to store push token", "user_id", userData.ID, "error", err)
		}
	}

	accessToken, expiresAt, err := a.Service.GenerateAccessToken(userData.ID, userData.DisplayName, userData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.Info("User logged in", "user_id", userData.ID, "role", userData.Role)
	return auth.TokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: expiresAt,
		User: auth.Identity{
			UserID:      userData.ID,
			DisplayName: userData.DisplayName,
			Role:        userData.Role,
		},
	}, nil
}

// CreateUser implements auth.AuthService.
func (a *AuthServiceImpl) CreateUser(ctx context.Context, req auth.CreateUserRequest) (auth.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.UserResponse{}, err
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := a.UserRepository.Create(ctx, user.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hashed,
		Role:         user.Role(req.Role),
	})
	if err != nil {
		return auth.UserResponse{}, err
	}

	slog.Info("User created", "user_id", created.ID, "role", created.Role)
	return auth.UserResponse{
		ID:          created.ID,
		Email:       created.Email,
		DisplayName: created.DisplayName,
		Role:        string(created.Role),
		CreatedAt:   created.CreatedAt.Format(time.RFC3339),
	}, nil
}

// StreamToken implements auth.AuthService.
func (a *AuthServiceImpl) StreamToken(ctx context.Context, caller auth.Identity) (auth.StreamTokenResponse, error) {
	token, expiresIn, err := a.Service.GenerateStreamToken(caller.UserID)
	if err != nil {
		return auth.StreamTokenResponse{}, fmt.Errorf("failed to create stream token: %w", err)
	}
	return auth.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}
