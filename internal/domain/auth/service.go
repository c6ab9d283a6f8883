package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	StreamToken(ctx context.Context, caller Identity) (StreamTokenResponse, error)
}
