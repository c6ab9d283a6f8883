package http

import (
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	StreamToken(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &authHandlerImpl{
		authService: authService,
	}
}

// Login handles POST /auth/login
func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokenResponse, err := h.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", tokenResponse)
}

// StreamToken handles POST /auth/stream-token
func (h *authHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	token, err := h.authService.StreamToken(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, token)
}

// CreateUser handles POST /users
func (h *authHandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.authService.CreateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created", created)
}
