package auth

import (
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/pkg/validator"
)

type LoginRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	PushToken *string `json:"push_token,omitempty"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

type TokenResponse struct {
	AccessToken          string   `json:"access_token"`
	AccessTokenExpiresAt int64    `json:"access_token_expires_at"`
	User                 Identity `json:"user"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if validator.IsEmpty(r.DisplayName) {
		errs.Add("display_name", "display_name is required")
	}
	if len(r.DisplayName) > 120 {
		errs.Add("display_name", "display_name must not exceed 120 characters")
	}
	if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters long")
	}
	if !validator.IsInSlice(r.Role, user.ValidRoles()) {
		errs.Add("role", "role must be one of: worker, jefe, admin")
	}

	return errs.Err()
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}
