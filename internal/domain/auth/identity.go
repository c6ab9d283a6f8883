package auth

import "github.com/faena-app/faena-backend/internal/domain/user"

// Identity is the authenticated caller, resolved once per request and passed into services.
type Identity struct {
	UserID      string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	Role        user.Role `json:"role"`
}

func (i Identity) IsJefe() bool {
	return i.Role == user.RoleJefe
}

func (i Identity) IsAdmin() bool {
	return i.Role == user.RoleAdmin
}
