package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailExists            = errors.New("email already registered")
	ErrAdminPrivilegeRequired = errors.New("admin privileges required")
	ErrJefePrivilegeRequired  = errors.New("supervisor privileges required")
)
