package middleware

import (
	"net/http"
	"slices"

	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
)

// RequireRole lets the request through when the caller has one of roles, answering denied otherwise.
func RequireRole(denied error, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if !slices.Contains(roles, identity.Role) {
				response.HandleError(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly requires admin role
func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(user.ErrAdminPrivilegeRequired, user.RoleAdmin)(next)
}

// JefeOnly requires the site supervisor role
func JefeOnly(next http.Handler) http.Handler {
	return RequireRole(user.ErrJefePrivilegeRequired, user.RoleJefe)(next)
}

// JefeOrAdmin requires supervisor or admin role
func JefeOrAdmin(next http.Handler) http.Handler {
	return RequireRole(user.ErrJefePrivilegeRequired, user.RoleJefe, user.RoleAdmin)(next)
}
