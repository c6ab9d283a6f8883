package middleware

import (
	"context"
	"net/http"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type identityKey struct{}

// AuthRequired accepts only access tokens and stores the caller identity in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			displayName, _ := claims["display_name"].(string)
			role, _ := claims["role"].(string)

			identity := auth.Identity{UserID: userID, DisplayName: displayName, Role: user.Role(role)}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the caller set by AuthRequired.
func IdentityFromContext(ctx context.Context) (auth.Identity, error) {
	identity, ok := ctx.Value(identityKey{}).(auth.Identity)
	if !ok {
		return auth.Identity{}, auth.ErrMissingIdentity
	}
	return identity, nil
}
