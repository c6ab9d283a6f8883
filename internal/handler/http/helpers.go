package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/faena-app/faena-backend/internal/domain/auth"
	"github.com/faena-app/faena-backend/internal/handler/http/middleware"
	"github.com/faena-app/faena-backend/internal/handler/http/response"
)

// caller resolves the authenticated identity, writing a 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return auth.Identity{}, false
	}
	return identity, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func queryPtr(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
