package httpapi

import (
	"context"
	"net/http"
	"strings"

	"deskhive/internal/domain"
	"deskhive/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	actorContextKey   contextKey = "actor"
	sessionContextKey contextKey = "session"
)

// AuthMiddleware resolves the bearer token into an Actor exactly once per
// request. Handlers read the Actor from the context and pass it explicitly
// into services; nothing downstream re-authenticates.
type AuthMiddleware struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthMiddleware(auth service.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// Require rejects the request with 401 unless a valid bearer token resolves
// to an active session and user.
func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			writeJSON(w, http.StatusUnauthorized, Fail("missing bearer token"))
			return
		}

		actor, sessionID, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		ctx = context.WithValue(ctx, sessionContextKey, sessionID)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin additionally rejects non-admin actors with 403.
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.Require(func(w http.ResponseWriter, r *http.Request) {
		if !actorFrom(r).IsAdmin() {
			writeJSON(w, http.StatusForbidden, Fail("admin role required"))
			return
		}
		next(w, r)
	})
}

func actorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(actorContextKey).(domain.Actor)
	return actor
}

func sessionFrom(r *http.Request) string {
	sessionID, _ := r.Context().Value(sessionContextKey).(string)
	return sessionID
}
