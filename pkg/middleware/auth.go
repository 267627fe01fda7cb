package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/krishi360/krishi/pkg/auth"
	"github.com/krishi360/krishi/pkg/response"
)

type identityKey struct{}

type identity struct {
	userID uint
	role   string
}

// WithIdentity stores the authenticated user in ctx.
func WithIdentity(ctx context.Context, userID uint, role string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{userID: userID, role: role})
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header and puts
// the token's user id and role into the request context.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := WithIdentity(r.Context(), claims.UserID, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	return id.userID, ok
}

func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	return id.role, ok
}
