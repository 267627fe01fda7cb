// Package rbac is the role gate evaluated before any handler runs.
package rbac

import (
	"net/http"

	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/middleware"
	"github.com/krishi360/krishi/pkg/response"
)

// HasRole returns middleware that allows access only to users holding one of
// roles. middleware.Authenticate must have run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w)
				return
			}
			if !allowed[role] {
				logger.WithCtx(r.Context()).Debug("rbac: role denied",
					"role", role, "allowed", roles, "path", r.URL.Path)
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
