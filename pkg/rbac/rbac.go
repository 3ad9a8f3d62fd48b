// Package rbac provides role-based access control middleware layered on
// top of the authentication gate.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/pkg/middleware"
	"github.com/shashiranjanraj/ordertrack/pkg/response"
)

// RequireAdmin allows only admins through. The decision uses the user row
// loaded by middleware.Auth on this request, so a demoted admin is locked
// out immediately even while holding a token that still says admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromCtx(r.Context())
		if !ok {
			response.Unauthorized(w, "Not authenticated")
			return
		}
		if !user.IsAdmin() {
			response.Forbidden(w, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HasRole allows access only to users with one of the given roles.
func HasRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := middleware.UserFromCtx(r.Context())
			if !ok || !allowed[user.Role] {
				response.Forbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
