// Package middleware provides the HTTP middleware stack for the order
// tracker: the authentication gate, CORS, request logging, panic recovery
// and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/pkg/auth"
	"github.com/shashiranjanraj/ordertrack/pkg/response"
)

// UserFinder loads a user by primary key. Implemented by the user
// repository; declared here so the gate does not depend on the storage
// layer directly.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// userKey is the unexported context key holding the authenticated user.
type userKey struct{}

// UserFromCtx returns the authenticated user stored by Auth.
func UserFromCtx(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok
}

// WithUser stores the authenticated user in ctx. Exported for tests.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// Auth is the authentication gate. It resolves the acting user from the
// bearer credential and stores the freshly loaded record in the request
// context. The stored row, not the token claims, is what role checks
// downstream must consult: a role change or deactivation takes effect on
// the next request, not at token expiry.
func Auth(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Unauthorized(w, "Not authenticated")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			id, err := claims.SubjectID()
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil || user == nil || !user.IsActive {
				response.Unauthorized(w, "User not found or inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
