package authz

import (
	"net/http"

	"github.com/velihant/financehub-api/internal/models"
)

// RequirePermission returns a middleware that ensures the requester's role
// grants the given permission.
func RequirePermission(perm models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromRequest(r)
			if !ok || !models.HasPermission(role, perm) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermissionHandler applies the permission middleware inline when registering routes.
func RequirePermissionHandler(perm models.Permission, next http.Handler) http.Handler {
	return RequirePermission(perm)(next)
}
