package middleware

import (
	"net/http"

	"peopledesk/internal/apperror"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/transport/http/api"
)

// RequirePermission gates a route on the static role-permission table.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", GetRequestID(r.Context()))
				return
			}

			if !auth.HasPermission(user.RoleName, permission) {
				api.Fail(w, http.StatusForbidden, apperror.CodeForbidden, "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
