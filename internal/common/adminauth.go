package common

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminTokenHeader carries the shared admin credential for dashboard calls.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards admin routes with a constant-time comparison
// against the configured shared token. An empty configured token disables
// the admin surface entirely rather than leaving it open.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				JSONError(w, http.StatusForbidden, "FORBIDDEN", "admin API disabled", nil)
				return
			}
			presented := strings.TrimSpace(r.Header.Get(AdminTokenHeader))
			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				JSONError(w, http.StatusForbidden, "FORBIDDEN", "invalid admin credentials", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context())))
		})
	}
}
