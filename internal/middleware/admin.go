package middleware

import (
	"net/http"
	"strings"

	"github.com/hhsystems1/Intakeform/internal/auth"
	"github.com/hhsystems1/Intakeform/internal/transport"
)

// AdminAuth accepts either an X-Admin-Key matching the configured bcrypt
// hash or a bearer token carrying the admin role.
func AdminAuth(adminKeyHash string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKeyHash == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if key := r.Header.Get("X-Admin-Key"); adminKeyHash != "" && key != "" {
				if auth.CompareAPIKey(adminKeyHash, key) == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			if manager != nil {
				if token, ok := bearerToken(r); ok {
					claims, err := manager.Parse(token)
					if err == nil && claims.Role == auth.RoleAdmin {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
