package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/technix/fittrack/internal/ctxkeys"
	"github.com/technix/fittrack/internal/service"
)

// extractCredential implements the single extraction strategy: the session
// cookie first, then the Authorization bearer header. First present wins.
func extractCredential(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(service.SessionCookieName())
	if err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok && after != "" {
		return after, true
	}

	return "", false
}

// RequireAuth is the gateway for protected routes. It extracts a session
// credential, verifies it, and attaches the resolved principal to the request
// context. Expired and malformed credentials produce distinct messages but
// the same 401 status.
func RequireAuth(authService *service.AuthService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			credential, ok := extractCredential(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			principal, err := authService.VerifySession(credential)
			if err != nil {
				if errors.Is(err, service.ErrSessionExpired) {
					writeAuthError(w, http.StatusUnauthorized, "Token expired")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := ctxkeys.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin enforces the admin role. It composes after RequireAuth and
// fails closed: a request that somehow reaches it without a principal is
// unauthenticated, not forbidden.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := ctxkeys.Principal(r.Context())
		if principal == nil {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !principal.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "Access denied")
			return
		}

		next.ServeHTTP(w, r)
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
