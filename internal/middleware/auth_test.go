package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/technix/fittrack/internal/ctxkeys"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/service"
)

// Session verification never touches the store, so a repository-less service
// is enough here.
func newGatewayAuthService(t *testing.T, jwtExpiry time.Duration) *service.AuthService {
	t.Helper()
	return service.NewAuthService(nil, nil, "test-secret", false, jwtExpiry, 24*time.Hour, time.Hour)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func protected(t *testing.T, jwtExpiry time.Duration, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return RequireAuth(newGatewayAuthService(t, jwtExpiry))(next)
}

func responseMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body.Message
}

func TestRequireAuthNoCredential(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)

	protected(t, time.Hour, okHandler)(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized", responseMessage(t, rec))
}

func TestRequireAuthCookieCredential(t *testing.T) {
	authService := newGatewayAuthService(t, time.Hour)
	token, err := authService.MintSession(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	var principal *model.Principal
	handler := RequireAuth(authService)(func(w http.ResponseWriter, r *http.Request) {
		principal = ctxkeys.Principal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName(), Value: token})

	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, principal)
	require.Equal(t, "user-1", principal.UserID)
}

func TestRequireAuthBearerCredential(t *testing.T) {
	authService := newGatewayAuthService(t, time.Hour)
	token, err := authService.MintSession(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	RequireAuth(authService)(okHandler)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthCookieWinsOverBearer(t *testing.T) {
	authService := newGatewayAuthService(t, time.Hour)
	cookieToken, err := authService.MintSession(&model.User{ID: "cookie-user", Role: model.RoleUser})
	require.NoError(t, err)
	headerToken, err := authService.MintSession(&model.User{ID: "header-user", Role: model.RoleUser})
	require.NoError(t, err)

	var principal *model.Principal
	handler := RequireAuth(authService)(func(w http.ResponseWriter, r *http.Request) {
		principal = ctxkeys.Principal(r.Context())
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName(), Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)

	handler(rec, req)

	require.NotNil(t, principal)
	require.Equal(t, "cookie-user", principal.UserID)
}

func TestRequireAuthExpiredVsInvalid(t *testing.T) {
	expired := newGatewayAuthService(t, -time.Minute)
	expiredToken, err := expired.MintSession(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+expiredToken)
	protected(t, time.Hour, okHandler)(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token expired", responseMessage(t, rec))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	protected(t, time.Hour, okHandler)(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token", responseMessage(t, rec))
}

// Authentication precedes the role check: no session on an admin route is
// 401, a valid non-admin session is 403.
func TestRequireAdminOrdering(t *testing.T) {
	authService := newGatewayAuthService(t, time.Hour)
	handler := RequireAuth(authService)(RequireAdmin(okHandler))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	handler(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken, err := authService.MintSession(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	handler(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Access denied", responseMessage(t, rec))

	adminToken, err := authService.MintSession(&model.User{ID: "admin-1", Role: model.RoleAdmin})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
