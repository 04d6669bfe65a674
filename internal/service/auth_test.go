package service

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/technix/fittrack/internal/db"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/repository"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })
	return database
}

func newTestAuthService(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()

	userRepository := repository.NewUserRepository(newTestDB(t))
	emailService := NewEmailService("", "noreply@example.com", "http://localhost:3000", "FitTrack", true)
	authService := NewAuthService(
		userRepository,
		emailService,
		"test-secret",
		false,
		time.Hour,
		24*time.Hour,
		time.Hour,
	)
	return authService, userRepository
}

func TestSignupDefaultsRoleAndIssuesVerification(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	user, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, model.RoleUser, user.Role)
	require.False(t, user.IsVerified)
	require.NotEmpty(t, user.PasswordHash)
	require.NotEqual(t, "Secret123!", user.PasswordHash)
	require.NotNil(t, user.VerificationToken)
	require.Len(t, *user.VerificationToken, 6)
	require.NotNil(t, user.VerificationTokenExpiresAt)
	require.True(t, user.VerificationTokenExpiresAt.After(time.Now()))

	stored, err := userRepository.ByEmail("a@x.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)

	// The session minted for the new account carries its identity.
	token, err := authService.MintSession(user)
	require.NoError(t, err)
	principal, err := authService.VerifySession(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, model.RoleUser, principal.Role)
}

func TestSignupMissingFields(t *testing.T) {
	authService, _ := newTestAuthService(t)

	_, err := authService.Signup("", "", "A", "")
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.ElementsMatch(t, []string{"email", "password"}, validationErr.Fields)
}

func TestSignupDuplicateEmail(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	_, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)

	_, err = authService.Signup("a@x.com", "Other456!", "B", "")
	require.ErrorIs(t, err, ErrEmailAlreadyExists)

	users, err := userRepository.All()
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestVerifyEmailConsumesCodeOnce(t *testing.T) {
	authService, _ := newTestAuthService(t)

	user, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)
	code := *user.VerificationToken

	verified, err := authService.VerifyEmail(code)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)
	require.Nil(t, verified.VerificationToken)

	_, err = authService.VerifyEmail(code)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	user, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)

	err = userRepository.SetVerificationToken(user.ID, "654321", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = authService.VerifyEmail("654321")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	fresh, err := userRepository.ByID(user.ID)
	require.NoError(t, err)
	require.False(t, fresh.IsVerified)
}

func TestLoginWrongPassword(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	user, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)

	_, err = authService.Login("a@x.com", "WrongPass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email fails identically.
	_, err = authService.Login("nobody@x.com", "Secret123!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	fresh, err := userRepository.ByID(user.ID)
	require.NoError(t, err)
	require.Nil(t, fresh.LastLogin)
}

func TestLoginUpdatesLastLogin(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	_, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)

	before := time.Now()
	user, err := authService.Login("a@x.com", "Secret123!")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	require.False(t, user.LastLogin.Before(before))

	fresh, err := userRepository.ByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.LastLogin)
}

func TestSessionRoundTrip(t *testing.T) {
	authService, _ := newTestAuthService(t)

	user := &model.User{ID: "user-1", Role: model.RoleAdmin}
	token, err := authService.MintSession(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := authService.VerifySession(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", principal.UserID)
	require.Equal(t, model.RoleAdmin, principal.Role)
	require.True(t, principal.IsAdmin())
}

func TestVerifySessionExpiredVsInvalid(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	expiredIssuer := NewAuthService(
		userRepository,
		NewEmailService("", "noreply@example.com", "http://localhost:3000", "FitTrack", true),
		"test-secret",
		false,
		-time.Minute,
		24*time.Hour,
		time.Hour,
	)

	token, err := expiredIssuer.MintSession(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = authService.VerifySession(token)
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = authService.VerifySession("not-a-token")
	require.ErrorIs(t, err, ErrSessionInvalid)

	// Valid shape, wrong key.
	wrongKeyIssuer := NewAuthService(
		userRepository,
		NewEmailService("", "noreply@example.com", "http://localhost:3000", "FitTrack", true),
		"other-secret",
		false,
		time.Hour,
		24*time.Hour,
		time.Hour,
	)
	forged, err := wrongKeyIssuer.MintSession(&model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = authService.VerifySession(forged)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	authService, _ := newTestAuthService(t)

	err := authService.ForgotPassword("nobody@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	authService, userRepository := newTestAuthService(t)

	user, err := authService.Signup("a@x.com", "Secret123!", "A", "")
	require.NoError(t, err)

	require.NoError(t, authService.ForgotPassword("a@x.com"))

	withToken, err := userRepository.ByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, withToken.ResetPasswordToken)
	require.NotNil(t, withToken.ResetPasswordExpiresAt)
	token := *withToken.ResetPasswordToken
	require.Len(t, token, 40) // 20 random bytes, hex encoded

	_, err = authService.ResetPassword(token, "Changed456!")
	require.NoError(t, err)

	_, err = authService.Login("a@x.com", "Secret123!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authService.Login("a@x.com", "Changed456!")
	require.NoError(t, err)

	// The token was consumed with the password change.
	_, err = authService.ResetPassword(token, "Another789!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPasswordRejectsWeakPassword(t *testing.T) {
	authService, _ := newTestAuthService(t)

	_, err := authService.ResetPassword("sometoken", "short")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestGenerateVerificationCodeFormat(t *testing.T) {
	for range 50 {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
		}
	}
}
