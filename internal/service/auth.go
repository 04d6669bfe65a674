package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/repository"
	"github.com/technix/fittrack/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials deliberately covers wrong password, unknown email
	// and invalid or expired verification/reset tokens, so responses never
	// reveal which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionInvalid     = errors.New("session invalid")
	// ErrEmailDelivery marks an outbound email failure. The token it was meant
	// to carry is already persisted, so the caller can safely retry the send.
	ErrEmailDelivery = errors.New("email delivery failed")
)

// ValidationError carries field-level detail for 400 responses.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

const sessionCookieName = "auth_token"

type AuthService struct {
	userRepository           repository.UserRepository
	emailService             *EmailService
	jwtSecret                string
	isProduction             bool
	jwtExpiry                time.Duration
	tokenEmailVerifyExpiry   time.Duration
	tokenPasswordResetExpiry time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	tokenEmailVerifyExpiry time.Duration,
	tokenPasswordResetExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:           userRepository,
		emailService:             emailService,
		jwtSecret:                jwtSecret,
		isProduction:             isProduction,
		jwtExpiry:                jwtExpiry,
		tokenEmailVerifyExpiry:   tokenEmailVerifyExpiry,
		tokenPasswordResetExpiry: tokenPasswordResetExpiry,
	}
}

// Signup creates a user with a pending verification token and returns it.
// Role defaults to "user" when unspecified. The verification email is sent
// separately (SendVerificationEmail) so the HTTP response never waits on it.
func (s *AuthService) Signup(email, password, name, role string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	missing := []string{}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, NewValidationError("all fields are required", missing...)
	}

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, NewValidationError(err.Error(), "email")
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, NewValidationError(err.Error(), "password")
	}
	err = validation.ValidateName(name)
	if err != nil {
		return nil, NewValidationError(err.Error(), "name")
	}

	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, NewValidationError("invalid role", "role")
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := GenerateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenEmailVerifyExpiry)
	user := &model.User{
		ID:                         uuid.New().String(),
		Email:                      email,
		PasswordHash:               hash,
		Name:                       name,
		Role:                       role,
		ProfilePicture:             model.DefaultProfilePicture,
		VerificationToken:          &code,
		VerificationTokenExpiresAt: &expiresAt,
		CreatedAt:                  now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user signed up", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// SendVerificationEmail delivers the pending verification code. Safe to call
// after the signup response has been written.
func (s *AuthService) SendVerificationEmail(user *model.User) error {
	if user.VerificationToken == nil {
		return fmt.Errorf("no pending verification token for user %s", user.ID)
	}

	err := s.emailService.SendVerificationEmail(user.Email, *user.VerificationToken, user.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

// Login validates the credential hash and updates last_login. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, NewValidationError("all fields are required", "email", "password")
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	err = s.userRepository.TouchLastLogin(user.ID, now)
	if err != nil {
		slog.Warn("failed to update last login", "error", err, "user_id", user.ID)
	} else {
		user.LastLogin = &now
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// VerifyEmail consumes a pending verification code. The repository performs a
// single conditional update, so a reused or expired code fails the same way as
// an unknown one.
func (s *AuthService) VerifyEmail(code string) (*model.User, error) {
	if code == "" {
		return nil, NewValidationError("verification code is required", "code")
	}

	user, err := s.userRepository.ConsumeVerificationToken(code)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}

	err = s.emailService.SendWelcomeEmail(user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "email", user.Email)
	}

	slog.Info("email verified", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// ForgotPassword issues a reset token and emails a reset link. The token is
// persisted before the send, so a delivery failure is retryable without
// reissuing.
func (s *AuthService) ForgotPassword(email string) error {
	if email == "" {
		return NewValidationError("email is required", "email")
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(s.tokenPasswordResetExpiry)
	err = s.userRepository.SetResetToken(user.ID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	err = s.emailService.SendPasswordResetEmail(user.Email, token, user.Name)
	if err != nil {
		slog.Error("failed to send password reset email", "error", err, "email", user.Email)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	slog.Info("password reset link sent", "user_id", user.ID, "email", user.Email)
	return nil
}

// ResetPassword consumes a reset token and overwrites the password hash in the
// same conditional update.
func (s *AuthService) ResetPassword(token, password string) (*model.User, error) {
	if token == "" || password == "" {
		return nil, NewValidationError("token and password are required", "password")
	}

	err := validation.ValidatePassword(password)
	if err != nil {
		return nil, NewValidationError(err.Error(), "password")
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepository.ConsumeResetToken(token, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	err = s.emailService.SendResetSuccessEmail(user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send reset success email", "error", err, "email", user.Email)
	}

	slog.Info("password reset", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateVerificationCode returns a 6-digit numeric code. Low entropy is
// acceptable for email-possession proof: the code is short-lived, single-use
// and rate limited at the endpoint.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns a 20-byte random hex string.
func GenerateResetToken() (string, error) {
	bytes := make([]byte, 20)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// MintSession embeds the user's identity and role in a signed JWT with a
// fixed expiry. Sessions are stateless: there is no server-side revocation.
func (s *AuthService) MintSession(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.jwtExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifySession checks signature then expiry. Expired and malformed tokens
// are distinguished for the gateway; handlers surface only a generic message.
func (s *AuthService) VerifySession(tokenString string) (*model.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrSessionInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrSessionInvalid
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return nil, ErrSessionInvalid
	}

	return &model.Principal{UserID: sub, Role: role}, nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.jwtExpiry),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionCookieName is exported for the gateway's extraction step.
func SessionCookieName() string {
	return sessionCookieName
}
