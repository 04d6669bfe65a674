package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/technix/fittrack/internal/model"
	"github.com/technix/fittrack/internal/repository"
	"github.com/technix/fittrack/internal/validation"
)

// ProfileUpdate is a partial self-service or admin update. Zero-valued fields
// are left untouched. Password is plaintext here and hashed before it reaches
// the repository.
type ProfileUpdate struct {
	Name           string
	Email          string
	Password       string
	ProfilePicture string
	Role           string // admin updates only
}

type UserService struct {
	userRepository repository.UserRepository
	authService    *AuthService
}

func NewUserService(userRepository repository.UserRepository, authService *AuthService) *UserService {
	return &UserService{
		userRepository: userRepository,
		authService:    authService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) All() ([]model.User, error) {
	return s.userRepository.All()
}

// UpdateProfile applies a self-service update. Role changes are rejected here;
// only UpdateUserAsAdmin may touch the role.
func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*model.User, error) {
	if update.Role != "" {
		return nil, NewValidationError("role cannot be changed", "role")
	}
	return s.applyUpdate(userID, update)
}

// UpdateUserAsAdmin applies an admin update, any field including role.
func (s *UserService) UpdateUserAsAdmin(userID string, update ProfileUpdate) (*model.User, error) {
	if update.Role != "" && update.Role != model.RoleUser && update.Role != model.RoleAdmin {
		return nil, NewValidationError("invalid role", "role")
	}
	return s.applyUpdate(userID, update)
}

func (s *UserService) applyUpdate(userID string, update ProfileUpdate) (*model.User, error) {
	fields := map[string]any{}

	if update.Name != "" {
		err := validation.ValidateName(update.Name)
		if err != nil {
			return nil, NewValidationError(err.Error(), "name")
		}
		fields["name"] = strings.TrimSpace(update.Name)
	}

	if update.Email != "" {
		err := validation.ValidateEmail(update.Email)
		if err != nil {
			return nil, NewValidationError(err.Error(), "email")
		}
		fields["email"] = strings.TrimSpace(update.Email)
	}

	if update.Password != "" {
		err := validation.ValidatePassword(update.Password)
		if err != nil {
			return nil, NewValidationError(err.Error(), "password")
		}
		hash, err := s.authService.HashPassword(update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password_hash"] = hash
	}

	if update.ProfilePicture != "" {
		fields["profile_picture"] = update.ProfilePicture
	}

	if update.Role != "" {
		fields["role"] = update.Role
	}

	user, err := s.userRepository.UpdateFields(userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user updated", "user_id", user.ID)
	return user, nil
}

// CreateUserAsAdmin creates a pre-verified account with an explicit role.
// Admin-created accounts skip the email verification flow.
func (s *UserService) CreateUserAsAdmin(email, password, name, role string) (*model.User, error) {
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

	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, NewValidationError("invalid role", "role")
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.New().String(),
		Email:          strings.TrimSpace(email),
		PasswordHash:   hash,
		Name:           strings.TrimSpace(name),
		Role:           role,
		IsVerified:     true,
		ProfilePicture: model.DefaultProfilePicture,
		CreatedAt:      time.Now(),
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created by admin", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

func (s *UserService) Delete(id string) error {
	err := s.userRepository.Delete(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user deleted", "user_id", id)
	return nil
}
