package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/technix/fittrack/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrTokenNotFound  = errors.New("token not found")
)

// allowedUserFields are the columns UpdateFields may touch. password_hash is
// included because callers always pass a hash, never plaintext.
var allowedUserFields = map[string]bool{
	"email":           true,
	"password_hash":   true,
	"name":            true,
	"role":            true,
	"is_verified":     true,
	"profile_picture": true,
}

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	All() ([]model.User, error)
	Update(user *model.User) error
	UpdateFields(id string, fields map[string]any) (*model.User, error)
	Delete(id string) error

	TouchLastLogin(id string, when time.Time) error
	SetVerificationToken(id, token string, expiresAt time.Time) error
	SetResetToken(id, token string, expiresAt time.Time) error
	ConsumeVerificationToken(code string) (*model.User, error)
	ConsumeResetToken(token, newPasswordHash string) (*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, is_verified, profile_picture,
			verification_token, verification_token_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.IsVerified,
		user.ProfilePicture,
		user.VerificationToken,
		user.VerificationTokenExpiresAt,
		user.CreatedAt,
	)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) All() ([]model.User, error) {
	users := []model.User{}
	query := `SELECT * FROM users ORDER BY created_at DESC`

	err := r.db.Select(&users, query)
	return users, err
}

func (r *userRepository) Update(user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, role = $4, is_verified = $5,
			profile_picture = $6, last_login = $7,
			verification_token = $8, verification_token_expires_at = $9,
			reset_password_token = $10, reset_password_expires_at = $11
		WHERE id = $12
	`

	_, err := r.db.Exec(query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.IsVerified,
		user.ProfilePicture,
		user.LastLogin,
		user.VerificationToken,
		user.VerificationTokenExpiresAt,
		user.ResetPasswordToken,
		user.ResetPasswordExpiresAt,
		user.ID,
	)
	return err
}

// UpdateFields applies a partial update limited to allowedUserFields and
// returns the fresh row.
func (r *userRepository) UpdateFields(id string, fields map[string]any) (*model.User, error) {
	if len(fields) == 0 {
		return r.ByID(id)
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	i := 1
	for column, value := range fields {
		if !allowedUserFields[column] {
			return nil, fmt.Errorf("field not updatable: %s", column)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), i)
	result, err := r.db.Exec(query, args...)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrUserNotFound
	}

	return r.ByID(id)
}

func (r *userRepository) Delete(id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) TouchLastLogin(id string, when time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	_, err := r.db.Exec(query, when, id)
	return err
}

// SetVerificationToken replaces any pending verification token. A user has at
// most one active verification token at a time.
func (r *userRepository) SetVerificationToken(id, token string, expiresAt time.Time) error {
	query := `UPDATE users SET verification_token = $1, verification_token_expires_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, token, expiresAt, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetResetToken replaces any pending reset token.
func (r *userRepository) SetResetToken(id, token string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_password_token = $1, reset_password_expires_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, token, expiresAt, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ConsumeVerificationToken atomically flips is_verified and clears the token
// in a single conditional UPDATE. Of two concurrent requests with the same
// code only the first can match the WHERE clause; the second gets
// ErrTokenNotFound. Expired and unknown codes are indistinguishable on purpose.
func (r *userRepository) ConsumeVerificationToken(code string) (*model.User, error) {
	user := &model.User{}
	now := time.Now()

	query := `
		UPDATE users
		SET is_verified = TRUE,
			verification_token = NULL,
			verification_token_expires_at = NULL
		WHERE verification_token = $1
		AND verification_token_expires_at > $2
		RETURNING *
	`

	err := r.db.Get(user, query, code, now)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ConsumeResetToken overwrites the password hash and clears the reset token in
// the same conditional UPDATE that validates it.
func (r *userRepository) ConsumeResetToken(token, newPasswordHash string) (*model.User, error) {
	user := &model.User{}
	now := time.Now()

	query := `
		UPDATE users
		SET password_hash = $1,
			reset_password_token = NULL,
			reset_password_expires_at = NULL
		WHERE reset_password_token = $2
		AND reset_password_expires_at > $3
		RETURNING *
	`

	err := r.db.Get(user, query, newPasswordHash, token, now)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
