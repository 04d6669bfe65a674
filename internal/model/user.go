package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultProfilePicture is the placeholder asset assigned to new accounts.
const DefaultProfilePicture = "/uploads/profiles/profilePicture.jpg"

type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Name           string     `db:"name" json:"name"`
	Role           string     `db:"role" json:"role"`
	IsVerified     bool       `db:"is_verified" json:"isVerified"`
	LastLogin      *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	ProfilePicture string     `db:"profile_picture" json:"profilePicture"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`

	// Pending single-use tokens. Set only while a verification or reset is
	// in flight, cleared atomically when consumed. Never serialized outward.
	VerificationToken          *string    `db:"verification_token" json:"-"`
	VerificationTokenExpiresAt *time.Time `db:"verification_token_expires_at" json:"-"`
	ResetPasswordToken         *string    `db:"reset_password_token" json:"-"`
	ResetPasswordExpiresAt     *time.Time `db:"reset_password_expires_at" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal is the resolved identity attached to an authenticated request.
type Principal struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
